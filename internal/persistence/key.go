package persistence

import (
	"fmt"

	"github.com/dshills/simext/internal/host"
	"github.com/dshills/simext/internal/identity"
)

// MainDiscriminator is used when a key has no discriminator.
const MainDiscriminator = "main"

// Key identifies a blob.
type Key struct {
	Owner         identity.Identity
	Discriminator string
}

// NewKey returns the key of owner's blob; the first discriminator, if any,
// is used.
func NewKey(owner identity.Identity, discriminator ...string) Key {
	k := Key{Owner: owner}
	if len(discriminator) > 0 {
		k.Discriminator = discriminator[0]
	}
	return k
}

// DataName returns "<namespace>_<discriminator>".
func (k Key) DataName() string {
	d := k.Discriminator
	if d == "" {
		d = MainDiscriminator
	}
	return k.Owner.Namespace() + "_" + d
}

// String returns the data name.
func (k Key) String() string {
	return k.DataName()
}

// SlotProvider returns the save slot currently loaded, if any.
type SlotProvider interface {
	CurrentSlot() (host.SaveSlot, bool)
}

// SlotFunc adapts a function to SlotProvider.
type SlotFunc func() (host.SaveSlot, bool)

// CurrentSlot implements SlotProvider.
func (f SlotFunc) CurrentSlot() (host.SaveSlot, bool) {
	return f()
}

// Slot is a SlotProvider that always returns the same slot.
func Slot(slot host.SaveSlot) SlotProvider {
	return SlotFunc(func() (host.SaveSlot, bool) { return slot, slot != nil })
}

// qualify appends the save slot of slots to name when per-slot storage is
// enabled and a slot is loaded.
func qualify(name string, perSlot bool, slots SlotProvider) string {
	if !perSlot || slots == nil {
		return name
	}
	slot, ok := slots.CurrentSlot()
	if !ok || slot == nil {
		return name
	}
	return fmt.Sprintf("%s_id_%d_guid_%d", name, slot.SlotID(), slot.SlotGUID())
}
