package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dshills/simext/internal/host"
)

// WorldFunc returns the world of the loaded zone, or nil.
type WorldFunc func() host.World

// ContainerBackend stores each blob as JSON in the text attribute of a
// hidden container named exactly the data name. The container is saved by
// the host with the rest of the world, so data follows the save file.
type ContainerBackend struct {
	world WorldFunc
}

// NewContainerBackend stores blobs in the world returned by world.
func NewContainerBackend(world WorldFunc) *ContainerBackend {
	return &ContainerBackend{world: world}
}

// Name implements Backend.
func (b *ContainerBackend) Name() string { return "container" }

func (b *ContainerBackend) current() (host.World, error) {
	if b.world == nil {
		return nil, ErrNoWorld
	}
	w := b.world()
	if w == nil {
		return nil, ErrNoWorld
	}
	return w, nil
}

// Load implements Backend.
func (b *ContainerBackend) Load(_ context.Context, key Key) (map[string]any, error) {
	w, err := b.current()
	if err != nil {
		return nil, err
	}
	c, ok := w.FindContainer(key.DataName())
	if !ok {
		return nil, ErrNotFound
	}
	return decode([]byte(c.Text()), key.DataName())
}

// Save implements Backend. The container is created on first save.
func (b *ContainerBackend) Save(_ context.Context, key Key, data map[string]any) error {
	w, err := b.current()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("persistence: encode %s: %w", key, err)
	}

	c, ok := w.FindContainer(key.DataName())
	if !ok {
		if c, err = w.CreateContainer(key.DataName()); err != nil {
			return fmt.Errorf("persistence: create container %s: %w", key, err)
		}
	}
	c.SetText(string(raw))
	return nil
}

// Remove implements Backend. The container is destroyed.
func (b *ContainerBackend) Remove(_ context.Context, key Key) error {
	w, err := b.current()
	if err != nil {
		return err
	}
	if _, ok := w.FindContainer(key.DataName()); !ok {
		return nil
	}
	if err := w.DestroyContainer(key.DataName()); err != nil {
		return fmt.Errorf("persistence: destroy container %s: %w", key, err)
	}
	return nil
}
