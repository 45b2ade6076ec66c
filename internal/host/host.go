package host

// Entity is implemented by every host object with an identity.
type Entity interface {
	ID() uint64
}

// Zone is a loaded playable area.
type Zone interface {
	Entity
}

// OccultType is a bit set of occult forms a Sim can take.
type OccultType uint32

// SimInfo is the persistent record of a Sim.
type SimInfo interface {
	Entity
	FullName() string
	CurrentOccultTypes() OccultType
}

// Sim is the instanced, in-world form of a SimInfo.
type Sim interface {
	Entity
	SimInfo() SimInfo
}

// Interaction is an action queued on and run by a Sim.
type Interaction interface {
	Entity
	Name() string
	Sim() Sim
}

// InteractionQueue is the per-Sim queue interactions are appended to.
type InteractionQueue interface {
	Sim() Sim
}

// GameObject is any object placed in the world or held in an inventory.
type GameObject interface {
	Entity
}

// Inventory holds game objects for its owner, an object or a Sim.
type Inventory interface {
	Owner() Entity
}

// GameClock exposes the simulation speed.
type GameClock interface {
	SpeedMultiplier() float64
	IsPaused() bool
}

// SaveSlot identifies the save file currently loaded.
type SaveSlot interface {
	SlotID() uint64
	SlotGUID() uint64
}

// Container is a hidden in-world object whose text attribute holds data.
type Container interface {
	Entity
	Name() string
	Text() string
	SetText(text string)
}

// World creates and finds containers.
type World interface {
	FindContainer(name string) (Container, bool)
	CreateContainer(name string) (Container, error)
	DestroyContainer(name string) error
}

// TestResult is the result of host checks such as a queue append. A false
// Result rejects the action.
type TestResult struct {
	Result bool
	Reason string
}

// TestPassed is the successful TestResult.
var TestPassed = TestResult{Result: true}

// Failed returns a failing TestResult with reason.
func Failed(reason string) TestResult {
	return TestResult{Reason: reason}
}

// Bool reports the result, accepting anything a host check may return.
func Bool(v any) bool {
	switch r := v.(type) {
	case TestResult:
		return r.Result
	case *TestResult:
		return r != nil && r.Result
	case bool:
		return r
	default:
		return v != nil
	}
}
