package host

import "github.com/dshills/simext/internal/inject"

// Host methods injected by the kernel. The comment on each lists the
// receiver and arguments the host calls it with.
var (
	// ZoneLoad(zone Zone) begins loading a zone.
	ZoneLoad = inject.Target{Class: "Zone", Method: "load_zone"}
	// ZoneSpin(zone Zone) completes the zone spin-up.
	ZoneSpin = inject.Target{Class: "Zone", Method: "do_zone_spin"}
	// ZoneTeardown(zone Zone) unloads the zone.
	ZoneTeardown = inject.Target{Class: "Zone", Method: "on_teardown"}
	// ZoneSave(zone Zone, saveData any) serializes the zone.
	ZoneSave = inject.Target{Class: "Zone", Method: "save_zone"}
	// ZoneManagerStart(manager any) starts the zone manager.
	ZoneManagerStart = inject.Target{Class: "ZoneManager", Method: "start"}
	// ZoneLoadingScreenFinished(zone Zone) runs once the loading screen is gone.
	ZoneLoadingScreenFinished = inject.Target{Class: "Zone", Method: "on_loading_screen_animation_finished"}
	// ZoneUpdate(zone Zone, absoluteTicks uint64) runs every simulation tick.
	ZoneUpdate = inject.Target{Class: "Zone", Method: "update"}

	// SimInfoInit(info SimInfo) constructs a SimInfo.
	SimInfoInit = inject.Target{Class: "SimInfo", Method: "__init__"}
	// SimInfoLoad(info SimInfo, data any) loads a SimInfo from save data.
	SimInfoLoad = inject.Target{Class: "SimInfo", Method: "load_sim_info"}
	// SimAdd(sim Sim) adds an instanced Sim to the world.
	SimAdd = inject.Target{Class: "Sim", Method: "on_add"}
	// SimInfoSetOccult(info SimInfo, occult OccultType) changes occult types.
	SimInfoSetOccult = inject.Target{Class: "SimInfo", Method: "set_current_occult_types"}

	// QueueAppend(queue InteractionQueue, interaction Interaction) TestResult.
	QueueAppend = inject.Target{Class: "InteractionQueue", Method: "append"}
	// InteractionRun(interaction Interaction, timeline any) iter.Seq[any].
	// The original may also return an unnamed func(func(any) bool); any
	// other result is yielded as a single value.
	InteractionRun = inject.Target{Class: "Interaction", Method: "_run_interaction_gen"}
	// InteractionOutcome(interaction Interaction) any returns the outcome.
	InteractionOutcome = inject.Target{Class: "Interaction", Method: "outcome_result"}
	// InteractionCancel(interaction Interaction, finishing any, reason string) bool.
	InteractionCancel = inject.Target{Class: "Interaction", Method: "cancel"}

	// BuildBuyEnter(zone Zone) switches the zone to build/buy mode.
	BuildBuyEnter = inject.Target{Class: "BuildBuy", Method: "enter"}
	// BuildBuyExit(zone Zone) returns the zone to live mode.
	BuildBuyExit = inject.Target{Class: "BuildBuy", Method: "exit"}

	// SaveGame(slot SaveSlot) commits the game to a save slot.
	SaveGame = inject.Target{Class: "SaveSlot", Method: "save_game"}
	// HouseholdsLoaded(manager any, slot SaveSlot) runs once every household
	// of the save in slot is loaded.
	HouseholdsLoaded = inject.Target{Class: "Household", Method: "all_households_loaded"}

	// ObjectInventoryAdd(inv Inventory, obj GameObject) bool.
	ObjectInventoryAdd = inject.Target{Class: "ObjectInventory", Method: "add"}
	// ObjectInventoryPreRemove(inv Inventory, obj GameObject).
	ObjectInventoryPreRemove = inject.Target{Class: "ObjectInventory", Method: "pre_remove"}
	// SimInventoryAdd(inv Inventory, obj GameObject) bool.
	SimInventoryAdd = inject.Target{Class: "SimInventory", Method: "add"}
	// SimInventoryPreRemove(inv Inventory, obj GameObject).
	SimInventoryPreRemove = inject.Target{Class: "SimInventory", Method: "pre_remove"}
)

// Method is a catalog entry: a target and how it binds its receiver.
type Method struct {
	Target inject.Target
	Kind   inject.Kind
}

// Catalog returns every host method the kernel injects into.
func Catalog() []Method {
	return []Method{
		{ZoneLoad, inject.Instance},
		{ZoneSpin, inject.Instance},
		{ZoneTeardown, inject.Instance},
		{ZoneSave, inject.Instance},
		{ZoneManagerStart, inject.Instance},
		{ZoneLoadingScreenFinished, inject.Instance},
		{ZoneUpdate, inject.Instance},
		{SimInfoInit, inject.Instance},
		{SimInfoLoad, inject.Instance},
		{SimAdd, inject.Instance},
		{SimInfoSetOccult, inject.Instance},
		{QueueAppend, inject.Instance},
		{InteractionRun, inject.Instance},
		{InteractionOutcome, inject.Instance},
		{InteractionCancel, inject.Instance},
		{BuildBuyEnter, inject.Instance},
		{BuildBuyExit, inject.Instance},
		{SaveGame, inject.Instance},
		{HouseholdsLoaded, inject.Instance},
		{ObjectInventoryAdd, inject.Instance},
		{ObjectInventoryPreRemove, inject.Instance},
		{SimInventoryAdd, inject.Instance},
		{SimInventoryPreRemove, inject.Instance},
	}
}
