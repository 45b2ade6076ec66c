// Package data keeps per-entity extension data in memory and persists it
// through a persistence.Service on the save lifecycle.
//
// A Manager belongs to one extension and owns named Stores. Each Store maps
// entity IDs to key/value pairs. When a save is loaded the Manager reads the
// extension's blob and hands each Store its sub-object; when the game is
// saved the Stores are dumped and written back as one blob:
//
//	{
//	  "sims":    {"12345": {"mood": 3}},
//	  "objects": {"678":   {"charges": 2}}
//	}
//
// Entity wrappers read and write through a Store. When no key is given the
// name of the calling function is used, so a getter method named Mood
// stores its value under "Mood".
package data
