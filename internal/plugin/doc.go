// Package plugin runs Lua script extensions.
//
// An extension is a directory holding a manifest (extension.json or
// extension.yaml) and an entry script, main.lua by default. The Loader
// discovers extension directories and the Manager gives each one its own
// sandboxed interpreter with a simext module:
//
//	local simext = require("simext")
//
//	simext.on("interaction.queued", function(ev)
//	    if ev.sim == 42 then return false end  -- veto
//	end)
//	simext.every(1000, function() simext.log.info("tick") end)
//	simext.data.set("visits", simext.data.get("visits", 0) + 1)
//
// Event payloads are tables of the event's exported fields with snake_case
// keys plus a topic field. Host entities appear as their IDs. A handler
// that returns false vetoes the event. Script errors are reported to the
// extension's Exceptions log and never reach the host.
package plugin
