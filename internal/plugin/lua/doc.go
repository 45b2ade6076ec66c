// Package lua wraps gopher-lua for extension scripts.
//
// A State is a sandboxed interpreter: io, os, debug and package are never
// opened, the file loading builtins are removed and require only resolves
// the safe standard modules plus the modules a host preloads. Every call
// runs under a context deadline so a runaway script is interrupted.
//
// Bridge converts between Go values and Lua values. Go structs become
// tables with snake_case keys; values with an ID() uint64 method are
// reduced to that ID.
package lua
