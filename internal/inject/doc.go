// Package inject provides the Function Injection Registry.
//
// The host exposes each patchable method through the registry's method
// table. Extensions wrap those methods; every wrapper sees the previous
// head of the chain as its original, so several extensions patching the
// same method compose instead of replacing one another.
//
// # Host Side
//
//	reg := inject.NewRegistry(catcher)
//	reg.Define(target, inject.Instance, func(recv any, args ...any) any {
//	    return recv.(*Zone).load(args...)
//	})
//	result := reg.Call(target, zone, arg)
//
// # Extension Side
//
// Two call conventions are supported, chosen by the replacement's type:
//
//	// Around receives the original and decides whether and how to call it.
//	reg.InjectSafely(id, target, func(original inject.Func, recv any, args ...any) any {
//	    return original(recv, args...).(int) + 1
//	})
//
//	// After runs once the original has returned; the original's result is kept.
//	reg.InjectSafely(id, target, func(recv any, args ...any) {
//	    log.Info("loaded")
//	})
//
// Registration is append-only. The last installed wrapper runs first.
//
// # Generators
//
// Host methods that produce a sequence return iter.Seq[any]. After-style
// wrappers yield every value of the original sequence and run once it is
// exhausted.
package inject
