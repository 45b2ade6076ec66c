// Package host describes the parts of the host application the kernel
// touches: the narrow interfaces host objects are asserted to and the
// catalog of host methods the dispatchers inject into.
//
// Host objects reach the kernel as untyped receivers and arguments of
// injected methods. Dispatchers narrow them with the interfaces here and
// carry them on events unchanged.
package host
