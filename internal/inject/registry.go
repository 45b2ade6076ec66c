package inject

import (
	"fmt"
	"iter"
	"sync"

	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/isolation"
)

// Fallback selects what a safe injection returns when its replacement faults.
type Fallback int

const (
	// FallbackOriginal returns the original's result. If the replacement
	// faulted before calling the original, the original is called once.
	FallbackOriginal Fallback = iota
	// FallbackNil returns nil.
	FallbackNil
	// FallbackFalse returns false.
	FallbackFalse
	fallbackValue
)

// Convention names the call convention of a replacement.
type Convention string

const (
	// ConventionAround is used by Around replacements.
	ConventionAround Convention = "around"
	// ConventionAfter is used by After replacements.
	ConventionAfter Convention = "after"
)

// Injection describes one link of a method's chain.
type Injection struct {
	Owner            identity.Identity
	Target           Target
	Convention       Convention
	HandleExceptions bool
	Fallback         Fallback
}

// Option configures an injection.
type Option func(*injectConfig)

type injectConfig struct {
	handleExceptions bool
	fallback         Fallback
	value            any
}

// WithFallback selects the fallback of a safe injection.
func WithFallback(f Fallback) Option {
	return func(c *injectConfig) {
		c.fallback = f
	}
}

// WithFallbackValue makes a safe injection return v when it faults.
func WithFallbackValue(v any) Option {
	return func(c *injectConfig) {
		c.fallback = fallbackValue
		c.value = v
	}
}

// WithoutExceptionHandling makes InjectSafely behave like Inject.
func WithoutExceptionHandling() Option {
	return func(c *injectConfig) {
		c.handleExceptions = false
	}
}

type method struct {
	target     Target
	kind       Kind
	class      *Class
	head       Func
	injections []Injection
}

// Registry is the host method table and the chain of injections on it.
type Registry struct {
	mu      sync.RWMutex
	methods map[Target]*method
	classes map[string]*Class
	catcher *isolation.Catcher
}

// NewRegistry creates an empty method table. Faults of safe injections are
// reported through catcher.
func NewRegistry(catcher *isolation.Catcher) *Registry {
	return &Registry{
		methods: make(map[Target]*method),
		classes: make(map[string]*Class),
		catcher: catcher,
	}
}

// Class returns the descriptor bound to class methods of the named class.
func (r *Registry) Class(name string) *Class {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.classLocked(name)
}

func (r *Registry) classLocked(name string) *Class {
	c, ok := r.classes[name]
	if !ok {
		c = &Class{Name: name}
		r.classes[name] = c
	}
	return c
}

// Define installs the host's own implementation of target.
func (r *Registry) Define(target Target, kind Kind, fn Func) error {
	if fn == nil {
		return fmt.Errorf("%w: %s", ErrNilFunc, target)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.methods[target]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyDefined, target)
	}
	r.methods[target] = &method{
		target: target,
		kind:   kind,
		class:  r.classLocked(target.Class),
		head:   fn,
	}
	return nil
}

// Defined reports whether the host defined target.
func (r *Registry) Defined(target Target) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.methods[target]
	return ok
}

// Lookup returns the head of target's chain with its receiver binding
// applied, as the host would call it.
func (r *Registry) Lookup(target Target) (Func, error) {
	r.mu.RLock()
	m, ok := r.methods[target]
	var head Func
	if ok {
		head = m.head
	}
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}

	switch m.kind {
	case ClassMethod:
		class := m.class
		return func(_ any, args ...any) any { return head(class, args...) }, nil
	case Static:
		return func(_ any, args ...any) any { return head(nil, args...) }, nil
	default:
		return head, nil
	}
}

// Call invokes target through its chain. Calling an undefined target is a
// host programming error and panics.
func (r *Registry) Call(target Target, recv any, args ...any) any {
	fn, err := r.Lookup(target)
	if err != nil {
		panic(err)
	}
	return fn(recv, args...)
}

// Injections returns the chain of target in insertion order.
func (r *Registry) Injections(target Target) []Injection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.methods[target]
	if !ok {
		return nil
	}
	out := make([]Injection, len(m.injections))
	copy(out, m.injections)
	return out
}

// Inject wraps target with replacement. Faults raised by the replacement
// propagate to the caller.
func (r *Registry) Inject(owner identity.Identity, target Target, replacement any) error {
	return r.install(owner, target, replacement, injectConfig{handleExceptions: false})
}

// InjectSafely wraps target with replacement under fault isolation. A
// fault is logged against owner and the configured fallback is returned.
func (r *Registry) InjectSafely(owner identity.Identity, target Target, replacement any, opts ...Option) error {
	cfg := injectConfig{handleExceptions: true, fallback: FallbackOriginal}
	for _, opt := range opts {
		opt(&cfg)
	}
	return r.install(owner, target, replacement, cfg)
}

func (r *Registry) install(owner identity.Identity, target Target, replacement any, cfg injectConfig) error {
	conv, around, after, err := classify(replacement)
	if err != nil {
		return fmt.Errorf("%w: %s by %s", err, target, owner.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.methods[target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}

	link := link{
		owner:   owner,
		name:    target.String(),
		cfg:     cfg,
		catcher: r.catcher,
		around:  around,
		after:   after,
	}
	m.head = link.wrap(m.head)
	m.injections = append(m.injections, Injection{
		Owner:            owner,
		Target:           target,
		Convention:       conv,
		HandleExceptions: cfg.handleExceptions,
		Fallback:         cfg.fallback,
	})
	return nil
}

// classify selects the call convention from the replacement's type.
func classify(replacement any) (Convention, Around, After, error) {
	switch fn := replacement.(type) {
	case nil:
		return "", nil, nil, ErrInvalidReplacement
	case Around:
		return checkAround(fn)
	case func(Func, any, ...any) any:
		return checkAround(fn)
	case func(func(any, ...any) any, any, ...any) any:
		return checkAround(func(original Func, recv any, args ...any) any {
			return fn(original, recv, args...)
		})
	case After:
		return checkAfter(fn)
	case func(any, ...any):
		return checkAfter(fn)
	default:
		return "", nil, nil, fmt.Errorf("%w: unsupported signature %T", ErrInvalidReplacement, replacement)
	}
}

func checkAround(fn Around) (Convention, Around, After, error) {
	if fn == nil {
		return "", nil, nil, ErrInvalidReplacement
	}
	return ConventionAround, fn, nil, nil
}

func checkAfter(fn After) (Convention, Around, After, error) {
	if fn == nil {
		return "", nil, nil, ErrInvalidReplacement
	}
	return ConventionAfter, nil, fn, nil
}

// link builds one wrapper of a chain.
type link struct {
	owner   identity.Identity
	name    string
	cfg     injectConfig
	catcher *isolation.Catcher
	around  Around
	after   After
}

func (l link) wrap(original Func) Func {
	if l.around != nil {
		if l.cfg.handleExceptions {
			return l.safeAround(original)
		}
		around := l.around
		return func(recv any, args ...any) any {
			return around(original, recv, args...)
		}
	}

	if l.cfg.handleExceptions {
		return l.safeAfter(original)
	}
	after := l.after
	return func(recv any, args ...any) any {
		result := original(recv, args...)
		if seq, ok := AsSeq(result); ok {
			return chainSeq(seq, func() { after(recv, args...) })
		}
		after(recv, args...)
		return result
	}
}

// originalCall records whether and how the original was called by a
// replacement, so the fallback never calls it twice.
type originalCall struct {
	started bool
	done    bool
	result  any
}

func (l link) safeAround(original Func) Func {
	return func(recv any, args ...any) any {
		var call originalCall
		tracked := func(recv any, args ...any) any {
			call.started = true
			res := original(recv, args...)
			call.done = true
			call.result = res
			return res
		}

		var result any
		err := l.catcher.Run(l.owner, l.name, func() {
			result = l.around(tracked, recv, args...)
		}, "args", args)
		if err != nil {
			return l.fallback(&call, original, recv, args)
		}
		if seq, ok := AsSeq(result); ok {
			return l.guardSeq(seq)
		}
		return result
	}
}

func (l link) safeAfter(original Func) Func {
	return func(recv any, args ...any) any {
		result := original(recv, args...)
		run := func() {
			_ = l.catcher.Run(l.owner, l.name, func() { l.after(recv, args...) }, "args", args)
		}
		if seq, ok := AsSeq(result); ok {
			return chainSeq(seq, run)
		}
		run()
		return result
	}
}

func (l link) fallback(call *originalCall, original Func, recv any, args []any) any {
	switch l.cfg.fallback {
	case FallbackNil:
		return nil
	case FallbackFalse:
		return false
	case fallbackValue:
		return l.cfg.value
	}

	switch {
	case call.done:
		return call.result
	case call.started:
		// The original itself faulted; there is no result to return.
		return nil
	default:
		return original(recv, args...)
	}
}

// guardSeq isolates panics raised while a replacement's sequence produces
// values. Panics raised by the consumer's loop body belong to the caller
// and are raised again once the sequence has unwound.
func (l link) guardSeq(seq iter.Seq[any]) iter.Seq[any] {
	return func(yield func(any) bool) {
		var (
			consumerPanicked bool
			consumerPanic    any
		)
		_ = l.catcher.Run(l.owner, l.name, func() {
			inYield := false
			defer func() {
				if inYield {
					consumerPanic, consumerPanicked = recover(), true
				}
			}()
			for v := range seq {
				inYield = true
				more := yield(v)
				inYield = false
				if !more {
					return
				}
			}
		})
		if consumerPanicked {
			panic(consumerPanic)
		}
	}
}

// chainSeq yields every value of seq and runs then once seq is exhausted.
// then does not run when the consumer stops early.
func chainSeq(seq iter.Seq[any], then func()) iter.Seq[any] {
	return func(yield func(any) bool) {
		for v := range seq {
			if !yield(v) {
				return
			}
		}
		then()
	}
}
