package inject

import (
	"errors"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/isolation"
	"github.com/dshills/simext/internal/logging"
)

var (
	extA = identity.MustNew("A", "tester", identity.WithNamespace("ext_a"))
	extB = identity.MustNew("B", "tester", identity.WithNamespace("ext_b"))

	fooBar = Target{Class: "Foo", Method: "bar"}
)

type foo struct{ calls int }

func newRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()
	logs := logging.NewRegistry(logging.WithDirectory(dir))
	return NewRegistry(isolation.New(logs)), dir
}

func defineBar(t *testing.T, r *Registry, result any) {
	t.Helper()
	require.NoError(t, r.Define(fooBar, Instance, func(recv any, _ ...any) any {
		recv.(*foo).calls++
		return result
	}))
}

func TestChainedInjection(t *testing.T) {
	r, _ := newRegistry(t)
	defineBar(t, r, 3)

	require.NoError(t, r.InjectSafely(extA, fooBar, func(original Func, recv any, args ...any) any {
		return original(recv, args...).(int) + 1
	}))
	require.NoError(t, r.InjectSafely(extB, fooBar, func(original Func, recv any, args ...any) any {
		return original(recv, args...).(int) * 2
	}))

	f := &foo{}
	assert.Equal(t, 8, r.Call(fooBar, f))
	assert.Equal(t, 1, f.calls)

	chain := r.Injections(fooBar)
	require.Len(t, chain, 2)
	assert.Equal(t, "A", chain[0].Owner.Name)
	assert.Equal(t, "B", chain[1].Owner.Name)
}

func TestReverseInsertionOrder(t *testing.T) {
	r, _ := newRegistry(t)
	defineBar(t, r, "orig")

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		require.NoError(t, r.Inject(extA, fooBar, func(original Func, recv any, args ...any) any {
			order = append(order, name)
			return original(recv, args...)
		}))
	}

	assert.Equal(t, "orig", r.Call(fooBar, &foo{}))
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestAfterConventionKeepsOriginalResult(t *testing.T) {
	r, _ := newRegistry(t)
	defineBar(t, r, 3)

	var seen []any
	require.NoError(t, r.InjectSafely(extA, fooBar, func(recv any, args ...any) {
		seen = append(seen, recv.(*foo).calls)
	}))

	f := &foo{}
	assert.Equal(t, 3, r.Call(fooBar, f))
	// The original ran before the replacement.
	assert.Equal(t, []any{1}, seen)
}

func TestSameReplacementTwiceMakesTwoLinks(t *testing.T) {
	r, _ := newRegistry(t)
	defineBar(t, r, 1)

	inc := Around(func(original Func, recv any, args ...any) any {
		return original(recv, args...).(int) + 1
	})
	require.NoError(t, r.InjectSafely(extA, fooBar, inc))
	require.NoError(t, r.InjectSafely(extA, fooBar, inc))

	assert.Equal(t, 3, r.Call(fooBar, &foo{}))
	assert.Len(t, r.Injections(fooBar), 2)
}

func TestSafeInjectionFallsBackToOriginal(t *testing.T) {
	r, dir := newRegistry(t)
	defineBar(t, r, 3)

	t.Run("fault before original", func(t *testing.T) {
		require.NoError(t, r.InjectSafely(extA, fooBar, func(original Func, recv any, args ...any) any {
			panic(errors.New("replacement failed"))
		}))
		f := &foo{}
		assert.Equal(t, 3, r.Call(fooBar, f))
		assert.Equal(t, 1, f.calls)
	})

	r.catcher.Logs().Sync()
	logs, err := os.ReadFile(filepath.Join(dir, "ext_a_Exceptions.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(logs), "replacement failed")
	assert.Contains(t, string(logs), "Foo.bar")
}

func TestSafeInjectionFaultAfterOriginal(t *testing.T) {
	r, _ := newRegistry(t)
	defineBar(t, r, 5)

	require.NoError(t, r.InjectSafely(extA, fooBar, func(original Func, recv any, args ...any) any {
		_ = original(recv, args...)
		panic("late failure")
	}))

	f := &foo{}
	assert.Equal(t, 5, r.Call(fooBar, f))
	assert.Equal(t, 1, f.calls, "original must not be called twice")
}

func TestFallbackOptions(t *testing.T) {
	boom := func(Func, any, ...any) any { panic("boom") }

	cases := []struct {
		name string
		opt  Option
		want any
	}{
		{"nil", WithFallback(FallbackNil), nil},
		{"false", WithFallback(FallbackFalse), false},
		{"value", WithFallbackValue("custom"), "custom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newRegistry(t)
			defineBar(t, r, 3)
			require.NoError(t, r.InjectSafely(extA, fooBar, boom, tc.opt))
			assert.Equal(t, tc.want, r.Call(fooBar, &foo{}))
		})
	}
}

func TestUnsafeInjectionPropagates(t *testing.T) {
	r, _ := newRegistry(t)
	defineBar(t, r, 3)
	require.NoError(t, r.Inject(extA, fooBar, func(Func, any, ...any) any { panic("raw") }))
	assert.PanicsWithValue(t, "raw", func() { r.Call(fooBar, &foo{}) })

	r2, _ := newRegistry(t)
	defineBar(t, r2, 3)
	require.NoError(t, r2.InjectSafely(extA, fooBar, func(Func, any, ...any) any { panic("raw") }, WithoutExceptionHandling()))
	assert.Panics(t, func() { r2.Call(fooBar, &foo{}) })
}

func TestRegistrationErrors(t *testing.T) {
	r, _ := newRegistry(t)
	defineBar(t, r, 3)

	err := r.InjectSafely(extA, Target{Class: "Foo", Method: "missing"}, func(any, ...any) {})
	require.ErrorIs(t, err, ErrUnknownTarget)

	err = r.InjectSafely(extA, fooBar, func(x int) int { return x })
	require.ErrorIs(t, err, ErrInvalidReplacement)

	err = r.InjectSafely(extA, fooBar, nil)
	require.ErrorIs(t, err, ErrInvalidReplacement)

	err = r.Define(fooBar, Instance, func(any, ...any) any { return nil })
	require.ErrorIs(t, err, ErrAlreadyDefined)

	assert.Panics(t, func() { r.Call(Target{Class: "Nope", Method: "x"}, nil) })
}

func TestReceiverBinding(t *testing.T) {
	r, _ := newRegistry(t)
	classTarget := Target{Class: "Services", Method: "get"}
	staticTarget := Target{Class: "Util", Method: "now"}

	require.NoError(t, r.Define(classTarget, ClassMethod, func(recv any, _ ...any) any { return recv }))
	require.NoError(t, r.Define(staticTarget, Static, func(recv any, _ ...any) any { return recv }))

	var seen any
	require.NoError(t, r.InjectSafely(extA, classTarget, func(original Func, recv any, args ...any) any {
		seen = recv
		return original(recv, args...)
	}))

	got := r.Call(classTarget, "ignored instance")
	assert.Same(t, r.Class("Services"), got)
	assert.Same(t, r.Class("Services"), seen)
	assert.Nil(t, r.Call(staticTarget, "ignored"))
}

func TestGeneratorConsumerPanicsReachTheConsumer(t *testing.T) {
	r, dir := newRegistry(t)
	runGen := Target{Class: "Interaction", Method: "run"}
	require.NoError(t, r.Define(runGen, Instance, func(any, ...any) any {
		return iter.Seq[any](func(yield func(any) bool) {
			for i := 1; i <= 3; i++ {
				if !yield(i) {
					return
				}
			}
		})
	}))
	passThrough := func(original Func, recv any, args ...any) any {
		return original(recv, args...)
	}
	require.NoError(t, r.InjectSafely(extA, runGen, passThrough))
	require.NoError(t, r.InjectSafely(extB, runGen, passThrough))

	seq := r.Call(runGen, nil).(iter.Seq[any])
	assert.PanicsWithValue(t, "host loop body bug", func() {
		for v := range seq {
			if v == 2 {
				panic("host loop body bug")
			}
		}
	})

	r.catcher.Logs().Sync()
	assert.NoFileExists(t, filepath.Join(dir, "ext_a_Exceptions.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "ext_b_Exceptions.txt"))
}

func TestGeneratorProducerPanicsAreIsolated(t *testing.T) {
	r, dir := newRegistry(t)
	runGen := Target{Class: "Interaction", Method: "run"}
	require.NoError(t, r.Define(runGen, Instance, func(any, ...any) any {
		return iter.Seq[any](func(yield func(any) bool) {
			yield(1)
		})
	}))
	require.NoError(t, r.InjectSafely(extA, runGen, func(original Func, recv any, args ...any) any {
		inner := original(recv, args...).(iter.Seq[any])
		return iter.Seq[any](func(yield func(any) bool) {
			for v := range inner {
				if !yield(v) {
					return
				}
			}
			panic("replacement generator failed")
		})
	}))

	var values []any
	assert.NotPanics(t, func() {
		for v := range r.Call(runGen, nil).(iter.Seq[any]) {
			values = append(values, v)
		}
	})
	assert.Equal(t, []any{1}, values)

	r.catcher.Logs().Sync()
	logs, err := os.ReadFile(filepath.Join(dir, "ext_a_Exceptions.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(logs), "replacement generator failed")
}

func TestAsSeq(t *testing.T) {
	plain := func(yield func(any) bool) { yield(1) }
	seq, ok := AsSeq(plain)
	require.True(t, ok)
	var values []any
	for v := range seq {
		values = append(values, v)
	}
	assert.Equal(t, []any{1}, values)

	_, ok = AsSeq(iter.Seq[any](plain))
	assert.True(t, ok)
	_, ok = AsSeq(3)
	assert.False(t, ok)
	_, ok = AsSeq(nil)
	assert.False(t, ok)
}

func TestGeneratorsArePreserved(t *testing.T) {
	r, _ := newRegistry(t)
	runGen := Target{Class: "Interaction", Method: "run"}
	require.NoError(t, r.Define(runGen, Instance, func(any, ...any) any {
		return iter.Seq[any](func(yield func(any) bool) {
			for i := 1; i <= 3; i++ {
				if !yield(i) {
					return
				}
			}
		})
	}))

	var afterRan bool
	require.NoError(t, r.InjectSafely(extA, runGen, func(any, ...any) { afterRan = true }))
	require.NoError(t, r.InjectSafely(extB, runGen, func(original Func, recv any, args ...any) any {
		return original(recv, args...)
	}))

	seq, ok := r.Call(runGen, nil).(iter.Seq[any])
	require.True(t, ok)

	var values []any
	for v := range seq {
		assert.False(t, afterRan, "after-replacement ran before the sequence was exhausted")
		values = append(values, v)
	}
	assert.Equal(t, []any{1, 2, 3}, values)
	assert.True(t, afterRan)
}
