package runtime_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aretw0/dyntext/internal/runtime"
	"github.com/aretw0/dyntext/pkg/adapters/manual"
	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/aretw0/dyntext/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures everything an engine emits.
type recorder struct {
	displayed []domain.Text
	rendered  []domain.Text
	events    []domain.TextEvent
}

func (r *recorder) options() []runtime.EngineOption {
	return []runtime.EngineOption{
		runtime.WithDisplay(ports.DisplayFunc(func(t domain.Text) {
			r.displayed = append(r.displayed, t)
		})),
		runtime.WithDelegate(ports.DelegateFunc(func(t domain.Text) {
			r.rendered = append(r.rendered, t)
		})),
		runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnTextUpdate: func(_ context.Context, e *domain.TextEvent) {
				r.events = append(r.events, *e)
			},
		}),
	}
}

func (r *recorder) strings() []string {
	out := make([]string, 0, len(r.displayed))
	for _, t := range r.displayed {
		out = append(out, t.String())
	}
	return out
}

func newEngine(t *testing.T, minLen, maxLen int, policy domain.UpdatePolicy, opts ...runtime.EngineOption) (*runtime.Engine, *recorder) {
	t.Helper()
	cfg, err := domain.NewTokenConfiguration(domain.TokenRange{Min: minLen, Max: maxLen}, 20, policy)
	require.NoError(t, err)

	rec := &recorder{}
	eng, err := runtime.NewEngine(cfg, nil, append(rec.options(), opts...)...)
	require.NoError(t, err)
	return eng, rec
}

// converge steps until the proxy equals the base, failing after limit steps.
func converge(t *testing.T, eng *runtime.Engine, limit int) int {
	t.Helper()
	for i := 0; i < limit; i++ {
		if eng.Snapshot().Converged() {
			return i
		}
		eng.Step()
	}
	require.True(t, eng.Snapshot().Converged(), "did not converge in %d steps: %+v", limit, eng.Snapshot())
	return limit
}

func TestEngine_ResetThenAdd_Hello(t *testing.T) {
	eng, rec := newEngine(t, 2, 2, domain.ResetThenAdd)
	eng.SetBaseText(domain.Some("HELLO"))

	eng.Step()
	eng.Step()
	eng.Step()
	assert.Equal(t, []string{"HE", "HELL", "HELLO"}, rec.strings())

	// Stable: no more display updates, delegate told about the render.
	eng.Step()
	eng.Step()
	assert.Len(t, rec.displayed, 3)
	require.Len(t, rec.rendered, 2)
	assert.Equal(t, domain.Some("HELLO"), rec.rendered[0])
}

func TestEngine_ResetThenAdd_MismatchResets(t *testing.T) {
	eng, rec := newEngine(t, 2, 2, domain.ResetThenAdd)
	eng.SetBaseText(domain.Some("HELLO"))
	converge(t, eng, 10)

	eng.SetBaseText(domain.Some("HELP"))
	eng.Step()

	assert.Equal(t, domain.Some("HE"), eng.Snapshot().ProxyText)
	last := rec.events[len(rec.events)-1]
	assert.True(t, last.Reset)
	assert.Equal(t, domain.OpAppend, last.Op)
	assert.Equal(t, domain.Some("HELLO"), last.Previous)
}

func TestEngine_ResetThenAdd_KeepsMatchingPrefix(t *testing.T) {
	eng, rec := newEngine(t, 2, 2, domain.ResetThenAdd)
	eng.SetBaseText(domain.Some("HE"))
	converge(t, eng, 5)

	eng.SetBaseText(domain.Some("HELLO"))
	eng.Step()

	assert.Equal(t, domain.Some("HELL"), eng.Snapshot().ProxyText)
	assert.False(t, rec.events[len(rec.events)-1].Reset)
}

func TestEngine_DeleteThenAdd_HelloToHelp(t *testing.T) {
	eng, rec := newEngine(t, 2, 2, domain.DeleteThenAdd)
	eng.SetBaseText(domain.Some("HELLO"))
	converge(t, eng, 10)
	rec.displayed = nil

	eng.SetBaseText(domain.Some("HELP"))
	eng.Step()
	assert.Equal(t, "HEL", eng.Snapshot().ProxyText.String())

	converge(t, eng, 10)
	assert.Equal(t, []string{"HEL", "HELP"}, rec.strings())
}

func TestEngine_ResetThenAddReverse_World(t *testing.T) {
	eng, rec := newEngine(t, 3, 3, domain.ResetThenAddReverse)
	eng.SetBaseText(domain.Some("WORLD"))

	eng.Step()
	eng.Step()
	eng.Step()

	assert.Equal(t, []string{"RLD", "WORLD"}, rec.strings())
	assert.Len(t, rec.rendered, 1)
}

func TestEngine_ResetThenAddReverse_MismatchResets(t *testing.T) {
	eng, _ := newEngine(t, 2, 2, domain.ResetThenAddReverse)
	eng.SetBaseText(domain.Some("WORLD"))
	converge(t, eng, 10)

	eng.SetBaseText(domain.Some("BOLD"))
	eng.Step()
	assert.Equal(t, domain.Some("LD"), eng.Snapshot().ProxyText)

	eng.SetBaseText(domain.Some("GOLD"))
	eng.Step()
	assert.Equal(t, domain.Some("GOLD"), eng.Snapshot().ProxyText, "kept suffix")
}

func TestEngine_AbsentBase(t *testing.T) {
	t.Run("ResetThenAdd clears", func(t *testing.T) {
		eng, rec := newEngine(t, 1, 1, domain.ResetThenAdd)
		eng.SetBaseText(domain.Some("ab"))
		converge(t, eng, 5)

		eng.SetBaseText(domain.None())
		eng.Step()
		assert.True(t, eng.Snapshot().ProxyText.IsNone())

		eng.Step()
		require.NotEmpty(t, rec.rendered)
		assert.True(t, rec.rendered[len(rec.rendered)-1].IsNone())
	})

	t.Run("DeleteThenAdd shrinks then settles", func(t *testing.T) {
		eng, _ := newEngine(t, 1, 1, domain.DeleteThenAdd)
		eng.SetBaseText(domain.Some("ab"))
		converge(t, eng, 5)

		eng.SetBaseText(domain.None())
		eng.Step()
		assert.Equal(t, domain.Some("a"), eng.Snapshot().ProxyText)
		eng.Step()
		assert.Equal(t, domain.Some(""), eng.Snapshot().ProxyText)
		eng.Step()
		assert.True(t, eng.Snapshot().ProxyText.IsNone())
		assert.True(t, eng.Snapshot().Converged())
	})

	t.Run("Both absent is rendered", func(t *testing.T) {
		eng, rec := newEngine(t, 1, 1, domain.ResetThenAdd)
		eng.Step()
		assert.Empty(t, rec.displayed)
		require.Len(t, rec.rendered, 1)
		assert.True(t, rec.rendered[0].IsNone())
	})
}

func TestEngine_EmptyBaseIsNotAbsent(t *testing.T) {
	eng, rec := newEngine(t, 1, 2, domain.ResetThenAdd)
	eng.SetBaseText(domain.Some(""))

	eng.Step()
	require.Len(t, rec.displayed, 1)
	assert.Equal(t, domain.Some(""), rec.displayed[0])
	assert.Empty(t, rec.rendered)

	eng.Step()
	assert.Len(t, rec.rendered, 1)
}

func TestEngine_Convergence(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	alphabet := []rune("abcAB日本 ")
	randomText := func() domain.Text {
		if r.IntN(8) == 0 {
			return domain.None()
		}
		n := r.IntN(12)
		out := make([]rune, n)
		for i := range out {
			out[i] = alphabet[r.IntN(len(alphabet))]
		}
		return domain.Some(string(out))
	}

	policies := []domain.UpdatePolicy{domain.ResetThenAdd, domain.ResetThenAddReverse, domain.DeleteThenAdd}
	for _, policy := range policies {
		t.Run(policy.String(), func(t *testing.T) {
			for trial := 0; trial < 50; trial++ {
				minLen := 1 + r.IntN(3)
				maxLen := minLen + r.IntN(3)
				eng, rec := newEngine(t, minLen, maxLen, policy, runtime.WithRand(rand.New(rand.NewPCG(uint64(trial), 3))))

				for change := 0; change < 4; change++ {
					eng.SetBaseText(randomText())
					// Change the base mid-transition.
					for i := r.IntN(4); i > 0; i-- {
						eng.Step()
					}
				}
				converge(t, eng, 200)

				rendered := len(rec.rendered)
				displayed := len(rec.displayed)
				eng.Step()
				assert.Equal(t, rendered+1, len(rec.rendered))
				assert.Equal(t, displayed, len(rec.displayed), "terminal state is idempotent")
			}
		})
	}
}

func TestEngine_ProxyStaysPrefixOrSuffix(t *testing.T) {
	check := func(t *testing.T, policy domain.UpdatePolicy, holds func(base, proxy domain.Text) bool) {
		eng, rec := newEngine(t, 1, 3, policy, runtime.WithRand(rand.New(rand.NewPCG(1, 2))))
		for _, base := range []string{"transition", "transit", "trestle", "tle", ""} {
			eng.SetBaseText(domain.Some(base))
			eng.Step()
			eng.Step()
		}
		converge(t, eng, 50)

		require.NotEmpty(t, rec.events)
		for _, e := range rec.events {
			if e.Reset || e.Op == domain.OpRemove {
				continue
			}
			assert.True(t, holds(e.BaseText, e.ProxyText), "%q vs %q", e.BaseText.String(), e.ProxyText.String())
		}
	}

	t.Run("prefix", func(t *testing.T) {
		check(t, domain.ResetThenAdd, func(b, p domain.Text) bool { return b.HasPrefix(p) })
	})
	t.Run("suffix", func(t *testing.T) {
		check(t, domain.ResetThenAddReverse, func(b, p domain.Text) bool { return b.HasSuffix(p) })
	})
	t.Run("delete-then-add growth", func(t *testing.T) {
		check(t, domain.DeleteThenAdd, func(b, p domain.Text) bool { return b.HasPrefix(p) })
	})
}

func TestEngine_DeleteThenAdd_ShrinkThenGrow(t *testing.T) {
	eng, rec := newEngine(t, 1, 2, domain.DeleteThenAdd, runtime.WithRand(rand.New(rand.NewPCG(5, 5))))
	eng.SetBaseText(domain.Some("transition"))
	converge(t, eng, 50)
	rec.events = nil

	eng.SetBaseText(domain.Some("transform"))
	converge(t, eng, 50)

	require.NotEmpty(t, rec.events)
	growing := false
	for _, e := range rec.events {
		prev, next := e.Previous.RuneLen(), e.ProxyText.RuneLen()
		switch e.Op {
		case domain.OpRemove:
			assert.False(t, growing, "no shrinking once the proxy matches again")
			assert.Less(t, next, prev)
		case domain.OpAppend:
			growing = true
			assert.GreaterOrEqual(t, next, prev)
			assert.True(t, e.BaseText.HasPrefix(e.ProxyText))
		}
	}
	assert.True(t, growing)
}

func TestEngine_DeleteThenAdd_ExtendsWhenNewBaseStartsWithProxy(t *testing.T) {
	eng, _ := newEngine(t, 2, 2, domain.DeleteThenAdd)
	eng.SetBaseText(domain.Some("HELLO"))
	eng.Step()
	assert.Equal(t, domain.Some("HE"), eng.Snapshot().ProxyText)

	eng.SetBaseText(domain.Some("HEX"))
	eng.Step()
	assert.Equal(t, domain.Some("HEX"), eng.Snapshot().ProxyText)
}

func TestEngine_TokenLengthIsRerolled(t *testing.T) {
	eng, rec := newEngine(t, 1, 4, domain.ResetThenAdd, runtime.WithRand(rand.New(rand.NewPCG(42, 42))))
	eng.SetBaseText(domain.Some("the quick brown fox jumps over the lazy dog"))
	converge(t, eng, 100)

	lengths := map[int]bool{}
	for _, e := range rec.events {
		assert.GreaterOrEqual(t, e.TokenLength, 1)
		assert.LessOrEqual(t, e.TokenLength, 4)
		lengths[e.TokenLength] = true
	}
	assert.Greater(t, len(lengths), 1)
}

func TestEngine_StartStop(t *testing.T) {
	sched := manual.New()
	cfg, err := domain.NewTokenConfiguration(domain.TokenRange{Min: 1, Max: 1}, 20, domain.ResetThenAdd)
	require.NoError(t, err)
	eng, err := runtime.NewEngine(cfg, sched)
	require.NoError(t, err)

	eng.SetBaseText(domain.Some("abcdef"))
	eng.Start()
	eng.Start()
	require.Len(t, sched.Active(), 1, "start is idempotent")
	assert.Equal(t, 50*time.Millisecond, sched.Active()[0].Interval())
	assert.True(t, eng.IsActive())

	sched.Advance(150 * time.Millisecond)
	assert.Equal(t, domain.Some("abc"), eng.Snapshot().ProxyText)

	eng.Stop()
	eng.Stop()
	assert.False(t, eng.IsActive())
	assert.Empty(t, sched.Active())

	sched.Advance(time.Second)
	assert.Equal(t, domain.Some("abc"), eng.Snapshot().ProxyText, "no ticks after stop")
}

func TestEngine_SetConfigurationReschedules(t *testing.T) {
	sched := manual.New()
	eng, err := runtime.NewEngine(domain.TokenConfiguration{}, sched)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTokenConfiguration(), eng.Configuration())

	eng.Start()
	cfg, err := domain.NewTokenConfiguration(domain.TokenRange{Min: 1, Max: 1}, 4, domain.DeleteThenAdd)
	require.NoError(t, err)
	require.NoError(t, eng.SetConfiguration(cfg))

	active := sched.Active()
	require.Len(t, active, 1)
	assert.Equal(t, 250*time.Millisecond, active[0].Interval())

	var zero domain.TokenConfiguration
	assert.ErrorIs(t, eng.SetConfiguration(zero), domain.ErrInvalidConfig)
}

func TestEngine_DelegateMayDriveTheEngine(t *testing.T) {
	sched := manual.New()
	cfg, err := domain.NewTokenConfiguration(domain.TokenRange{Min: 2, Max: 2}, 10, domain.ResetThenAdd)
	require.NoError(t, err)

	queue := []string{"one", "two"}
	var eng *runtime.Engine
	eng, err = runtime.NewEngine(cfg, sched, runtime.WithDelegate(ports.DelegateFunc(func(domain.Text) {
		if len(queue) == 0 {
			eng.Stop()
			return
		}
		eng.SetBaseText(domain.Some(queue[0]))
		queue = queue[1:]
	})))
	require.NoError(t, err)

	eng.Start()
	sched.Advance(5 * time.Second)

	assert.False(t, eng.IsActive())
	assert.Equal(t, domain.Some("two"), eng.Snapshot().ProxyText)
}

func TestNewEngine_NilLoggerKeepsDefault(t *testing.T) {
	eng, err := runtime.NewEngine(domain.DefaultTokenConfiguration(), nil, runtime.WithLogger(nil))
	require.NoError(t, err)

	eng.SetBaseText(domain.Some("x"))
	eng.Start()
	assert.True(t, eng.IsActive(), "start without scheduler only flips the flag")
	eng.Step()
	assert.Equal(t, domain.Some("x"), eng.Snapshot().ProxyText)
}
