package hotkey

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"recoilctl/internal/input"
	"recoilctl/internal/input/inputtest"
	"recoilctl/internal/notify"
	"recoilctl/internal/profile"
	"recoilctl/internal/state"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRouter(t *testing.T, opts ...Option) (*Router, *state.State, *profile.Store, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	set, err := profile.FromSpecs([]profile.Spec{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	require.NoError(t, err)
	store := profile.NewStore(nil, rec, nil)
	store.Replace(set)
	st := state.New()
	return NewRouter(st, store, rec, nil, opts...), st, store, rec
}

func press(r *Router, keys ...input.Key) {
	for _, k := range keys {
		r.Dispatch(input.Event{Key: k, Pressed: true})
	}
	for i := len(keys) - 1; i >= 0; i-- {
		r.Dispatch(input.Event{Key: keys[i], Pressed: false})
	}
}

func TestRebindEmptyRestoresDefault(t *testing.T) {
	r, _, _, rec := newRouter(t)
	require.NoError(t, r.Rebind(ActionRecoil, "F6"))
	assert.Equal(t, "F6", r.Binding(ActionRecoil).String())

	err := r.Rebind(ActionRecoil, "")
	assert.True(t, errors.Is(err, ErrInvalidBinding))
	assert.True(t, r.Binding(ActionRecoil).Equal(Default(ActionRecoil)))

	// Already at the default: nothing changes but the error still reaches the host.
	assert.ErrorIs(t, r.Rebind(ActionRecoil, " "), ErrInvalidBinding)
	assert.Len(t, rec.OfKind(notify.KindError), 2)
}

func TestRebindInvalidRestoresDefault(t *testing.T) {
	r, _, _, rec := newRouter(t)
	require.NoError(t, r.Rebind(ActionLink, "F2"))

	err := r.Rebind(ActionLink, "Ctrl+Nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidBinding))
	assert.True(t, r.Binding(ActionLink).Equal(Default(ActionLink)))
	assert.Len(t, rec.OfKind(notify.KindError), 1)
}

func TestRebindConflictKeepsPrior(t *testing.T) {
	r, _, _, _ := newRouter(t)
	require.NoError(t, r.Rebind(ActionAutoClick, "F3"))

	err := r.Rebind(ActionAutoClick, "f8")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBindingConflict))
	assert.Equal(t, "F3", r.Binding(ActionAutoClick).String())
	assert.Equal(t, "F8", r.Binding(ActionRecoil).String())
}

func TestRebindResetDisplacesHolderOfDefault(t *testing.T) {
	r, _, _, _ := newRouter(t)
	require.NoError(t, r.Rebind(ActionRecoil, "F6"))
	require.NoError(t, r.Rebind(ActionLink, "F8"))

	assert.ErrorIs(t, r.Rebind(ActionRecoil, ""), ErrInvalidBinding)
	assert.Equal(t, "F8", r.Binding(ActionRecoil).String())
	assert.Equal(t, "F9", r.Binding(ActionLink).String())
}

func TestRebindUnknownAction(t *testing.T) {
	r, _, _, _ := newRouter(t)
	assert.True(t, errors.Is(r.Rebind(Action("jump"), "J"), ErrUnknownAction))
}

func TestDispatchToggles(t *testing.T) {
	r, st, _, rec := newRouter(t)

	press(r, "F8")
	assert.False(t, st.RecoilArmed())
	press(r, "F9")
	assert.True(t, st.LinkEnabled())
	press(r, "=")
	assert.True(t, st.AutoClickEnabled())
	press(r, "F10")
	assert.False(t, st.TriggerKeyAutoPress())

	changes := rec.OfKind(notify.KindStateChanged)
	require.Len(t, changes, 4)
	assert.Equal(t, "recoil", changes[0].Action)
	assert.Equal(t, "on", changes[0].Old)
	assert.Equal(t, "off", changes[0].New)
}

func TestDispatchIgnoresRepeatAndInjected(t *testing.T) {
	r, st, _, _ := newRouter(t)

	r.Dispatch(input.Event{Key: "F8", Pressed: true})
	r.Dispatch(input.Event{Key: "F8", Pressed: true})
	r.Dispatch(input.Event{Key: "F8", Pressed: true})
	assert.False(t, st.RecoilArmed(), "held key toggles once")
	r.Dispatch(input.Event{Key: "F8", Pressed: false})

	r.Dispatch(input.Event{Key: "F8", Pressed: true, Injected: true})
	assert.False(t, st.RecoilArmed())
}

func TestDispatchProfileChords(t *testing.T) {
	r, _, store, _ := newRouter(t)

	press(r, "ALT", "LEFT")
	w, _, _ := store.Current()
	assert.Equal(t, "c", w.Name(), "previous wraps")

	press(r, "ALT", "RIGHT")
	press(r, "ALT", "RIGHT")
	w, _, _ = store.Current()
	assert.Equal(t, "b", w.Name())

	press(r, "RIGHT")
	w, _, _ = store.Current()
	assert.Equal(t, "b", w.Name(), "plain Right is not bound")
}

func TestDispatchMouseChord(t *testing.T) {
	r, st, _, _ := newRouter(t)
	require.NoError(t, r.Rebind(ActionAutoClick, "Mouse4"))

	r.Dispatch(input.Event{Key: input.ButtonX1.Key(), Button: input.ButtonX1, Pressed: true})
	assert.True(t, st.AutoClickEnabled())
}

func TestLinkTap(t *testing.T) {
	fake := inputtest.New()
	r, st, _, _ := newRouter(t, WithLinkTap(fake, "F", "I"))

	press(r, "F")
	assert.Empty(t, fake.Calls(), "linking is off")

	st.SetLinkEnabled(true)
	press(r, "F")
	r.Dispatch(input.Event{Key: "F", Pressed: true, Injected: true})

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, inputtest.OpPressKey, calls[0].Op)
	assert.Equal(t, input.Key("I"), calls[0].Key)
	assert.Equal(t, inputtest.OpReleaseKey, calls[1].Op)
}

func TestSetBindings(t *testing.T) {
	r, _, _, _ := newRouter(t)
	err := r.SetBindings(map[Action]string{
		ActionRecoil:     "F1",
		ActionLink:       "F1",
		ActionAutoClick:  "bogus",
		ActionTriggerKey: "",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBindingConflict))
	assert.True(t, errors.Is(err, ErrInvalidBinding))

	assert.Equal(t, "F1", r.Binding(ActionRecoil).String())
	assert.Equal(t, "F9", r.Binding(ActionLink).String())
	assert.Equal(t, "=", r.Binding(ActionAutoClick).String())
	assert.Equal(t, "F10", r.Binding(ActionTriggerKey).String())

	require.NoError(t, r.SetBindings(map[Action]string{ActionRecoil: "F9", ActionLink: "F8"}))
	assert.Equal(t, "F9", r.Binding(ActionRecoil).String())
	assert.Equal(t, "F8", r.Binding(ActionLink).String())
}

func TestSetEnabledAndTriggerChar(t *testing.T) {
	r, st, _, rec := newRouter(t)

	require.NoError(t, r.SetEnabled(ActionAutoClick, true))
	require.NoError(t, r.SetEnabled(ActionAutoClick, true))
	assert.True(t, r.Enabled(ActionAutoClick))
	assert.Len(t, rec.OfKind(notify.KindStateChanged), 1)
	assert.Error(t, r.SetEnabled(ActionNextProfile, true))

	require.NoError(t, r.SetTriggerChar("x"))
	assert.Equal(t, 'X', st.TriggerChar())
	assert.Error(t, r.SetTriggerChar("xy"))
	assert.Equal(t, 'P', st.TriggerChar())
}

func TestRun(t *testing.T) {
	r, st, _, _ := newRouter(t)
	events := make(chan input.Event)
	done := make(chan error)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { done <- r.Run(ctx, events) }()

	events <- input.Event{Key: "F8", Pressed: true}
	events <- input.Event{Key: "F8", Pressed: false}
	assert.False(t, st.RecoilArmed())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("router did not stop")
	}
}
