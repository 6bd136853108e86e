package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recoilctl/internal/input"
)

func TestDefaults(t *testing.T) {
	s := New()
	assert.True(t, s.RecoilArmed())
	assert.True(t, s.TriggerKeyAutoPress())
	assert.False(t, s.AutoClickEnabled())
	assert.False(t, s.LinkEnabled())
	assert.Equal(t, 'P', s.TriggerChar())
	assert.Equal(t, input.Key("P"), s.TriggerKey())
	assert.Equal(t, 20*time.Millisecond, s.ClickDelay())
	assert.Equal(t, 20*time.Millisecond, s.ClickJitter())
}

func TestToggleAndSet(t *testing.T) {
	s := New()
	assert.False(t, s.ToggleRecoilArmed())
	assert.True(t, s.ToggleRecoilArmed())
	assert.True(t, s.SetRecoilArmed(false))
	assert.False(t, s.RecoilArmed())

	assert.True(t, s.ToggleLinkEnabled())
	assert.True(t, s.ToggleAutoClickEnabled())
	assert.False(t, s.ToggleTriggerKeyAutoPress())
}

func TestConcurrentToggles(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ToggleAutoClickEnabled()
		}()
	}
	wg.Wait()
	assert.False(t, s.AutoClickEnabled(), "an even number of toggles leaves the flag unchanged")
}

func TestSetTriggerChar(t *testing.T) {
	s := New()

	c, err := s.SetTriggerChar("k")
	require.NoError(t, err)
	assert.Equal(t, 'K', c)
	assert.Equal(t, input.Key("K"), s.TriggerKey())

	c, err = s.SetTriggerChar("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTriggerChar, c)

	s.SetTriggerChar("5")
	for _, bad := range []string{"ab", " ", "é", "+"} {
		c, err = s.SetTriggerChar(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, ErrInvalidTriggerChar))
		assert.Equal(t, DefaultTriggerChar, c)
		assert.Equal(t, DefaultTriggerChar, s.TriggerChar())
	}
}

func TestClickTimingClamp(t *testing.T) {
	s := New()
	s.SetClickTiming(0, -5*time.Millisecond)
	assert.Equal(t, MinClickDelay, s.ClickDelay())
	assert.Equal(t, time.Duration(0), s.ClickJitter())
}

func TestSnapshot(t *testing.T) {
	s := New()
	s.SetLinkEnabled(true)
	_, err := s.SetTriggerChar("q")
	require.NoError(t, err)
	s.SetClickTiming(35*time.Millisecond, 5*time.Millisecond)

	assert.Equal(t, Snapshot{
		RecoilArmed:         true,
		AutoClickEnabled:    false,
		TriggerKeyAutoPress: true,
		LinkEnabled:         true,
		TriggerChar:         'Q',
		ClickDelay:          35 * time.Millisecond,
		ClickJitter:         5 * time.Millisecond,
	}, s.Snapshot())
}
