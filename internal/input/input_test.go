package input

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	cases := map[string]Key{
		"f8":       "F8",
		" F10 ":    "F10",
		"alt":      "ALT",
		"Control":  "CTRL",
		"escape":   "ESC",
		"=":        "=",
		"equals":   "=",
		"left":     "LEFT",
		"p":        "P",
		"7":        "7",
		"mouse2":   "MOUSE2",
		"xbutton1": "MOUSE4",
	}
	for in, want := range cases {
		got, err := ParseKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "  ", "F25", "hyper", "é"} {
		_, err := ParseKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestKeyForChar(t *testing.T) {
	k, ok := KeyForChar('p')
	require.True(t, ok)
	assert.Equal(t, Key("P"), k)

	k, ok = KeyForChar(';')
	require.True(t, ok)
	assert.Equal(t, Key(";"), k)

	for _, r := range []rune{' ', '\n', 'é', '+'} {
		_, ok := KeyForChar(r)
		assert.False(t, ok, "%q", r)
	}
}

func TestVirtualKeyRoundTrip(t *testing.T) {
	for _, name := range []Key{"A", "Z", "0", "F1", "F12", "ALT", "=", "LEFT", "ESC"} {
		vk, ok := VirtualKey(name)
		require.True(t, ok, name)
		assert.Equal(t, name, KeyForVirtualKey(uint32(vk)))
	}
	assert.Equal(t, Key("CTRL"), KeyForVirtualKey(0xA3))
	assert.Equal(t, Key("ALT"), KeyForVirtualKey(0xA4))
	assert.Equal(t, Key(""), KeyForVirtualKey(0xFF))
}

func TestButtonKeys(t *testing.T) {
	assert.Equal(t, Key("MOUSE1"), ButtonLeft.Key())
	assert.Equal(t, Key("MOUSE2"), ButtonRight.Key())
	assert.Equal(t, Key(""), ButtonNone.Key())

	b, ok := Key("MOUSE3").Button()
	require.True(t, ok)
	assert.Equal(t, ButtonMiddle, b)

	_, ok = Key("F1").Button()
	assert.False(t, ok)

	b, err := ParseButton("right")
	require.NoError(t, err)
	assert.Equal(t, ButtonRight, b)
	b, err = ParseButton("MOUSE5")
	require.NoError(t, err)
	assert.Equal(t, ButtonX2, b)
	_, err = ParseButton("F1")
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindAuto, k)

	k, err = ParseKind("SendInput")
	require.NoError(t, err)
	assert.Equal(t, KindSendInput, k)

	_, err = ParseKind("uinput")
	assert.Error(t, err)
}

func TestNewUnknownKind(t *testing.T) {
	_, _, err := New(Kind("bogus"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
}

func TestHubCapture(t *testing.T) {
	h := newHub()
	c := newHubCapture(h)

	h.publish(Event{Key: "A", Pressed: true})
	require.NoError(t, c.Start())
	h.publish(Event{Key: "B", Pressed: true})

	select {
	case ev := <-c.Events():
		assert.Equal(t, Key("B"), ev.Key)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	require.NoError(t, c.Stop())
	require.NoError(t, c.Stop())
	h.publish(Event{Key: "C", Pressed: true})

	_, open := <-c.Events()
	assert.False(t, open)
}

func TestHubDropsWhenFull(t *testing.T) {
	h := newHub()
	c := newHubCapture(h)
	require.NoError(t, c.Start())
	for i := 0; i < eventBuffer+10; i++ {
		h.publish(Event{Key: "A"})
	}
	assert.Equal(t, uint64(10), h.dropped.Load())
	require.NoError(t, c.Stop())
}

func TestEchoFilter(t *testing.T) {
	now := time.Unix(1000, 0)
	f := newEchoFilter()
	f.now = func() time.Time { return now }

	f.expect("MOUSE1", true)
	f.expect("MOUSE1", false)

	assert.True(t, f.consume("MOUSE1", false))
	assert.False(t, f.consume("MOUSE1", false), "only one release echo expected")
	assert.True(t, f.consume("MOUSE1", true))
	assert.False(t, f.consume("MOUSE1", true))

	f.expect("P", true)
	now = now.Add(echoWindow + time.Millisecond)
	assert.False(t, f.consume("P", true), "stale echo must expire")
}

func TestButtonTracker(t *testing.T) {
	var bt buttonTracker
	bt.set(ButtonLeft, true)
	assert.True(t, bt.get(ButtonLeft))
	assert.False(t, bt.get(ButtonRight))
	bt.set(Button(42), true)
	assert.False(t, bt.get(Button(42)))
}
