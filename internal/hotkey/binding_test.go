package hotkey

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recoilctl/internal/input"
)

func TestParseBindingCanonical(t *testing.T) {
	a, err := ParseBinding("left+alt")
	require.NoError(t, err)
	b, err := ParseBinding(" Alt + Left ")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.Equal(t, "Alt+Left", a.String())
	assert.Equal(t, []input.Key{"ALT", "LEFT"}, a.Keys())

	c := MustParse("shift+ctrl+f10")
	assert.Equal(t, "Ctrl+Shift+F10", c.String())
	assert.Equal(t, "=", MustParse("equals").String())
	assert.Equal(t, "Mouse4", MustParse("xbutton1").String())
}

func TestParseBindingErrors(t *testing.T) {
	for _, s := range []string{"", "  ", "Ctrl", "Ctrl+Alt", "F8+F8", "Ctrl++", "Hyper+A"} {
		_, err := ParseBinding(s)
		require.Error(t, err, s)
		assert.True(t, errors.Is(err, ErrInvalidBinding), s)
	}
}

func TestDefaultsAreDistinct(t *testing.T) {
	for i, a := range Actions {
		for _, o := range Actions[i+1:] {
			assert.False(t, Default(a).Equal(Default(o)), "%s and %s", a, o)
		}
	}
	assert.Equal(t, "F8", Default(ActionRecoil).String())
	assert.Equal(t, "Alt+Right", Default(ActionNextProfile).String())
}

func TestMatchesRejectsExtraModifiers(t *testing.T) {
	f8 := MustParse("F8")
	held := map[input.Key]bool{"F8": true}
	assert.True(t, f8.matches("F8", held))

	held["CTRL"] = true
	assert.False(t, f8.matches("F8", held))
	assert.True(t, MustParse("Ctrl+F8").matches("F8", held))

	held = map[input.Key]bool{"F8": true, "MOUSE1": true}
	assert.True(t, f8.matches("F8", held), "held buttons do not block")
	assert.False(t, f8.matches("MOUSE1", held), "the pressed key must be part of the chord")
}

func TestBindingText(t *testing.T) {
	var b Binding
	require.NoError(t, b.UnmarshalText([]byte("alt+right")))
	text, err := b.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Alt+Right", string(text))
	assert.Error(t, b.UnmarshalText([]byte("nope")))
}
