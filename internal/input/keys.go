package input

import (
	"fmt"
	"strings"
	"unicode"
)

// Key is a canonical upper-case key name such as "A", "F8", "ALT", "=" or "MOUSE2".
type Key string

// Button returns the mouse button a MOUSEn key refers to.
func (k Key) Button() (Button, bool) {
	for b := ButtonLeft; b < buttonCount; b++ {
		if b.Key() == k {
			return b, true
		}
	}
	return ButtonNone, false
}

// IsModifier reports whether k is one of CTRL, ALT, SHIFT or CMD.
func (k Key) IsModifier() bool {
	switch k {
	case "CTRL", "ALT", "SHIFT", "CMD":
		return true
	}
	return false
}

// Virtual-key codes. Modifiers use the side-neutral codes.
var vkByKey = map[Key]uint16{
	"CTRL": 0x11, "ALT": 0x12, "SHIFT": 0x10, "CMD": 0x5B,
	"SPACE": 0x20, "ENTER": 0x0D, "ESC": 0x1B, "BACKSPACE": 0x08, "TAB": 0x09,
	"CAPSLOCK": 0x14, "PAGEUP": 0x21, "PAGEDOWN": 0x22, "END": 0x23, "HOME": 0x24,
	"LEFT": 0x25, "UP": 0x26, "RIGHT": 0x27, "DOWN": 0x28,
	"PRINTSCREEN": 0x2C, "INSERT": 0x2D, "DELETE": 0x2E, "PAUSE": 0x13,
	"SCROLLLOCK": 0x91, "NUMLOCK": 0x90,
	";": 0xBA, "=": 0xBB, ",": 0xBC, "-": 0xBD, ".": 0xBE, "/": 0xBF, "`": 0xC0,
	"[": 0xDB, "\\": 0xDC, "]": 0xDD, "'": 0xDE,
	"MOUSE1": 0x01, "MOUSE2": 0x02, "MOUSE3": 0x04, "MOUSE4": 0x05, "MOUSE5": 0x06,
}

var keyByVK = map[uint16]Key{
	0xA0: "SHIFT", 0xA1: "SHIFT",
	0xA2: "CTRL", 0xA3: "CTRL",
	0xA4: "ALT", 0xA5: "ALT",
	0x5C: "CMD",
}

var keyAliases = map[string]Key{
	"CONTROL": "CTRL", "LCTRL": "CTRL", "RCTRL": "CTRL",
	"MENU": "ALT", "OPTION": "ALT", "LALT": "ALT", "RALT": "ALT",
	"LSHIFT": "SHIFT", "RSHIFT": "SHIFT",
	"WIN": "CMD", "WINDOWS": "CMD", "SUPER": "CMD", "META": "CMD", "COMMAND": "CMD",
	"ESCAPE": "ESC", "RETURN": "ENTER", "DEL": "DELETE", "INS": "INSERT",
	"PGUP": "PAGEUP", "PGDN": "PAGEDOWN", "PRTSC": "PRINTSCREEN",
	"EQUAL": "=", "EQUALS": "=", "MINUS": "-", "COMMA": ",", "PERIOD": ".",
	"SLASH": "/", "SEMICOLON": ";", "QUOTE": "'", "BACKSLASH": "\\",
	"GRAVE": "`", "BACKQUOTE": "`", "LBRACKET": "[", "RBRACKET": "]",
	"LBUTTON": "MOUSE1", "MOUSELEFT": "MOUSE1",
	"RBUTTON": "MOUSE2", "MOUSERIGHT": "MOUSE2",
	"MBUTTON": "MOUSE3", "MOUSEMIDDLE": "MOUSE3",
	"XBUTTON1": "MOUSE4", "XBUTTON2": "MOUSE5",
}

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		vkByKey[Key(string(c))] = uint16(c)
	}
	for c := '0'; c <= '9'; c++ {
		vkByKey[Key(string(c))] = uint16(c)
	}
	for i := 1; i <= 24; i++ {
		vkByKey[Key(fmt.Sprintf("F%d", i))] = uint16(0x6F + i)
	}
	for k, vk := range vkByKey {
		keyByVK[vk] = k
	}
}

// ParseKey normalizes a key name. Names are case-insensitive and common aliases
// (Control, Escape, Win, Equals, ...) are accepted.
func ParseKey(s string) (Key, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if t == "" {
		return "", fmt.Errorf("empty key name")
	}
	if k, ok := keyAliases[t]; ok {
		return k, nil
	}
	if _, ok := vkByKey[Key(t)]; ok {
		return Key(t), nil
	}
	return "", fmt.Errorf("unknown key %q", s)
}

// KeyForChar maps a single printable character to the key that types it.
func KeyForChar(r rune) (Key, bool) {
	if !unicode.IsPrint(r) || unicode.IsSpace(r) || r > unicode.MaxASCII {
		return "", false
	}
	k := Key(strings.ToUpper(string(r)))
	if _, ok := vkByKey[k]; !ok {
		return "", false
	}
	return k, true
}

// VirtualKey returns the Windows virtual-key code for k.
func VirtualKey(k Key) (uint16, bool) {
	vk, ok := vkByKey[k]
	return vk, ok
}

// KeyForVirtualKey returns the canonical key for a Windows virtual-key code, or "".
func KeyForVirtualKey(vk uint32) Key {
	if vk > 0xFFFF {
		return ""
	}
	return keyByVK[uint16(vk)]
}

func isExtendedKey(vk uint16) bool {
	switch vk {
	case 0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27, 0x28, 0x2D, 0x2E, 0x5B, 0x5C, 0xA3, 0xA5:
		return true
	}
	return false
}
