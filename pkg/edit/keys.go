package edit

import (
	"fmt"
	"unicode"
)

// Key is an upper-cased key code.
type Key rune

const (
	KeySpace  Key = ' '
	KeyEscape Key = 0x1b

	KeyD Key = 'D' // delete
	KeyO Key = 'O' // optimize path
	KeyR Key = 'R' // place rotary
	KeyS Key = 'S' // slower / shorter
	KeyT Key = 'T' // reverse
	KeyW Key = 'W' // faster / longer
)

// KeyOf normalises a typed rune.
func KeyOf(r rune) Key {
	return Key(unicode.ToUpper(r))
}

func (k Key) String() string {
	switch k {
	case KeySpace:
		return "SPACE"
	case KeyEscape:
		return "ESC"
	}
	if unicode.IsPrint(rune(k)) {
		return string(rune(k))
	}
	return fmt.Sprintf("key(%d)", rune(k))
}
