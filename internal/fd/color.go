package fd

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGBA color stored as 8-bit channels, matching the wire
// format's #RRGGBBAA hex forms.
type Color struct {
	R, G, B, A uint8
}

// namedColors is the 16-color tailwind palette, plus three alias
// spellings (amber=yellow, purple=violet, gray=grey): 19 names in all.
var namedColors = map[string]Color{
	"red":    {R: 0xEF, G: 0x44, B: 0x44, A: 0xFF},
	"orange": {R: 0xF9, G: 0x73, B: 0x16, A: 0xFF},
	"amber":  {R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF},
	"yellow": {R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF},
	"lime":   {R: 0x84, G: 0xCC, B: 0x16, A: 0xFF},
	"green":  {R: 0x22, G: 0xC5, B: 0x5E, A: 0xFF},
	"teal":   {R: 0x14, G: 0xB8, B: 0xA6, A: 0xFF},
	"cyan":   {R: 0x06, G: 0xB6, B: 0xD4, A: 0xFF},
	"blue":   {R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF},
	"indigo": {R: 0x63, G: 0x66, B: 0xF1, A: 0xFF},
	"purple": {R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF},
	"violet": {R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF},
	"pink":   {R: 0xEC, G: 0x48, B: 0x99, A: 0xFF},
	"rose":   {R: 0xF4, G: 0x3F, B: 0x5E, A: 0xFF},
	"slate":  {R: 0x64, G: 0x74, B: 0x8B, A: 0xFF},
	"gray":   {R: 0x6B, G: 0x72, B: 0x80, A: 0xFF},
	"grey":   {R: 0x6B, G: 0x72, B: 0x80, A: 0xFF},
	"black":  {R: 0x00, G: 0x00, B: 0x00, A: 0xFF},
	"white":  {R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
}

// canonicalNamedColors maps a resolved Color back to its canonical
// palette name, preferring the non-alias spelling (yellow over amber,
// violet over purple, gray over grey) for the emitter's named form.
var canonicalNamedColors = buildCanonicalNamedColors()

func buildCanonicalNamedColors() map[Color]string {
	preferred := []string{
		"red", "orange", "yellow", "lime", "green", "teal", "cyan", "blue",
		"indigo", "violet", "pink", "rose", "slate", "gray", "black", "white",
	}
	m := make(map[Color]string, len(preferred))
	for _, name := range preferred {
		m[namedColors[name]] = name
	}
	return m
}

// hexNibble expands a single hex nibble character to a byte value
// multiplied by 17, giving the #RGB -> #RRGGBB expansion in-place with
// no heap allocation.
func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return (c - '0') * 17, true
	case c >= 'a' && c <= 'f':
		return (c - 'a' + 10) * 17, true
	case c >= 'A' && c <= 'F':
		return (c - 'A' + 10) * 17, true
	}
	return 0, false
}

func hexByte(hi, lo byte) (uint8, bool) {
	h, ok1 := hexDigit(hi)
	l, ok2 := hexDigit(lo)
	if !ok1 || !ok2 {
		return 0, false
	}
	return h<<4 | l, true
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// ParseColor accepts #RGB, #RGBA, #RRGGBB, #RRGGBBAA hex forms and the
// named tailwind palette.
func ParseColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, true
	}
	return Color{}, false
}

func parseHexColor(hex string) (Color, bool) {
	switch len(hex) {
	case 3, 4:
		r, ok1 := hexNibble(hex[0])
		g, ok2 := hexNibble(hex[1])
		b, ok3 := hexNibble(hex[2])
		if !ok1 || !ok2 || !ok3 {
			return Color{}, false
		}
		a := uint8(0xFF)
		if len(hex) == 4 {
			var ok4 bool
			a, ok4 = hexNibble(hex[3])
			if !ok4 {
				return Color{}, false
			}
		}
		return Color{R: r, G: g, B: b, A: a}, true
	case 6, 8:
		r, ok1 := hexByte(hex[0], hex[1])
		g, ok2 := hexByte(hex[2], hex[3])
		b, ok3 := hexByte(hex[4], hex[5])
		if !ok1 || !ok2 || !ok3 {
			return Color{}, false
		}
		a := uint8(0xFF)
		if len(hex) == 8 {
			var ok4 bool
			a, ok4 = hexByte(hex[6], hex[7])
			if !ok4 {
				return Color{}, false
			}
		}
		return Color{R: r, G: g, B: b, A: a}, true
	}
	return Color{}, false
}

// String renders the canonical uppercase hex form. Alpha is omitted
// when fully opaque, so #RGB and #RRGGBB inputs normalize to the same
// 6-digit form.
func (c Color) String() string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// isColorHint reports whether a comment line is the emitter's own
// named-color hint fragment (e.g. "# red" trailing a hex value). Like
// section separators, hints are presentation, not content: the parser
// drops them so they never attach to a node and never double up across
// round trips. Only the canonical palette spellings qualify.
func isColorHint(comment string) bool {
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(comment), "#"))
	c, ok := namedColors[rest]
	return ok && canonicalNamedColors[c] == rest
}

// NamedHint returns the canonical tailwind name for this color and true,
// or "", false if it doesn't match any of the 16 palette entries.
func (c Color) NamedHint() (string, bool) {
	name, ok := canonicalNamedColors[c]
	return name, ok
}

// fontWeightNames maps a numeric weight (100..900 step 100) to its
// canonical name.
var fontWeightNames = map[int]string{
	100: "thin", 200: "extralight", 300: "light", 400: "regular",
	500: "medium", 600: "semibold", 700: "bold", 800: "extrabold", 900: "black",
}

var fontWeightValues = map[string]int{
	"thin": 100, "extralight": 200, "light": 300, "regular": 400, "normal": 400,
	"medium": 500, "semibold": 600, "bold": 700, "extrabold": 800, "black": 900,
}

// ParseFontWeight accepts numeric (100..900 step 100) or named weights.
func ParseFontWeight(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 100 && n <= 900 && n%100 == 0 {
			return n, true
		}
		return 0, false
	}
	if w, ok := fontWeightValues[strings.ToLower(s)]; ok {
		return w, true
	}
	return 0, false
}

// FontWeightName renders a weight by name when the value has one.
func FontWeightName(w int) (string, bool) {
	name, ok := fontWeightNames[w]
	return name, ok
}
