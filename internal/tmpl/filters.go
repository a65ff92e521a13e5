package tmpl

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// filterFuncs are the filters available in placeholders: ${id | upper}.
var filterFuncs = map[string]func(string) string{
	"upper":   strings.ToUpper, // corne → CORNE
	"lower":   strings.ToLower,
	"trim":    strings.TrimSpace,
	"snake":   SnakeCase,  // MyBoard → my_board
	"pascal":  PascalCase, // my_board → MyBoard
	"camel":   CamelCase,  // my_board → myBoard
	"title":   Title,      // my board → My Board
	"quote":   Quote,      // corne → "corne"
	"kconfig": Kconfig,    // corne_left → CORNE_LEFT
}

// Filters returns the names of the available placeholder filters.
func Filters() []string {
	names := make([]string, 0, len(filterFuncs))
	for name := range filterFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// acronyms stay upper case in PascalCase output.
var acronyms = map[string]string{
	"id":   "ID",
	"usb":  "USB",
	"ble":  "BLE",
	"gpio": "GPIO",
	"i2c":  "I2C",
	"spi":  "SPI",
	"led":  "LED",
	"rgb":  "RGB",
	"oled": "OLED",
	"nrf":  "NRF",
	"rp":   "RP",
}

// words splits on underscores, hyphens and spaces.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
}

// PascalCase converts snake_case, kebab-case or camelCase to PascalCase.
// Examples: my_board → MyBoard, nice-nano → NiceNano, usb_id → USBID
func PascalCase(s string) string {
	parts := words(s)
	if len(parts) == 1 && !strings.ContainsAny(s, "_- ") {
		if acronym, ok := acronyms[strings.ToLower(s)]; ok {
			return acronym
		}
		return upperFirst(s)
	}

	for i, part := range parts {
		if acronym, ok := acronyms[strings.ToLower(part)]; ok {
			parts[i] = acronym
			continue
		}
		parts[i] = upperFirst(part)
	}
	return strings.Join(parts, "")
}

// CamelCase converts snake_case, kebab-case or PascalCase to camelCase.
// Examples: my_board → myBoard, MyBoard → myBoard
func CamelCase(s string) string {
	parts := words(s)
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return lowerFirst(parts[0])
	}

	for i, part := range parts {
		if i == 0 {
			parts[i] = strings.ToLower(part)
			continue
		}
		parts[i] = upperFirst(strings.ToLower(part))
	}
	return strings.Join(parts, "")
}

// SnakeCase converts PascalCase, camelCase, kebab-case or spaced words to
// snake_case. Examples: MyBoard → my_board, nice-nano → nice_nano,
// RGBUnderglow → rgb_underglow
func SnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case r == '-' || r == '_' || unicode.IsSpace(r):
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteRune('_')
			}
		case unicode.IsUpper(r):
			if i > 0 && b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteRune('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Kconfig converts an identifier into a Kconfig symbol fragment.
// Example: corne-left → CORNE_LEFT
func Kconfig(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Quote wraps a string in double quotes, escaping as Go does.
func Quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// Title capitalizes the first letter of each word and lower-cases the rest.
func Title(s string) string {
	fields := strings.Fields(s)
	for i, word := range fields {
		fields[i] = upperFirst(strings.ToLower(word))
	}
	return strings.Join(fields, " ")
}

func upperFirst(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func lowerFirst(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
