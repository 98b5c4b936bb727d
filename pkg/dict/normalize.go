package dict

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// arabicMarks lists the Arabic combining marks dropped during normalization:
// Quranic annotation signs, harakat (fatha, damma, kasra, tanwin, shadda,
// sukun and friends), superscript alef and the small high/low signs.
var arabicMarks = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0610, Hi: 0x061A, Stride: 1},
		{Lo: 0x0640, Hi: 0x0640, Stride: 1}, // tatweel
		{Lo: 0x064B, Hi: 0x065F, Stride: 1},
		{Lo: 0x0670, Hi: 0x0670, Stride: 1},
		{Lo: 0x06D6, Hi: 0x06ED, Stride: 1},
	},
}

// letterFold collapses interchangeable Arabic letterforms to one representative.
var letterFold = map[rune]rune{
	'أ': 'ا',
	'إ': 'ا',
	'آ': 'ا',
	'ٱ': 'ا',
	'ة': 'ه',
	'ى': 'ي',
	'ؤ': 'و',
	'ئ': 'ي',
}

func isDiacritic(r rune) bool {
	return unicode.Is(arabicMarks, r) || unicode.Is(unicode.Mn, r)
}

func foldLetter(r rune) rune {
	if f, ok := letterFold[r]; ok {
		return f
	}
	return r
}

// newFolder builds the normalization chain. transform.Chain keeps internal
// buffers, so every call gets its own.
func newFolder() transform.Transformer {
	return transform.Chain(
		norm.NFD,
		runes.Remove(runes.Predicate(isDiacritic)),
		runes.Map(foldLetter),
		norm.NFC,
	)
}

// Normalize lowercases s, strips diacritics, folds Arabic letter variants and
// trims surrounding whitespace. Internal whitespace is left alone.
// Normalize is idempotent.
func Normalize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	result, _, err := transform.String(newFolder(), strings.ToLower(s))
	if err != nil {
		return strings.TrimSpace(strings.ToLower(s))
	}
	// Dropping a leading or trailing mark can expose whitespace.
	return strings.TrimSpace(result)
}

// FoldRune normalizes a single rune. The result is empty when r is a mark
// that normalization drops, and may hold more than one rune for characters
// whose lowercase form decomposes.
func FoldRune(r rune) string {
	if unicode.IsSpace(r) {
		return string(r)
	}
	result, _, err := transform.String(newFolder(), strings.ToLower(string(r)))
	if err != nil {
		return string(r)
	}
	return result
}
