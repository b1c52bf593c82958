package intent

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// BrandExtractor finds a brand name in query text. ok is false when none was found.
type BrandExtractor interface {
	ExtractBrand(text string) (brand string, ok bool)
}

// BrandExtractorFunc adapts a plain function to BrandExtractor.
type BrandExtractorFunc func(text string) (string, bool)

func (f BrandExtractorFunc) ExtractBrand(text string) (string, bool) { return f(text) }

// brandStopwords are action words that are often capitalised at the start of
// a request but are never brands.
var brandStopwords = map[string]struct{}{
	"show":      {},
	"get":       {},
	"sales":     {},
	"inventory": {},
	"stock":     {},
}

// PatternBrandExtractor returns the first proper-noun shaped token that is not
// a stopword: a capital ASCII letter followed by at least one letter, digit,
// '&', '\'' or '-', standing as a whole word. Word boundaries are judged on
// Unicode letters and digits, so "Nestlé" or "Café" is never cut down to an
// ASCII prefix. It is a heuristic, not entity recognition: any capitalised
// word ("Please", "Monday") qualifies.
type PatternBrandExtractor struct{}

func (PatternBrandExtractor) ExtractBrand(text string) (string, bool) {
	for _, candidate := range properNouns(text) {
		if isStopword(candidate) {
			continue
		}
		return candidate, true
	}
	return "", false
}

// properNouns lists the proper-noun tokens of text from left to right. A token
// whose trailing '&', '\'' or '-' would leave no word boundary gives those
// characters back.
func properNouns(text string) []string {
	var out []string
	prevWord := false
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r >= 'A' && r <= 'Z' && !prevWord {
			if end := properNounEnd(text, i); end > 0 {
				out = append(out, text[i:end])
				last, _ := utf8.DecodeLastRuneInString(text[:end])
				prevWord = isWordRune(last)
				i = end
				continue
			}
		}
		prevWord = isWordRune(r)
		i += size
	}
	return out
}

// properNounEnd returns the end offset of the token starting at start, or 0
// when no prefix of at least two characters ends on a word boundary.
func properNounEnd(text string, start int) int {
	j := start + 1
	for j < len(text) && isBrandByte(text[j]) {
		j++
	}
	for end := j; end >= start+2; end-- {
		left := isWordRune(rune(text[end-1]))
		right := false
		if end < len(text) {
			r, _ := utf8.DecodeRuneInString(text[end:])
			right = isWordRune(r)
		}
		if left != right {
			return end
		}
	}
	return 0
}

func isBrandByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	}
	return b == '&' || b == '\'' || b == '-'
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// ExtractBrand runs the default pattern extractor.
func ExtractBrand(text string) (string, bool) {
	return PatternBrandExtractor{}.ExtractBrand(text)
}

func isStopword(word string) bool {
	_, ok := brandStopwords[strings.ToLower(word)]
	return ok
}

// DictionaryBrandExtractor matches a fixed list of known brands as whole
// words, case-insensitively. The brand occurring earliest in the text wins and
// is returned in its configured spelling.
type DictionaryBrandExtractor struct {
	brands   []string
	patterns []*regexp.Regexp
}

func NewDictionaryBrandExtractor(brands []string) *DictionaryBrandExtractor {
	d := &DictionaryBrandExtractor{}
	for _, b := range brands {
		b = strings.TrimSpace(b)
		if b == "" || isStopword(b) {
			continue
		}
		d.brands = append(d.brands, b)
		d.patterns = append(d.patterns, regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(`+regexp.QuoteMeta(b)+`)(?:$|[^\p{L}\p{N}_])`))
	}
	return d
}

func (d *DictionaryBrandExtractor) ExtractBrand(text string) (string, bool) {
	best, bestAt := "", -1
	for i, p := range d.patterns {
		loc := p.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		if start := loc[2]; bestAt == -1 || start < bestAt {
			best, bestAt = d.brands[i], start
		}
	}
	return best, bestAt >= 0
}

// ChainBrandExtractor tries each extractor in order and returns the first hit.
type ChainBrandExtractor []BrandExtractor

func (c ChainBrandExtractor) ExtractBrand(text string) (string, bool) {
	for _, e := range c {
		if e == nil {
			continue
		}
		if brand, ok := e.ExtractBrand(text); ok {
			return brand, true
		}
	}
	return "", false
}
