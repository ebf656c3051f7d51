package marble

import (
	"math"
	"regexp"
	"strconv"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

type tokenKind int

const (
	tokSilence tokenKind = iota
	tokValue
	tokComplete
	tokError
	tokSubscribe
	tokUnsubscribe
	tokGroupOpen
	tokGroupClose
	tokTime
)

type token struct {
	kind   tokenKind
	pos    int    // rune index
	char   string // tokValue only
	frames int64  // tokTime only
}

// timeToken matches a run-mode time progression such as "10ms", "1.2s" or
// "1m". It must be followed by whitespace or the end of the diagram.
var timeToken = regexp.MustCompile(`^(\d+(?:\.\d+)?)(ms|s|m)(?:\s|$)`)

var unitFrames = map[string]float64{
	"ms": 1,
	"s":  1000,
	"m":  60 * 1000,
}

// isReserved reports whether r has a meaning of its own in a diagram.
func isReserved(r rune) bool {
	switch r {
	case '-', '|', '#', '^', '!', '(', ')':
		return true
	}
	return unicode.IsSpace(r)
}

// lex splits an NFC-normalized diagram into tokens. Whitespace is dropped in
// run mode and becomes silence otherwise.
func lex(src string, runMode bool) []token {
	runes := []rune(src)
	toks := make([]token, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if unicode.IsSpace(r) {
			if !runMode {
				toks = append(toks, token{kind: tokSilence, pos: i})
			}
			continue
		}
		if runMode && unicode.IsDigit(r) && (i == 0 || unicode.IsSpace(runes[i-1])) {
			if frames, n, ok := matchTime(string(runes[i:])); ok {
				toks = append(toks, token{kind: tokTime, pos: i, frames: frames})
				i += n - 1
				continue
			}
		}
		tok := token{pos: i}
		switch r {
		case '-':
			tok.kind = tokSilence
		case '|':
			tok.kind = tokComplete
		case '#':
			tok.kind = tokError
		case '^':
			tok.kind = tokSubscribe
		case '!':
			tok.kind = tokUnsubscribe
		case '(':
			tok.kind = tokGroupOpen
		case ')':
			tok.kind = tokGroupClose
		default:
			tok.kind = tokValue
			tok.char = string(r)
		}
		toks = append(toks, tok)
	}
	return toks
}

// matchTime returns the frames a time token spans and its length in runes.
func matchTime(rest string) (frames int64, n int, ok bool) {
	m := timeToken.FindStringSubmatchIndex(rest)
	if m == nil {
		return 0, 0, false
	}
	amount, err := strconv.ParseFloat(rest[m[2]:m[3]], 64)
	if err != nil {
		return 0, 0, false
	}
	unit := rest[m[4]:m[5]]
	// Digits and units are ASCII, so the byte end is the rune count.
	return int64(math.Round(amount * unitFrames[unit])), m[5], true
}

// normalize applies NFC so that a composed glyph is one character.
func normalize(s string) string {
	return norm.NFC.String(s)
}
