// Package textproc provides the text preprocessing shared by the similarity
// and generated-text engines: folding, sentence splitting, tokenisation,
// n-grams and size-bounded truncation.
package textproc

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMinSentenceChars is the shortest fragment kept as a sentence.
const DefaultMinSentenceChars = 20

// truncateMarker separates the extracts produced by Truncate.
const truncateMarker = " [...] "

// Fold lower-cases text and strips diacritics ("Éléments" -> "elements").
func Fold(text string) string {
	// Chains keep state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}

// Normalize folds text and replaces every run of characters that are not
// letters or digits with a single space.
func Normalize(text string) string {
	folded := Fold(text)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Words returns the normalised tokens of text.
func Words(text string) []string {
	return strings.Fields(Normalize(text))
}

// Tokens returns folded tokens that keep inner apostrophes, so that
// contractions such as "don't" survive as a single token.
func Tokens(text string) []string {
	folded := strings.ReplaceAll(Fold(text), "’", "'")
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// ContentWords drops stop-words and words of two characters or fewer.
func ContentWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 2 || IsStopword(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// NGrams returns the overlapping word n-grams of sizes minN..maxN,
// joined with single spaces, shortest sizes first.
func NGrams(words []string, minN, maxN int) []string {
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		return nil
	}

	var grams []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(words); i++ {
			if n == 1 {
				grams = append(grams, words[i])
				continue
			}
			grams = append(grams, strings.Join(words[i:i+n], " "))
		}
	}
	return grams
}

// Sentences splits text on runs of '.', '!', '?' or ';' followed by
// whitespace and on newlines. Whitespace inside a sentence is collapsed
// and fragments shorter than minChars characters are discarded.
func Sentences(text string, minChars int) []string {
	var (
		out []string
		b   strings.Builder
	)

	flush := func() {
		s := strings.Join(strings.Fields(b.String()), " ")
		b.Reset()
		if s != "" && utf8.RuneCountInString(s) >= minChars {
			out = append(out, s)
		}
	}

	rs := []rune(text)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case isTerminator(r):
			b.WriteRune(r)
			// Swallow runs such as "?!" or "...".
			for i+1 < len(rs) && isTerminator(rs[i+1]) {
				i++
				b.WriteRune(rs[i])
			}
			if i+1 == len(rs) || unicode.IsSpace(rs[i+1]) {
				flush()
			}
		case r == '\n':
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()

	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == ';'
}

// Truncate bounds text to maxChars characters by keeping an extract from
// the head, the middle and the tail of the document, joined by " [...] ".
// Text already within the bound is returned unchanged.
func Truncate(text string, maxChars int) string {
	rs := []rune(text)
	if maxChars <= 0 || len(rs) <= maxChars {
		return text
	}

	budget := maxChars - 2*utf8.RuneCountInString(truncateMarker)
	if budget < 3 {
		return string(rs[:maxChars])
	}

	third := budget / 3
	tailLen := budget - 2*third

	midStart := len(rs)/2 - third/2
	head := string(rs[:third])
	middle := string(rs[midStart : midStart+third])
	tail := string(rs[len(rs)-tailLen:])

	return head + truncateMarker + middle + truncateMarker + tail
}

// Hash returns the hex sha256 of the normalised text. Texts that differ
// only in case, accents, punctuation or spacing share a hash.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}
