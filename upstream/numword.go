package upstream

import (
	"strconv"
	"strings"
)

// Number-word vocabulary for the local normalizer. Covers cardinal values
// through the billions, hyphenated tens ("twenty-five"), and "and" joiners
// inside a phrase ("one hundred and six").
var numberUnits = map[string]int64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var numberTens = map[string]int64{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var numberScales = map[string]int64{
	"hundred":  100,
	"thousand": 1_000,
	"million":  1_000_000,
	"billion":  1_000_000_000,
}

// isNumberWord reports whether a (lowercased, hyphen-split) word belongs to
// the number vocabulary.
func isNumberWord(w string) bool {
	for _, part := range strings.Split(w, "-") {
		if _, ok := numberUnits[part]; ok {
			continue
		}
		if _, ok := numberTens[part]; ok {
			continue
		}
		if _, ok := numberScales[part]; ok {
			continue
		}
		return false
	}
	return w != ""
}

// parseNumberWords evaluates a run of number words to its integer value.
// Returns false when the run does not form a well-formed cardinal.
func parseNumberWords(words []string) (int64, bool) {
	var total, current int64
	seen := false

	for _, raw := range words {
		for _, w := range strings.Split(strings.ToLower(raw), "-") {
			if w == "and" || w == "" {
				continue
			}
			if v, ok := numberUnits[w]; ok {
				current += v
				seen = true
				continue
			}
			if v, ok := numberTens[w]; ok {
				current += v
				seen = true
				continue
			}
			if scale, ok := numberScales[w]; ok {
				if scale == 100 {
					if current == 0 {
						current = 1
					}
					current *= 100
				} else {
					if current == 0 {
						current = 1
					}
					total += current * scale
					current = 0
				}
				seen = true
				continue
			}
			return 0, false
		}
	}
	if !seen {
		return 0, false
	}
	return total + current, true
}

// parseKSuffix resolves shorthand like "10k" or "2.5k" to its value.
func parseKSuffix(w string) (float64, bool) {
	if len(w) < 2 {
		return 0, false
	}
	if last := w[len(w)-1]; last != 'k' && last != 'K' {
		return 0, false
	}
	n, err := strconv.ParseFloat(w[:len(w)-1], 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n * 1000, true
}

// wordToken is a whitespace-delimited token with its byte offsets in the
// source text.
type wordToken struct {
	text       string
	start, end int
}

func tokenize(s string) []wordToken {
	var tokens []wordToken
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
			i++
		}
		if i >= len(s) {
			break
		}
		start := i
		for i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != '\n' {
			i++
		}
		tokens = append(tokens, wordToken{text: s[start:i], start: start, end: i})
	}
	return tokens
}

// normalizeNumbers replaces every maximal number-word phrase in text with
// its digit rendering and reports the spans it resolved. Text with no
// number words comes back unchanged.
func normalizeNumbers(text string) (string, []NumberSpan) {
	tokens := tokenize(text)
	var spans []NumberSpan
	var b strings.Builder
	b.Grow(len(text))

	consumed := 0
	i := 0
	for i < len(tokens) {
		lower := strings.ToLower(strings.Trim(tokens[i].text, ".,!?;:"))
		if v, ok := parseKSuffix(lower); ok {
			trimmed := strings.TrimRight(tokens[i].text, ".,!?;:")
			phraseEnd := tokens[i].start + len(trimmed)
			b.WriteString(text[consumed:tokens[i].start])
			b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
			consumed = phraseEnd
			spans = append(spans, NumberSpan{Original: text[tokens[i].start:phraseEnd], Value: v})
			i++
			continue
		}
		if !isNumberWord(lower) {
			i++
			continue
		}

		// Extend the run as far as number words (and interior "and") reach.
		j := i + 1
		for j < len(tokens) {
			w := strings.ToLower(strings.Trim(tokens[j].text, ".,!?;:"))
			if isNumberWord(w) {
				j++
				continue
			}
			if w == "and" && j+1 < len(tokens) && isNumberWord(strings.ToLower(strings.Trim(tokens[j+1].text, ".,!?;:"))) {
				j += 2
				continue
			}
			break
		}

		// The run ends at the last token's word portion; trailing punctuation
		// on the final token stays outside the span.
		lastTok := tokens[j-1]
		trimmed := strings.TrimRight(lastTok.text, ".,!?;:")
		phraseEnd := lastTok.start + len(trimmed)
		phrase := text[tokens[i].start:phraseEnd]

		words := make([]string, 0, j-i)
		for _, tok := range tokens[i:j] {
			words = append(words, strings.Trim(tok.text, ".,!?;:"))
		}
		value, ok := parseNumberWords(words)
		if !ok {
			i++
			continue
		}

		b.WriteString(text[consumed:tokens[i].start])
		b.WriteString(strconv.FormatInt(value, 10))
		consumed = phraseEnd

		spans = append(spans, NumberSpan{Original: phrase, Value: float64(value)})
		i = j
	}
	b.WriteString(text[consumed:])
	return b.String(), spans
}
