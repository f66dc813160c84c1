package interpret

import (
	"sort"
	"strings"
)

// Matching thresholds. An order word only anchors a candidate once it shares
// minCharsFirstWord characters with a catalog name word (or the whole word,
// for shorter names like "Ham"), and a candidate only survives when enough
// consecutive name words and total characters matched. The two-stage filter
// keeps one-off prefix collisions on common short words out of the results.
const (
	minWords          = 2
	minCharsFirstWord = 3
	minCharsTotal     = 5
)

// Entry is one catalog row offered to the matcher.
type Entry struct {
	Code string
	Name string
}

// Candidate is an accepted match. Words and Chars rank it; Part and Word
// locate the first matched order word so callers can inspect its neighbours
// within the same comma segment.
type Candidate struct {
	Entry Entry
	Words int // matched name words
	Chars int // total matched characters
	Part  int // comma segment index
	Word  int // first matched word index within the segment
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// FindMatches scans the order text for catalog entries. The text is split on
// commas into segments; within a segment, a candidate is seeded wherever an
// order word shares a sufficient prefix with a name word, then extended
// forward over the remaining name words at the corresponding order-word
// offsets. Results are sorted by (Words, Chars) descending and nothing else;
// ties keep catalog order.
func FindMatches(order string, catalog []Entry) []Candidate {
	return findMatches(order, catalog, minWords, minCharsFirstWord, minCharsTotal)
}

func findMatches(order string, catalog []Entry, minWords, minCharsFirstWord, minCharsTotal int) []Candidate {
	var found []Candidate

	parts := strings.Split(order, ",")
	for partIndex, part := range parts {
		orderWords := Normalize(strings.TrimSpace(part))
		for _, entry := range catalog {
			nameWords := Normalize(entry.Name)
			nameLen := 0
			for _, w := range nameWords {
				nameLen += len(w)
			}
			for o, orderWord := range orderWords {
				for n, nameWord := range nameWords {
					anchor := commonPrefixLen(orderWord, nameWord)
					if anchor < min(minCharsFirstWord, len(nameWord)) {
						continue
					}
					words, chars := 0, 0
					for nn, nextNameWord := range nameWords[n:] {
						if o+nn >= len(orderWords) {
							break
						}
						if p := commonPrefixLen(nextNameWord, orderWords[o+nn]); p > 0 {
							words++
							chars += p
						}
					}
					if words < min(minWords, len(nameWords)) {
						continue
					}
					if chars < min(minCharsTotal, nameLen) {
						continue
					}
					found = append(found, Candidate{
						Entry: entry,
						Words: words,
						Chars: chars,
						Part:  partIndex,
						Word:  o,
					})
				}
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Words != found[j].Words {
			return found[i].Words > found[j].Words
		}
		return found[i].Chars > found[j].Chars
	})
	return found
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
