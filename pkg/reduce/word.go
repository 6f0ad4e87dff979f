package reduce

import (
	"strings"

	"github.com/matzehuels/hypertile/pkg/errors"
)

// Move symbols.
const (
	Up    = 'u'
	Down  = 'd'
	Left  = 'l'
	Right = 'r'
)

// Alphabet lists every symbol a word may contain.
const Alphabet = "udlr"

// Origin is the word of the tile the tiling grows from.
const Origin = ""

// Validate reports an INVALID_WORD error naming the first symbol outside
// the alphabet. Symbols are case-sensitive.
func Validate(word string) error {
	for i := 0; i < len(word); i++ {
		if strings.IndexByte(Alphabet, word[i]) < 0 {
			return errors.New(errors.ErrCodeInvalidWord, "invalid symbol %q at position %d in %q (want one of %s)", word[i], i, word, Alphabet)
		}
	}
	return nil
}

// Depth is the number of 'u' moves in word, the ring of the tiling the word
// reaches at most.
func Depth(word string) int {
	return strings.Count(word, "u")
}

// Display renders the origin visibly for logs and tables.
func Display(word string) string {
	if word == Origin {
		return "(origin)"
	}
	return word
}
