package tiling

// Seen records the words already discovered during enumeration.
type Seen interface {
	// Contains reports whether word was added before.
	Contains(word string) bool
	// Add records word.
	Add(word string)
	// Len is the number of recorded words.
	Len() int
}

// NewSeen returns an empty Seen for the strategy. Unknown strategies fall
// back to SeenSet.
func NewSeen(s SeenStrategy) Seen {
	if s == SeenLinear {
		return &linearSeen{}
	}
	return setSeen{}
}

// linearSeen compares against every known word, byte for byte.
type linearSeen struct {
	words []string
}

func (s *linearSeen) Contains(word string) bool {
	for _, w := range s.words {
		if w == word {
			return true
		}
	}
	return false
}

func (s *linearSeen) Add(word string) { s.words = append(s.words, word) }

func (s *linearSeen) Len() int { return len(s.words) }

type setSeen map[string]struct{}

func (s setSeen) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

func (s setSeen) Add(word string) { s[word] = struct{}{} }

func (s setSeen) Len() int { return len(s) }
