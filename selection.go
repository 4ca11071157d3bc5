package emojimaker

import (
	"strconv"
	"strings"
)

// None marks a category without any layer.
const None = -1

// Selection holds the chosen gallery index of every category, or None.
// The zero value selects the first entry of every category; use
// DefaultSelection for the initial state of a composer.
type Selection [NumCategories]int

// EmptySelection returns a selection without any layer.
func EmptySelection() Selection {
	var s Selection
	for i := range s {
		s[i] = None
	}
	return s
}

// DefaultSelection returns the initial selection: the first head of the
// gallery as the face base and no other feature.
func DefaultSelection() Selection {
	s := EmptySelection()
	s[Head] = 0
	return s
}

// Get returns the index selected for the category.
func (s Selection) Get(c Category) int {
	if !c.Valid() {
		return None
	}
	return s[c]
}

// With returns a copy of the selection with the category set to idx.
// Values below None are stored as None.
func (s Selection) With(c Category, idx int) Selection {
	if !c.Valid() {
		return s
	}
	if idx < None {
		idx = None
	}
	s[c] = idx
	return s
}

// IsSet reports whether the category has a layer selected.
func (s Selection) IsSet(c Category) bool {
	return s.Get(c) != None
}

// Normalize clamps every index which is not valid for the gallery to None.
func (s Selection) Normalize(g *Gallery) Selection {
	for _, c := range Categories {
		if s[c] < 0 || s[c] >= g.Len(c) {
			s[c] = None
		}
	}
	return s
}

func (s Selection) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, c := range Categories {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(c.Key())
		b.WriteString(":")
		if s[c] == None {
			b.WriteString("none")
		} else {
			b.WriteString(strconv.Itoa(s[c]))
		}
	}
	b.WriteString("}")
	return b.String()
}
