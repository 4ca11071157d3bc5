package emojimaker

import (
	"math/rand"
)

// Shuffle picks a uniformly distributed random selection. For every category
// the index is drawn from [0, lengths[c]), extended with None when
// allowNone[c] is set. A category without layers always resolves to None.
func Shuffle(rnd *rand.Rand, lengths [NumCategories]int, allowNone [NumCategories]bool) Selection {
	s := EmptySelection()
	for _, c := range Categories {
		n := lengths[c]
		if n <= 0 {
			continue
		}
		if allowNone[c] {
			// One extra slot stands for None.
			s[c] = rnd.Intn(n+1) - 1
		} else {
			s[c] = rnd.Intn(n)
		}
	}
	return s
}

// Shuffle returns a random selection of the gallery layers.
// Every category might end up empty, except the head which is always set.
func (g *Gallery) Shuffle(rnd *rand.Rand) Selection {
	allowNone := [NumCategories]bool{true, true, true, true, true}
	allowNone[Head] = false
	return Shuffle(rnd, g.Lengths(), allowNone)
}
