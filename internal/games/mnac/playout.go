package mnac

import "math/rand"

// RandomPlayout plays random legal moves until the game is decided, limit
// moves have been made (limit <= 0 means no limit) or no index is accepted.
// It returns the number of moves played. A nil rng uses the shared
// math/rand source.
func RandomPlayout(g *Game, rng *rand.Rand, limit int) int {
	played, _ := RandomPlayoutFunc(g, rng, limit, nil)
	return played
}

// RandomPlayoutFunc is RandomPlayout calling fn with the effect of every
// move. An error from fn stops the playout and is returned.
func RandomPlayoutFunc(g *Game, rng *rand.Rand, limit int, fn func(MoveEffect) error) (int, error) {
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}

	played := 0
	choices := [9]int{0, 1, 2, 3, 4, 5, 6, 7, 8}

	for !g.Over() && (limit <= 0 || played < limit) {
		shuffle(len(choices), func(a, b int) {
			choices[a], choices[b] = choices[b], choices[a]
		})

		moved := false
		for _, i := range choices {
			eff, err := g.Play(i)
			if err != nil {
				continue
			}
			moved = true
			played++
			if fn != nil {
				if err := fn(eff); err != nil {
					return played, err
				}
			}
			break
		}
		if !moved {
			return played, nil
		}
	}
	return played, nil
}
