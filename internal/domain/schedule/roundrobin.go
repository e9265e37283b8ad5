package schedule

// bye pads odd member lists. It never appears in generated pairings.
const bye = "\x00bye"

// RoundRobin builds a single round-robin calendar with the circle method.
// Every member meets every other member exactly once. With an odd member
// count each week has one member sitting out.
func RoundRobin(memberIDs []string) [][]Pairing {
	ids := append([]string(nil), memberIDs...)
	if len(ids) < 2 {
		return nil
	}
	if len(ids)%2 == 1 {
		ids = append(ids, bye)
	}

	n := len(ids)
	rounds := n - 1
	half := n / 2

	weeks := make([][]Pairing, 0, rounds)
	for r := 0; r < rounds; r++ {
		pairs := make([]Pairing, 0, half)
		for i := 0; i < half; i++ {
			a := ids[i]
			b := ids[n-1-i]
			if a == bye || b == bye {
				continue
			}
			if r%2 == 0 {
				pairs = append(pairs, Pairing{Home: a, Away: b})
			} else {
				pairs = append(pairs, Pairing{Home: b, Away: a})
			}
		}
		weeks = append(weeks, pairs)

		// keep the first entry fixed and rotate the rest one step clockwise
		last := ids[n-1]
		copy(ids[2:], ids[1:n-1])
		ids[1] = last
	}

	return weeks
}
