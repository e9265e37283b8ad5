package draft

// SnakeSlot resolves a 1-based pick number to its 1-based round and slot.
// Odd rounds visit slots 1..teamCount, even rounds visit them in reverse.
func SnakeSlot(pickNumber, teamCount int) (round, slot int) {
	if pickNumber < 1 || teamCount < 1 {
		return 0, 0
	}

	round = (pickNumber-1)/teamCount + 1
	posInRound := (pickNumber - 1) % teamCount
	if round%2 == 0 {
		return round, teamCount - posInRound
	}
	return round, posInRound + 1
}

func TotalPicks(teamCount, rounds int) int {
	return teamCount * rounds
}
