package scoring

// ComputeGameScore converts a raw cumulative total into the score earned for a
// single game.
//
// previousTotal is the raw input total recorded for the player's previous game
// in the same round, or nil if no previous game was scored. The branch is on
// presence, not value: a recorded previous total of 0 is still an anchor.
//
// A rejoin earns nothing for this step; the current total only becomes the
// anchor for the next game. The result is never clamped, so an inconsistent
// pair of inputs produces a visible negative delta instead of a hidden one.
func ComputeGameScore(currentTotal int, previousTotal *int, isRejoin bool) int {
	if isRejoin {
		return 0
	}
	if previousTotal == nil {
		return currentTotal
	}
	return currentTotal - *previousTotal
}
