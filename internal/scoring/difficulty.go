package scoring

import "math"

const (
	difficultyStep     = 0.1
	raiseAbove         = 0.8
	lowerBelow         = 0.4
	difficultyRounding = 1e9
)

// AdaptDifficulty nudges current by one step: up when performance is above
// 0.8, down when below 0.4. The result stays within [0, 1].
func (e *Engine) AdaptDifficulty(current, performance float64) float64 {
	return AdaptDifficulty(current, performance)
}

func AdaptDifficulty(current, performance float64) float64 {
	next := current
	switch {
	case performance > raiseAbove:
		next += difficultyStep
	case performance < lowerBelow:
		next -= difficultyStep
	}

	next = math.Max(0, math.Min(1, next))
	return math.Round(next*difficultyRounding) / difficultyRounding
}
