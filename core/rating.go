package core

// StarRating grades a finished game from 1 to 3 using the move-to-pair ratio.
// A ratio up to 1.2 earns three stars, up to 2.0 two stars, anything worse one.
func StarRating(moves, pairs int) int {
	if moves == 0 || pairs <= 0 {
		return 3
	}
	r := float64(moves) / float64(pairs)
	switch {
	case r <= 1.2:
		return 3
	case r <= 2.0:
		return 2
	default:
		return 1
	}
}
