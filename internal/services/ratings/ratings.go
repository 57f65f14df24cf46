package ratings

// Compute derives a title's rating from its current review scores as an
// unrounded arithmetic mean. It returns nil when there are no reviews:
// "unrated" is distinct from any real rating, since scores start at 1.
func Compute(scores []int) *float64 {
	if len(scores) == 0 {
		return nil
	}
	var sum int
	for _, score := range scores {
		sum += score
	}
	rating := float64(sum) / float64(len(scores))
	return &rating
}
