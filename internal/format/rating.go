// Package format holds small display helpers shared by the server's
// discovery listing and the client's onboarding and rating views.
package format

// RatedEntry is anything carrying an optional 1–5 rating.
type RatedEntry struct {
	Rating *int `json:"rating"`
}

// CalculateAverageRating returns the mean of the non-nil ratings in entries,
// or defaultValue when there are none.
func CalculateAverageRating(entries []RatedEntry, defaultValue float64) float64 {
	var sum, count int
	for _, e := range entries {
		if e.Rating == nil {
			continue
		}
		sum += *e.Rating
		count++
	}
	if count == 0 {
		return defaultValue
	}
	return float64(sum) / float64(count)
}

// CountRated returns how many entries carry a rating.
func CountRated(entries []RatedEntry) int {
	n := 0
	for _, e := range entries {
		if e.Rating != nil {
			n++
		}
	}
	return n
}
