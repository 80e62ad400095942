package segment

import "math"

// DefaultWeatherDifficulty yields a 1.0x multiplier when a session supplies
// no weather data.
const DefaultWeatherDifficulty = 5

// ScoreInput carries the aggregates of one segment visit.
type ScoreInput struct {
	CatchCount        int
	TotalWeight       float64
	BiggestFish       float64
	SpeciesDiversity  int
	WeatherDifficulty float64
}

// CalculateEffortScore converts one segment visit into an integer score.
// Each dimension is capped before summation so no single dimension can
// saturate the score; the theoretical maximum is round(90 * 1.5) = 135.
//
//	catch count       -> 0-30 points
//	total weight      -> 0-25 points
//	biggest fish      -> 0-20 points
//	species diversity -> 0-15 points
//	weather           -> 0.5x-1.5x multiplier
func CalculateEffortScore(in ScoreInput) int {
	score := 0.0

	score += math.Min(float64(in.CatchCount)*3, 30)
	score += math.Min(in.TotalWeight*2.5, 25)
	score += math.Min(in.BiggestFish*4, 20)
	score += math.Min(float64(in.SpeciesDiversity)*5, 15)

	weatherMultiplier := 0.5 + in.WeatherDifficulty/10
	score *= weatherMultiplier

	if score < 0 {
		return 0
	}
	return int(math.Round(score))
}
