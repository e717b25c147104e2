package weather

import "math"

// Summary condenses a history window into a few headline numbers.
type Summary struct {
	HighestMax   *float64 `json:"highestMax"`
	LowestMin    *float64 `json:"lowestMin"`
	MeanMax      *float64 `json:"meanMax"`
	MeanMin      *float64 `json:"meanMin"`
	Days         int      `json:"days"`
	DaysWithData int      `json:"daysWithData"`
}

// Summarize computes extremes and means over the daily arrays.
// Missing readings are skipped; a day counts as having data when either
// temperature is present.
func Summarize(resp WeatherResponse) Summary {
	var (
		sumMax, sumMin float64
		nMax, nMin     int
		highest        = math.Inf(-1)
		lowest         = math.Inf(1)
		withData       int
	)

	for i := range resp.Daily.Dates {
		var seen bool
		if i < len(resp.Daily.MaxTemps) && resp.Daily.MaxTemps[i] != nil {
			v := *resp.Daily.MaxTemps[i]
			sumMax += v
			nMax++
			highest = math.Max(highest, v)
			seen = true
		}
		if i < len(resp.Daily.MinTemps) && resp.Daily.MinTemps[i] != nil {
			v := *resp.Daily.MinTemps[i]
			sumMin += v
			nMin++
			lowest = math.Min(lowest, v)
			seen = true
		}
		if seen {
			withData++
		}
	}

	s := Summary{Days: len(resp.Daily.Dates), DaysWithData: withData}
	if nMax > 0 {
		s.HighestMax = &highest
		mean := sumMax / float64(nMax)
		s.MeanMax = &mean
	}
	if nMin > 0 {
		s.LowestMin = &lowest
		mean := sumMin / float64(nMin)
		s.MeanMin = &mean
	}
	return s
}
