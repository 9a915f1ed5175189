package grading

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// Stats summarises a set of grades.
type Stats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

func Summary(grades map[string]int) (Stats, error) {
	if len(grades) == 0 {
		return Stats{}, nil
	}
	values := make([]int, 0, len(grades))
	for _, g := range grades {
		values = append(values, g)
	}
	data := stats.LoadRawData(values)

	s := Stats{Count: len(values)}
	var err error
	if s.Min, err = data.Min(); err != nil {
		return Stats{}, errors.Wrap(err, "min")
	}
	if s.Max, err = data.Max(); err != nil {
		return Stats{}, errors.Wrap(err, "max")
	}
	if s.Mean, err = data.Mean(); err != nil {
		return Stats{}, errors.Wrap(err, "mean")
	}
	if s.Median, err = data.Median(); err != nil {
		return Stats{}, errors.Wrap(err, "median")
	}
	if s.P90, err = data.Percentile(90); err != nil {
		return Stats{}, errors.Wrap(err, "percentile")
	}
	return s, nil
}
