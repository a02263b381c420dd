package figure

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
)

// NiceTicks returns the labelled tick positions gonum/plot picks for a
// linear axis covering [lo, hi].
func NiceTicks(lo, hi float64) []float64 {
	if !finite(lo) || !finite(hi) || hi <= lo {
		return nil
	}
	return majorTicks(plot.DefaultTicks{}.Ticks(lo, hi), lo, hi)
}

// LogTicks returns the labelled decades inside [lo, hi] for a log axis.
func LogTicks(lo, hi float64) []float64 {
	if !finite(lo) || !finite(hi) || lo <= 0 || hi <= lo {
		return nil
	}
	return majorTicks(plot.LogTicks{}.Ticks(lo, hi), lo, hi)
}

// majorTicks keeps the labelled ticks inside [lo, hi], in ascending order.
func majorTicks(ticks []plot.Tick, lo, hi float64) []float64 {
	eps := (hi - lo) * 1e-9
	var out []float64
	for _, t := range ticks {
		if t.IsMinor() || t.Value < lo-eps || t.Value > hi+eps {
			continue
		}
		out = append(out, t.Value)
	}
	return out
}

// FormatTick renders a tick value compactly.
func FormatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	if a := math.Abs(v); a >= 1e5 || a < 1e-4 {
		return strconv.FormatFloat(v, 'e', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', 3, 64)
}
