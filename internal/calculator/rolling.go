package calculator

import "math"

// window is a fixed-capacity FIFO of the most recent values with running sums.
type window struct {
	size  int
	queue []float64
	sum   float64
	sumSq float64
}

func newWindow(size int) *window {
	return &window{size: size, queue: make([]float64, 0, size+1)}
}

func (w *window) push(v float64) {
	w.queue = append(w.queue, v)
	w.sum += v
	w.sumSq += v * v
	if len(w.queue) > w.size {
		old := w.queue[0]
		w.queue = w.queue[1:]
		w.sum -= old
		w.sumSq -= old * old
	}
}

// RollingMean returns the mean of each trailing window. Positions before
// window-1 are NaN.
func RollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	w := newWindow(window)
	for i, v := range values {
		w.push(v)
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = w.sum / float64(window)
	}
	return out
}

// RollingStd returns the population standard deviation of each trailing
// window. Positions before window-1 are NaN.
func RollingStd(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	w := newWindow(window)
	for i, v := range values {
		w.push(v)
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		mean := w.sum / float64(window)
		variance := w.sumSq/float64(window) - mean*mean
		if variance < 0 {
			variance = 0
		}
		out[i] = math.Sqrt(variance)
	}
	return out
}

// RollingSum returns the sum of each trailing window. Positions before
// window-1 are NaN.
func RollingSum(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	w := newWindow(window)
	for i, v := range values {
		w.push(v)
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = w.sum
	}
	return out
}

// PctChange returns the fractional change from each value to the next.
// The first position and any change from a zero value are 0.
func PctChange(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		out[i] = (values[i] - prev) / prev
	}
	return out
}

// EMA returns the exponential moving average with alpha = 2/(span+1),
// seeded with the first value. Every position is defined.
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2 / (float64(span) + 1)
	prev := values[0]
	out[0] = prev
	for i := 1; i < len(values); i++ {
		// prev + alpha*(v-prev) keeps a constant series exactly constant.
		prev += alpha * (values[i] - prev)
		out[i] = prev
	}
	return out
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Last returns the final element, or 0 for an empty slice.
func Last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
