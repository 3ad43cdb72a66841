package util

func MaxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func CopyIntSlice(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}

func CopyFloatSlice(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

func CopyStringIntMap(m map[string]int) map[string]int {
	out := make(map[string]int)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MovingAverage smooths s over a trailing window of the given size.
func MovingAverage(s []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(s))
	sum := float64(0)
	for i, v := range s {
		sum += v
		if i >= window {
			sum -= s[i-window]
			out[i] = sum / float64(window)
		} else {
			out[i] = sum / float64(i+1)
		}
	}
	return out
}
