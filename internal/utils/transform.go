package utils

// Transform returns fn applied to every element of ts, in order.
func Transform[T, R any](ts []T, fn func(T) R) []R {
	out := make([]R, 0, len(ts))
	for _, t := range ts {
		out = append(out, fn(t))
	}
	return out
}
