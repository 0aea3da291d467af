package functional

// Map applies f to every item, keeping order.
func Map[T any, R any](items []T, f func(T) R) []R {
	result := make([]R, len(items))
	for i, v := range items {
		result[i] = f(v)
	}
	return result
}

// Filter keeps the items for which keep returns true. It never returns nil.
func Filter[T any](items []T, keep func(T) bool) []T {
	result := make([]T, 0, len(items))
	for _, v := range items {
		if keep(v) {
			result = append(result, v)
		}
	}
	return result
}
