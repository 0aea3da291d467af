package collectionutils

// Associate transforms a slice of items into a map by applying the transform function to each item.
// The transform function returns a key-value pair for each item, which is then added to the resulting map.
func Associate[T any, K comparable, V any](items []T, transform func(T) (K, V)) map[K]V {
	m := make(map[K]V, len(items))
	for _, item := range items {
		k, v := transform(item)
		m[k] = v
	}

	return m
}

// GroupBy groups a slice of items into a map based on a key selector function.
// The key selector function extracts a key from each item, and the resulting map contains slices of items for each unique key.
func GroupBy[T any, K comparable](items []T, keySelector func(T) K) map[K][]T {
	m := make(map[K][]T)
	for _, item := range items {
		k := keySelector(item)
		m[k] = append(m[k], item)
	}

	return m
}

// GetOrDefault returns the value associated with the given key from the map `m`.
// If the key does not exist in the map, it returns the provided `defaultValue`.
func GetOrDefault[K comparable, T any](m map[K]T, key K, defaultValue T) T {
	v, ok := m[key]
	if !ok {
		return defaultValue
	} else {
		return v
	}
}

// Distinct keeps the first occurrence of every item, preserving order.
func Distinct[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	result := make([]T, 0, len(items))
	for _, item := range items {
		if _, exists := seen[item]; exists {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}

	return result
}

// Difference returns the distinct items of `items` that are not in `exclude`, in the order of `items`.
func Difference[T comparable](items, exclude []T) []T {
	excluded := make(map[T]struct{}, len(exclude))
	for _, item := range exclude {
		excluded[item] = struct{}{}
	}

	result := make([]T, 0)
	for _, item := range Distinct(items) {
		if _, exists := excluded[item]; !exists {
			result = append(result, item)
		}
	}

	return result
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}

	return chunks
}
