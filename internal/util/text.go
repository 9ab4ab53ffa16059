package util

import "strings"

// ExtractJSONObject returns the substring from the first '{' to the last
// '}' of s. ok is false when s holds no such span.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}

	var chunks [][]T
	for size > 0 && len(items) > 0 {
		n := min(size, len(items))
		chunks = append(chunks, items[:n:n])
		items = items[n:]
	}

	return chunks
}

// TakeRight returns the last n items (all of them if fewer).
func TakeRight[T any](items []T, n int) []T {
	if n <= 0 {
		return nil
	}
	if n >= len(items) {
		return items
	}
	return items[len(items)-n:]
}
