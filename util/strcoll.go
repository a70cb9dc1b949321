// Package util provides safe positional access to word slices.
package util

// Get returns the nth element of the slice, or "" if out of bounds.
func Get(n int, words []string) string {
	if n >= 0 && len(words) > n {
		return words[n]
	}
	return ""
}
