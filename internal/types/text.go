package types

import "strings"

// WordCount returns the number of whitespace-separated words in the trimmed text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
