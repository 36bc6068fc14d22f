package pipeline

import "regexp"

// Compress runs of 3+ newlines to a single blank line.
var multipleBlankLines = regexp.MustCompile(`\n{3,}`)

// CompressBlankLines replaces every run of three or more newlines with two.
// Applying it twice yields the same result as applying it once.
func CompressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}
