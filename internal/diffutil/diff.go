// Package diffutil renders the change a merge would make to a file.
package diffutil

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/pmezard/go-difflib/difflib"
)

// DefaultStyle is the chroma style used for terminal output.
const DefaultStyle = "monokai"

// ContextLines is the number of unchanged lines shown around each hunk.
const ContextLines = 3

// Unified returns a unified diff from a to b, or "" when they are equal.
func Unified(a, b, fromName, toName string) (string, error) {
	if a == b {
		return "", nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: fromName,
		ToFile:   toName,
		Context:  ContextLines,
	})
	if err != nil {
		return "", fmt.Errorf("computing diff: %w", err)
	}
	return diff, nil
}

// Colorize writes diff to w with 256-color terminal highlighting.
// An unknown style name falls back to chroma's default style.
func Colorize(w io.Writer, diff, style string) error {
	lexer := lexers.Get("diff")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, diff)
	if err != nil {
		return fmt.Errorf("tokenizing diff: %w", err)
	}
	if err := formatter.Format(w, styles.Get(style), iterator); err != nil {
		return fmt.Errorf("formatting diff: %w", err)
	}
	return nil
}

// Write renders diff to w, highlighted when color is set.
func Write(w io.Writer, diff string, color bool) error {
	if diff == "" {
		return nil
	}
	if color {
		return Colorize(w, diff, DefaultStyle)
	}
	_, err := io.WriteString(w, diff)
	return err
}
