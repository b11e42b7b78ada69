package assertions

import (
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified line diff between expected and actual text.
// Removed (expected) lines are red, added (actual) lines are green.
// Colors degrade to plain text when NO_COLOR is set or output is piped.
func Diff(expected, actual string) string {
	unified := difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(unified)
	if err != nil || text == "" {
		return text
	}

	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "@@"):
			lines[i] = cyan(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = red(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = green(line)
		}
	}
	return strings.Join(lines, "\n")
}
