package extract

import (
	"os"
	"regexp"
	"strings"
)

var (
	reSpaceRun  = regexp.MustCompile(`[ \t\r\f\v]+`)
	reBlankLine = regexp.MustCompile(`\n[ \t]*\n+`)
)

// NormalizeText collapses whitespace runs to single spaces, removes blank
// lines, and trims the result. Strategies apply this before computing
// confidence and metadata.
func NormalizeText(text string) string {
	text = reSpaceRun.ReplaceAllString(text, " ")
	text = reBlankLine.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func fileSize(path string) int64 {
	st, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return st.Size()
}
