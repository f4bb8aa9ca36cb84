// Package markdown turns assistant replies into speakable prose and into
// safe HTML for the chat pane.
package markdown

import (
	"regexp"
	"strings"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

// Order matters: code goes first so markers inside it never survive as prose.
var rules = []rule{
	{regexp.MustCompile("(?s)```.*?```"), ""},
	{regexp.MustCompile("`[^`]*`"), ""},
	{regexp.MustCompile(`(?m)^#{1,6}\s*`), ""},
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "${1}"},
	{regexp.MustCompile(`__(.*?)__`), "${1}"},
	{regexp.MustCompile(`\*(.*?)\*`), "${1}"},
	{regexp.MustCompile(`_(.*?)_`), "${1}"},
}

// Sanitize strips fenced code blocks, inline code spans, heading markers and
// paired bold/italic markers, then trims surrounding whitespace.
//
// The passes are repeated until nothing changes, which makes Sanitize
// idempotent. Every pass only deletes characters, so the loop terminates.
func Sanitize(text string) string {
	for {
		next := pass(text)
		if next == text {
			return next
		}
		text = next
	}
}

func pass(text string) string {
	for _, r := range rules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return strings.TrimSpace(text)
}
