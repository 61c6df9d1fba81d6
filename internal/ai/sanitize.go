package ai

import (
	"regexp"
	"strings"
)

var (
	fenceOpenRe   = regexp.MustCompile("```\\w*\\n?")
	lineSplitRe   = regexp.MustCompile(`\r?\n`)
	proseOpenerRe = regexp.MustCompile(`(?i)^(It seems|It looks|Here is|Here's|Note:|Explanation:|Your code|The code|This|Sure|I've|I have|Certainly|Of course)`)
	codeCharRe    = regexp.MustCompile(`[{}\[\]();=><]`)
	keywordRe     = regexp.MustCompile(`\b(return|function|const|let|var|if|else|for|while|class|import|export|async|await)\b`)
	structureRe   = regexp.MustCompile(`[{};=()\[\]]`)
	lineCommentRe = regexp.MustCompile(`\s*//.*$`)
	blockComRe    = regexp.MustCompile(`/\*.*?\*/`)
)

// Sanitize reduces a model reply to one line of code. Models tend to wrap
// completions in fences and prose; the reply is never trusted verbatim.
func Sanitize(reply string) string {
	cleaned := fenceOpenRe.ReplaceAllString(reply, "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	var kept []string
	for _, line := range lineSplitRe.Split(cleaned, -1) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if proseOpenerRe.MatchString(trimmed) {
			continue
		}
		if !codeCharRe.MatchString(trimmed) && !keywordRe.MatchString(trimmed) {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return ""
	}

	code := ""
	for _, line := range kept {
		if structureRe.MatchString(line) {
			code = strings.TrimSpace(line)
			break
		}
	}
	if code == "" {
		code = strings.TrimSpace(kept[0])
	}

	code = lineCommentRe.ReplaceAllString(code, "")
	code = blockComRe.ReplaceAllString(code, "")
	return strings.TrimSpace(code)
}
