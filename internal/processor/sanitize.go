package processor

import (
	"regexp"
	"strings"
)

var (
	boldRe     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe   = regexp.MustCompile(`(^|[^*])\*([^*]+)\*`)
	underRe    = regexp.MustCompile(`(^|[^_])_([^_]+)_`)
	headingRe  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	linkRe     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	codeFence  = regexp.MustCompile("(?s)```[a-zA-Z]*\n?(.*?)```")
	inlineCode = regexp.MustCompile("`([^`]*)`")
	bulletRe   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	ruleRe     = regexp.MustCompile(`(?m)^\s*(\*(\s*\*){2,}|-(\s*-){2,}|_(\s*_){2,})\s*$`)
)

// StripMarkdown flattens model output into plain prose. The oracles speak
// in running text, so any markdown the model sneaks in is formatting noise.
// Safe to apply to already-plain text.
func StripMarkdown(s string) string {
	s = codeFence.ReplaceAllString(s, "$1")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = ruleRe.ReplaceAllString(s, "")
	s = boldRe.ReplaceAllString(s, "$1")
	s = italicRe.ReplaceAllString(s, "$1$2")
	s = underRe.ReplaceAllString(s, "$1$2")
	s = headingRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")
	s = bulletRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
