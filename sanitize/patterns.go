package sanitize

import "strings"

// PatternMatch records one suspicious signature hit. MatchedHint carries a
// short, bounded excerpt of the case-folded input for the security log,
// never the full input.
type PatternMatch struct {
	PatternName string
	MatchedHint string
}

const matchHintLen = 24

// signature pairs a pattern name with a case-insensitive needle. The
// catalogue is a defense-in-depth heuristic, not a substitute for output
// encoding by downstream consumers.
type signature struct {
	name   string
	needle string
}

var signatures = []signature{
	{"script_tag", "<script"},
	{"event_handler", "onerror="},
	{"js_scheme", "javascript:"},
	{"sql_union", "union select"},
	{"sql_comment", "'--"},
	{"sql_drop", "drop table"},
	{"sql_or_true", "' or '1'='1"},
	{"path_traversal", "../"},
	{"path_traversal_win", "..\\"},
	{"null_byte", "\x00"},
	{"prompt_injection", "ignore previous instructions"},
	{"prompt_injection", "ignore all previous"},
	{"prompt_injection", "system prompt"},
	{"template_injection", "{{"},
}

// DetectSuspiciousPatterns scans text against the abuse signature catalogue
// and returns every match. The caller decides policy; handlers here reject
// the request and emit a security event.
func DetectSuspiciousPatterns(text string) []PatternMatch {
	lower := strings.ToLower(text)

	var matches []PatternMatch
	for _, sig := range signatures {
		idx := strings.Index(lower, sig.needle)
		if idx < 0 {
			continue
		}
		// The hint is sliced from the folded text; indices into the
		// original are not valid when case folding changes rune widths.
		end := idx + matchHintLen
		if end > len(lower) {
			end = len(lower)
		}
		matches = append(matches, PatternMatch{
			PatternName: sig.name,
			MatchedHint: lower[idx:end],
		})
	}
	return matches
}
