package voice

import (
	"regexp"
	"strings"
)

var (
	// envAnnotation matches whisper annotations like "(keyboard clicking)"
	// or "[BLANK_AUDIO]".
	envAnnotation = regexp.MustCompile(`[\(\[][A-Za-z][A-Za-z_\s]*[\)\]]`)
	// timestamp matches prefixes like "[00:00:00.000 --> 00:00:02.000]".
	timestamp = regexp.MustCompile(`\[\d{2}:\d{2}:\d{2}\.\d{3} --> \d{2}:\d{2}:\d{2}\.\d{3}\]`)
	spaces    = regexp.MustCompile(`\s+`)
)

// hallucinations are whole-clip outputs whisper produces from silence.
var hallucinations = map[string]bool{
	"...":                     true,
	"you":                     true,
	"thank you.":              true,
	"thanks for watching!":    true,
	"thank you for watching.": true,
	"bye.":                    true,
	"the end.":                true,
}

// cleanTranscription strips whisper artifacts and collapses whitespace.
// Returns "" for clips that held nothing but noise.
func cleanTranscription(s string) string {
	s = timestamp.ReplaceAllString(s, " ")
	s = envAnnotation.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))
	if hallucinations[strings.ToLower(s)] {
		return ""
	}
	return s
}
