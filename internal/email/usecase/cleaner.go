package usecase

import (
	"regexp"
	"strings"
)

// Quoted-reply and signature boundaries. These intentionally anchor on
// explicit markers only; when a boundary is ambiguous we keep the text,
// since truncating genuine content is worse than leaving a quote behind.
// The reply marker swallows only its own line and the ">"-quoted block
// under it, so new content written below a quote survives.
var (
	onWrotePattern     = regexp.MustCompile(`(?i)\bOn\s+[^\n]*wrote:[^\n]*(?:\n+\s*>[^\n]*)*`)
	originalMsgPattern = regexp.MustCompile(`(?i)-+\s*Original Message\s*-+[\s\S]*`)
	fromHeaderPattern  = regexp.MustCompile(`(?i)\n\s*From:.*[\r\n]+\s*(?:Sent|Date):.*[\s\S]*`)
	sentFromPattern    = regexp.MustCompile(`(?i)\n\s*Sent from my.*`)
	blankRunsPattern   = regexp.MustCompile(`\n{3,}`)
)

// CleanBody strips quoted replies, forwarded-message blocks and trailing
// mobile signatures from a raw email body, leaving only the newest content.
func CleanBody(raw string) string {
	if raw == "" {
		return ""
	}

	cleaned := raw

	for _, sep := range []string{"-----Original Message-----", "----- Original Message -----"} {
		if idx := strings.Index(cleaned, sep); idx >= 0 {
			cleaned = cleaned[:idx]
		}
	}

	cleaned = onWrotePattern.ReplaceAllString(cleaned, "")
	cleaned = originalMsgPattern.ReplaceAllString(cleaned, "")
	cleaned = fromHeaderPattern.ReplaceAllString(cleaned, "")
	cleaned = sentFromPattern.ReplaceAllString(cleaned, "")
	cleaned = blankRunsPattern.ReplaceAllString(cleaned, "\n\n")

	return strings.TrimSpace(cleaned)
}
