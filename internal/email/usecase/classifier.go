package usecase

import (
	"strings"

	emaildomain "ladinglens-backend/internal/email/domain"
)

// Default marker lists. The exact wording is data, not algorithm — deployments
// override both lists via configuration (CLASSIFY_PRE_ALERT_KEYWORDS /
// CLASSIFY_DRAFT_KEYWORDS).
var (
	DefaultPreAlertKeywords = []string{"pre-alert", "pre alert", "prealert", "pré-alerte"}
	DefaultDraftKeywords    = []string{"draft", "b/l draft", "bl draft", "b/l to confirm", "draft bl"}
)

// Classifier assigns an EmailStatus to a cleaned email body by
// case-insensitive substring match against configured marker lists.
// Pure function of its input: no I/O and no generative fallback, so
// classification is instant and free.
type Classifier struct {
	preAlert []string
	draft    []string
}

// NewClassifier builds a classifier from keyword lists. Empty lists fall
// back to the defaults.
func NewClassifier(preAlertKeywords, draftKeywords []string) *Classifier {
	if len(preAlertKeywords) == 0 {
		preAlertKeywords = DefaultPreAlertKeywords
	}
	if len(draftKeywords) == 0 {
		draftKeywords = DefaultDraftKeywords
	}
	return &Classifier{
		preAlert: lowerAll(preAlertKeywords),
		draft:    lowerAll(draftKeywords),
	}
}

// Classify scans the body for status markers. Pre-alert markers take
// precedence over draft markers: a pre-alert notice referencing a draft
// correction is still fundamentally a pre-alert. No markers means UNKNOWN.
func (c *Classifier) Classify(body string) emaildomain.EmailStatus {
	lower := strings.ToLower(body)

	for _, kw := range c.preAlert {
		if strings.Contains(lower, kw) {
			return emaildomain.StatusPreAlert
		}
	}
	for _, kw := range c.draft {
		if strings.Contains(lower, kw) {
			return emaildomain.StatusDraft
		}
	}
	return emaildomain.StatusUnknown
}

func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
