package usecase

import (
	"testing"

	emaildomain "ladinglens-backend/internal/email/domain"
)

func TestClassifyPreAlert(t *testing.T) {
	c := NewClassifier(nil, nil)

	bodies := []string{
		"Pre-Alert: shipment ex Shanghai, docs attached",
		"please find the PRE ALERT for booking 4711",
		"prealert attached for your reference",
	}
	for _, body := range bodies {
		if got := c.Classify(body); got != emaildomain.StatusPreAlert {
			t.Errorf("Classify(%q) = %s, want pre_alert", body, got)
		}
	}
}

func TestClassifyDraft(t *testing.T) {
	c := NewClassifier(nil, nil)

	if got := c.Classify("Please review the attached B/L draft and confirm"); got != emaildomain.StatusDraft {
		t.Errorf("got %s, want draft", got)
	}
}

func TestClassifyPreAlertWinsOverDraft(t *testing.T) {
	c := NewClassifier(nil, nil)

	// A pre-alert that references a draft correction is still a pre-alert,
	// regardless of which marker appears first.
	bodies := []string{
		"Pre-Alert for shipment X. The draft we sent earlier is superseded.",
		"We corrected the draft as requested. Pre-Alert attached.",
	}
	for _, body := range bodies {
		if got := c.Classify(body); got != emaildomain.StatusPreAlert {
			t.Errorf("Classify(%q) = %s, want pre_alert", body, got)
		}
	}
}

func TestClassifyUnknown(t *testing.T) {
	c := NewClassifier(nil, nil)

	if got := c.Classify("Invoice for services rendered in July"); got != emaildomain.StatusUnknown {
		t.Errorf("got %s, want unknown", got)
	}
	if got := c.Classify(""); got != emaildomain.StatusUnknown {
		t.Errorf("empty body: got %s, want unknown", got)
	}
}

func TestClassifyCustomKeywords(t *testing.T) {
	c := NewClassifier([]string{"avis d'arrivée"}, []string{"projet de connaissement"})

	if got := c.Classify("Veuillez trouver l'avis d'arrivée ci-joint"); got != emaildomain.StatusPreAlert {
		t.Errorf("got %s, want pre_alert", got)
	}
	// Default keywords must not apply once overridden.
	if got := c.Classify("draft attached"); got != emaildomain.StatusUnknown {
		t.Errorf("got %s, want unknown with overridden keywords", got)
	}
}
