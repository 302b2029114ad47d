package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vietddude/faxroute/internal/core/domain"
)

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) ExtractText(ctx context.Context, raster []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeRedactor struct {
	err   error
	calls int
}

func (f *fakeRedactor) Redact(ctx context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return strings.ReplaceAll(text, "John Smith", "<PERSON>"), nil
}

type fakeAI struct {
	label   string
	err     error
	calls   int
	gotText string
}

func (f *fakeAI) Classify(ctx context.Context, text string, categories []string) (string, error) {
	f.calls++
	f.gotText = text
	return f.label, f.err
}

type fixture struct {
	classifier *Classifier
	extractor  *fakeExtractor
	redactor   *fakeRedactor
	ai         *fakeAI
}

func newFixture(cfg Config, extractor *fakeExtractor, redactor *fakeRedactor, aiClient *fakeAI) *fixture {
	if cfg.Categories == nil {
		cfg.Categories = []string{"Lab Results", "Biologics", "Referrals"}
	}
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = "Uncategorized"
	}
	matcher := NewMatcher(
		map[string]string{"LabCorp": "Lab Results"},
		[]domain.KeywordRule{{Keyword: "Dupixent", Category: "Biologics"}},
	)
	return &fixture{
		classifier: New(cfg, matcher, extractor, redactor, aiClient, nil),
		extractor:  extractor,
		redactor:   redactor,
		ai:         aiClient,
	}
}

func record(sender string) *domain.FaxRecord {
	return domain.NewFaxRecord(domain.FaxSummary{ID: "fax-1", Sender: sender})
}

func TestClassify_SenderFastPath(t *testing.T) {
	f := newFixture(Config{}, &fakeExtractor{text: "anything"}, &fakeRedactor{}, &fakeAI{label: "Referrals"})

	category, method := f.classifier.Classify(context.Background(), record("LabCorp"), nil)
	if category != "Lab Results" || method != domain.MethodSender {
		t.Errorf("Expected sender fast path, got %q via %s", category, method)
	}
	if f.extractor.calls != 0 {
		t.Error("Expected no OCR call on sender fast path")
	}
	if f.ai.calls != 0 {
		t.Error("Expected no AI call on sender fast path")
	}
}

func TestClassify_KeywordShortCircuitsAI(t *testing.T) {
	f := newFixture(Config{}, &fakeExtractor{text: "Patient on Dupixent"}, &fakeRedactor{}, &fakeAI{label: "Referrals"})

	category, method := f.classifier.Classify(context.Background(), record("Unknown"), []byte("tiff"))
	if category != "Biologics" || method != domain.MethodKeyword {
		t.Errorf("Expected keyword match, got %q via %s", category, method)
	}
	if f.ai.calls != 0 {
		t.Error("Expected AI not to be consulted after keyword match")
	}
}

func TestClassify_AIFallback(t *testing.T) {
	f := newFixture(Config{}, &fakeExtractor{text: "unmatched content"}, &fakeRedactor{}, &fakeAI{label: "Referrals"})

	category, method := f.classifier.Classify(context.Background(), record("Unknown"), []byte("tiff"))
	if category != "Referrals" || method != domain.MethodAI {
		t.Errorf("Expected AI classification, got %q via %s", category, method)
	}
}

func TestClassify_AILabelOutsideSet(t *testing.T) {
	// The backend answers with a label that is not in the configured set.
	f := newFixture(Config{}, &fakeExtractor{text: "unmatched content"}, &fakeRedactor{}, &fakeAI{label: "Orthopedics"})

	category, method := f.classifier.Classify(context.Background(), record("Unknown"), []byte("tiff"))
	if category != "Uncategorized" || method != domain.MethodDefault {
		t.Errorf("Expected fallback to default, got %q via %s", category, method)
	}
}

func TestClassify_AIErrorDegradesToDefault(t *testing.T) {
	f := newFixture(Config{}, &fakeExtractor{text: "unmatched content"}, &fakeRedactor{}, &fakeAI{err: errors.New("timeout")})

	category, method := f.classifier.Classify(context.Background(), record("Unknown"), []byte("tiff"))
	if category != "Uncategorized" || method != domain.MethodDefault {
		t.Errorf("Expected default on AI error, got %q via %s", category, method)
	}
}

func TestClassify_PrivacyModeRedactsBeforeAI(t *testing.T) {
	f := newFixture(Config{PrivacyMode: true},
		&fakeExtractor{text: "Patient John Smith, unmatched content"},
		&fakeRedactor{},
		&fakeAI{label: "Referrals"})

	f.classifier.Classify(context.Background(), record("Unknown"), []byte("tiff"))
	if f.redactor.calls != 1 {
		t.Fatalf("Expected one redaction call, got %d", f.redactor.calls)
	}
	if strings.Contains(f.ai.gotText, "John Smith") {
		t.Error("Raw PHI reached the AI boundary in privacy mode")
	}
	if !strings.Contains(f.ai.gotText, "<PERSON>") {
		t.Errorf("Expected redacted text at AI boundary, got %q", f.ai.gotText)
	}
}

func TestClassify_RedactionFailureAbortsAIPath(t *testing.T) {
	f := newFixture(Config{PrivacyMode: true},
		&fakeExtractor{text: "Patient John Smith, unmatched content"},
		&fakeRedactor{err: errors.New("analyzer down")},
		&fakeAI{label: "Referrals"})

	category, method := f.classifier.Classify(context.Background(), record("Unknown"), []byte("tiff"))
	if category != "Uncategorized" || method != domain.MethodDefault {
		t.Errorf("Expected default after redaction failure, got %q via %s", category, method)
	}
	if f.ai.calls != 0 {
		t.Error("AI must not be called when redaction fails")
	}
}

func TestClassify_OCRFailureProceeds(t *testing.T) {
	f := newFixture(Config{}, &fakeExtractor{err: errors.New("unreadable image")}, &fakeRedactor{}, &fakeAI{label: "Referrals"})

	category, method := f.classifier.Classify(context.Background(), record("Unknown"), []byte("tiff"))
	// Empty text still reaches the AI stage by default.
	if category != "Referrals" || method != domain.MethodAI {
		t.Errorf("Expected AI fallback after OCR failure, got %q via %s", category, method)
	}
	if f.ai.gotText != "" {
		t.Errorf("Expected empty text at AI boundary, got %q", f.ai.gotText)
	}
}

func TestClassify_EmptyTextToDefault(t *testing.T) {
	f := newFixture(Config{EmptyTextToDefault: true},
		&fakeExtractor{text: ""}, &fakeRedactor{}, &fakeAI{label: "Referrals"})

	category, method := f.classifier.Classify(context.Background(), record("Unknown"), []byte("tiff"))
	if category != "Uncategorized" || method != domain.MethodDefault {
		t.Errorf("Expected empty-text default, got %q via %s", category, method)
	}
	if f.ai.calls != 0 {
		t.Error("Expected no AI call when empty text resolves to default")
	}
}
