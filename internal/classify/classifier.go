// Package classify implements the multi-stage classification decision chain:
// known-sender fast path, OCR text extraction, keyword rule matching,
// optional PHI redaction, and the AI classification fallback. The first
// applicable stage determines the outcome.
package classify

import (
	"context"
	"log/slog"

	"github.com/vietddude/faxroute/internal/core/domain"
	"github.com/vietddude/faxroute/internal/infra/ai"
	"github.com/vietddude/faxroute/internal/infra/ocr"
	"github.com/vietddude/faxroute/internal/infra/redact"
	"github.com/vietddude/faxroute/internal/metrics"
)

// Config holds the immutable decision-chain settings.
type Config struct {
	Categories      []string
	DefaultCategory string
	PrivacyMode     bool
	// EmptyTextToDefault short-circuits faxes with empty OCR output straight
	// to the default category instead of consulting the AI backend.
	EmptyTextToDefault bool
}

// Classifier orchestrates the decision chain for one fax. It never fails:
// every fax resolves to a category from the configured set or the default.
type Classifier struct {
	cfg         Config
	matcher     *Matcher
	extractor   ocr.Extractor
	redactor    redact.Redactor
	ai          ai.Classifier
	categorySet map[string]struct{}
	log         *slog.Logger
}

// New creates a classifier. redactor may be nil when privacy mode is off;
// aiClient may be nil when no backend is configured, in which case the AI
// stage resolves to the default category.
func New(cfg Config, matcher *Matcher, extractor ocr.Extractor, redactor redact.Redactor, aiClient ai.Classifier, log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	categorySet := make(map[string]struct{}, len(cfg.Categories))
	for _, c := range cfg.Categories {
		categorySet[c] = struct{}{}
	}
	return &Classifier{
		cfg:         cfg,
		matcher:     matcher,
		extractor:   extractor,
		redactor:    redactor,
		ai:          aiClient,
		categorySet: categorySet,
		log:         log,
	}
}

// Classify resolves the category for a fax. raster is the scanned image for
// OCR; it is only consulted when the sender fast path does not match.
func (c *Classifier) Classify(ctx context.Context, rec *domain.FaxRecord, raster []byte) (string, domain.ClassificationMethod) {
	category, method := c.resolve(ctx, rec, raster)
	metrics.Classifications.WithLabelValues(string(method)).Inc()
	return category, method
}

func (c *Classifier) resolve(ctx context.Context, rec *domain.FaxRecord, raster []byte) (string, domain.ClassificationMethod) {
	log := c.log.With("fax_id", rec.ID)

	// 1. Known-sender fast path: no OCR, no redaction, no AI call.
	if category, ok := c.matcher.MatchSender(rec.Sender); ok {
		log.Info("classify.sender_match", "sender", rec.Sender, "category", category)
		return category, domain.MethodSender
	}

	// 2. OCR extraction. Failure degrades to empty text rather than aborting.
	text, err := c.extractor.ExtractText(ctx, raster)
	if err != nil {
		log.Warn("classify.ocr_failed", "error", err)
		text = ""
	}

	// 3. Keyword rules short-circuit the AI call entirely.
	if category, ok := c.matcher.MatchKeywords(text); ok {
		log.Info("classify.keyword_match", "category", category)
		return category, domain.MethodKeyword
	}

	if text == "" && c.cfg.EmptyTextToDefault {
		log.Warn("classify.empty_text", "category", c.cfg.DefaultCategory)
		return c.cfg.DefaultCategory, domain.MethodDefault
	}

	// 4. Redaction before the text leaves the process boundary. A redaction
	// failure aborts the AI path; raw text must never leak.
	if c.cfg.PrivacyMode {
		redacted, err := c.redactor.Redact(ctx, text)
		if err != nil {
			log.Error("classify.redaction_failed", "error", err, "category", c.cfg.DefaultCategory)
			return c.cfg.DefaultCategory, domain.MethodDefault
		}
		text = redacted
	}

	// 5. AI fallback, constrained to the configured label set.
	if c.ai == nil {
		log.Warn("classify.no_ai_backend", "category", c.cfg.DefaultCategory)
		return c.cfg.DefaultCategory, domain.MethodDefault
	}
	label, err := c.ai.Classify(ctx, text, c.cfg.Categories)
	if err != nil {
		log.Error("classify.ai_failed", "error", err, "category", c.cfg.DefaultCategory)
		return c.cfg.DefaultCategory, domain.MethodDefault
	}
	if _, ok := c.categorySet[label]; !ok {
		// The system never invents categories.
		log.Warn("classify.ai_label_outside_set", "label", label, "category", c.cfg.DefaultCategory)
		return c.cfg.DefaultCategory, domain.MethodDefault
	}

	log.Info("classify.ai_match", "category", label)
	return label, domain.MethodAI
}
