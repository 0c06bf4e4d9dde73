// Package classifier maps a complaint narrative to a (category, sub-category)
// pair. Implementations never fail a turn: any internal problem is logged and
// reported as an empty Classification.
package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

const (
	BackendKeyword = "keyword"
	BackendGemini  = "gemini"
)

// Classifier is the black-box text classifier consumed by the dialogue.
type Classifier interface {
	Classify(ctx context.Context, text string) model.Classification
}

// Func adapts a plain function to Classifier.
type Func func(ctx context.Context, text string) model.Classification

func (f Func) Classify(ctx context.Context, text string) model.Classification {
	return f(ctx, text)
}

// Static always answers with the same labels.
func Static(category, subCategory string) Classifier {
	return Func(func(context.Context, string) model.Classification {
		return model.Classification{Category: category, SubCategory: subCategory}
	})
}

// Fallback asks each classifier in turn and returns the first non-empty verdict.
type Fallback []Classifier

func (f Fallback) Classify(ctx context.Context, text string) model.Classification {
	for _, c := range f {
		if c == nil {
			continue
		}
		if got := c.Classify(ctx, text); !got.Empty() {
			return got
		}
	}
	return model.Classification{}
}

var (
	_ Classifier = Func(nil)
	_ Classifier = Fallback(nil)
	_ Classifier = (*KeywordClassifier)(nil)
	_ Classifier = (*GeminiClassifier)(nil)
)

// New builds the configured backend. The gemini backend falls back to the
// keyword rules whenever the model produces nothing usable.
func New(ctx context.Context, cfg model.ClassifierConfig) (Classifier, error) {
	kw := NewKeywordClassifier()
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendKeyword:
		return kw, nil
	case BackendGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("classifier backend %q requires GEMINI_API_KEY", cfg.Backend)
		}
		cm, err := NewGeminiChatModel(ctx, cfg)
		if err != nil {
			return nil, err
		}
		gc, err := NewGeminiClassifier(ctx, cm, GeminiOptions{
			ModelName:     cfg.Model,
			MinConfidence: cfg.MinConfidence,
			Timeout:       model.DurationOr(cfg.Timeout, defaultTimeout),
		})
		if err != nil {
			return nil, err
		}
		logx.Info().Str("backend", BackendGemini).Str("model", cfg.Model).Msg("Classifier ready")
		return Fallback{gc, kw}, nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cfg.Backend)
	}
}
