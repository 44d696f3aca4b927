// Package classifier asks a language model which productivity category a
// website domain belongs to.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"productivity-pal-be/internal/model"
)

var (
	ErrEmptyResponse = errors.New("classifier: empty response")
	ErrUnrecognized  = errors.New("classifier: unrecognized category")
	ErrDisabled      = errors.New("classifier: AI classification disabled")
)

type Classifier interface {
	Classify(ctx context.Context, domain string) (model.Category, error)
}

// BuildPrompt renders the classification instruction for domain.
func BuildPrompt(domain string) string {
	return fmt.Sprintf(`Analyze the website domain "%s" and categorize it as either "productive", "neutral", or "unproductive" for work/study purposes. Only respond with one of these three words. Consider:
- Productive: Educational, work-related, or skill-building websites
- Unproductive: Entertainment, social media, or distracting websites
- Neutral: News, reference, or utility websites`, domain)
}

// ParseResponse maps free model text onto a category. "unproductive" is
// matched first because it contains "productive".
func ParseResponse(text string) (model.Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return "", ErrEmptyResponse
	}
	switch {
	case strings.Contains(normalized, "unproductive"):
		return model.CategoryUnproductive, nil
	case strings.Contains(normalized, "productive"):
		return model.CategoryProductive, nil
	case strings.Contains(normalized, "neutral"):
		return model.CategoryNeutral, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnrecognized, normalized)
}

// Disabled is used when no AI provider is configured.
type Disabled struct{}

func (Disabled) Classify(context.Context, string) (model.Category, error) {
	return "", ErrDisabled
}
