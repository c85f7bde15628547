package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"provenance-backend/domain/config"
	pkgerrors "provenance-backend/pkg/errors"
)

// Content is the free text of a raw fact or bullet point. It is stored
// exactly as given; regeneration copies it verbatim between layers.
type Content struct {
	text string
}

func NewContent(text string) (Content, error) {
	return NewContentWithConfig(text, config.DefaultDomainConfig())
}

func NewContentWithConfig(text string, cfg *config.DomainConfig) (Content, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if strings.TrimSpace(text) == "" {
		return Content{}, pkgerrors.NewValidationError("content cannot be empty")
	}
	if utf8.RuneCountInString(text) > cfg.MaxContentLength {
		return Content{}, pkgerrors.NewValidationError(
			fmt.Sprintf("content exceeds maximum length of %d characters", cfg.MaxContentLength))
	}
	return Content{text: text}, nil
}

// ContentFromStore rebuilds persisted content without re-validating it.
func ContentFromStore(text string) Content {
	return Content{text: text}
}

func (c Content) String() string { return c.text }

func (c Content) Equals(other Content) bool { return c.text == other.text }
