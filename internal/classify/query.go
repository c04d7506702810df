// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrTextEmpty indicates missing or whitespace-only query text.
	ErrTextEmpty = errors.New("query text is empty")

	// ErrTextTooShort indicates query text under 5 characters.
	ErrTextTooShort = errors.New("query text too short (minimum 5 characters)")

	// ErrTextTooLong indicates query text over 2000 characters.
	ErrTextTooLong = errors.New("query text too long (maximum 2000 characters)")

	// ErrTextNoLetters indicates query text with no alphabetic content.
	ErrTextNoLetters = errors.New("query text contains no alphabetic characters")
)

// =============================================================================
// QUERY INPUT
// =============================================================================

// QueryInput is a validated support query. Construct with NewQueryInput;
// a QueryInput built by the constructor always satisfies the length and
// content constraints.
type QueryInput struct {
	Text      string            `json:"text" validate:"required,min=5,max=2000,hasletter"`
	UserID    string            `json:"user_id,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// min/max cover length; hasletter rejects purely numeric or symbolic
	// input like "12345" or "?????".
	_ = v.RegisterValidation("hasletter", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if unicode.IsLetter(r) {
				return true
			}
		}
		return false
	})
	return v
}

// NewQueryInput builds a QueryInput from raw text, trimming surrounding
// whitespace and validating length and content.
func NewQueryInput(text string) (QueryInput, error) {
	q := QueryInput{Text: strings.TrimSpace(text)}
	if err := q.Validate(); err != nil {
		return QueryInput{}, err
	}
	return q, nil
}

// WithUser attaches a user identifier.
func (q QueryInput) WithUser(userID string) QueryInput {
	q.UserID = userID
	return q
}

// WithSession attaches a session identifier.
func (q QueryInput) WithSession(sessionID string) QueryInput {
	q.SessionID = sessionID
	return q
}

// WithMetadata attaches arbitrary metadata carried through to the result.
func (q QueryInput) WithMetadata(meta map[string]string) QueryInput {
	q.Metadata = meta
	return q
}

// Validate checks the length and content constraints on Text. Deserialized
// inputs (e.g. from an HTTP request body) should be validated before
// classification.
func (q *QueryInput) Validate() error {
	q.Text = strings.TrimSpace(q.Text)

	err := validate.Struct(q)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate query: %w", err)
	}

	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			return ErrTextEmpty
		case "min":
			return ErrTextTooShort
		case "max":
			return ErrTextTooLong
		case "hasletter":
			return ErrTextNoLetters
		}
	}
	return fmt.Errorf("validate query: %w", err)
}
