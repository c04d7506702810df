// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package preprocess provides text normalization for support query
// classification.
//
// The pipeline normalizes for consistent keyword matching (lowercase,
// whitespace, punctuation) while preserving information that carries
// classification signal: numeric digits, dollar amounts, and basic
// sentence punctuation all survive preprocessing.
package preprocess

import (
	"regexp"
	"strings"

	"github.com/jeranaias/supportq/internal/logger"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls which pipeline steps run. The zero value disables
// everything; use DefaultOptions for the standard pipeline.
type Options struct {
	// Core operations
	Lowercase           bool
	StripWhitespace     bool
	NormalizeWhitespace bool

	// Character handling
	RemoveEmojis bool
	RemoveURLs   bool
	RemoveEmails bool

	// Punctuation
	NormalizePunctuation   bool // "Help!!!" -> "Help!"
	RemoveExtraPunctuation bool // keep only . , ! ? ; : $ -

	// RemoveStopwords drops common English stop words. Rarely wanted for
	// support queries since it loses context ("can't access my account"
	// degrades badly).
	RemoveStopwords bool

	// MinLength triggers a warning when preprocessing leaves fewer
	// characters than this.
	MinLength int
}

// DefaultOptions returns the standard preprocessing configuration.
func DefaultOptions() Options {
	return Options{
		Lowercase:              true,
		StripWhitespace:        true,
		NormalizeWhitespace:    true,
		RemoveEmojis:           true,
		RemoveURLs:             true,
		RemoveEmails:           true,
		NormalizePunctuation:   true,
		RemoveExtraPunctuation: true,
		RemoveStopwords:        false,
		MinLength:              3,
	}
}

// =============================================================================
// PATTERNS
// =============================================================================

var (
	urlPattern        = regexp.MustCompile(`https?://(?:[a-zA-Z0-9$\-_@.&+!*(),]|%[0-9a-fA-F]{2})+`)
	emailPattern      = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	multiPunctPattern = regexp.MustCompile(`([!?.]){2,}`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	specialCharsPat   = regexp.MustCompile(`[^a-zA-Z0-9\s.,!?;:$\-]`)
)

// currencyRunes are non-ASCII symbols preserved by the emoji filter.
// Billing queries often quote amounts ("charged €30 twice").
var currencyRunes = map[rune]bool{'$': true, '€': true, '£': true, '¥': true}

// stopWords is the common English stop word set, applied only when
// Options.RemoveStopwords is enabled.
var stopWords = map[string]bool{}

func init() {
	words := []string{
		"i", "me", "my", "myself", "we", "our", "ours", "ourselves",
		"you", "your", "yours", "yourself", "yourselves",
		"he", "him", "his", "himself", "she", "her", "hers", "herself",
		"it", "its", "itself", "they", "them", "their", "theirs",
		"what", "which", "who", "whom", "this", "that", "these", "those",
		"am", "is", "are", "was", "were", "be", "been", "being",
		"have", "has", "had", "having", "do", "does", "did", "doing",
		"a", "an", "the", "and", "but", "if", "or", "because", "as",
		"until", "while", "of", "at", "by", "for", "with", "about",
		"against", "between", "into", "through", "during", "before",
		"after", "above", "below", "to", "from", "up", "down", "in",
		"out", "on", "off", "over", "under", "again", "further",
		"then", "once",
	}
	for _, w := range words {
		stopWords[w] = true
	}
}

// =============================================================================
// PREPROCESSOR
// =============================================================================

// Preprocessor normalizes raw support query text.
// Safe for concurrent use; it holds no mutable state.
type Preprocessor struct {
	opts Options
}

// New creates a Preprocessor with the given options.
func New(opts Options) *Preprocessor {
	return &Preprocessor{opts: opts}
}

// NewDefault creates a Preprocessor with DefaultOptions.
func NewDefault() *Preprocessor {
	return New(DefaultOptions())
}

// Preprocess runs the normalization pipeline over raw text.
//
// Pipeline order is fixed: URLs -> emails -> non-ASCII -> repeated
// punctuation -> special characters -> lowercase -> whitespace -> trim.
// Empty or whitespace-only input returns "".
//
//	p.Preprocess("HELP!!! My payment FAILED") == "help! my payment failed"
func (p *Preprocessor) Preprocess(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	if p.opts.RemoveURLs {
		text = urlPattern.ReplaceAllString(text, " ")
	}
	if p.opts.RemoveEmails {
		text = emailPattern.ReplaceAllString(text, " ")
	}
	if p.opts.RemoveEmojis {
		text = stripNonASCII(text)
	}
	if p.opts.NormalizePunctuation {
		text = multiPunctPattern.ReplaceAllString(text, "$1")
	}
	if p.opts.RemoveExtraPunctuation {
		text = specialCharsPat.ReplaceAllString(text, " ")
	}
	if p.opts.Lowercase {
		text = strings.ToLower(text)
	}
	if p.opts.NormalizeWhitespace {
		text = whitespacePattern.ReplaceAllString(text, " ")
	}
	if p.opts.StripWhitespace {
		text = strings.TrimSpace(text)
	}
	if p.opts.RemoveStopwords {
		text = removeStopwords(text)
	}

	if p.opts.MinLength > 0 && len(text) < p.opts.MinLength {
		logger.Warn("text too short after preprocessing", "length", len(text))
	}

	return text
}

// ExtractKeywords preprocesses text and returns the individual tokens,
// with edge punctuation stripped and tokens of length <= 2 dropped.
//
//	p.ExtractKeywords("My payment failed!") == ["payment", "failed"]
func (p *Preprocessor) ExtractKeywords(text string) []string {
	cleaned := p.Preprocess(text)

	keywords := []string{}
	for _, word := range strings.Fields(cleaned) {
		word = strings.Trim(word, ".,!?;:-")
		if len(word) > 2 {
			keywords = append(keywords, word)
		}
	}
	return keywords
}

// ExtractPhrases preprocesses text and returns every contiguous window of
// n words, in order. Returns an empty slice when the text has fewer than
// n words.
//
//	p.ExtractPhrases("cancel my subscription", 2) == ["cancel my", "my subscription"]
func (p *Preprocessor) ExtractPhrases(text string, n int) []string {
	cleaned := p.Preprocess(text)
	words := strings.Fields(cleaned)

	if n <= 0 || len(words) < n {
		return []string{}
	}

	phrases := make([]string, 0, len(words)-n+1)
	for i := 0; i+n <= len(words); i++ {
		phrases = append(phrases, strings.Join(words[i:i+n], " "))
	}
	return phrases
}

// =============================================================================
// HELPERS
// =============================================================================

// stripNonASCII replaces emoji and other non-ASCII runes with a space,
// keeping common currency symbols.
func stripNonASCII(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 128 || currencyRunes[r] {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// removeStopwords drops stop words from already-normalized text.
func removeStopwords(text string) string {
	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if !stopWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
