// Package compose turns a day's entries into the text of a post.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xolan/logpost/internal/config"
	"github.com/xolan/logpost/internal/entry"
	"github.com/xolan/logpost/internal/logging"
)

// NoTasksText is the post text for a day without entries
const NoTasksText = "No tasks completed today. Time to get started!"

// Source records where the composed text came from
type Source string

// Text sources
const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
	SourceSentinel  Source = "sentinel"
)

const promptTemplate = `Create a concise, engaging tweet summarizing today's work progress.

Requirements:
- MAXIMUM 280 characters (Twitter limit)
- Use encouraging, positive tone
- Include 2-3 relevant emojis
- Be specific but brief
- Make it feel personal and motivational

Today's tasks:
%s

Generate a SHORT tweet (under 280 chars) that captures today's progress:
`

// Generator produces text for a prompt. Implementations call a remote
// generative-text service; a single call is made per composition.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Response, error)
}

// GeneratorFactory builds a Generator for the settings of one run.
type GeneratorFactory func(cfg config.GenerationConfig) Generator

// Result is the outcome of a composition.
// Err holds a recovered generation failure; the text is still usable.
type Result struct {
	Text   string
	Source Source
	Err    error
}

// Composer builds post text, preferring generated text and falling back to
// a fixed template whenever generation is unavailable.
type Composer struct {
	newGenerator GeneratorFactory
	logger       *slog.Logger
}

// New returns a Composer. A nil factory means generation is never attempted.
func New(newGenerator GeneratorFactory, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Composer{newGenerator: newGenerator, logger: logger}
}

// Compose returns the post text for entries. It never fails: without an API
// key, on a generation error, or on an empty response the fallback template
// is used and the cause is reported in Result.Err.
func (c *Composer) Compose(ctx context.Context, entries []entry.Entry, cfg config.GenerationConfig) Result {
	if len(entries) == 0 {
		return Result{Text: NoTasksText, Source: SourceSentinel}
	}

	if cfg.Key() == "" || c.newGenerator == nil {
		c.logger.Debug("no generation API key configured, using fallback")
		return Result{Text: Fallback(entries), Source: SourceFallback}
	}

	resp, err := c.newGenerator(cfg).Generate(ctx, Prompt(entries))
	if err != nil {
		c.logger.Warn("generation failed, using fallback", "error", err)
		return Result{Text: Fallback(entries), Source: SourceFallback, Err: err}
	}

	text := Normalize(resp)
	if text == "" {
		c.logger.Warn("generation returned no text, using fallback")
		return Result{Text: Fallback(entries), Source: SourceFallback, Err: ErrEmptyResponse}
	}
	return Result{Text: text, Source: SourceGenerated}
}

// Prompt embeds one bullet line per entry description in the fixed template.
func Prompt(entries []entry.Entry) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = "• " + e.Description
	}
	return fmt.Sprintf(promptTemplate, strings.Join(lines, "\n"))
}
