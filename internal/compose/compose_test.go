package compose

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xolan/logpost/internal/config"
	"github.com/xolan/logpost/internal/entry"
)

// stubGenerator records calls and answers with a fixed response
type stubGenerator struct {
	calls   int
	prompts []string
	resp    Response
	err     error
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (Response, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	return s.resp, s.err
}

func (s *stubGenerator) factory() GeneratorFactory {
	return func(config.GenerationConfig) Generator { return s }
}

func entries(t *testing.T, descriptions ...string) []entry.Entry {
	t.Helper()
	now := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	out := make([]entry.Entry, 0, len(descriptions))
	for _, d := range descriptions {
		e, err := entry.New(d, "", now)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, e)
	}
	return out
}

func keyed() config.GenerationConfig {
	return config.GenerationConfig{APIKey: "test-key"}
}

func TestCompose_EmptyNeverCallsGenerator(t *testing.T) {
	gen := &stubGenerator{resp: Response{Text: "should not be used"}}
	c := New(gen.factory(), nil)

	for _, in := range [][]entry.Entry{nil, {}} {
		result := c.Compose(context.Background(), in, keyed())
		if result.Text != NoTasksText || result.Source != SourceSentinel {
			t.Errorf("Compose(empty) = %+v, expected sentinel", result)
		}
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times for empty input", gen.calls)
	}
}

func TestCompose_Generated(t *testing.T) {
	gen := &stubGenerator{resp: Response{Text: "  Shipped auth fixes today! 🚀  "}}
	c := New(gen.factory(), nil)

	result := c.Compose(context.Background(), entries(t, "Fixed login bug", "Wrote tests"), keyed())
	if result.Source != SourceGenerated || result.Err != nil {
		t.Fatalf("Compose() = %+v, expected generated", result)
	}
	if result.Text != "Shipped auth fixes today! 🚀" {
		t.Errorf("Text = %q, expected trimmed generated text", result.Text)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, expected exactly 1", gen.calls)
	}
	if !strings.Contains(gen.prompts[0], "• Fixed login bug\n• Wrote tests") {
		t.Errorf("prompt missing task bullets:\n%s", gen.prompts[0])
	}
}

func TestCompose_NoKeyUsesFallback(t *testing.T) {
	gen := &stubGenerator{resp: Response{Text: "unused"}}
	c := New(gen.factory(), nil)

	for _, cfg := range []config.GenerationConfig{{}, {APIKey: "YOUR_GEMMA_API_KEY"}} {
		result := c.Compose(context.Background(), entries(t, "Fixed login bug"), cfg)
		if result.Source != SourceFallback {
			t.Errorf("Compose() source = %q, expected fallback", result.Source)
		}
		if result.Text != "Completed: Fixed login bug #Productivity #Progress" {
			t.Errorf("Text = %q", result.Text)
		}
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times without a key", gen.calls)
	}
}

func TestCompose_GeneratorErrorRecovered(t *testing.T) {
	boom := errors.New("service unavailable")
	gen := &stubGenerator{err: boom}
	c := New(gen.factory(), nil)

	result := c.Compose(context.Background(), entries(t, "Fixed login bug"), keyed())
	if result.Source != SourceFallback {
		t.Errorf("Source = %q, expected fallback", result.Source)
	}
	if !errors.Is(result.Err, boom) {
		t.Errorf("Err = %v, expected the generator error", result.Err)
	}
	if result.Text != "Completed: Fixed login bug #Productivity #Progress" {
		t.Errorf("Text = %q", result.Text)
	}
}

func TestCompose_EmptyResponseFallsBack(t *testing.T) {
	gen := &stubGenerator{resp: Response{Text: "   ", Candidates: []Candidate{}}}
	c := New(gen.factory(), nil)

	result := c.Compose(context.Background(), entries(t, "a", "b"), keyed())
	if result.Source != SourceFallback || !errors.Is(result.Err, ErrEmptyResponse) {
		t.Errorf("Compose() = %+v, expected fallback with ErrEmptyResponse", result)
	}
}

func TestCompose_NilFactory(t *testing.T) {
	result := New(nil, nil).Compose(context.Background(), entries(t, "a"), keyed())
	if result.Source != SourceFallback {
		t.Errorf("Source = %q, expected fallback", result.Source)
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt(entries(t, "one"))
	for _, want := range []string{"MAXIMUM 280 characters", "Today's tasks:\n• one\n", "captures today's progress:"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}
