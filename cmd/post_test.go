package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xolan/logpost/internal/twitter"
)

const todayStore = `[
  {"description": "Fixed login bug", "date": "2024-01-15", "time": "10:00", "timestamp": "2024-01-15T10:00:00.000000"}
]`

func TestPostSummary_Publishes(t *testing.T) {
	env := testDeps(t)
	env.writeCredentials(t)
	env.writeFile(t, env.paths.Store, todayStore)

	postSummary(context.Background(), false, false)

	if env.exitCode != -1 {
		t.Fatalf("Exit(%d) called, stderr: %s", env.exitCode, env.stderr.String())
	}
	const want = "Completed: Fixed login bug #Productivity #Progress"
	if len(env.pub.texts) != 1 || env.pub.texts[0] != want {
		t.Errorf("published %q, expected %q", env.pub.texts, want)
	}

	out := env.stdout.String()
	for _, s := range []string{
		"Selected 1 task",
		"Summary (fallback):",
		want,
		"Length: 50/280",
		"Posted: 1750000000000000001",
		"Cleared 1 task from the store",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
	if got := strings.TrimSpace(env.readStore(t)); got != "[]" {
		t.Errorf("store after posting = %s, expected []", got)
	}
}

func TestPostSummary_DryRun(t *testing.T) {
	env := testDeps(t)
	env.writeCredentials(t)
	env.writeFile(t, env.paths.Store, todayStore)

	postSummary(context.Background(), true, false)

	if len(env.pub.texts) != 0 {
		t.Errorf("dry run published %q", env.pub.texts)
	}
	if !strings.Contains(env.stdout.String(), "Dry run: nothing was published") {
		t.Errorf("unexpected output:\n%s", env.stdout.String())
	}
	if got := env.readStore(t); got != todayStore {
		t.Errorf("dry run changed the store:\n%s", got)
	}
}

func TestPostSummary_NothingToPost(t *testing.T) {
	env := testDeps(t)
	env.writeCredentials(t)
	env.writeFile(t, env.paths.Store, `[{"description": "old", "date": "2024-01-14", "timestamp": "2024-01-14T10:00:00"}]`)

	postSummary(context.Background(), false, true)

	if env.exitCode != -1 {
		t.Errorf("Exit(%d) called with nothing to post", env.exitCode)
	}
	if len(env.pub.texts) != 0 {
		t.Error("publisher called with nothing to post")
	}
	if !strings.Contains(env.stdout.String(), "No tasks logged today, nothing to post") {
		t.Errorf("unexpected output:\n%s", env.stdout.String())
	}
}

func TestPostSummary_PublishFailure(t *testing.T) {
	tests := []struct {
		name     string
		strict   bool
		wantExit int
	}{
		{"lenient", false, -1},
		{"strict", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testDeps(t)
			env.writeCredentials(t)
			env.writeFile(t, env.paths.Store, todayStore)
			env.pub.err = &twitter.PublishError{Status: 403, Detail: "duplicate content"}

			postSummary(context.Background(), false, tt.strict)

			if env.exitCode != tt.wantExit {
				t.Errorf("exit code = %d, expected %d", env.exitCode, tt.wantExit)
			}
			if got := env.readStore(t); got != todayStore {
				t.Errorf("store changed after a failed publish:\n%s", got)
			}
			if !strings.Contains(env.stderr.String(), "403") {
				t.Errorf("stderr does not mention the failure: %s", env.stderr.String())
			}
		})
	}
}

func TestPostSummary_ConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		posting  string
		wantHint string
	}{
		{"missing posting credentials", "", "logpost config init"},
		{"placeholder credentials", `{"consumer_key":"YOUR_CONSUMER_KEY","consumer_secret":"cs","access_token":"at","access_token_secret":"ats"}`, "logpost config check"},
		{"unparseable credentials", `{"consumer_key":`, "logpost config check"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testDeps(t)
			if tt.posting != "" {
				env.writeFile(t, env.paths.Posting, tt.posting)
			}
			env.writeFile(t, env.paths.Generation, `{}`)
			env.writeFile(t, env.paths.Store, todayStore)

			postSummary(context.Background(), false, false)

			if env.exitCode != 1 {
				t.Errorf("exit code = %d, expected 1", env.exitCode)
			}
			if len(env.pub.texts) != 0 {
				t.Error("publisher called despite a config error")
			}
			stderr := env.stderr.String()
			if !strings.Contains(stderr, "Error: Configuration is not usable") || !strings.Contains(stderr, tt.wantHint) {
				t.Errorf("unexpected stderr: %s", stderr)
			}
			if got := env.readStore(t); got != todayStore {
				t.Errorf("store changed after an aborted run:\n%s", got)
			}
		})
	}
}

func TestPostSummary_PublishErrorIsReported(t *testing.T) {
	env := testDeps(t)
	env.writeCredentials(t)
	env.writeFile(t, env.paths.Store, todayStore)
	env.pub.err = errors.New("connection reset")

	postSummary(context.Background(), false, false)

	if !strings.Contains(env.stderr.String(), "Warning: Failed to publish the summary") {
		t.Errorf("unexpected stderr: %s", env.stderr.String())
	}
	if strings.Contains(env.stdout.String(), "Posted:") {
		t.Errorf("output claims a post:\n%s", env.stdout.String())
	}
}
