package compose

import (
	"errors"
	"strings"
)

// ErrEmptyResponse is reported when a generator answers without usable text
var ErrEmptyResponse = errors.New("generation response contained no text")

// Response is the union of the shapes a generation service may answer with.
// Whichever carries non-empty text first wins: Text, then Parts, then the
// first candidate's parts.
type Response struct {
	Text       string      `json:"text,omitempty"`
	Parts      []Part      `json:"parts,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Part is one fragment of generated content
type Part struct {
	Text string `json:"text"`
}

// Candidate is one alternative answer
type Candidate struct {
	Content Content `json:"content"`
}

// Content holds the parts of a candidate
type Content struct {
	Parts []Part `json:"parts"`
}

// Normalize extracts the text of resp, trimmed. Returns "" when no shape
// carries any text.
func Normalize(resp Response) string {
	if text := strings.TrimSpace(resp.Text); text != "" {
		return text
	}
	if text := joinParts(resp.Parts); text != "" {
		return text
	}
	if len(resp.Candidates) > 0 {
		return joinParts(resp.Candidates[0].Content.Parts)
	}
	return ""
}

func joinParts(parts []Part) string {
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		texts = append(texts, p.Text)
	}
	return strings.TrimSpace(strings.Join(texts, " "))
}
