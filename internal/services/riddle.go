package services

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/riddle.txt
var riddlePrompt string

//go:embed prompts/check.txt
var checkPrompt string

var (
	riddleTmpl = template.Must(template.New("riddle").Parse(riddlePrompt))
	checkTmpl  = template.Must(template.New("check").Parse(checkPrompt))
)

// ErrEmptyResponse is returned when a provider answers with no text.
var ErrEmptyResponse = errors.New("empty response from riddle provider")

// RiddleService asks themed riddles and judges answers. Callers treat any
// CheckAnswer error as a wrong answer.
type RiddleService interface {
	// GetRiddle returns one riddle in the voice of theme (a monster name)
	GetRiddle(ctx context.Context, theme string) (string, error)

	// CheckAnswer reports whether answer solves riddle
	CheckAnswer(ctx context.Context, riddle, answer string) (bool, error)
}

// RiddlePrompt renders the prompt asking for a riddle themed on a monster.
func RiddlePrompt(theme string) (string, error) {
	var buf bytes.Buffer
	if err := riddleTmpl.Execute(&buf, struct{ Theme string }{Theme: theme}); err != nil {
		return "", fmt.Errorf("failed to render riddle prompt: %w", err)
	}
	return buf.String(), nil
}

// CheckPrompt renders the prompt asking a model to judge an answer.
func CheckPrompt(riddle, answer string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Riddle, Answer string }{Riddle: riddle, Answer: answer}
	if err := checkTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render check prompt: %w", err)
	}
	return buf.String(), nil
}

// ParseVerdict reads a model's yes/no judgment. Anything that does not say
// yes is a no.
func ParseVerdict(response string) bool {
	return strings.Contains(strings.ToLower(strings.TrimSpace(response)), "yes")
}

// cleanRiddle strips the wrapping models like to add around a bare riddle.
func cleanRiddle(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.Trim(strings.TrimSpace(text), `"`)
}

// completer is a provider that turns one prompt into one reply.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

func promptRiddle(ctx context.Context, c completer, theme string) (string, error) {
	prompt, err := RiddlePrompt(theme)
	if err != nil {
		return "", err
	}
	text, err := c.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	riddle := cleanRiddle(text)
	if riddle == "" {
		return "", ErrEmptyResponse
	}
	return riddle, nil
}

func promptVerdict(ctx context.Context, c completer, riddle, answer string) (bool, error) {
	prompt, err := CheckPrompt(riddle, answer)
	if err != nil {
		return false, err
	}
	text, err := c.complete(ctx, prompt)
	if err != nil {
		return false, err
	}
	return ParseVerdict(text), nil
}
