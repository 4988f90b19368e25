package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"unicode"
)

// ErrUnknownRiddle is returned when LocalRiddleService is asked to judge a
// riddle it did not ask.
var ErrUnknownRiddle = errors.New("unknown riddle")

// Riddle is an offline riddle with the answers it accepts.
type Riddle struct {
	Question string
	Answers  []string
}

// DefaultRiddles is the built-in offline riddle book.
var DefaultRiddles = []Riddle{
	{Question: "What has keys but can't open locks?", Answers: []string{"piano", "keyboard"}},
	{Question: "The more you take, the more you leave behind. What am I?", Answers: []string{"footsteps", "steps", "footprints"}},
	{Question: "What has to be broken before you can use it?", Answers: []string{"egg"}},
	{Question: "I speak without a mouth and hear without ears. I have no body, but I come alive with the wind. What am I?", Answers: []string{"echo"}},
	{Question: "What gets wetter the more it dries?", Answers: []string{"towel"}},
	{Question: "What has a neck but no head?", Answers: []string{"bottle"}},
	{Question: "What can you catch but not throw?", Answers: []string{"cold", "breath"}},
}

// LocalRiddleService serves riddles from a fixed book, in order, without any
// network access.
type LocalRiddleService struct {
	riddles []Riddle
	logger  *slog.Logger

	mu   sync.Mutex
	next int
}

var _ RiddleService = (*LocalRiddleService)(nil)

func NewLocalRiddleService(riddles []Riddle, logger *slog.Logger) *LocalRiddleService {
	if len(riddles) == 0 {
		riddles = DefaultRiddles
	}
	return &LocalRiddleService{riddles: riddles, logger: logger}
}

func (l *LocalRiddleService) GetRiddle(ctx context.Context, theme string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.mu.Lock()
	r := l.riddles[l.next%len(l.riddles)]
	l.next++
	l.mu.Unlock()

	l.logger.Debug("Serving local riddle", "theme", theme)
	return r.Question, nil
}

func (l *LocalRiddleService) CheckAnswer(ctx context.Context, riddle, answer string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	i := slices.IndexFunc(l.riddles, func(r Riddle) bool { return r.Question == riddle })
	if i < 0 {
		return false, fmt.Errorf("%q: %w", riddle, ErrUnknownRiddle)
	}
	got := answerKey(answer)
	if got == "" {
		return false, nil
	}
	return slices.ContainsFunc(l.riddles[i].Answers, func(accepted string) bool {
		return answerKey(accepted) == got
	}), nil
}

// answerPrefixes are leading words dropped before answers are compared.
var answerPrefixes = []string{"its", "a", "an", "the"}

// answerKey reduces an answer to its comparable form: lowercase words
// without punctuation, leading "it's"/article words, or a plural "s".
func answerKey(s string) string {
	words := strings.Fields(normalizeAnswer(s))
	for len(words) > 0 {
		if len(words) > 1 && words[0] == "it" && words[1] == "s" {
			words = words[2:]
			continue
		}
		if !slices.Contains(answerPrefixes, words[0]) {
			break
		}
		words = words[1:]
	}
	if len(words) == 0 {
		return ""
	}
	words[len(words)-1] = strings.TrimSuffix(words[len(words)-1], "s")
	return strings.Join(words, " ")
}

// normalizeAnswer lowercases s and replaces punctuation with spaces.
func normalizeAnswer(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
}
