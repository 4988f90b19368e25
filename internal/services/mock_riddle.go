package services

import (
	"context"
	"sync"
)

// MockRiddleService is a mock implementation of RiddleService for testing
type MockRiddleService struct {
	GetRiddleFunc   func(ctx context.Context, theme string) (string, error)
	CheckAnswerFunc func(ctx context.Context, riddle, answer string) (bool, error)

	// Track calls for testing
	GetRiddleCalls   []string
	CheckAnswerCalls []CheckAnswerCall

	mu sync.Mutex // protects all fields above
}

type CheckAnswerCall struct {
	Riddle string
	Answer string
}

var _ RiddleService = (*MockRiddleService)(nil)

// NewMockRiddleService creates a mock that asks one riddle and rejects every answer
func NewMockRiddleService() *MockRiddleService {
	return &MockRiddleService{}
}

func (m *MockRiddleService) GetRiddle(ctx context.Context, theme string) (string, error) {
	m.mu.Lock()
	m.GetRiddleCalls = append(m.GetRiddleCalls, theme)
	fn := m.GetRiddleFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, theme)
	}

	// Default behavior
	return "What walks on four legs in the morning, two at noon and three in the evening?", nil
}

func (m *MockRiddleService) CheckAnswer(ctx context.Context, riddle, answer string) (bool, error) {
	m.mu.Lock()
	m.CheckAnswerCalls = append(m.CheckAnswerCalls, CheckAnswerCall{Riddle: riddle, Answer: answer})
	fn := m.CheckAnswerFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, riddle, answer)
	}
	return false, nil
}

// SetGetRiddleError makes GetRiddle fail with err
func (m *MockRiddleService) SetGetRiddleError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetRiddleFunc = func(ctx context.Context, theme string) (string, error) {
		return "", err
	}
}

// SetVerdict makes CheckAnswer return correct for every answer
func (m *MockRiddleService) SetVerdict(correct bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckAnswerFunc = func(ctx context.Context, riddle, answer string) (bool, error) {
		return correct, nil
	}
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockRiddleService) GetCalls() ([]string, []CheckAnswerCall) {
	m.mu.Lock()
	defer m.mu.Unlock()

	riddleCalls := make([]string, len(m.GetRiddleCalls))
	copy(riddleCalls, m.GetRiddleCalls)

	checkCalls := make([]CheckAnswerCall, len(m.CheckAnswerCalls))
	copy(checkCalls, m.CheckAnswerCalls)

	return riddleCalls, checkCalls
}
