package testutil

import (
	"sync"
)

// MockConfirmer returns a fixed answer and records every prompt it was shown.
type MockConfirmer struct {
	mu      sync.Mutex
	Answer  bool
	Err     error
	prompts []string
}

// NewMockConfirmer returns a MockConfirmer that answers with answer.
func NewMockConfirmer(answer bool) *MockConfirmer {
	return &MockConfirmer{Answer: answer}
}

// Confirm implements confirm.Confirmer.
func (m *MockConfirmer) Confirm(prompt string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.Err != nil {
		return false, m.Err
	}
	return m.Answer, nil
}

// Calls returns how many times Confirm was invoked.
func (m *MockConfirmer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns the prompts shown so far.
func (m *MockConfirmer) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}
