package generator

import (
	"context"
	"errors"
	"sync"
)

// MockLLM 按顺序返回预设回复，并记录收到的每个 Prompt。
// 预设回复用完后直接回显用户消息，便于本地调试，不调用外部模型。
type MockLLM struct {
	mu      sync.Mutex
	Replies []string
	Err     error
	Prompts []Prompt
}

func (m *MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Replies) == 0 {
		if prompt.User == "" {
			return "", errors.New("mock: empty prompt")
		}
		return prompt.User, nil
	}
	reply := m.Replies[0]
	m.Replies = m.Replies[1:]
	return reply, nil
}

// Calls reports how many prompts were received.
func (m *MockLLM) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
