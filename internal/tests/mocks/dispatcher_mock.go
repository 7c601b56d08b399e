package mocks

import (
	"context"
	"sync"

	"txtension/internal/models"
)

type DispatchCall struct {
	Provider models.ProviderID
	Settings models.ProviderSettings
	Prompt   string
}

type DispatcherMock struct {
	DispatchFunc func(ctx context.Context, id models.ProviderID, settings models.ProviderSettings, prompt string) (string, error)

	mu    sync.Mutex
	Calls []DispatchCall
}

func (m *DispatcherMock) Dispatch(ctx context.Context, id models.ProviderID, settings models.ProviderSettings, prompt string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, DispatchCall{Provider: id, Settings: settings, Prompt: prompt})
	m.mu.Unlock()
	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, id, settings, prompt)
	}
	return "ok", nil
}

func (m *DispatcherMock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
