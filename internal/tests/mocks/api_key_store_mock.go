package mocks

type APIKeyStoreMock struct {
	GetApiKeyFunc func(provider string) (string, error)
}

func (m *APIKeyStoreMock) GetApiKey(provider string) (string, error) {
	if m.GetApiKeyFunc != nil {
		return m.GetApiKeyFunc(provider)
	}
	return "", nil
}
