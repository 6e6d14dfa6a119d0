package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/windoze95/saltybytes-search/internal/ai"
	"github.com/windoze95/saltybytes-search/internal/models"
)

// --- MockEnrichmentProvider ---

// MockEnrichmentProvider is a mock implementation of ai.EnrichmentProvider.
// Every request is recorded in Calls.
type MockEnrichmentProvider struct {
	EnrichDescriptionFunc func(ctx context.Context, req ai.EnrichRequest) (string, error)

	mu    sync.Mutex
	Calls []ai.EnrichRequest
}

func (m *MockEnrichmentProvider) EnrichDescription(ctx context.Context, req ai.EnrichRequest) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()

	if m.EnrichDescriptionFunc != nil {
		return m.EnrichDescriptionFunc(ctx, req)
	}
	return "", fmt.Errorf("EnrichDescription not configured")
}

// CallCount returns how many times EnrichDescription was called.
func (m *MockEnrichmentProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// EchoEnricher returns a provider that answers "Enhanced: <name>".
func EchoEnricher() *MockEnrichmentProvider {
	return &MockEnrichmentProvider{
		EnrichDescriptionFunc: func(ctx context.Context, req ai.EnrichRequest) (string, error) {
			return "Enhanced: " + req.Name, nil
		},
	}
}

// --- MockFetcher ---

// MockFetcher is a mock recipe source.
type MockFetcher struct {
	Collection models.Collection
	Err        error

	mu   sync.Mutex
	URLs []string
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (models.Collection, error) {
	m.mu.Lock()
	m.URLs = append(m.URLs, url)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Collection, nil
}

// FetchCount returns how many times Fetch was called.
func (m *MockFetcher) FetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.URLs)
}
