package generator

import "context"

// --- Mocks ---

type mockHTTPClient struct {
	data     []byte
	err      error
	calls    int
	lastURL  string
	lastData any
}

func (m *mockHTTPClient) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	m.calls++
	m.lastURL = url
	m.lastData = data
	return m.data, m.err
}
