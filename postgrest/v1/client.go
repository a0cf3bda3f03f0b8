package v1

// PostgrestClient bundles the transport used by every domain store.
type PostgrestClient struct {
	Transport *Transport
}

// NewPostgrestClient initializes the data API client
func NewPostgrestClient(baseURL string, token string) *PostgrestClient {
	t := NewTransport(baseURL, token)
	return &PostgrestClient{
		Transport: t,
	}
}
