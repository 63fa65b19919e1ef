package providers

import (
	"context"

	"github.com/stacklok/template-registry-server/internal/httpclient"
	"github.com/stacklok/template-registry-server/internal/repository"
)

// APIProvider reads a JSON repository list from an HTTP endpoint
type APIProvider struct {
	client   httpclient.Client
	endpoint string
}

var _ RepositoryProvider = (*APIProvider)(nil)

// NewAPIProvider creates an APIProvider for endpoint
func NewAPIProvider(client httpclient.Client, endpoint string) *APIProvider {
	return &APIProvider{client: client, endpoint: endpoint}
}

// GetRepositories implements RepositoryProvider
func (p *APIProvider) GetRepositories(ctx context.Context) ([]repository.PartialRepository, error) {
	data, err := p.client.Get(ctx, p.endpoint)
	if err != nil {
		return nil, err
	}
	return decodeRepositoryList(data, p.endpoint)
}
