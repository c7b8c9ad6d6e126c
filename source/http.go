// Package source provides the authoritative clan source backends: an HTTP
// client for the API service and a direct Wargaming API client. Both are
// read-only; this service never mutates the authoritative source.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/wows-tools/wows-clan-sync/model"
)

const requestTimeout = 5 * time.Second

// HTTP talks to the API service fronting the Wargaming API.
type HTTP struct {
	baseURL string
	client  *http.Client
	logger  *zap.SugaredLogger
}

func NewHTTP(host, port string, logger *zap.SugaredLogger) *HTTP {
	return &HTTP{
		baseURL: fmt.Sprintf("http://%s:%s", host, port),
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

func (s *HTTP) LookupTag(ctx context.Context, tag string) (model.Lookup, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/clans/tag/"+url.PathEscape(tag), nil)
	if err != nil {
		return model.Lookup{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return model.Lookup{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.Absent(), nil
	}
	if resp.StatusCode != http.StatusOK {
		return model.Lookup{}, fmt.Errorf("API service lookup returned status %d", resp.StatusCode)
	}

	var clan model.Clan
	if err := json.NewDecoder(resp.Body).Decode(&clan); err != nil {
		return model.Lookup{}, err
	}
	return model.Present(clan), nil
}
