// Package store provides the clan store backends: an HTTP client for the
// clan-store service and an embedded sqlite store for single-process
// deployments.
package store

import (
	"bytes"
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

// HTTP talks to the clan-store service. A 404 on lookup is an absent
// record, not an error; any other non-success status is a transport failure.
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
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/clans/"+url.PathEscape(tag), nil)
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
		return model.Lookup{}, fmt.Errorf("clan store lookup returned status %d", resp.StatusCode)
	}

	var clan model.Clan
	if err := json.NewDecoder(resp.Body).Decode(&clan); err != nil {
		return model.Lookup{}, err
	}
	return model.Present(clan), nil
}

// Create requests the creation of clan in the store. The store deduplicates
// by id: a 201 means a genuinely new record, a 200 means it already existed.
func (s *HTTP) Create(ctx context.Context, clan model.Clan) (bool, error) {
	resp, err := s.send(ctx, http.MethodPut, clan)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		return true, nil
	case http.StatusOK:
		return false, nil
	default:
		return false, fmt.Errorf("clan store create returned status %d", resp.StatusCode)
	}
}

// Delete requests the deletion of clan from the store. The store treats
// deleting an absent record as a no-op.
func (s *HTTP) Delete(ctx context.Context, clan model.Clan) error {
	resp, err := s.send(ctx, http.MethodDelete, clan)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("clan store delete returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *HTTP) send(ctx context.Context, method string, clan model.Clan) (*http.Response, error) {
	body, err := json.Marshal(clan)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+"/clans", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.client.Do(req)
}
