package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ResourceService exposes the CRUD endpoints of one backend resource, e.g. /tags.
type ResourceService struct {
	client *Client
	name   string
}

// ListResult is a page of raw records.
type ListResult struct {
	Items []json.RawMessage
	Total int
	// Paged is set when the backend answered an envelope with "total", i.e. it cut the page itself.
	Paged bool
}

// Resource returns the service for the named resource. A nil client yields a service whose calls fail as unreachable.
func (c *Client) Resource(name string) *ResourceService {
	return &ResourceService{client: c, name: name}
}

// List calls GET /{res}, query is passed through.
func (s *ResourceService) List(ctx context.Context, query url.Values) (*ListResult, error) {
	data, err := s.client.do(ctx, s.name, http.MethodGet, []string{s.name}, query, nil)
	if err != nil {
		return nil, err
	}

	return decodeList(data)
}

// Search calls GET /{res}/search?q=term.
func (s *ResourceService) Search(ctx context.Context, term string, query url.Values) (*ListResult, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}

	q.Set("q", term)

	data, err := s.client.do(ctx, s.name, http.MethodGet, []string{s.name, "search"}, q, nil)
	if err != nil {
		return nil, err
	}

	return decodeList(data)
}

// Get calls GET /{res}/{id}.
func (s *ResourceService) Get(ctx context.Context, id uint64) (json.RawMessage, error) {
	data, err := s.client.do(ctx, s.name, http.MethodGet, []string{s.name, formatID(id)}, nil, nil)
	if err != nil {
		return nil, err
	}

	return decodeRecord(data)
}

// Create calls POST /{res}. An empty answer returns nil without error.
func (s *ResourceService) Create(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	data, err := s.client.do(ctx, s.name, http.MethodPost, []string{s.name}, nil, body)
	if err != nil {
		return nil, err
	}

	return decodeRecord(data)
}

// Update calls PUT /{res}/{id} with the full record.
func (s *ResourceService) Update(ctx context.Context, id uint64, body json.RawMessage) (json.RawMessage, error) {
	data, err := s.client.do(ctx, s.name, http.MethodPut, []string{s.name, formatID(id)}, nil, body)
	if err != nil {
		return nil, err
	}

	return decodeRecord(data)
}

// Delete calls DELETE /{res}/{id}.
func (s *ResourceService) Delete(ctx context.Context, id uint64) error {
	_, err := s.client.do(ctx, s.name, http.MethodDelete, []string{s.name, formatID(id)}, nil, nil)

	return err
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// decodeList accepts a plain array or {"data": [...], "total": n}.
func decodeList(data []byte) (*ListResult, error) {
	data = bytes.TrimSpace(data)

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return &ListResult{Items: []json.RawMessage{}}, nil
	}

	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}

		return &ListResult{Items: items, Total: len(items)}, nil
	}

	var envelope struct {
		Data  []json.RawMessage `json:"data"`
		Total *int              `json:"total"`
	}

	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	res := &ListResult{Items: envelope.Data, Total: len(envelope.Data)}
	if res.Items == nil {
		res.Items = []json.RawMessage{}
	}

	if envelope.Total != nil {
		res.Total = *envelope.Total
		res.Paged = true
	}

	return res, nil
}

// decodeRecord unwraps {"data": {...}} answers and rejects anything but an object.
func decodeRecord(data []byte) (json.RawMessage, error) {
	data = bytes.TrimSpace(data)

	if len(data) == 0 {
		return nil, nil
	}

	if data[0] != '{' {
		return nil, fmt.Errorf("%w: expected object", ErrInvalidResponse)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	if inner, ok := envelope["data"]; ok && len(envelope) == 1 && len(inner) > 0 && inner[0] == '{' {
		return inner, nil
	}

	return json.RawMessage(data), nil
}
