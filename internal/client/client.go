package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
	"go.uber.org/zap"
)

const (
	defaultTimeout    = 30 * time.Second
	jsonContentType   = "application/json"
	maxErrorBodyBytes = 64 << 10
)

var errMissingBaseURL = errors.New("client: base url is required")

// Config describes how to reach the notes service.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Client calls the notes service JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errMissingBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger}, nil
}

// Create saves a new note and returns its identifier.
func (c *Client) Create(ctx context.Context, request api.SaveRequest) (int64, error) {
	var response api.SaveResponse
	if err := c.do(ctx, http.MethodPost, api.PathSave, request, &response); err != nil {
		return 0, err
	}
	return response.ID, nil
}

// List returns every note, newest first.
func (c *Client) List(ctx context.Context) ([]api.Note, error) {
	var notes []api.Note
	if err := c.do(ctx, http.MethodGet, api.PathNotes, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Get fetches a single note.
func (c *Client) Get(ctx context.Context, id int64) (api.Note, error) {
	var note api.Note
	path := api.PathNote + "/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &note); err != nil {
		return api.Note{}, err
	}
	return note, nil
}

// Update replaces every field of an existing note.
func (c *Client) Update(ctx context.Context, request api.UpdateRequest) error {
	return c.do(ctx, http.MethodPut, api.PathUpdate, request, &api.MessageResponse{})
}

// Delete removes a note.
func (c *Client) Delete(ctx context.Context, id int64) error {
	request := api.DeleteRequest{ID: api.NewNoteID(id)}
	return c.do(ctx, http.MethodDelete, api.PathDelete, request, &api.MessageResponse{})
}

func (c *Client) do(ctx context.Context, method, path string, body any, target any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	request.Header.Set("Accept", jsonContentType)
	if body != nil {
		request.Header.Set("Content-Type", jsonContentType)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Error("notes request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		apiErr := decodeAPIError(response)
		c.logger.Warn("notes request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", apiErr.Status),
			zap.String("error", apiErr.Message))
		return apiErr
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(response *http.Response) *APIError {
	apiErr := &APIError{Status: response.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyBytes))
	if err != nil {
		return apiErr
	}
	var payload api.ErrorResponse
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	return apiErr
}
