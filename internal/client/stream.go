package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
	"go.uber.org/zap"
)

// Watch follows the change stream and calls onChange for every note-change
// event until ctx is cancelled or the connection drops. The stream request
// bypasses the client's timeout.
func (c *Client) Watch(ctx context.Context, onChange func(api.ChangeEvent)) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+api.PathNoteStream, http.NoBody)
	if err != nil {
		return fmt.Errorf("client: build stream request: %w", err)
	}
	request.Header.Set("Accept", "text/event-stream")

	streamClient := &http.Client{Transport: c.httpClient.Transport}
	response, err := streamClient.Do(request)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("client: open stream: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return decodeAPIError(response)
	}

	scanner := bufio.NewScanner(response.Body)
	eventType := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			eventType = ""
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:") && eventType == api.EventNoteChanged:
			var event api.ChangeEvent
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				c.logger.Warn("discarding malformed change event", zap.String("data", data), zap.Error(err))
				continue
			}
			onChange(event)
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("client: read stream: %w", err)
	}
	return nil
}
