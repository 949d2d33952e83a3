package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bustracker/internal/core/model"
)

// Sender delivers one fix to the upsert endpoint.
type Sender interface {
	Send(ctx context.Context, fix model.LocationFix) error
}

// HTTPSender posts fixes to the tracker's /location endpoint.
type HTTPSender struct {
	client *http.Client
	url    string
}

func NewHTTPSender(serverURL string, timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSender{
		client: &http.Client{Timeout: timeout},
		url:    strings.TrimRight(serverURL, "/") + "/location",
	}
}

// Send posts the fix. A 4xx answer means the server refused the payload
// and a retry with the same bytes cannot succeed; anything else that
// goes wrong is transient and worth retrying.
func (s *HTTPSender) Send(ctx context.Context, fix model.LocationFix) error {
	body, err := json.Marshal(fix)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrTransient, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return fmt.Errorf("%w: server rejected fix (%d): %s", model.ErrInvalidInput, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return fmt.Errorf("%w: server error (%d): %s", model.ErrTransient, resp.StatusCode, strings.TrimSpace(string(msg)))
}
