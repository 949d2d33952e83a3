package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bustracker/internal/agent/delivery"
	"bustracker/internal/agent/queue"
	"bustracker/internal/core/model"
)

type stubSender struct {
	err   error
	sends int
}

func (s *stubSender) Send(_ context.Context, _ model.LocationFix) error {
	s.sends++
	return s.err
}

func newTestProducer(t *testing.T, sender delivery.Sender) (*Producer, *queue.Queue) {
	t.Helper()
	q, err := queue.Open(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("queue.Open() error = %v", err)
	}
	t.Cleanup(func() { q.Close() })
	scheduler := delivery.NewScheduler(delivery.NewAgent(q, sender), time.Hour)
	return NewProducer(q, sender, scheduler), q
}

func TestSubmitDirectSend(t *testing.T) {
	sender := &stubSender{}
	p, q := newTestProducer(t, sender)

	queued, err := p.Submit(context.Background(), model.LocationFix{BusID: "KSRTC_1", Lat: 9, Lng: 76})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if queued {
		t.Error("expected direct send, got queued")
	}
	if n, _ := q.Len(); n != 0 {
		t.Errorf("expected empty queue, got %d entries", n)
	}
}

func TestSubmitBuffersOnTransientFailure(t *testing.T) {
	sender := &stubSender{err: fmt.Errorf("%w: connection refused", model.ErrTransient)}
	p, q := newTestProducer(t, sender)

	queued, err := p.Submit(context.Background(), model.LocationFix{BusID: "KSRTC_2", Lat: 9, Lng: 76})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !queued {
		t.Error("expected fix to be queued")
	}
	if n, _ := q.Len(); n != 1 {
		t.Errorf("expected 1 buffered entry, got %d", n)
	}
}

func TestSubmitSurfacesRejection(t *testing.T) {
	sender := &stubSender{err: fmt.Errorf("%w: lat out of range", model.ErrInvalidInput)}
	p, q := newTestProducer(t, sender)

	_, err := p.Submit(context.Background(), model.LocationFix{BusID: "KSRTC_3", Lat: 999, Lng: 76})
	if err == nil {
		t.Fatal("expected rejection to surface")
	}
	if n, _ := q.Len(); n != 0 {
		t.Errorf("rejected fix must not be buffered, got %d entries", n)
	}
}

func TestHandlerQueuedResponse(t *testing.T) {
	sender := &stubSender{err: fmt.Errorf("%w: connection refused", model.ErrTransient)}
	p, q := newTestProducer(t, sender)
	h := NewHandler(p, q)

	body, _ := json.Marshal(model.LocationFix{BusID: "KSRTC_4", Lat: 9, Lng: 76})
	req := httptest.NewRequest(http.MethodPost, "/fix", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202 for buffered fix, got %d", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["message"] != "Location queued" {
		t.Errorf("unexpected message %q", resp["message"])
	}
}

func TestHandlerRejectsIncompleteCapture(t *testing.T) {
	sender := &stubSender{}
	p, q := newTestProducer(t, sender)
	h := NewHandler(p, q)

	tests := []struct {
		name string
		body string
	}{
		{"missing lat", `{"busId":"KSRTC_X","lng":76.26}`},
		{"missing lng", `{"busId":"KSRTC_X","lat":9.93}`},
		{"missing busId", `{"lat":9.93,"lng":76.26}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/fix", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			var resp map[string]string
			json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp["error"] != "Missing required fields" {
				t.Errorf("unexpected error message %q", resp["error"])
			}
		})
	}

	// Nothing may leak past the boundary: no send, no buffering.
	if sender.sends != 0 {
		t.Errorf("incomplete captures were sent %d times, want 0", sender.sends)
	}
	if n, _ := q.Len(); n != 0 {
		t.Errorf("incomplete captures were buffered, got %d entries", n)
	}

	// Zero is a valid coordinate, not a missing one.
	req := httptest.NewRequest(http.MethodPost, "/fix", strings.NewReader(`{"busId":"KSRTC_0","lat":0,"lng":0}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("zero coordinates rejected: status = %d", rec.Code)
	}
}

func TestHandlerDirectResponse(t *testing.T) {
	p, q := newTestProducer(t, &stubSender{})
	h := NewHandler(p, q)

	body, _ := json.Marshal(model.LocationFix{BusID: "KSRTC_5", Lat: 9, Lng: 76})
	req := httptest.NewRequest(http.MethodPost, "/fix", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for direct send, got %d", rec.Code)
	}
}
