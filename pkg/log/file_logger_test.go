package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func writeEvents(t *testing.T, path string, events ...Event) {
	t.Helper()

	l, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	for _, e := range events {
		l.Log(e)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestFileLoggerRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.clog")

	now := time.Now().UTC()
	writeEvents(t, path,
		Event{Timestamp: now, ClientID: "c1", Category: CategoryConnect,
			Connect: &ConnectEvent{SessionID: "abc123"}},
		Event{Timestamp: now.Add(time.Second), ClientID: "c1", Category: CategoryCommand,
			Command: &CommandEvent{Endpoint: "Subscribe", HTTPStatus: 200}},
		Event{Timestamp: now.Add(2 * time.Second), ClientID: "c1", Category: CategoryNotify,
			Notify: &NotifyEvent{Status: "TIMEOUT", HTTPStatus: 408}},
	)

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer r.Close()

	var got []Event
	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		got = append(got, e)
	}

	if len(got) != 3 {
		t.Fatalf("read %d events, want 3", len(got))
	}
	if got[0].Connect == nil || got[0].Connect.SessionID != "abc123" {
		t.Errorf("event 0 = %+v, want connect with session abc123", got[0])
	}
	if got[1].Command == nil || got[1].Command.Endpoint != "Subscribe" {
		t.Errorf("event 1 = %+v, want Subscribe command", got[1])
	}
}

func TestFileLoggerCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.clog")

	l, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	if err := l.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	// Logging after close must be a silent no-op.
	l.Log(Event{Category: CategoryError})
}

func TestReaderFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.clog")

	now := time.Now().UTC()
	writeEvents(t, path,
		Event{Timestamp: now, ClientID: "c1", Category: CategoryCommand,
			Command: &CommandEvent{Endpoint: "Subscribe"}},
		Event{Timestamp: now, ClientID: "c1", Category: CategoryCommand,
			Command: &CommandEvent{Endpoint: "Unsubscribe"}},
		Event{Timestamp: now, ClientID: "c2", Category: CategoryNotify,
			Notify: &NotifyEvent{Status: "OK"}},
	)

	t.Run("ByEndpoint", func(t *testing.T) {
		r, err := NewFilteredReader(path, Filter{Endpoint: "Subscribe"})
		if err != nil {
			t.Fatalf("NewFilteredReader() error = %v", err)
		}
		defer r.Close()

		e, err := r.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if e.Command.Endpoint != "Subscribe" {
			t.Errorf("endpoint = %q, want Subscribe", e.Command.Endpoint)
		}
		if _, err := r.Next(); err != io.EOF {
			t.Errorf("second Next() error = %v, want io.EOF", err)
		}
	})

	t.Run("ByCategory", func(t *testing.T) {
		cat := CategoryNotify
		r, err := NewFilteredReader(path, Filter{Category: &cat})
		if err != nil {
			t.Fatalf("NewFilteredReader() error = %v", err)
		}
		defer r.Close()

		e, err := r.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if e.ClientID != "c2" {
			t.Errorf("ClientID = %q, want c2", e.ClientID)
		}
	})

	t.Run("ByClientID", func(t *testing.T) {
		r, err := NewFilteredReader(path, Filter{ClientID: "c1"})
		if err != nil {
			t.Fatalf("NewFilteredReader() error = %v", err)
		}
		defer r.Close()

		count := 0
		for {
			if _, err := r.Next(); err == io.EOF {
				break
			} else if err != nil {
				t.Fatalf("Next() error = %v", err)
			}
			count++
		}
		if count != 2 {
			t.Errorf("matched %d events, want 2", count)
		}
	})
}
