package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/3P-Technologies/cocon-client/pkg/log"
)

// exportRecord is the JSONL representation of one event.
type exportRecord struct {
	Timestamp time.Time             `json:"timestamp"`
	ClientID  string                `json:"client_id"`
	Category  string                `json:"category"`
	Connect   *log.ConnectEvent     `json:"connect,omitempty"`
	Notify    *log.NotifyEvent      `json:"notify,omitempty"`
	Command   *log.CommandEvent     `json:"command,omitempty"`
	Retry     *retryRecord          `json:"retry,omitempty"`
	State     *log.StateChangeEvent `json:"state,omitempty"`
	Error     *log.ErrorEvent       `json:"error,omitempty"`
}

// retryRecord renders the backoff delay as a human-readable string instead
// of raw nanoseconds.
type retryRecord struct {
	Op      string `json:"op"`
	Attempt int    `json:"attempt"`
	Delay   string `json:"delay"`
	Reason  string `json:"reason,omitempty"`
}

// RunExport writes the log file as JSONL to the output path, or stdout when
// the path is empty.
func RunExport(path, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		rec := exportRecord{
			Timestamp: event.Timestamp,
			ClientID:  event.ClientID,
			Category:  event.Category.String(),
			Connect:   event.Connect,
			Notify:    event.Notify,
			Command:   event.Command,
			State:     event.State,
			Error:     event.Error,
		}
		if event.Retry != nil {
			rec.Retry = &retryRecord{
				Op:      event.Retry.Op,
				Attempt: event.Retry.Attempt,
				Delay:   event.Retry.Delay.String(),
				Reason:  event.Retry.Reason,
			}
		}

		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}
