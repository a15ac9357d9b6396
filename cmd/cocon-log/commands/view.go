// Package commands implements the cocon-log CLI commands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/3P-Technologies/cocon-client/pkg/log"
)

// ParseCategoryFlag parses a category string from a command-line flag
// (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "connect":
		return log.CategoryConnect, nil
	case "notify":
		return log.CategoryNotify, nil
	case "command":
		return log.CategoryCommand, nil
	case "retry":
		return log.CategoryRetry, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be connect, notify, command, retry, state, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
	return nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [client:id] CATEGORY
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [client:%s] %s\n", ts, shortenID(event.ClientID), event.Category)

	switch {
	case event.Connect != nil:
		fmt.Fprintf(w, "  Session: %s\n", event.Connect.SessionID)

	case event.Notify != nil:
		fmt.Fprintf(w, "  Status: %s", event.Notify.Status)
		if event.Notify.HTTPStatus != 0 {
			fmt.Fprintf(w, " (HTTP %d)", event.Notify.HTTPStatus)
		}
		fmt.Fprintln(w)
		if event.Notify.Payload != nil {
			if payloadJSON, err := json.Marshal(event.Notify.Payload); err == nil {
				fmt.Fprintf(w, "  Payload: %s\n", string(payloadJSON))
			}
		}

	case event.Command != nil:
		fmt.Fprintf(w, "  Endpoint: /%s\n", event.Command.Endpoint)
		if len(event.Command.Params) > 0 {
			if paramsJSON, err := json.Marshal(event.Command.Params); err == nil {
				fmt.Fprintf(w, "  Params: %s\n", string(paramsJSON))
			}
		}
		if event.Command.HTTPStatus != 0 {
			fmt.Fprintf(w, "  HTTP: %d\n", event.Command.HTTPStatus)
		}

	case event.Retry != nil:
		fmt.Fprintf(w, "  Op: %s (attempt %d, delay %s)\n",
			event.Retry.Op, event.Retry.Attempt, event.Retry.Delay)
		if event.Retry.Reason != "" {
			fmt.Fprintf(w, "  Reason: %s\n", event.Retry.Reason)
		}

	case event.State != nil:
		if event.State.OldState != "" {
			fmt.Fprintf(w, "  %s -> %s\n", event.State.OldState, event.State.NewState)
		} else {
			fmt.Fprintf(w, "  -> %s\n", event.State.NewState)
		}
		if event.State.Reason != "" {
			fmt.Fprintf(w, "  Reason: %s\n", event.State.Reason)
		}

	case event.Error != nil:
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", event.Error.Context)
		}
		fmt.Fprintf(w, "  Message: %s\n", event.Error.Message)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenID returns the first 8 characters of a client ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
