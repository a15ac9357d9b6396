package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/3P-Technologies/cocon-client/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	NotifyByStatus   map[string]int
	CommandEndpoints map[string]int
	Clients          map[string]*ClientStats
	Retries          int
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// ClientStats holds statistics for a single client instance.
type ClientStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Sessions  int
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		NotifyByStatus:   make(map[string]int),
		CommandEndpoints: make(map[string]int),
		Clients:          make(map[string]*ClientStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		client, ok := stats.Clients[event.ClientID]
		if !ok {
			client = &ClientStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
			stats.Clients[event.ClientID] = client
		}
		client.Events++
		if event.Timestamp.After(client.LastSeen) {
			client.LastSeen = event.Timestamp
		}

		switch {
		case event.Connect != nil:
			client.Sessions++
		case event.Notify != nil:
			stats.NotifyByStatus[event.Notify.Status]++
		case event.Command != nil:
			stats.CommandEndpoints[event.Command.Endpoint]++
		case event.Retry != nil:
			stats.Retries++
		case event.Error != nil:
			stats.Errors++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== CoCon Client Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{
		log.CategoryConnect, log.CategoryNotify, log.CategoryCommand,
		log.CategoryRetry, log.CategoryState, log.CategoryError,
	} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-9s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.NotifyByStatus) > 0 {
		fmt.Fprintln(w, "Notify Polls by Status:")
		for _, status := range sortedKeys(stats.NotifyByStatus) {
			fmt.Fprintf(w, "  %-16s %d\n", status+":", stats.NotifyByStatus[status])
		}
		fmt.Fprintln(w)
	}

	if len(stats.CommandEndpoints) > 0 {
		fmt.Fprintln(w, "Commands by Endpoint:")
		for _, ep := range sortedKeys(stats.CommandEndpoints) {
			fmt.Fprintf(w, "  /%-24s %d\n", ep+":", stats.CommandEndpoints[ep])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Clients: %d\n", len(stats.Clients))
	if len(stats.Clients) > 0 {
		type clientInfo struct {
			id    string
			stats *ClientStats
		}
		clients := make([]clientInfo, 0, len(stats.Clients))
		for id, cs := range stats.Clients {
			clients = append(clients, clientInfo{id, cs})
		}
		sort.Slice(clients, func(i, j int) bool {
			return clients[i].stats.FirstSeen.Before(clients[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, c := range clients {
			duration := c.stats.LastSeen.Sub(c.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, %d session(s), duration %s\n",
				shortenID(c.id), c.stats.Events, c.stats.Sessions, duration)
		}
	}

	if stats.Retries > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Retries: %d\n", stats.Retries)
	}
	if stats.Errors > 0 {
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
