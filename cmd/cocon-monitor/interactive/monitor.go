// Package interactive provides the interactive command-line interface
// for the CoCon monitor.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/3P-Technologies/cocon-client/pkg/cocon"
	"github.com/3P-Technologies/cocon-client/pkg/model"
)

// Monitor handles interactive mode for cocon-monitor.
type Monitor struct {
	client  *cocon.Client
	details bool
	rl      *readline.Instance
}

// New creates a new interactive monitor handler. details controls whether
// subscribe commands request detailed notifications.
func New(client *cocon.Client, details bool) (*Monitor, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "cocon> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Monitor{
		client:  client,
		details: details,
		rl:      rl,
	}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (m *Monitor) Stdout() io.Writer {
	return m.rl.Stdout()
}

// Run starts the interactive command loop.
func (m *Monitor) Run(ctx context.Context, cancel context.CancelFunc) {
	defer m.rl.Close()

	m.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := m.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(m.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			m.printHelp()

		case "subscribe", "sub":
			m.cmdSubscribe(ctx, args)

		case "unsubscribe", "unsub":
			m.cmdUnsubscribe(ctx, args)

		case "send":
			m.cmdSend(ctx, args)

		case "models":
			m.cmdModels()

		case "status":
			m.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(m.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(m.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (m *Monitor) printHelp() {
	fmt.Fprintln(m.rl.Stdout(), `
CoCon Monitor Commands:
  Subscriptions:
    subscribe <model> [model...]    - Subscribe to notification models
    unsubscribe <model> [model...]  - Unsubscribe from models
    models                          - List known notification models

  Control:
    send <endpoint> [key=value ...] - Queue a command for the server
                                      e.g. send Microphone/SetState State=On

  General:
    status                          - Show client status
    help                            - Show this help
    quit                            - Exit the monitor`)
}

// cmdSubscribe handles the subscribe command.
func (m *Monitor) cmdSubscribe(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: subscribe <model> [model...]")
		fmt.Fprintln(m.rl.Stdout(), "  Use 'models' to list known models")
		return
	}

	if err := m.client.Subscribe(ctx, args, m.details); err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Subscribe failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.rl.Stdout(), "Subscribed to %s\n", strings.Join(args, ", "))
}

// cmdUnsubscribe handles the unsubscribe command.
func (m *Monitor) cmdUnsubscribe(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: unsubscribe <model> [model...]")
		return
	}

	if err := m.client.Unsubscribe(ctx, args); err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Unsubscribe failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.rl.Stdout(), "Unsubscribed from %s\n", strings.Join(args, ", "))
}

// cmdSend handles the send command.
func (m *Monitor) cmdSend(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: send <endpoint> [key=value ...]")
		fmt.Fprintln(m.rl.Stdout(), "  Example: send Microphone/SetState State=On SeatNr=3")
		return
	}

	endpoint := strings.TrimPrefix(args[0], "/")
	params := make(map[string]string)
	for _, kv := range args[1:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			fmt.Fprintf(m.rl.Stdout(), "Invalid parameter %q, expected key=value\n", kv)
			return
		}
		params[k] = v
	}

	if err := m.client.Send(ctx, endpoint, params); err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Send failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.rl.Stdout(), "Queued /%s\n", endpoint)
}

// cmdModels lists the known notification models.
func (m *Monitor) cmdModels() {
	fmt.Fprint(m.rl.Stdout(), modelListing(m.client.Subscriptions()))
}

// modelListing renders the known models, marking subscribed ones.
func modelListing(subscriptions []string) string {
	subscribed := make(map[string]bool)
	for _, s := range subscriptions {
		subscribed[s] = true
	}

	var b strings.Builder
	b.WriteString("\nNotification Models:\n")
	for _, name := range model.Names(model.All()) {
		marker := " "
		if subscribed[name] {
			marker = "*"
		}
		fmt.Fprintf(&b, "  %s %s\n", marker, name)
	}
	b.WriteString("\n  * = subscribed\n")
	return b.String()
}

// cmdStatus handles the status command.
func (m *Monitor) cmdStatus() {
	subs := m.client.Subscriptions()

	fmt.Fprintln(m.rl.Stdout(), "\nClient Status")
	fmt.Fprintln(m.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(m.rl.Stdout(), "  State:         %s\n", m.client.State())
	fmt.Fprintf(m.rl.Stdout(), "  Client ID:     %s\n", m.client.ClientID())
	fmt.Fprintf(m.rl.Stdout(), "  Subscriptions: %d\n", len(subs))
	for _, s := range subs {
		fmt.Fprintf(m.rl.Stdout(), "      %s\n", s)
	}
	fmt.Fprintln(m.rl.Stdout())
}
