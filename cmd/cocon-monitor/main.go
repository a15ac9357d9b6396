// Command cocon-monitor connects to a CoCon server and streams its
// notifications.
//
// The monitor maintains the session against the server: it performs the
// connect handshake, long-polls for notifications, reconnects on session
// loss, and replays subscriptions after every reconnect.
//
// Usage:
//
//	cocon-monitor [flags]
//
// Flags:
//
//	-host string       CoCon server hostname or IP (default "localhost")
//	-port int          CoCon server port (default 8890)
//	-config string     YAML configuration file path
//	-models string     Comma-separated models to subscribe to at startup
//	-details           Request detailed notifications (default true)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-event-log string  Write client events to this file (CBOR)
//	-interactive       Enable interactive command mode
//
// Examples:
//
//	# Monitor microphone and delegate events
//	cocon-monitor -host 10.0.0.5 -models Microphone,Delegate
//
//	# Interactive session with an event log for later analysis
//	cocon-monitor -host 10.0.0.5 -interactive -event-log session.clog
//
//	# Load settings from a config file
//	cocon-monitor -config /etc/cocon/monitor.yaml
//
// Interactive Commands:
//
//	subscribe <model> [model...]   - Subscribe to notification models
//	unsubscribe <model> [model...] - Unsubscribe from models
//	send <endpoint> [k=v ...]      - Queue a command for the server
//	models                         - List known notification models
//	status                         - Show client status
//	quit                           - Exit the monitor
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/3P-Technologies/cocon-client/cmd/cocon-monitor/interactive"
	"github.com/3P-Technologies/cocon-client/pkg/cocon"
	"github.com/3P-Technologies/cocon-client/pkg/log"
)

var flags struct {
	Host        string
	Port        int
	ConfigFile  string
	Models      string
	Details     bool
	LogLevel    string
	EventLog    string
	Interactive bool
}

func init() {
	flag.StringVar(&flags.Host, "host", "localhost", "CoCon server hostname or IP")
	flag.IntVar(&flags.Port, "port", 0, "CoCon server port (default 8890)")
	flag.StringVar(&flags.ConfigFile, "config", "", "YAML configuration file path")
	flag.StringVar(&flags.Models, "models", "", "Comma-separated models to subscribe to at startup")
	flag.BoolVar(&flags.Details, "details", true, "Request detailed notifications")
	flag.StringVar(&flags.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&flags.EventLog, "event-log", "", "Write client events to this file (CBOR)")
	flag.BoolVar(&flags.Interactive, "interactive", false, "Enable interactive command mode")
}

func main() {
	flag.Parse()

	logOut := &switchableWriter{w: os.Stderr}
	logger, err := setupLogging(flags.LogLevel, logOut)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fileCfg, err := loadConfigFile(flags.ConfigFile)
	if err != nil {
		logger.Error("failed to load config file", "path", flags.ConfigFile, "error", err)
		os.Exit(1)
	}
	host, port, models, clientCfg := mergeConfig(fileCfg)

	var events log.Logger = log.NoopLogger{}
	if flags.EventLog != "" {
		fl, err := log.NewFileLogger(flags.EventLog)
		if err != nil {
			logger.Error("failed to open event log", "path", flags.EventLog, "error", err)
			os.Exit(1)
		}
		defer fl.Close()
		events = log.NewMultiLogger(fl, log.NewSlogAdapter(logger))
		logger.Info("event log enabled", "path", flags.EventLog)
	}

	client := cocon.NewClient(cocon.Options{
		Host:     host,
		Port:     port,
		Config:   &clientCfg,
		Logger:   logger,
		EventLog: events,
		Handler:  printNotification,
	})

	logger.Info("starting monitor", "host", host, "port", port)
	if err := client.Start(); err != nil {
		logger.Error("failed to start client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(models) > 0 {
		go func() {
			if err := client.Subscribe(ctx, models, flags.Details); err != nil {
				logger.Error("initial subscribe failed", "error", err)
				return
			}
			logger.Info("subscribed", "models", strings.Join(models, ","))
		}()
	}

	if flags.Interactive {
		im, err := interactive.New(client, flags.Details)
		if err != nil {
			logger.Error("failed to start interactive mode", "error", err)
			os.Exit(1)
		}
		// Route logs through readline so they do not mangle the prompt.
		logOut.Set(im.Stdout())
		go im.Run(ctx, cancel)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())
	case <-ctx.Done():
		// Interactive quit.
	case <-client.Done():
		// Client died on its own; Stop below reports why.
	}

	logger.Info("shutting down")
	cancel()
	if err := client.Stop(); err != nil {
		logger.Error("client terminated with error", "error", err)
		os.Exit(1)
	}
}

// printNotification is the default handler: one JSON line per notification.
func printNotification(payload map[string]any) error {
	line, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	fmt.Println(string(line))
	return nil
}
