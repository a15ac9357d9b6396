package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/3P-Technologies/cocon-client/pkg/cocon"
)

// fileConfig is the YAML configuration file layout. All fields are
// optional; command-line flags override them.
//
// Example:
//
//	host: 10.0.0.5
//	port: 8890
//	models: [Microphone, Delegate]
//	details: true
//	client:
//	  max_retries: 10
//	  backoff_base: 1s
//	  notify_timeout: 40s
type fileConfig struct {
	Host    string       `yaml:"host"`
	Port    int          `yaml:"port"`
	Models  []string     `yaml:"models"`
	Details *bool        `yaml:"details"`
	Client  cocon.Config `yaml:"client"`
}

// loadConfigFile reads and parses the YAML config file. Client settings
// start from the library defaults so an absent or partial client section
// keeps sane retry behavior; an empty path yields the defaults alone.
func loadConfigFile(path string) (fileConfig, error) {
	cfg := fileConfig{Client: cocon.DefaultConfig()}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// mergeConfig combines the config file with command-line flags; flags win
// where both are set.
func mergeConfig(file fileConfig) (host string, port int, models []string, cfg cocon.Config) {
	host = file.Host
	if flags.Host != "localhost" || host == "" {
		host = flags.Host
	}

	port = file.Port
	if flags.Port != 0 {
		port = flags.Port
	}

	models = file.Models
	if flags.Models != "" {
		models = nil
		for _, m := range strings.Split(flags.Models, ",") {
			if m = strings.TrimSpace(m); m != "" {
				models = append(models, m)
			}
		}
	}

	if file.Details != nil && !*file.Details {
		flags.Details = false
	}

	cfg = file.Client
	return host, port, models, cfg
}

// switchableWriter lets log output be redirected after the logger is
// built, e.g. through readline once interactive mode starts.
type switchableWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *switchableWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Set redirects subsequent writes to w.
func (s *switchableWriter) Set(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

// setupLogging builds the operational logger for the given level.
func setupLogging(level string, w io.Writer) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s (use: debug, info, warn, error)", s)
	}
}
