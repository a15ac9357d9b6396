// Package testserver provides a scriptable in-memory CoCon server for tests.
//
// The server implements the Connect handshake, the Notification long-poll,
// and the command endpoints, and records every call so tests can assert on
// ordering (for example that a reconnect replays subscriptions before the
// next poll). Failure modes are scripted per endpoint.
package testserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHoldTime is how long an empty Notification poll is held before the
// server answers 408. Kept short so tests stay fast.
const DefaultHoldTime = 25 * time.Millisecond

// notifyStep is one scripted Notification response.
type notifyStep struct {
	status  int
	payload map[string]any
}

// CommandCall records one command request.
type CommandCall struct {
	// Endpoint without the leading slash.
	Endpoint string

	// Params are the query parameters of the request.
	Params map[string]string
}

// Model returns the Model query parameter of the call.
func (c CommandCall) Model() string {
	return c.Params["Model"]
}

// SessionID returns the id query parameter of the call.
func (c CommandCall) SessionID() string {
	return c.Params["id"]
}

// Server is a fake CoCon server backed by httptest.
// All exported methods are safe for concurrent use.
type Server struct {
	httpSrv *httptest.Server

	// HoldTime is how long an empty poll is held before 408.
	HoldTime time.Duration

	mu              sync.Mutex
	sessions        map[string]bool
	lastSession     string
	connectCount    int
	connectFailures int
	commandFailures map[string][]int // endpoint -> queued failure statuses
	commands        []CommandCall

	notifyCh chan notifyStep
}

// New starts a fake CoCon server. Callers must Close it.
func New() *Server {
	s := &Server{
		HoldTime:        DefaultHoldTime,
		sessions:        make(map[string]bool),
		commandFailures: make(map[string][]int),
		notifyCh:        make(chan notifyStep, 64),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/CoCon/Connect", s.handleConnect)
	mux.HandleFunc("/CoCon/Notification", s.handleNotification)
	mux.HandleFunc("/CoCon/", s.handleCommand)

	s.httpSrv = httptest.NewServer(mux)
	return s
}

// URL returns the base URL of the server (scheme://host:port).
func (s *Server) URL() string {
	return s.httpSrv.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.httpSrv.Close()
}

// FailConnects makes the next n Connect calls answer 503.
func (s *Server) FailConnects(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectFailures = n
}

// FailCommands queues failure statuses for an endpoint; each request pops
// one until the queue is empty.
func (s *Server) FailCommands(endpoint string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commandFailures[endpoint] = append(s.commandFailures[endpoint], statuses...)
}

// QueueNotification schedules a 200 Notification response with the payload.
func (s *Server) QueueNotification(payload map[string]any) {
	s.notifyCh <- notifyStep{status: http.StatusOK, payload: payload}
}

// QueueNotifyStatus schedules a Notification response with a bare status.
func (s *Server) QueueNotifyStatus(status int) {
	s.notifyCh <- notifyStep{status: status}
}

// InvalidateSessions voids every issued session id. The next Notification
// poll answers 400, forcing the client through a reconnect.
func (s *Server) InvalidateSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.sessions {
		s.sessions[id] = false
	}
}

// ConnectCount returns the number of successful Connect handshakes.
func (s *Server) ConnectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectCount
}

// LastSession returns the most recently issued session id.
func (s *Server) LastSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSession
}

// Commands returns all recorded command calls in arrival order.
func (s *Server) Commands() []CommandCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CommandCall, len(s.commands))
	copy(out, s.commands)
	return out
}

// CommandsFor returns recorded calls to one endpoint in arrival order.
func (s *Server) CommandsFor(endpoint string) []CommandCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []CommandCall
	for _, c := range s.commands {
		if c.Endpoint == endpoint {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.connectFailures > 0 {
		s.connectFailures--
		s.mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	id := uuid.NewString()
	s.sessions[id] = true
	s.lastSession = id
	s.connectCount++
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"Connect": true, "id": %q}`, id)
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	s.mu.Lock()
	valid := s.sessions[id]
	hold := s.HoldTime
	s.mu.Unlock()

	if !valid {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	select {
	case step := <-s.notifyCh:
		if step.status != http.StatusOK {
			w.WriteHeader(step.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(step.payload)
	case <-time.After(hold):
		w.WriteHeader(http.StatusRequestTimeout)
	case <-r.Context().Done():
	}
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.TrimPrefix(r.URL.Path, "/CoCon/")

	params := make(map[string]string)
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}

	s.mu.Lock()
	s.commands = append(s.commands, CommandCall{Endpoint: endpoint, Params: params})
	var failStatus int
	if queue := s.commandFailures[endpoint]; len(queue) > 0 {
		failStatus = queue[0]
		s.commandFailures[endpoint] = queue[1:]
	}
	s.mu.Unlock()

	if failStatus != 0 {
		w.WriteHeader(failStatus)
		fmt.Fprintf(w, "scripted failure for /%s", endpoint)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "OK")
}
