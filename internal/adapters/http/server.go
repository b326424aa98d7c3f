// Package http exposes a read-only status surface for a running label:
// health, the current label snapshot, a server-sent event stream of text
// changes and Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/dyntext/internal/logging"
	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label is the part of a label the server reports on.
type Label interface {
	Snapshot() domain.TransitionState
	Configuration() domain.TokenConfiguration
}

// Rotating is implemented by labels that also rotate.
type Rotating interface {
	RotationState() domain.RotationState
}

// LabelStatus is the body of GET /label.
type LabelStatus struct {
	domain.TransitionState
	Policy    domain.UpdatePolicy   `json:"policy"`
	Frequency int                   `json:"frequency"`
	Rotation  *domain.RotationState `json:"rotation,omitempty"`
}

// Server serves the status routes.
type Server struct {
	label    Label
	version  string
	gatherer prometheus.Gatherer
	streams  *StreamManager
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithGatherer mounts GET /metrics for g.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = strings.TrimSpace(v)
	}
}

// WithStreams shares sm, typically one already fed by StreamHooks.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		if sm != nil {
			s.streams = sm
		}
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a status server for label.
func New(label Label, opts ...Option) *Server {
	s := &Server{
		label:   label,
		version: "dev",
		streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/label", s.GetLabel)
	r.Get("/label/events", s.SubscribeEvents)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

// Hooks returns lifecycle hooks that feed GET /label/events.
func (s *Server) Hooks() domain.LifecycleHooks {
	return StreamHooks(s.streams)
}

// StreamHooks returns lifecycle hooks broadcasting text updates, rotations
// and rotation stops to sm as JSON.
func StreamHooks(sm *StreamManager) domain.LifecycleHooks {
	broadcast := func(event any) {
		if data, err := json.Marshal(event); err == nil {
			sm.Broadcast(string(data))
		}
	}
	return domain.LifecycleHooks{
		OnTextUpdate: func(_ context.Context, e *domain.TextEvent) {
			broadcast(e)
		},
		OnRotate: func(_ context.Context, e *domain.RotationEvent) {
			broadcast(e)
		},
		OnRotationStop: func(_ context.Context, e *domain.RotationEvent) {
			broadcast(e)
		},
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"app":     "dyntext",
		"version": s.version,
	})
}

// GetLabel handles the GET /label request.
func (s *Server) GetLabel(w http.ResponseWriter, r *http.Request) {
	config := s.label.Configuration()
	status := LabelStatus{
		TransitionState: s.label.Snapshot(),
		Policy:          config.UpdatePolicy(),
		Frequency:       config.TokenFrequency(),
	}
	if rot, ok := s.label.(Rotating); ok {
		state := rot.RotationState()
		status.Rotation = &state
	}
	s.writeJSON(w, status)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// SubscribeEvents handles the GET /label/events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE client connected")

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// StreamManager fans messages out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}
	dropped     int
}

// NewStreamManager creates an empty manager.
func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan string]struct{}),
	}
}

// Subscribe registers a buffered channel. The returned func unregisters and
// closes it.
func (sm *StreamManager) Subscribe() (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Broadcast sends msg to every subscriber without blocking.
// Slow clients miss messages.
func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			sm.dropped++
		}
	}
}

// Subscribers returns the number of connected clients.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}
