// Package devserver is the `vivjson serve` dev console: an HTTP endpoint
// that evaluates a posted source and mirrors every result over WebSocket to
// any attached console clients, so multiple browser tabs watching one
// session see the same evaluations.
package devserver

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// EvalFunc evaluates one source string and returns its stringified result.
// The CLI passes a closure over the embedding API and the display layer.
type EvalFunc func(source string) (string, error)

// EvalRequest is the POST /eval body.
type EvalRequest struct {
	Source string `json:"source"`
}

// EvalResponse is both the POST /eval response and the broadcast frame.
type EvalResponse struct {
	ID     string `json:"id"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Server holds the console state.
type Server struct {
	logger *zap.Logger
	eval   EvalFunc

	// tokenHash, when non-empty, is the bcrypt hash POST /eval callers must
	// present the matching bearer token for.
	tokenHash string

	// evalMu serializes evaluations: the evaluator is synchronous and its
	// shared frame must never see two concurrent runs.
	evalMu sync.Mutex

	clientsMu sync.Mutex
	clients   map[string]*websocket.Conn

	upgrader websocket.Upgrader
}

// Option configures a Server; see New.
type Option func(*Server)

// WithAccessTokenHash requires a bearer token matching the bcrypt hash.
func WithAccessTokenHash(hash string) Option {
	return func(s *Server) { s.tokenHash = hash }
}

// New creates a dev-console server around an EvalFunc.
func New(logger *zap.Logger, eval EvalFunc, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:  logger,
		eval:    eval,
		clients: make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP surface.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/eval", s.handleEval)
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req EvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	resp := EvalResponse{ID: uuid.NewString()}

	s.evalMu.Lock()
	result, err := s.eval(req.Source)
	s.evalMu.Unlock()
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Result = result
	}

	s.broadcast(resp)

	w.Header().Set("Content-Type", "application/json")
	if resp.Error != "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("error writing eval response", zap.Error(err))
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.tokenHash == "" {
		return true
	}
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.tokenHash), []byte(auth[len(prefix):])) == nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	s.clientsMu.Lock()
	s.clients[id] = conn
	s.clientsMu.Unlock()
	s.logger.Info("console client attached", zap.String("client", id))

	// Drain (and ignore) client frames until the connection drops, so pings
	// and close frames are processed.
	go func() {
		defer s.detach(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) detach(id string) {
	s.clientsMu.Lock()
	conn, ok := s.clients[id]
	delete(s.clients, id)
	s.clientsMu.Unlock()
	if ok {
		conn.Close()
		s.logger.Info("console client detached", zap.String("client", id))
	}
}

// broadcast sends a result frame to every attached client, dropping clients
// whose connection has failed.
func (s *Server) broadcast(resp EvalResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Warn("error encoding broadcast frame", zap.Error(err))
		return
	}

	s.clientsMu.Lock()
	conns := make(map[string]*websocket.Conn, len(s.clients))
	for id, conn := range s.clients {
		conns[id] = conn
	}
	s.clientsMu.Unlock()

	for id, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.logger.Warn("dropping console client", zap.String("client", id), zap.Error(err))
			s.detach(id)
		}
	}
}

// ClientCount reports how many console clients are attached.
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}
