package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/unoserver/internal/auth"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the game service over HTTP and pushes notifications over
// WebSocket
type Server struct {
	addr      string
	upgrader  websocket.Upgrader
	service   *GameService
	validator auth.Validator
	hub       *Hub
	logger    *log.Logger
}

// NewServer creates a new server
func NewServer(addr string, service *GameService, validator auth.Validator, hub *Hub, logger *log.Logger) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			// Game clients are served from other origins; the token
			// authenticates the subscription.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		service:   service,
		validator: validator,
		hub:       hub,
		logger:    logger.WithPrefix("server"),
	}
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /game", s.handleCreateGame)
	mux.HandleFunc("POST /game/{id}/join", s.handleJoinGame)
	mux.HandleFunc("POST /game/{id}/bot", s.authenticated(s.handleAddBot))
	mux.HandleFunc("POST /game/{id}/start", s.authenticated(s.handleStartGame))
	mux.HandleFunc("POST /game/{id}/playCard", s.authenticated(s.handlePlayCard))
	mux.HandleFunc("POST /game/{id}/drawnCards", s.authenticated(s.handleDrawCards))
	mux.HandleFunc("POST /game/{id}/skip", s.authenticated(s.handleAcceptSkip))
	mux.HandleFunc("GET /game/{id}/status", s.authenticated(s.handleStatus))
	mux.HandleFunc("GET /game/{id}/ws", s.handleWebSocket)
	return mux
}

// Serve listens on the server address until ctx is cancelled, then shuts
// down gracefully
func (s *Server) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", s.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	s.hub.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// authenticatedHandler receives the identity proven by the request's token
type authenticatedHandler func(w http.ResponseWriter, r *http.Request, identity *auth.Identity)

func (s *Server) authenticated(next authenticatedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.writeError(w, errMissingToken)
			return
		}

		identity, err := s.validator.Validate(r.Context(), token)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if identity.GameID != r.PathValue("id") {
			s.writeError(w, ErrWrongGame)
			return
		}

		next(w, r, identity)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// handleWebSocket subscribes an authenticated player to a game's
// notifications. Browsers cannot set headers on WebSocket requests, so the
// token travels in the query string.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")

	identity, err := s.validator.Validate(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if identity.GameID != gameID {
		s.writeError(w, ErrWrongGame)
		return
	}

	// the game must exist and the player must be seated in it
	if _, err := s.service.Status(r.Context(), identity, gameID); err != nil {
		s.writeError(w, err)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	conn := NewConnection(ws, gameID, identity.Player, s.logger)
	s.hub.Register(conn)
	conn.Start()

	// send the current state so the client does not wait for the next event
	if snapshot, err := s.service.Status(r.Context(), identity, gameID); err == nil {
		if msg, err := NewMessage(MessageTypeStatus, snapshot); err == nil {
			_ = conn.SendMessage(msg)
		}
	}

	go func() {
		<-conn.Done()
		s.hub.Unregister(conn)
	}()
}
