package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/lox/unoserver/internal/auth"
	"github.com/lox/unoserver/internal/game"
)

const maxBodySize = 1 << 16

var errMissingToken = errors.New("no auth token provided by the client")

// badRequestError marks a request body that could not be decoded
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return "invalid request body: " + e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func decodeBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := decoder.Decode(v); err != nil {
		return &badRequestError{err: err}
	}
	return nil
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var body PlayerNameData
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.service.CreateGame(r.Context(), body.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, JoinResponseData(result))
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	var body PlayerNameData
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.service.JoinGame(r.Context(), r.PathValue("id"), body.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, JoinResponseData(result))
}

func (s *Server) handleAddBot(w http.ResponseWriter, r *http.Request, identity *auth.Identity) {
	name, err := s.service.AddBot(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, BotAddedData{Name: name})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request, identity *auth.Identity) {
	if err := s.service.StartGame(r.Context(), identity, r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlayCard(w http.ResponseWriter, r *http.Request, identity *auth.Identity) {
	var body PlayCardData
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.service.PlayCard(r.Context(), identity, r.PathValue("id"), body.Card, body.NewColor); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDrawCards(w http.ResponseWriter, r *http.Request, identity *auth.Identity) {
	result, err := s.service.DrawCards(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, DrawnCardsData(result))
}

func (s *Server) handleAcceptSkip(w http.ResponseWriter, r *http.Request, identity *auth.Identity) {
	next, err := s.service.AcceptSkip(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, NextPlayerData{Next: next})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, identity *auth.Identity) {
	snapshot, err := s.service.Status(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, errorType := classifyError(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.Error("Request failed", "error", err)
	} else {
		s.logger.Debug("Request rejected", "type", errorType, "error", err)
	}
	s.writeJSON(w, status, ErrorData{Type: errorType, Message: err.Error()})
}

// classifyError maps service and engine errors to an HTTP status and the
// error type clients switch on
func classifyError(err error) (int, string) {
	var (
		badRequest   *badRequestError
		noSuchPlayer *game.NoSuchPlayerError
		outOfTurn    *game.PlayerOutOfTurnError
		noSuchCard   *game.NoSuchCardError
		cannotPlay   *game.CardCannotBePlayedError
		mustPlay     *game.PlayerMustPlayInsteadError
		invalidColor *game.InvalidColorError
	)

	switch {
	case errors.Is(err, game.ErrInvariantViolation):
		return http.StatusInternalServerError, "INTERNAL"
	case errors.As(err, &badRequest), errors.Is(err, ErrNameRequired):
		return http.StatusBadRequest, "BAD_REQUEST"
	case errors.As(err, &invalidColor):
		return http.StatusBadRequest, "INVALID_COLOR"
	case errors.Is(err, errMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, ErrWrongGame), errors.Is(err, ErrNotAuthor):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, ErrGameNotFound):
		return http.StatusNotFound, "GAME_NOT_FOUND"
	case errors.As(err, &noSuchPlayer):
		return http.StatusNotFound, "PLAYER_NOT_FOUND"
	case errors.Is(err, game.ErrGameNotRunning):
		return http.StatusConflict, "GAME_NOT_RUNNING"
	case errors.Is(err, game.ErrGameAlreadyStarted):
		return http.StatusConflict, "ALREADY_STARTED"
	case errors.Is(err, ErrGameNotInLobby):
		return http.StatusConflict, "GAME_NOT_IN_LOBBY"
	case errors.Is(err, ErrNameTaken):
		return http.StatusConflict, "NAME_TAKEN"
	case errors.Is(err, ErrGameFull):
		return http.StatusConflict, "GAME_FULL"
	case errors.As(err, &outOfTurn):
		return http.StatusConflict, "NOT_YOUR_TURN"
	case errors.As(err, &noSuchCard):
		return http.StatusConflict, "CARD_NOT_IN_HAND"
	case errors.As(err, &cannotPlay):
		return http.StatusConflict, "CANNOT_PLAY_THIS"
	case errors.Is(err, game.ErrPlayerCanPlayInstead), errors.As(err, &mustPlay):
		return http.StatusConflict, "CANNOT_DRAW"
	case errors.Is(err, game.ErrNoSkipToAccept):
		return http.StatusConflict, "NO_SKIP"
	case errors.Is(err, ErrGameBusy), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "GAME_BUSY"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
