package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"gig-market/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError maps an error onto a transport status and writes the standard
// error body. Domain errors carry their own kind and code; anything else is
// an opaque 500.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	status := http.StatusInternalServerError
	code := model.ErrCodeInternalError
	message := "internal server error"

	var de *model.DomainError
	if errors.As(err, &de) {
		code = de.Code
		message = de.Message
		switch de.Kind {
		case model.KindNotFound:
			status = http.StatusNotFound
		case model.KindForbidden:
			status = http.StatusForbidden
		case model.KindConflict:
			status = http.StatusConflict
		case model.KindValidation:
			status = http.StatusBadRequest
		}
	}

	logger.Error().Err(err).Str("code", code).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeMessage reports a transport-level failure such as malformed JSON, an
// unparseable identifier or a bad method.
func writeMessage(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().Str("code", code).Int("status", status).Str("message", message).Msg("request rejected")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// actorID extracts the authenticated caller's user ID. Authentication itself
// happens upstream; by the time a request reaches a handler the gateway has
// verified the header's owner.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return uuid.Nil, errors.New("missing X-User-ID header")
	}
	return uuid.Parse(raw)
}

// pathID parses the path segment following prefix as a UUID, tolerating a
// trailing sub-path.
func pathID(path, prefix string) (uuid.UUID, string, bool) {
	if len(path) <= len(prefix) {
		return uuid.Nil, "", false
	}
	rest := path[len(prefix):]
	idStr := rest
	tail := ""
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			idStr = rest[:i]
			tail = rest[i:]
			break
		}
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, "", false
	}
	return id, tail, true
}
