package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/store"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	WriteError(w, http.StatusInternalServerError, "Internal Server Error")
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	WriteError(w, http.StatusBadRequest, msg)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	WriteError(w, http.StatusNotFound, msg)
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	slog.Warn("conflict", "message", msg, "error", err)
	WriteError(w, http.StatusConflict, msg)
}

func Unauthorized(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, "Unauthorized")
}

// HandleError picks the response status from the kind of err. Lookups that
// found nothing are checked before integrity errors because an IntegrityError
// may wrap ErrGameNotFound.
func HandleError(w http.ResponseWriter, msg string, err error) {
	switch {
	case IsNotFound(err):
		NotFound(w, err.Error(), err)
	case bracket.IsValidation(err):
		BadRequest(w, err.Error(), err)
	case bracket.IsIntegrity(err):
		Conflict(w, err.Error(), err)
	default:
		InternalServerError(w, msg, err)
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, bracket.ErrGameNotFound) ||
		errors.Is(err, bracket.ErrTeamNotFound) ||
		errors.Is(err, bracket.ErrParticipantNotFound) ||
		errors.Is(err, store.ErrTournamentNotFound)
}
