package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/vovakirdan/retroplay/internal/remote"
)

// UserRequest is the body of PUT /v1/users/{stableID}.
type UserRequest struct {
	DisplayName string `json:"display_name"`
}

// UserResponse is returned by PUT /v1/users/{stableID}.
type UserResponse struct {
	UserID int64 `json:"user_id"`
}

// IncrementRequest is the body of POST /v1/profiles/{userID}/increment.
// A repeated SubmissionID is accepted and ignored.
type IncrementRequest struct {
	SubmissionID string `json:"submission_id"`
	XPDelta      int64  `json:"xp_delta"`
	ScoreDelta   int64  `json:"score_delta"`
}

// ScoreRequest is the body of PUT /v1/scores/{userID}/{gameKey}.
type ScoreRequest struct {
	LastScore int64 `json:"last_score"`
	BestScore int64 `json:"best_score"`
}

// Error codes let clients map a 400 back to the store's sentinel errors.
const (
	CodeInvalidUser       = "invalid_user"
	CodeInvalidSubmission = "invalid_submission"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleUpsertUser(store remote.Store, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UserRequest
		if !decode(w, r, &req) {
			return
		}
		id, err := store.UpsertUser(r.Context(), mux.Vars(r)["stableID"], req.DisplayName)
		if err != nil {
			writeError(w, logger, "upsert user", err)
			return
		}
		writeJSON(w, http.StatusOK, UserResponse{UserID: id})
	}
}

func handleEnsureProfile(store remote.Store, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userIDVar(w, r)
		if !ok {
			return
		}
		if err := store.EnsureProfile(r.Context(), userID); err != nil {
			writeError(w, logger, "ensure profile", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGetProfile(store remote.Store, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userIDVar(w, r)
		if !ok {
			return
		}
		p, err := store.GetProfile(r.Context(), userID)
		if err != nil {
			writeError(w, logger, "get profile", err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleIncrement(store remote.Store, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userIDVar(w, r)
		if !ok {
			return
		}
		var req IncrementRequest
		if !decode(w, r, &req) {
			return
		}
		if err := remote.ValidateIncrement(req.SubmissionID, req.XPDelta, req.ScoreDelta); err != nil {
			writeError(w, logger, "increment profile", err)
			return
		}
		if err := store.IncrementProfileStats(r.Context(), userID, req.SubmissionID, req.XPDelta, req.ScoreDelta); err != nil {
			writeError(w, logger, "increment profile", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGetGameScore(store remote.Store, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userIDVar(w, r)
		if !ok {
			return
		}
		gs, err := store.GetGameScore(r.Context(), userID, mux.Vars(r)["gameKey"])
		if err != nil {
			writeError(w, logger, "get game score", err)
			return
		}
		if gs == nil {
			writeError(w, logger, "get game score", remote.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, gs)
	}
}

func handleUpsertGameScore(store remote.Store, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userIDVar(w, r)
		if !ok {
			return
		}
		var req ScoreRequest
		if !decode(w, r, &req) {
			return
		}
		if err := remote.ValidateScores(req.LastScore, req.BestScore); err != nil {
			writeError(w, logger, "upsert game score", err)
			return
		}
		err := store.UpsertGameScore(r.Context(), userID, mux.Vars(r)["gameKey"], req.LastScore, req.BestScore)
		if err != nil {
			writeError(w, logger, "upsert game score", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleTopProfiles(store remote.Store, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := store.ListTopProfilesByXP(r.Context(), limitParam(r))
		if err != nil {
			writeError(w, logger, "list top profiles", err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func handleTopScores(store remote.Store, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := store.ListTopScoresForGame(r.Context(), mux.Vars(r)["gameKey"], limitParam(r))
		if err != nil {
			writeError(w, logger, "list top scores", err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func userIDVar(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["userID"], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid user id", Code: CodeInvalidUser})
		return 0, false
	}
	return id, true
}

func limitParam(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return remote.DefaultLimit
	}
	return remote.NormalizeLimit(limit)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, logger *log.Logger, action string, err error) {
	switch {
	case errors.Is(err, remote.ErrInvalidUser):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: CodeInvalidUser})
	case errors.Is(err, remote.ErrInvalidSubmission):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: CodeInvalidSubmission})
	case errors.Is(err, remote.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	default:
		logger.Error("store call failed", "action", action, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
