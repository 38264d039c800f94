package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/dancerank/internal/errors"
	"github.com/vytor/dancerank/internal/logger"
	"github.com/vytor/dancerank/internal/models"
)

const defaultMaxBody = 8 << 20

type importAnswerRequest struct {
	VideoURL string         `json:"video_url"`
	Sheet    []models.Frame `json:"sheet"`
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequestError("invalid " + name + ": " + raw)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewBadRequestError("invalid " + name + ": " + raw)
	}
	return n, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	limit := s.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBody
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(v); err != nil {
		return errors.NewBadRequestError("invalid request body: " + err.Error())
	}
	return nil
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	musicID, err := pathID(r, "musicId")
	if err != nil {
		handleError(w, r, err)
		return
	}
	top, err := queryInt(r, "top")
	if err != nil {
		handleError(w, r, err)
		return
	}

	entries, err := s.Leaderboard.TopRanking(r.Context(), musicID, top)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetAnswer(w http.ResponseWriter, r *http.Request) {
	musicID, err := pathID(r, "musicId")
	if err != nil {
		handleError(w, r, err)
		return
	}

	answer, err := s.Scoring.GetAnswer(r.Context(), musicID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleImportAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	musicID, err := pathID(r, "musicId")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req importAnswerRequest
	if err := s.decode(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Scoring.ImportSheet(r.Context(), musicID, req.VideoURL, req.Sheet); err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("reference sheet imported: music_id=%d, frames=%d", musicID, len(req.Sheet))
	writeJSON(w, http.StatusCreated, map[string]any{"music_id": musicID, "total_count": len(req.Sheet)})
}

func (s *Server) handleScoreGuest(w http.ResponseWriter, r *http.Request) {
	musicID, err := pathID(r, "musicId")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var frames []models.Frame
	if err := s.decode(w, r, &frames); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.Scoring.ScoreGuest(r.Context(), musicID, frames)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleScoreUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := userFromContext(r.Context())
	musicID, err := pathID(r, "musicId")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var frames []models.Frame
	if err := s.decode(w, r, &frames); err != nil {
		handleError(w, r, err)
		return
	}

	attempt, err := s.Scoring.ScoreUser(r.Context(), musicID, userID, frames)
	if err != nil {
		appErr, ok := errors.As(err)
		if attempt != nil && ok && appErr.Retryable() {
			// The grade is still shown; the client may resubmit to store it.
			w.Header().Set("Retry-After", "1")
			writeJSON(w, appErr.Status, map[string]any{
				"result": attempt,
				"error":  errorBody{Code: appErr.Code, Message: appErr.Message, Retryable: true},
			})
			return
		}
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, attempt)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	userID, _ := userFromContext(r.Context())
	scoreID, err := pathID(r, "scoreId")
	if err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.Scoring.GetResult(r.Context(), scoreID, userID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleBest(w http.ResponseWriter, r *http.Request) {
	userID, _ := userFromContext(r.Context())
	musicID, err := pathID(r, "musicId")
	if err != nil {
		handleError(w, r, err)
		return
	}

	best, err := s.Leaderboard.BestForUser(r.Context(), musicID, userID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if best == nil {
		writeJSON(w, http.StatusOK, map[string]any{"played": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"played": true, "best": best})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := userFromContext(r.Context())
	musicID, err := pathID(r, "musicId")
	if err != nil {
		handleError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}

	recs, err := s.Scoring.History(r.Context(), musicID, userID, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
