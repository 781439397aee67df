package api

import (
	"context"
	"errors"
	"github.com/apomuden/apomuden/internal/answer"
	"github.com/apomuden/apomuden/internal/db"
	"github.com/apomuden/apomuden/internal/lang"
	"github.com/apomuden/apomuden/internal/transcribe"
	"github.com/google/uuid"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const maxAudioBytes = 25 << 20

type askRequest struct {
	Question string `json:"question"`
	Language string `json:"language"`
	Context  string `json:"context"`
}

type askResponse struct {
	Response              string    `json:"response"`
	Confidence            *float64  `json:"confidence"`
	Language              lang.Code `json:"language"`
	ModelUsed             string    `json:"model_used"`
	QueryID               string    `json:"query_id"`
	IsEmergency           bool      `json:"is_emergency"`
	Timestamp             time.Time `json:"timestamp"`
	Transcription         string    `json:"transcription,omitempty"`
	TranscriptionLanguage lang.Code `json:"transcription_language,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "Question cannot be empty")
		return
	}

	resp, ok := s.ask(w, r, answer.Question{Text: req.Question, Language: req.Language, Context: req.Context}, db.QueryData{
		Question: req.Question,
		Language: req.Language,
		Context:  req.Context,
	})
	if ok {
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleAskAudio(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, transcribe.ErrNotConfigured.Error())
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	err := r.ParseMultipartForm(maxAudioBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("audio_file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "audio_file is required")
		return
	}
	defer file.Close()
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "audio/") {
		writeError(w, http.StatusBadRequest, "File must be an audio file")
		return
	}
	hint := r.FormValue("language")

	start := time.Now()
	transcript, err := s.transcriber.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		s.logger.Error("failed to transcribe audio", "file", header.Filename, "err", err)
		s.logError(r, db.QueryData{AudioFile: header.Filename, Language: hint}, err, time.Since(start))
		writeError(w, http.StatusBadGateway, "Failed to transcribe audio")
		return
	}
	if transcript.Text == "" {
		writeError(w, http.StatusBadRequest, "No speech could be recognized in the audio")
		return
	}
	if hint == "" || hint == string(lang.Auto) {
		hint = string(transcript.Language)
	}

	resp, ok := s.ask(w, r, answer.Question{Text: transcript.Text, Language: hint}, db.QueryData{
		Question:    transcript.Text,
		Language:    hint,
		AudioFile:   header.Filename,
		Transcribed: transcript.Text,
	})
	if !ok {
		return
	}
	resp.Transcription = transcript.Text
	resp.TranscriptionLanguage = transcript.Language
	writeJSON(w, http.StatusOK, resp)
}

// ask resolves q and records it. On failure the error response has already
// been written and ok is false.
func (s *Server) ask(w http.ResponseWriter, r *http.Request, q answer.Question, data db.QueryData) (askResponse, bool) {
	ctx := r.Context()
	u, authenticated := userFrom(ctx)
	queryID := uuid.NewString()
	logger := s.logger.With("query_id", queryID)

	start := time.Now()
	res, err := s.resolver.Resolve(ctx, q)
	took := time.Since(start)
	if errors.Is(err, answer.ErrEmptyQuestion) {
		writeError(w, http.StatusBadRequest, "Question cannot be empty")
		return askResponse{}, false
	}
	if err != nil {
		logger.Warn("failed to resolve question", "err", err)
		s.logError(r, data, err, took)
		writeError(w, http.StatusServiceUnavailable, "Request was cancelled")
		return askResponse{}, false
	}
	logger.Info("answered question", "source", res.Source, "language", res.Language, "emergency", res.IsEmergency, "took", took)

	if authenticated {
		s.saveHealthQuery(ctx, logger, db.HealthQuery{
			ID:               queryID,
			UserID:           u.ID,
			QueryText:        q.Text,
			QueryLanguage:    q.Language,
			ResponseText:     res.Answer,
			ResponseLanguage: res.Language,
			Confidence:       res.Confidence,
			ModelUsed:        res.Source,
			IsEmergency:      res.IsEmergency,
			ProcessingTime:   took.Seconds(),
			Timestamp:        res.Timestamp,
		})
	}
	err = s.queries.LogQuery(ctx, db.QueryLog{
		UserID: u.ID,
		Query:  data,
		Response: db.ResponseData{
			Response:    res.Answer,
			Confidence:  res.Confidence,
			Language:    res.Language,
			ModelUsed:   res.Source,
			IsEmergency: res.IsEmergency,
			IsError:     res.IsError,
		},
		ProcessingTime: took.Seconds(),
		Timestamp:      res.Timestamp,
	})
	if err != nil {
		logger.Error("failed to log query", "err", err)
	}

	return askResponse{
		Response:    res.Answer,
		Confidence:  res.Confidence,
		Language:    res.Language,
		ModelUsed:   res.Source,
		QueryID:     queryID,
		IsEmergency: res.IsEmergency,
		Timestamp:   res.Timestamp,
	}, true
}

func (s *Server) saveHealthQuery(ctx context.Context, logger *slog.Logger, h db.HealthQuery) {
	_, err := s.queries.CreateHealthQuery(ctx, h)
	if err != nil {
		logger.Error("failed to save health query", "err", err)
	}
}

// logError records a failed request. The request context may already be
// cancelled so the write gets its own deadline.
func (s *Server) logError(r *http.Request, data db.QueryData, cause error, took time.Duration) {
	u, _ := userFrom(r.Context())
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
	defer cancel()
	err := s.queries.LogError(ctx, db.ErrorLog{
		UserID:         u.ID,
		Endpoint:       r.URL.Path,
		Query:          data,
		Error:          cause.Error(),
		ProcessingTime: took.Seconds(),
	})
	if err != nil {
		s.logger.Error("failed to log error", "err", err)
	}
}
