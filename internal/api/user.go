package api

import (
	"errors"
	"github.com/apomuden/apomuden/internal/db"
	"github.com/apomuden/apomuden/internal/lang"
	"github.com/gorilla/mux"
	"net/http"
	"time"
)

type profileUpdate struct {
	FullName          *string `json:"full_name"`
	PreferredLanguage *string `json:"preferred_language"`
}

type statsResponse struct {
	TotalQueries      int64            `json:"total_queries"`
	RecentQueries     int64            `json:"recent_queries_30_days"`
	LanguageBreakdown map[string]int64 `json:"language_breakdown"`
	MemberSince       time.Time        `json:"member_since"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	var req profileUpdate
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	var preferred *lang.Code
	if req.PreferredLanguage != nil {
		code, ok := parseLanguage(*req.PreferredLanguage)
		if !ok || *req.PreferredLanguage == "" {
			writeError(w, http.StatusBadRequest, "preferred_language must be en or ak")
			return
		}
		preferred = &code
	}

	updated, err := s.queries.UpdateProfile(r.Context(), u.ID, req.FullName, preferred)
	if err != nil {
		s.logger.Error("failed to update profile", "user_id", u.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	page, size, err := pagination(r, userPages)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	history, err := s.queries.History(r.Context(), u.ID, page, size)
	if err != nil {
		s.logger.Error("failed to load history", "user_id", u.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(history))
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	id := mux.Vars(r)["id"]
	err := s.queries.DeleteHealthQuery(r.Context(), u.ID, id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Query not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete query", "user_id", u.ID, "query_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Query deleted successfully"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	stats, err := s.queries.UserStats(r.Context(), u)
	if err != nil {
		s.logger.Error("failed to compute stats", "user_id", u.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalQueries:      stats.TotalQueries,
		RecentQueries:     stats.RecentQueries,
		LanguageBreakdown: stats.LanguageBreakdown,
		MemberSince:       stats.MemberSince,
	})
}
