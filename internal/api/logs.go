package api

import (
	"github.com/apomuden/apomuden/internal/db"
	"net/http"
)

type analyticsResponse struct {
	AverageProcessingTime float64          `json:"average_processing_time"`
	ModelUsage            map[string]int64 `json:"model_usage"`
	DailyActivity         map[string]int64 `json:"daily_activity"`
}

func logFilter(r *http.Request) (db.LogFilter, error) {
	start, err := timeParam(r, "start_date")
	if err != nil {
		return db.LogFilter{}, err
	}
	end, err := timeParam(r, "end_date")
	if err != nil {
		return db.LogFilter{}, err
	}
	return db.LogFilter{
		Start:     start,
		End:       end,
		Language:  r.URL.Query().Get("language"),
		ModelUsed: r.URL.Query().Get("model_used"),
	}, nil
}

// handleQueryLogs lists the caller's own query logs.
func (s *Server) handleQueryLogs(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	s.listQueryLogs(w, r, u.ID, userPages)
}

// handleAllQueryLogs lists query logs of every user.
func (s *Server) handleAllQueryLogs(w http.ResponseWriter, r *http.Request) {
	s.listQueryLogs(w, r, "", adminPages)
}

func (s *Server) listQueryLogs(w http.ResponseWriter, r *http.Request, userID string, bounds pageBounds) {
	page, size, err := pagination(r, bounds)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	filter, err := logFilter(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	filter.UserID = userID

	logs, err := s.queries.QueryLogs(r.Context(), filter, page, size)
	if err != nil {
		s.logger.Error("failed to list query logs", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(logs))
}

func (s *Server) handleErrorLogs(w http.ResponseWriter, r *http.Request) {
	page, size, err := pagination(r, adminPages)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	filter, err := logFilter(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	filter.Language, filter.ModelUsed = "", ""

	logs, err := s.queries.ErrorLogs(r.Context(), filter, page, size)
	if err != nil {
		s.logger.Error("failed to list error logs", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(logs))
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	a, err := s.queries.Analytics(r.Context(), u.ID)
	if err != nil {
		s.logger.Error("failed to compute analytics", "user_id", u.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, analyticsResponse{
		AverageProcessingTime: a.AverageProcessingTime,
		ModelUsage:            a.ModelUsage,
		DailyActivity:         a.DailyActivity,
	})
}
