package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/healthquest/healthquest/internal/app/engine"
	"github.com/healthquest/healthquest/internal/app/quest"
	"github.com/healthquest/healthquest/internal/domain"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": s.health.Statuses(),
	})
}

// ─── Profile & Body Metrics ─────────────────────────────────────────────────

func (s *Server) handleAppData(w http.ResponseWriter, r *http.Request) {
	data, err := s.engine.AppData(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var in engine.ProfileInput
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.engine.SaveInitialProfile(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type healthUpdateRequest struct {
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

func (s *Server) handleHealthUpdate(w http.ResponseWriter, r *http.Request) {
	var req healthUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	entry, err := s.engine.SaveHeightAndWeight(r.Context(), req.Height, req.Weight)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// ─── Daily Logs ─────────────────────────────────────────────────────────────

type itemsRequest struct {
	Items []string `json:"items"`
}

func (s *Server) handleItems(save func(context.Context, []string) ([]string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req itemsRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		items, err := save(r.Context(), req.Items)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

func (s *Server) handleCompleteDay(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.CompleteDay(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDayHistory(w http.ResponseWriter, r *http.Request) {
	days, err := s.engine.DayHistory(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	days, err := s.engine.CalendarData(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

// ─── Points & Rewards ───────────────────────────────────────────────────────

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		entries []domain.LedgerEntry
		err     error
	)
	if date := q.Get("date"); date != "" {
		d, perr := domain.ParseDate(date)
		if perr != nil {
			writeError(w, perr)
			return
		}
		entries, err = s.engine.PointsOn(r.Context(), d)
	} else {
		limit := 0
		if l := q.Get("limit"); l != "" {
			limit, err = strconv.Atoi(l)
			if err != nil || limit < 0 {
				writeError(w, domain.Errorf(domain.ErrValidation, "invalid limit %q", l))
				return
			}
		}
		entries, err = s.engine.PointsHistory(r.Context(), limit)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleRewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := s.engine.Rewards(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rewards": rewards})
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	cost, err := strconv.ParseInt(chi.URLParam(r, "cost"), 10, 64)
	if err != nil {
		writeError(w, domain.Errorf(domain.ErrValidation, "invalid reward cost %q", chi.URLParam(r, "cost")))
		return
	}
	res, err := s.engine.RedeemReward(r.Context(), cost)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Dynamic Tasks ──────────────────────────────────────────────────────────

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	var (
		tasks []domain.TaskView
		err   error
	)
	if active, _ := strconv.ParseBool(r.URL.Query().Get("active")); active {
		tasks, err = s.engine.ListActiveDynamicTasks(r.Context(), time.Time{})
	} else {
		tasks, err = s.engine.ListAllDynamicTasks(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []domain.TaskView{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in quest.TaskInput
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	task, err := s.engine.CreateDynamicTask(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.engine.CompleteDynamicTask(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	task, err := s.engine.DeleteDynamicTask(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func taskID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Errorf(domain.ErrValidation, "invalid task id %q", raw)
	}
	return id, nil
}
