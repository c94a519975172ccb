package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Tiliavir/flex/internal/ledger"
	"github.com/Tiliavir/flex/internal/model"
	"github.com/Tiliavir/flex/internal/parse"
	"github.com/Tiliavir/flex/internal/storage"
	"github.com/Tiliavir/flex/internal/timecalc"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

type createProjectRequest struct {
	Name string `json:"name" validate:"required,max=128"`
	// StartDate defaults to today.
	StartDate string `json:"start_date"`
}

type logEntryRequest struct {
	Date        string   `json:"date"`
	Duration    string   `json:"duration" validate:"required_without=From,excluded_with=From"`
	From        string   `json:"from" validate:"required_with=To"`
	To          string   `json:"to" validate:"required_with=From"`
	Breaks      []string `json:"breaks" validate:"excluded_without=From,dive,required"`
	Description string   `json:"description" validate:"max=500"`
}

type projectResponse struct {
	Name            string        `json:"name"`
	StartDate       timecalc.Date `json:"start_date"`
	Entries         int           `json:"entries"`
	WorkedMinutes   int           `json:"worked_minutes"`
	ExpectedMinutes int           `json:"expected_minutes"`
	BalanceMinutes  int           `json:"balance_minutes"`
	Balance         string        `json:"balance"`
}

type entriesResponse struct {
	Project string        `json:"project"`
	Entries model.Entries `json:"entries"`
	Text    []string      `json:"text"`
}

type logEntryResponse struct {
	Entry   json.RawMessage `json:"entry"`
	Text    string          `json:"text"`
	Balance string          `json:"balance"`
}

type deleteResponse struct {
	Removed int `json:"removed"`
}

func (s *Server) today() timecalc.Date {
	return timecalc.DateOf(s.now())
}

func (s *Server) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return s.validate.Struct(v)
}

func summarize(l *ledger.Ledger, today timecalc.Date) projectResponse {
	balance := l.FlexBalance(today)
	return projectResponse{
		Name:            l.Name(),
		StartDate:       l.StartDate(),
		Entries:         l.Len(),
		WorkedMinutes:   l.Worked().Minutes(),
		ExpectedMinutes: l.Expected(today).Minutes(),
		BalanceMinutes:  balance.Minutes(),
		Balance:         balance.String(),
	}
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"projects": names})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	today := s.today()
	start, err := parse.Date(req.StartDate, today)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := storage.ValidateName(req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	unlock := s.locks.lock(req.Name)
	l, err := storage.Create(r.Context(), s.store, req.Name, start)
	unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("project created", "project", l.Name(), "start", l.StartDate())
	writeJSON(w, http.StatusCreated, summarize(l, today))
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	l, err := s.store.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(l, s.today()))
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	l, err := s.store.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entries := l.Entries()
	text := make([]string, 0, len(entries))
	for _, e := range entries {
		text = append(text, e.String())
	}
	writeJSON(w, http.StatusOK, entriesResponse{
		Project: l.Name(),
		Entries: model.Entries(entries),
		Text:    text,
	})
}

// buildEntry turns a validated request into an entry.
func buildEntry(req logEntryRequest, today timecalc.Date) (model.Entry, error) {
	date, err := parse.Date(req.Date, today)
	if err != nil {
		return nil, err
	}
	if req.Duration != "" {
		d, err := parse.Duration(req.Duration)
		if err != nil {
			return nil, err
		}
		return model.NewDurationEntry(d, date, req.Description), nil
	}
	from, err := parse.Clock(req.From)
	if err != nil {
		return nil, err
	}
	to, err := parse.Clock(req.To)
	if err != nil {
		return nil, err
	}
	breaks, err := parse.Durations(req.Breaks)
	if err != nil {
		return nil, err
	}
	return model.NewPeriodEntry(timecalc.NewPeriod(from, to), date, req.Description, breaks), nil
}

func (s *Server) handleLogEntry(w http.ResponseWriter, r *http.Request) {
	var req logEntryRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	today := s.today()
	entry, err := buildEntry(req, today)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	l, err := s.update(r.Context(), chi.URLParam(r, "name"), func(l *ledger.Ledger) error {
		l.Log(entry)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	raw, err := model.MarshalEntry(entry)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.entryLogged(string(entry.Kind()))
	s.logger.Debug("entry logged", "project", l.Name(), "entry", entry.String())
	writeJSON(w, http.StatusCreated, logEntryResponse{
		Entry:   raw,
		Text:    entry.String(),
		Balance: l.FlexBalance(today).String(),
	})
}

func (s *Server) handleDeleteEntries(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		s.writeError(w, r, fmt.Errorf("%w: date query parameter is required", errBadRequest))
		return
	}
	date, err := parse.Date(raw, s.today())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var removed int
	_, err = s.update(r.Context(), chi.URLParam(r, "name"), func(l *ledger.Ledger) error {
		removed = l.DeleteByDate(date)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Removed: removed})
}
