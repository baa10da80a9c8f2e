package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getlawrence/prdgate/internal/backlog"
	"github.com/getlawrence/prdgate/internal/domain"
)

type decisionRequest struct {
	Backlog string `json:"backlog"`
	ItemID  string `json:"item_id"`
}

type scanRequest struct {
	Backlog string   `json:"backlog"`
	ItemIDs []string `json:"item_ids,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.ItemID) == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing item_id"))
		return
	}

	b, ok := s.parse(w, req.Backlog)
	if !ok {
		return
	}
	item, err := b.Find(req.ItemID)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	d := s.policy.Decide(item)
	s.metrics.ObserveDecision(d)
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	b, ok := s.parse(w, req.Backlog)
	if !ok {
		return
	}
	items, err := b.Select(req.ItemIDs)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	decisions := s.policy.DecideAll(items)
	for _, d := range decisions {
		s.metrics.ObserveDecision(d)
	}
	writeJSON(w, http.StatusOK, domain.NewReport("", decisions, b.Warnings))
}

// parse writes the error response itself and reports whether to continue
func (s *Server) parse(w http.ResponseWriter, text string) (*backlog.Backlog, bool) {
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing backlog"))
		return nil, false
	}
	b, err := s.parser.Parse([]byte(text))
	if err != nil {
		s.metrics.ObserveParseError()
		status := http.StatusInternalServerError
		if errors.Is(err, backlog.ErrNoBacklogTable) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return nil, false
	}
	return b, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
