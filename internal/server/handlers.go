package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/masonry"
	"github.com/matzehuels/masonry/pkg/pipeline"
	"github.com/matzehuels/masonry/pkg/session"
)

// itemsRequest carries an item sequence, either flat or split into batches
// that are appended in turn. Flat items form one last batch.
type itemsRequest struct {
	Items   []io.Item  `json:"items,omitempty"`
	Batches []io.Batch `json:"batches,omitempty"`
}

func (q itemsRequest) batches() []io.Batch {
	out := append([]io.Batch{}, q.Batches...)
	if len(q.Items) > 0 {
		out = append(out, io.Batch{Items: q.Items})
	}
	return out
}

type layoutRequest struct {
	Grid masonry.Config `json:"grid"`
	itemsRequest
}

type gridRequest struct {
	Grid masonry.Config `json:"grid"`
}

type layoutResponse struct {
	*io.Layout
	SessionID string `json:"session_id,omitempty"`
	CacheHit  bool   `json:"cache_hit"`
	Placed    int    `json:"placed"`
}

func newLayoutResponse(res *pipeline.Result) layoutResponse {
	return layoutResponse{
		Layout:    res.Layout,
		SessionID: res.SessionID,
		CacheHit:  res.CacheHit,
		Placed:    res.Stats.Placed,
	}
}

type gridResponse struct {
	ID        string              `json:"id"`
	Grid      masonry.Config      `json:"grid"`
	Items     int                 `json:"items"`
	Height    float64             `json:"height"`
	Heights   []float64           `json:"heights"`
	Placed    []session.Placement `json:"placed"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func newGridResponse(sess *session.Session) gridResponse {
	return gridResponse{
		ID:        sess.ID,
		Grid:      sess.Grid,
		Items:     len(sess.Placed),
		Height:    sess.Height(),
		Heights:   sess.Heights,
		Placed:    sess.Placed,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req := layoutRequest{Grid: masonry.DefaultConfig()}
	if err := decode(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.LayoutBatches(r.Context(), req.Grid, req.batches())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newLayoutResponse(res))
}

func (s *Server) handleCreateGrid(w http.ResponseWriter, r *http.Request) {
	req := gridRequest{Grid: masonry.DefaultConfig()}
	if err := decode(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.runner.CreateSession(r.Context(), req.Grid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/grids/"+sess.ID)
	s.writeJSON(w, http.StatusCreated, newGridResponse(sess))
}

func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	sess, err := s.runner.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newGridResponse(sess))
}

func (s *Server) handleGridLayout(w http.ResponseWriter, r *http.Request) {
	var req itemsRequest
	if err := decode(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.LayoutSession(r.Context(), chi.URLParam(r, "id"), req.batches())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newLayoutResponse(res))
}

func (s *Server) handleResetGrid(w http.ResponseWriter, r *http.Request) {
	sess, err := s.runner.ResetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newGridResponse(sess))
}

func (s *Server) handleDeleteGrid(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
