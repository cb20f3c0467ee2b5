package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pedsignal/pkg/errors"
	"github.com/matzehuels/pedsignal/pkg/pedigree"
	"github.com/matzehuels/pedsignal/pkg/pipeline"
	"github.com/matzehuels/pedsignal/pkg/store"
)

// =============================================================================
// Health
// =============================================================================

type healthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Individuals  int    `json:"individuals"`
	PedigreeHash string `json:"pedigree_hash"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		Version:      s.version,
		Individuals:  s.pedigree.Graph.Len(),
		PedigreeHash: s.pedigree.Hash,
	})
}

// =============================================================================
// Individuals
// =============================================================================

type individualResponse struct {
	ID        pedigree.ID   `json:"id"`
	Father    pedigree.ID   `json:"father"`
	Mother    pedigree.ID   `json:"mother"`
	Offspring []pedigree.ID `json:"offspring"`
	Founder   bool          `json:"founder"`
	Proband   bool          `json:"proband"`
}

func (s *Server) handleIndividual(w http.ResponseWriter, r *http.Request) {
	id, err := errors.ParseIndividualID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g := s.pedigree.Graph
	father, mother, err := g.ParentsOf(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	offspring := g.OffspringOf(id)
	if offspring == nil {
		offspring = []pedigree.ID{}
	}
	writeJSON(w, http.StatusOK, individualResponse{
		ID:        id,
		Father:    father,
		Mother:    mother,
		Offspring: offspring,
		Founder:   g.IsFounder(id),
		Proband:   g.IsProband(id),
	})
}

type lineageResponse struct {
	ID        pedigree.ID        `json:"id"`
	Distances pedigree.Distances `json:"distances,omitempty"`
	Lineage   []pedigree.ID      `json:"lineage,omitempty"`
}

func (s *Server) handleLineage(w http.ResponseWriter, r *http.Request) {
	id, err := errors.ParseIndividualID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := lineageResponse{ID: id}
	if ordered, _ := strconv.ParseBool(r.URL.Query().Get("ordered")); ordered {
		resp.Distances, err = pedigree.OrderedLineage(s.pedigree.Graph, id)
	} else {
		resp.Lineage, err = pedigree.Lineage(s.pedigree.Graph, id)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDescendants(w http.ResponseWriter, r *http.Request) {
	id, err := errors.ParseIndividualID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	desc, err := pedigree.OrderedDescendants(s.pedigree.Graph, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lineageResponse{ID: id, Distances: desc})
}

type probandsResponse struct {
	Total    int           `json:"total"`
	Probands []pedigree.ID `json:"probands"`
}

func (s *Server) handleProbands(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	all := s.pedigree.Graph.Probands()
	resp := probandsResponse{Total: len(all), Probands: all}
	if limit > 0 && limit < len(all) {
		resp.Probands = all[:limit]
	}
	if resp.Probands == nil {
		resp.Probands = []pedigree.ID{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Analyses
// =============================================================================

type conesRequest struct {
	IDs     []pedigree.ID `json:"ids"`
	Refresh bool          `json:"refresh"`
	Save    bool          `json:"save"`
}

type climbRequest struct {
	Samples      []pedigree.ID `json:"samples"`
	Probands     int           `json:"probands"`
	MaxSteps     int           `json:"max_steps"`
	RestrictCone bool          `json:"restrict_cone"`
	Inherited    bool          `json:"inherited"`
	Refresh      bool          `json:"refresh"`
	Save         bool          `json:"save"`
}

type analysisResponse struct {
	Cached   bool   `json:"cached"`
	ReportID string `json:"report_id,omitempty"`
	Result   any    `json:"result"`
}

func (s *Server) handleCones(w http.ResponseWriter, r *http.Request) {
	var req conesRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, hit, err := s.runner.ConesWithCacheInfo(r.Context(), s.pedigree, pipeline.ConesOptions{
		IDs:     req.IDs,
		Refresh: req.Refresh,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondAnalysis(w, r, store.KindCones, req.Save, hit, res)
}

func (s *Server) handleClimb(w http.ResponseWriter, r *http.Request) {
	var req climbRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, hit, err := s.runner.ClimbWithCacheInfo(r.Context(), s.pedigree, pipeline.ClimbOptions{
		Samples:      req.Samples,
		Probands:     req.Probands,
		MaxSteps:     req.MaxSteps,
		RestrictCone: req.RestrictCone,
		Inherited:    req.Inherited,
		Refresh:      req.Refresh,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondAnalysis(w, r, store.KindClimb, req.Save, hit, res)
}

func (s *Server) respondAnalysis(w http.ResponseWriter, r *http.Request, kind string, save, hit bool, result any) {
	resp := analysisResponse{Cached: hit, Result: result}
	if save {
		rep, err := s.runner.Save(r.Context(), kind, s.pedigree, result)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.ReportID = rep.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Reports
// =============================================================================

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !store.ValidID(id) {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid report id %q", id))
		return
	}
	rep, err := s.runner.Report(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.runner.Store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no report store configured"))
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	reports, err := s.runner.Store.List(r.Context(), store.ListOptions{
		Kind:         r.URL.Query().Get("kind"),
		PedigreeHash: s.pedigree.Hash,
		Limit:        limit,
	})
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeBackend, err, "list reports"))
		return
	}
	if reports == nil {
		reports = []*store.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a non-negative integer", name)
	}
	return n, nil
}
