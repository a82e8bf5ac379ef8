package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/demo"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/engine"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/scan"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/store"
)

// maxListLimit bounds ?limit= on the scan listing.
const maxListLimit = 500

// ScanResponse is a stored scan with its report.
type ScanResponse struct {
	ScanID string        `json:"scan_id"`
	Scan   *model.Scan   `json:"scan"`
	Report *model.Report `json:"report"`
}

// CatalogResponse is a catalog lookup result.
type CatalogResponse struct {
	Kind       string          `json:"kind"`
	Match      catalog.Entry   `json:"match"`
	Upgrades   []catalog.Entry `json:"upgrade_candidates"`
	PriceRange string          `json:"upgrade_price_range,omitempty"`
}

// handleCreateScan validates, analyzes and stores an uploaded scan.
func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	sc, report, ok := s.analyzeBody(w, r)
	if !ok {
		return
	}

	rec := store.Record{ID: sc.ScanID, CreatedAt: *report.AnalyzedAt, Scan: sc, Report: report}
	err := s.store.Save(r.Context(), rec)
	if errors.Is(err, store.ErrExists) {
		s.logger.Warn("duplicate scan upload rejected",
			zap.String("scan_id", sc.ScanID),
			zap.String("request_id", RequestID(r.Context())),
		)
		Conflict(w, "scan "+sc.ScanID+" is already stored", r.URL.Path)
		return
	}
	if err != nil {
		s.logger.Error("save scan failed",
			zap.String("scan_id", sc.ScanID),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		InternalError(w, "failed to store scan", r.URL.Path)
		return
	}
	s.logger.Info("scan analyzed",
		zap.String("scan_id", sc.ScanID),
		zap.Int("score", report.Score.Total),
		zap.String("grade", report.Score.Grade),
		zap.Int("bottlenecks", len(report.Bottlenecks)),
	)

	w.Header().Set("Location", "/api/v1/scans/"+sc.ScanID)
	writeJSON(w, http.StatusCreated, report)
}

// handleAnalyze analyzes a scan without storing it.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if _, report, ok := s.analyzeBody(w, r); ok {
		writeJSON(w, http.StatusOK, report)
	}
}

// analyzeBody decodes the request body as a scan and analyzes it. On
// failure it writes the problem response and returns ok=false.
func (s *Server) analyzeBody(w http.ResponseWriter, r *http.Request) (*model.Scan, *model.Report, bool) {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	defer body.Close()

	now := s.now().UTC()
	sc, err := scan.Parse(body, now)
	if err != nil {
		var verr *scan.ValidationError
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			TooLarge(w, "scan document exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes", r.URL.Path)
		case errors.As(err, &verr):
			InvalidScan(w, verr.Fields, r.URL.Path)
		default:
			BadRequest(w, err.Error(), r.URL.Path)
		}
		return nil, nil, false
	}

	report, ok := s.analyze(w, r, sc)
	return sc, report, ok
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, sc *model.Scan) (*model.Report, bool) {
	report, err := engine.Analyze(sc, engine.WithCatalogs(s.cpus, s.gpus))
	if err != nil {
		if errors.Is(err, engine.ErrInvalidScan) {
			BadRequest(w, err.Error(), r.URL.Path)
		} else {
			InternalError(w, "analysis failed", r.URL.Path)
		}
		return nil, false
	}
	now := s.now().UTC()
	report.AnalyzedAt = &now
	observeReport(report)
	return report, true
}

// handleListScans returns stored scan summaries, newest first.
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			BadRequest(w, "limit must be an integer between 1 and "+strconv.Itoa(maxListLimit), r.URL.Path)
			return
		}
		limit = n
	}

	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list scans failed", zap.Error(err))
		InternalError(w, "failed to list scans", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleLatestScan(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Latest(r.Context())
	s.writeRecord(w, r, rec, err)
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), r.PathValue("id"))
	s.writeRecord(w, r, rec, err)
}

func (s *Server) writeRecord(w http.ResponseWriter, r *http.Request, rec store.Record, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		NotFound(w, "no scan found", r.URL.Path)
	case err != nil:
		s.logger.Error("read scan failed", zap.Error(err))
		InternalError(w, "failed to read scan", r.URL.Path)
	default:
		writeJSON(w, http.StatusOK, ScanResponse{ScanID: rec.ID, Scan: rec.Scan, Report: rec.Report})
	}
}

// handleDemo analyzes the built-in demo scan.
func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	if report, ok := s.analyze(w, r, demo.Scan()); ok {
		writeJSON(w, http.StatusOK, report)
	}
}

// handleCatalog lists a catalog, or looks up ?name= and its upgrades.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	kind := strings.ToLower(r.PathValue("kind"))
	var c *catalog.Catalog
	switch kind {
	case "cpu":
		c = s.cpus
	case "gpu":
		c = s.gpus
	default:
		NotFound(w, "unknown catalog "+strconv.Quote(kind)+": use cpu or gpu", r.URL.Path)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusOK, c.Entries())
		return
	}
	e, ok := c.Lookup(name)
	if !ok {
		NotFound(w, "no "+kind+" matches "+strconv.Quote(name), r.URL.Path)
		return
	}
	resp := CatalogResponse{Kind: kind, Match: e, Upgrades: c.UpgradeCandidates(e, 0)}
	if resp.Upgrades == nil {
		resp.Upgrades = []catalog.Entry{}
	} else {
		resp.PriceRange = engine.PriceRange(resp.Upgrades)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, engine.Rules())
}
