package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/carbonref/factor-cli/internal/config"
	"github.com/carbonref/factor-cli/internal/export"
	"github.com/carbonref/factor-cli/internal/importer"
	"github.com/carbonref/factor-cli/internal/model"
	"github.com/carbonref/factor-cli/internal/quality"
	"github.com/carbonref/factor-cli/internal/store"
)

// exportRowLimit caps file exports. Matching rows beyond it are cut
// off rather than streamed unbounded.
const exportRowLimit = 100000

// importRequest is the JSON body of the import and validate endpoints.
// Rows are raw header-keyed cells, exactly as parsed from a file.
type importRequest struct {
	Rows      []model.RawRow `json:"rows"`
	CreatedBy string         `json:"created_by"`
	DryRun    bool           `json:"dry_run"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Rows) == 0 {
		writeError(w, http.StatusBadRequest, "rows is required")
		return
	}

	if req.DryRun {
		writeJSON(w, http.StatusOK, response{Success: true, Data: s.dryRun(req)})
		return
	}

	result, err := s.importer.ImportBatch(r.Context(), req.Rows, req.CreatedBy)
	if err != nil {
		if eris.Is(err, importer.ErrBatchTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		zap.L().Error("import failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: result})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Rows) == 0 {
		writeError(w, http.StatusBadRequest, "rows is required")
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: s.dryRun(req)})
}

// dryRun validates rows without writing, reporting per-row outcomes in
// the same shape as a real import.
func (s *Server) dryRun(req importRequest) *model.ImportResult {
	outcomes := make([]model.ImportOutcome, len(req.Rows))
	for i, raw := range req.Rows {
		_, errs := s.importer.ValidateRow(i+1, raw, req.CreatedBy)
		if len(errs) > 0 {
			outcomes[i] = model.ImportOutcome{
				Row:    i + 1,
				Status: model.OutcomeRejectedInvalid,
				Errors: errs,
			}
			continue
		}
		outcomes[i] = model.ImportOutcome{Row: i + 1, Status: model.OutcomeAccepted}
	}
	result := &model.ImportResult{Outcomes: outcomes}
	result.Tally()
	return result
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var input model.QualityInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assessment, err := s.engine.Score(input)
	if err != nil {
		if eris.Is(err, quality.ErrScoreOutOfRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		zap.L().Error("score failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "score failed")
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: assessment})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	records, err := s.store.ListFactors(r.Context(), filter)
	if err != nil {
		zap.L().Error("list factors failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list factors")
		return
	}
	total, err := s.store.CountFactors(r.Context(), filter)
	if err != nil {
		zap.L().Error("count factors failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list factors")
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Data:    records,
		Pagination: &pagination{
			Total:  total,
			Limit:  filter.Limit,
			Offset: filter.Offset,
		},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		zap.L().Error("stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: stats})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	if filter.Status == "" {
		filter.Status = model.StatusPublished
	}
	// Export everything that matches, not one page.
	filter.Limit = exportRowLimit
	filter.Offset = 0

	projector, err := s.projector(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.store.ListFactors(r.Context(), filter)
	if err != nil {
		zap.L().Error("export query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export factors")
		return
	}

	filename := "emission_factors_" + time.Now().Format("2006-01-02")
	switch format(r) {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))
		err = export.WriteXLSX(w, projector, records)
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".csv"))
		err = export.WriteCSV(w, projector, records)
	default:
		writeError(w, http.StatusBadRequest, "format must be csv or xlsx")
		return
	}
	if err != nil {
		zap.L().Error("export encode failed", zap.Error(err))
	}
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	projector, err := s.projector(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch format(r) {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="import_template.xlsx"`)
		err = export.WriteTemplateXLSX(w, projector)
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="import_template.csv"`)
		err = export.WriteTemplateCSV(w, projector)
	default:
		writeError(w, http.StatusBadRequest, "format must be csv or xlsx")
		return
	}
	if err != nil {
		zap.L().Error("template encode failed", zap.Error(err))
	}
}

// projector builds the export projector, honoring a per-request locale
// override.
func (s *Server) projector(r *http.Request) (*export.Projector, error) {
	cfg := s.cfg.Export
	if locale := r.URL.Query().Get("locale"); locale != "" {
		cfg = config.ExportConfig{Locale: locale, Precision: s.cfg.Export.Precision}
	}
	return export.NewProjector(cfg)
}

func format(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return "xlsx"
}

func filterFromQuery(r *http.Request) store.Filter {
	q := r.URL.Query()
	return store.Filter{
		CategoryL1:  q.Get("category_l1"),
		CategoryL2:  q.Get("category_l2"),
		CountryCode: q.Get("country_code"),
		Region:      q.Get("region"),
		Grade:       model.Grade(q.Get("quality_grade")),
		YearFrom:    queryInt(q.Get("year_from")),
		YearTo:      queryInt(q.Get("year_to")),
		Status:      model.Status(q.Get("status")),
		Search:      q.Get("search"),
		Limit:       queryInt(q.Get("limit")),
		Offset:      queryInt(q.Get("offset")),
	}
}

func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// response is the envelope of every JSON reply.
type response struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, response{Success: false, Error: msg})
}
