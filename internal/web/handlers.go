package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	gomponents "maragu.dev/gomponents"

	"github.com/KaramelBytes/tidyloom/internal/analysis"
	"github.com/KaramelBytes/tidyloom/internal/chart"
	"github.com/KaramelBytes/tidyloom/internal/cleaning"
	"github.com/KaramelBytes/tidyloom/internal/export"
	"github.com/KaramelBytes/tidyloom/internal/session"
	"github.com/KaramelBytes/tidyloom/internal/table"
)

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

// errorFlash turns err into the message shown on a page and its status.
func errorFlash(err error) (flash, int) {
	apiErr := apiErrorFor(err)
	f := flash{Level: "error", Message: apiErr.Message}
	if d, ok := apiErr.Details.(string); ok && apiErr.ErrorCode == "PARSE_ERROR" {
		f.Detail = d
	}
	return f, apiErr.StatusCode
}

// receiveUpload reads the multipart field "file" and loads it into s.
func (h *Handler) receiveUpload(w http.ResponseWriter, r *http.Request, s *session.Session) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.Options.MaxUploadBytes)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &uploadFormError{err: err}
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	_, err = h.Sessions.Upload(s.ID, hdr.Filename, data)
	return err
}

type uploadFormError struct{ err error }

func (e *uploadFormError) Error() string { return "invalid upload form: " + e.err.Error() }

func (e *uploadFormError) Unwrap() error { return e.err }

func (h *Handler) uploadFlash(err error) (flash, int) {
	var formErr *uploadFormError
	if errors.As(err, &formErr) {
		return flash{Level: "error", Message: "Please choose a CSV or Excel file to upload."}, http.StatusBadRequest
	}
	return errorFlash(err)
}

func (h *Handler) CleanPage(w http.ResponseWriter, r *http.Request) {
	h.renderClean(w, http.StatusOK, sessionFrom(r), nil)
}

func (h *Handler) renderClean(w http.ResponseWriter, status int, s *session.Session, flashes []flash) {
	renderHTML(w, status, cleanPage(cleanView{
		Snap:        s.Snapshot(),
		Flashes:     flashes,
		PreviewRows: h.Options.PreviewRows,
	}))
}

func (h *Handler) CleanUpload(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if err := h.receiveUpload(w, r, s); err != nil {
		f, status := h.uploadFlash(err)
		h.renderClean(w, status, s, []flash{f})
		return
	}
	h.renderClean(w, http.StatusOK, s, []flash{{Level: "success", Message: "File Uploaded Successfully !"}})
}

func (h *Handler) CleanApply(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	op, err := cleaning.ParseOp(r.FormValue("op"))
	if err == nil {
		var out *cleaning.Outcome
		out, err = s.Clean(op)
		if err == nil {
			h.Logger.InfoContext(r.Context(), "cleaning applied", "session_id", s.ID, "op", op.String(),
				"rows_before", out.RowsBefore, "rows_after", out.RowsAfter)
			flashes := []flash{{Level: "success", Message: out.Message}}
			if len(out.Unresolved) > 0 {
				flashes = append(flashes, flash{
					Level:   "warning",
					Message: "Columns with no values were left unchanged: " + strings.Join(out.Unresolved, ", "),
				})
			}
			h.renderClean(w, http.StatusOK, s, flashes)
			return
		}
	}
	f, status := errorFlash(err)
	h.renderClean(w, status, s, []flash{f})
}

func (h *Handler) CleanReset(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if err := s.ResetWorking(); err != nil {
		f, status := errorFlash(err)
		h.renderClean(w, status, s, []flash{f})
		return
	}
	h.renderClean(w, http.StatusOK, s, []flash{{Level: "info", Message: "Cleaning steps discarded."}})
}

func (h *Handler) AnalyzePage(w http.ResponseWriter, r *http.Request) {
	h.renderAnalyze(w, r, http.StatusOK, sessionFrom(r), nil)
}

func (h *Handler) AnalyzeUpload(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if err := h.receiveUpload(w, r, s); err != nil {
		f, status := h.uploadFlash(err)
		h.renderAnalyze(w, r, status, s, []flash{f})
		return
	}
	h.renderAnalyze(w, r, http.StatusOK, s, []flash{{Level: "success", Message: "File Uploaded Successfully !"}})
}

// renderAnalyze reads the column selection and chart request from the query.
// A chart failure is shown in place of the chart and never fails the page.
func (h *Handler) renderAnalyze(w http.ResponseWriter, r *http.Request, status int, s *session.Session, flashes []flash) {
	snap := s.Snapshot()
	v := analyzeView{Snap: snap, Flashes: flashes, PreviewRows: h.Options.PreviewRows}
	if !snap.HasTable() || r.Method != http.MethodGet {
		renderHTML(w, status, analyzePage(v))
		return
	}

	q := r.URL.Query()
	if cols := q["cols"]; len(cols) > 0 {
		sel, err := snap.Loaded.Select(cols)
		if err != nil {
			v.Flashes = append(v.Flashes, flash{Level: "warning", Message: err.Error()})
		} else {
			v.Selected = sel
		}
	}
	v.X, v.Y = q.Get("x"), q.Get("y")
	if raw := q.Get("kind"); raw != "" {
		kind, err := chart.ParseKind(raw)
		if err != nil {
			v.Flashes = append(v.Flashes, flash{Level: "error", Message: err.Error()})
		} else {
			v.Kind = kind
			out, err := chart.Render(snap.Loaded, chart.Request{X: v.X, Y: v.Y, Kind: kind}, h.Options.Chart)
			if err != nil {
				v.ChartErr = apiErrorFor(err).Message
				h.Logger.InfoContext(r.Context(), "chart rejected", "session_id", s.ID, "kind", kind, "error", err)
			}
			v.Chart = out
		}
	}
	renderHTML(w, status, analyzePage(v))
}

// Download sends the working table as CSV or XLSX.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	snap := sessionFrom(r).Snapshot()
	if !snap.HasTable() {
		http.Error(w, msgNoTable, http.StatusNotFound)
		return
	}
	var (
		data        []byte
		err         error
		filename    string
		contentType string
	)
	switch chi.URLParam(r, "format") {
	case "csv":
		data, err = export.CSV(snap.Working)
		filename, contentType = export.CSVFilename, export.CSVContentType
	case "xlsx":
		data, err = export.XLSX(snap.Working)
		filename, contentType = export.XLSXFilename, export.XLSXContentType
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "export failed", "format", chi.URLParam(r, "format"), "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type profileResponse struct {
	Filename string            `json:"filename"`
	Table    string            `json:"table"`
	Profile  *analysis.Profile `json:"profile"`
	Info     string            `json:"info"`
}

// pickTable resolves the table query parameter; the default is working.
func pickTable(snap session.Snapshot, name string) (*table.Table, string, error) {
	if !snap.HasTable() {
		return nil, "", session.ErrNoTable
	}
	switch name {
	case "", "working":
		return snap.Working, "working", nil
	case "loaded":
		return snap.Loaded, "loaded", nil
	default:
		return nil, "", fmt.Errorf("%w: table must be loaded or working", errInvalidParam)
	}
}

var errInvalidParam = errors.New("invalid parameter")

func (h *Handler) APIProfile(w http.ResponseWriter, r *http.Request) {
	snap := sessionFrom(r).Snapshot()
	t, which, err := pickTable(snap, r.URL.Query().Get("table"))
	if err != nil {
		h.renderAPIParamError(w, r, err)
		return
	}
	p := analysis.Describe(t)
	render.JSON(w, r, profileResponse{Filename: snap.Filename, Table: which, Profile: p, Info: p.Info()})
}

type cleanResponse struct {
	Op string `json:"op"`
	*cleaning.Outcome
}

func (h *Handler) APIClean(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	op, err := cleaning.ParseOp(chi.URLParam(r, "op"))
	if err != nil {
		h.renderAPIError(w, r, err)
		return
	}
	out, err := s.Clean(op)
	if err != nil {
		h.renderAPIError(w, r, err)
		return
	}
	render.JSON(w, r, cleanResponse{Op: op.String(), Outcome: out})
}

type chartNotice struct {
	Kind     string   `json:"kind"`
	Title    string   `json:"title"`
	Notice   string   `json:"notice,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// APIChart answers with the PNG itself, or with a JSON notice when there was
// nothing to draw. Warnings travel in the X-Chart-Warning header.
func (h *Handler) APIChart(w http.ResponseWriter, r *http.Request) {
	snap := sessionFrom(r).Snapshot()
	kind, err := chart.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.renderAPIError(w, r, err)
		return
	}
	q := r.URL.Query()
	which := q.Get("table")
	if which == "" {
		which = "loaded"
	}
	t, _, err := pickTable(snap, which)
	if err != nil {
		h.renderAPIParamError(w, r, err)
		return
	}
	out, err := chart.Render(t, chart.Request{X: q.Get("x"), Y: q.Get("y"), Kind: kind}, h.Options.Chart)
	if err != nil {
		h.renderAPIError(w, r, err)
		return
	}
	if !out.Rendered() {
		render.JSON(w, r, chartNotice{Kind: string(out.Kind), Title: out.Title, Notice: out.Notice, Warnings: out.Warnings})
		return
	}
	for _, warn := range out.Warnings {
		w.Header().Add("X-Chart-Warning", warn)
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.PNG)
}

func (h *Handler) renderAPIParamError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errInvalidParam) {
		_ = render.Render(w, r, newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", err.Error(), nil))
		return
	}
	h.renderAPIError(w, r, err)
}
