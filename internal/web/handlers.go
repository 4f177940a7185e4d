package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jomardyan/ToolBox/internal/core"
	"github.com/jomardyan/ToolBox/internal/history"
	"github.com/jomardyan/ToolBox/internal/logging"
	"github.com/jomardyan/ToolBox/internal/web/templates"
)

// indexHistoryLimit is how many history rows the browser page shows.
const indexHistoryLimit = 10

// convertRequest is the JSON envelope accepted by POST /api/convert?envelope.
type convertRequest struct {
	Data    string          `json:"data"`
	From    string          `json:"from"`
	To      string          `json:"to"`
	Options *convertOptions `json:"options,omitempty"`
}

type convertOptions struct {
	SQLTableName string `json:"sqlTableName,omitempty"`
	XMLRootTag   string `json:"xmlRootTag,omitempty"`
}

// convertResponse is returned for envelope requests.
type convertResponse struct {
	Output   string      `json:"output"`
	Format   core.Format `json:"format"`
	Rows     int         `json:"rows"`
	Columns  int         `json:"columns"`
	Warnings []string    `json:"warnings"`
}

type extractRequest struct {
	CSV     string          `json:"csv"`
	Columns []string        `json:"columns"`
	Filters []extractFilter `json:"filters,omitempty"`
}

type extractFilter struct {
	Column   string `json:"column"`
	Value    string `json:"value"`
	Operator string `json:"operator,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok")
}

// handleStatus reports conversion slot usage.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"conversions": s.limiter.Status(),
		"history":     s.cfg.HistoryBackend(),
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Formats())
}

// handleConvert converts the request body.
//
// Raw mode: POST /api/convert?from=json&to=csv with the document as body;
// the response is the converted text with the target content type.
// Envelope mode: POST /api/convert?envelope with a convertRequest body;
// the response is a convertResponse.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	envelope := r.URL.Query().Has("envelope")

	var req convertRequest
	if envelope {
		if err := json.Unmarshal(body, &req); err != nil {
			s.respondError(w, r, invalidRequest("decode envelope: %v", err))
			return
		}
	} else {
		q := r.URL.Query()
		req = convertRequest{
			Data: string(body),
			From: q.Get("from"),
			To:   q.Get("to"),
			Options: &convertOptions{
				SQLTableName: q.Get("sql_table"),
				XMLRootTag:   q.Get("xml_root"),
			},
		}
	}

	res, err := s.convert(r, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if len(res.Warnings) > 0 {
		w.Header().Set("X-Conversion-Warnings", headerSafe(strings.Join(res.Warnings, "; ")))
	}
	w.Header().Set("X-Conversion-Rows", strconv.Itoa(res.Rows))

	if envelope {
		warnings := res.Warnings
		if warnings == nil {
			warnings = []string{}
		}
		writeJSON(w, http.StatusOK, convertResponse{
			Output:   res.Output,
			Format:   res.Format,
			Rows:     res.Rows,
			Columns:  res.Columns,
			Warnings: warnings,
		})
		return
	}

	w.Header().Set("Content-Type", contentType(res.Format))
	io.WriteString(w, res.Output)
}

// handleExtract projects and filters CSV columns.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req extractRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.respondError(w, r, invalidRequest("decode extract request: %v", err))
		return
	}

	filters := make([]core.Filter, len(req.Filters))
	for i, f := range req.Filters {
		filters[i] = core.Filter{Column: f.Column, Value: f.Value, Operator: core.FilterOperator(f.Operator)}
	}

	entry := history.NewEntry(history.OpExtract, string(core.FormatCSV), string(core.FormatCSV))
	entry.BytesIn = len(req.CSV)

	out, err := s.run(r, &entry, func() (core.Result, error) {
		out, err := core.ExtractColumns(req.CSV, req.Columns, filters)
		if err != nil {
			return core.Result{}, err
		}
		res := core.Result{Output: out, Format: core.FormatCSV, Columns: len(req.Columns)}
		if out != "" {
			if t, err := core.ParseCSV(out); err == nil {
				res.Rows = len(t.Rows)
			}
		}
		return res, nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType(core.FormatCSV))
	w.Header().Set("X-Conversion-Rows", strconv.Itoa(out.Rows))
	io.WriteString(w, out.Output)
}

// handleHistory returns recent conversions, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", s.cfg.History.RecentLimit)
	if limit > s.cfg.History.RecentLimit {
		limit = s.cfg.History.RecentLimit
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"backend": s.cfg.HistoryBackend(),
		"entries": entries,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, templates.IndexParams{
		From: string(core.FormatCSV),
		To:   string(core.FormatJSON),
	})
}

// handleConvertForm serves the browser form on the index page.
func (s *Server) handleConvertForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Convert.MaxInputSize)
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err)
		return
	}

	params := templates.IndexParams{
		Input: r.PostFormValue("data"),
		From:  r.PostFormValue("from"),
		To:    r.PostFormValue("to"),
	}

	res, err := s.convert(r, convertRequest{Data: params.Input, From: params.From, To: params.To})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	params.Output = res.Output
	params.Warnings = res.Warnings
	params.Rows = res.Rows
	params.Columns = res.Columns
	s.renderIndex(w, r, params)
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, params templates.IndexParams) {
	params.Formats = core.Formats()

	recent, err := s.history.Recent(r.Context(), indexHistoryLimit)
	if err != nil {
		logging.FromContext(r.Context()).Warn("load history for index", "error", err)
	}
	params.Recent = recent

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(params).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// convert validates req and runs it through the limiter.
func (s *Server) convert(r *http.Request, req convertRequest) (core.Result, error) {
	if strings.TrimSpace(req.From) == "" {
		return core.Result{}, missingParam("from")
	}
	if strings.TrimSpace(req.To) == "" {
		return core.Result{}, missingParam("to")
	}

	opts := core.Options{
		SQLTableName: s.cfg.Convert.SQLTableName,
		XMLRootTag:   s.cfg.Convert.XMLRootTag,
	}
	if req.Options != nil {
		if req.Options.SQLTableName != "" {
			opts.SQLTableName = req.Options.SQLTableName
		}
		if req.Options.XMLRootTag != "" {
			opts.XMLRootTag = req.Options.XMLRootTag
		}
	}

	entry := history.NewEntry(history.OpConvert, req.From, req.To)
	entry.BytesIn = len(req.Data)

	return s.run(r, &entry, func() (core.Result, error) {
		return core.ConvertWithOptions(req.Data, req.From, req.To, opts)
	})
}

// run executes fn inside a conversion slot, then logs and records the
// outcome. History failures are logged and never fail the request.
func (s *Server) run(r *http.Request, entry *history.Entry, fn func() (core.Result, error)) (core.Result, error) {
	ctx := r.Context()
	logger := logging.WithFields(ctx,
		"operation", entry.Operation,
		"from", entry.Source,
		"to", entry.Target,
	)

	if err := s.limiter.Acquire(ctx); err != nil {
		return core.Result{}, err
	}
	start := time.Now()
	res, err := s.inSlot(fn)

	entry.DurationMs = time.Since(start).Milliseconds()
	entry.ClientIP = clientIP(r)
	if err != nil {
		entry.ErrorCode = core.MapError(err).Code
	} else {
		entry.BytesOut = len(res.Output)
		entry.Rows = res.Rows
		logger.Info("conversion completed",
			"bytes_in", entry.BytesIn,
			"bytes_out", entry.BytesOut,
			"rows", res.Rows,
			"warnings", len(res.Warnings),
			"duration_ms", entry.DurationMs,
		)
	}

	if recErr := s.history.Record(context.WithoutCancel(ctx), *entry); recErr != nil {
		logger.Warn("record history", "error", recErr)
	}
	return res, err
}

// inSlot runs fn inside an acquired conversion slot and releases it, even
// when fn panics.
func (s *Server) inSlot(fn func() (core.Result, error)) (core.Result, error) {
	defer s.limiter.Release()
	return fn()
}

// readBody reads the request body up to the configured limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Convert.MaxInputSize)
	return io.ReadAll(r.Body)
}

// contentType returns the codec's content type, or text/plain for
// identifiers passed through without resolution.
func contentType(f core.Format) string {
	if c, ok := core.Lookup(f); ok && c.ContentType != "" {
		return c.ContentType
	}
	return "text/plain; charset=utf-8"
}

// headerSafe strips characters that cannot appear in a header value.
func headerSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' || r < 0x20 && r != '\t' {
			return ' '
		}
		return r
	}, s)
}

// parseIntParam parses a positive integer query parameter with a default.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
