package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	productsheet "github.com/alnah/go-productsheet"
	"github.com/alnah/go-productsheet/internal/badge"
	"github.com/alnah/go-productsheet/internal/envelope"
	"github.com/alnah/go-productsheet/internal/render"
	"github.com/alnah/go-productsheet/internal/webhook"
)

type createRequest struct {
	ProductName string   `json:"productName"`
	Badges      []string `json:"badges"`
}

type sessionResponse struct {
	ID          string                              `json:"id"`
	ProductName string                              `json:"productName"`
	Document    *productsheet.Document              `json:"document"`
	Badges      []string                            `json:"badges"`
	Layouts     map[string]productsheet.BadgeLayout `json:"layouts"`
	Styles      productsheet.StyleOverrides         `json:"styles"`
}

type badgesRequest struct {
	Names []string `json:"names"`
}

// badgePatch changes one badge. Absent fields are left alone.
type badgePatch struct {
	HeightPx    *float64          `json:"heightPx"`
	XPercent    *float64          `json:"xPercent"`
	YPercent    *float64          `json:"yPercent"`
	Colors      map[string]string `json:"colors"` // color slot -> hex
	ResetColors bool              `json:"resetColors"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}
	st := s.newStore()
	sess, err := s.svc.Generate(r.Context(), req.ProductName, st, req.Badges...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.add(sess)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+id)
	writeJSON(w, http.StatusCreated, describe(id, sess))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, describe(id, sess))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.remove(chi.URLParam(r, "id"))
	if !ok {
		s.fail(w, r, ErrSessionNotFound)
		return
	}
	if err := sess.End(); err != nil {
		s.log.Warn("clearing session store", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(sess.Preview()))
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var doc productsheet.Document
	if !decode(w, r, &doc) {
		return
	}
	s.done(w, r, sess.ReplaceDocument(&doc))
}

func (s *Server) handleBadgeSelection(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req badgesRequest
	if !decode(w, r, &req) {
		return
	}
	s.done(w, r, sess.SetBadges(req.Names))
}

func (s *Server) handleBadgePatch(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	var p badgePatch
	if !decode(w, r, &p) {
		return
	}

	current, err := sess.Layout(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if p.HeightPx != nil {
		if err := sess.SetBadgeHeight(name, *p.HeightPx); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if p.XPercent != nil || p.YPercent != nil {
		x, y := current.XPercent, current.YPercent
		if p.XPercent != nil {
			x = *p.XPercent
		}
		if p.YPercent != nil {
			y = *p.YPercent
		}
		if err := sess.SetBadgePosition(name, x, y); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if p.ResetColors {
		if err := sess.ResetBadgeColors(name); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	for key, hex := range p.Colors {
		slot, err := strconv.Atoi(key)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid color slot %q", key)})
			return
		}
		if err := sess.SetBadgeColor(name, slot, hex); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	l, err := sess.Layout(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	colors, err := sess.BadgePalette(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"colors":  colors,
		"presets": badge.Presets,
	})
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var styles productsheet.StyleOverrides
	if !decode(w, r, &styles) {
		return
	}
	s.done(w, r, sess.SetStyles(styles))
}

func (s *Server) handleResetStyles(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.done(w, r, sess.ResetStyles())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	opts := []productsheet.ExportOption{productsheet.WithUserAgent(r.UserAgent())}
	if v := r.URL.Query().Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > productsheet.MaxScale {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "scale must be between 1 and " + strconv.Itoa(productsheet.MaxScale)})
			return
		}
		opts = append(opts, productsheet.WithExportScale(n))
	}

	var buf bytes.Buffer
	res, err := sess.Export(r.Context(), &buf, opts...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	opts := s.svc.ListBadges(r.Context())
	if r.URL.Query().Get("grouped") != "" {
		writeJSON(w, http.StatusOK, envelope.GroupBadges(opts))
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

type knobView struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Default string `json:"default,omitempty"`
}

var kindNames = map[render.Kind]string{
	render.KindColor:  "color",
	render.KindRem:    "rem",
	render.KindWeight: "weight",
	render.KindPx:     "px",
}

func (s *Server) handleKnobs(w http.ResponseWriter, _ *http.Request) {
	out := make([]knobView, 0, len(render.Knobs))
	for _, k := range render.Knobs {
		out = append(out, knobView{Name: k.Name, Kind: kindNames[k.Kind], Default: k.Default})
	}
	writeJSON(w, http.StatusOK, out)
}

// session resolves the {id} URL parameter, answering 404 when unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *productsheet.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, err := s.lookup(id)
	if err != nil {
		s.fail(w, r, err)
		return "", nil, false
	}
	return id, sess, true
}

func (s *Server) done(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, productsheet.ErrUnknownBadge):
		return http.StatusNotFound
	case errors.Is(err, productsheet.ErrEmptyProductName),
		errors.Is(err, productsheet.ErrInvalidProductName),
		errors.Is(err, productsheet.ErrOutOfRange),
		errors.Is(err, render.ErrUnknownStyle),
		errors.Is(err, render.ErrInvalidStyleValue),
		errors.Is(err, badge.ErrInvalidColor):
		return http.StatusBadRequest
	case errors.Is(err, productsheet.ErrExportInProgress):
		return http.StatusConflict
	case errors.Is(err, errTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, webhook.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case isUpstream(err),
		errors.Is(err, productsheet.ErrBadgeNotSVG):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// isUpstream reports errors caused by the generation workflow.
func isUpstream(err error) bool {
	return errors.Is(err, webhook.ErrConnection) ||
		errors.Is(err, webhook.ErrHTTPStatus) ||
		errors.Is(err, webhook.ErrInvalidResponse) ||
		errors.Is(err, productsheet.ErrGenerationFailed) ||
		errors.Is(err, productsheet.ErrNoWebhook) ||
		errors.Is(err, productsheet.ErrMissingContent)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func describe(id string, sess *productsheet.Session) sessionResponse {
	names := sess.BadgeNames()
	layouts := make(map[string]productsheet.BadgeLayout, len(names))
	for _, n := range names {
		if l, err := sess.Layout(n); err == nil {
			layouts[n] = l
		}
	}
	return sessionResponse{
		ID:          id,
		ProductName: sess.ProductName(),
		Document:    sess.Document(),
		Badges:      names,
		Layouts:     layouts,
		Styles:      sess.Styles(),
	}
}
