package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/treescope/treescope/pkg/cache"
	"github.com/treescope/treescope/pkg/document"
	"github.com/treescope/treescope/pkg/errors"
	"github.com/treescope/treescope/pkg/observability"
	"github.com/treescope/treescope/pkg/snapshot"
	"github.com/treescope/treescope/pkg/store"
	"github.com/treescope/treescope/pkg/tree"
)

// maxDocumentBytes bounds uploaded document size.
const maxDocumentBytes = 4 << 20

// =============================================================================
// Wire types
// =============================================================================

type createRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type documentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentHash string    `json:"content_hash"`
	Content     string    `json:"content,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type layoutResponse struct {
	Snapshot snapshot.Snapshot `json:"snapshot"`
	Matches  []tree.Match      `json:"matches,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func toResponse(d store.Document, includeContent bool) documentResponse {
	out := documentResponse{
		ID:          d.ID,
		Name:        d.Name,
		ContentHash: d.ContentHash,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if includeContent {
		out.Content = string(d.Content)
	}
	return out
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]documentResponse, len(docs))
	for i, d := range docs {
		out[i] = toResponse(d, false)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes+1))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read request"))
		return
	}
	if len(body) > maxDocumentBytes {
		s.writeError(w, errors.New(errors.ErrCodeInvalidDocument, "document too large (max %d bytes)", maxDocumentBytes))
		return
	}

	var req createRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse request"))
		return
	}

	// Reject documents the engine cannot build a tree from.
	if _, err := document.Decode([]byte(req.Content)); err != nil {
		s.writeError(w, err)
		return
	}

	doc, err := s.store.Put(r.Context(), store.Document{
		Name:    req.Name,
		Content: []byte(req.Content),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toResponse(doc, false))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toResponse(doc, true))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLayout computes (or serves from cache) the laid-out snapshot for a
// document. Query parameters:
//
//	collapse_all=true  start from a collapsed overview (levels 0-1 visible)
//	search=<term>      include search matches in the response
//	include_hidden     make search consider collapsed subtrees
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := s.store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	q := r.URL.Query()
	opts := cache.LayoutKeyOpts{
		CollapseAll:   boolParam(q.Get("collapse_all")),
		SearchTerm:    q.Get("search"),
		IncludeHidden: boolParam(q.Get("include_hidden")),
	}

	key := cache.LayoutKey(doc.ContentHash, opts)
	hooks := observability.Cache()
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, key)
		s.writeRaw(w, http.StatusOK, data)
		return
	}
	hooks.OnCacheMiss(ctx, key)

	resp, err := s.computeLayout(doc, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode layout"))
		return
	}
	if err := s.cache.Set(ctx, key, data, layoutTTL); err != nil {
		s.logger.Warn("cache set failed", "key", key, "error", err)
	} else {
		hooks.OnCacheSet(ctx, key, len(data))
	}
	s.writeRaw(w, http.StatusOK, data)
}

func (s *Server) computeLayout(doc store.Document, opts cache.LayoutKeyOpts) (layoutResponse, error) {
	parsed, err := document.Decode(doc.Content)
	if err != nil {
		return layoutResponse{}, err
	}
	t := tree.Build(parsed)

	if opts.CollapseAll && !t.IsEmpty() {
		for _, c := range t.Root.Children {
			c.Walk(func(n *tree.Node) bool {
				n.SetCollapsed(true)
				return true
			})
		}
	}

	var matches []tree.Match
	if opts.SearchTerm != "" {
		idx := tree.NewIndex(t, opts.SearchTerm, opts.IncludeHidden)
		matches = idx.Matches()
	}

	res := s.engine.Layout(t)
	return layoutResponse{
		Snapshot: snapshot.Capture(t, res),
		Matches:  matches,
	}, nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	parsed, err := document.Decode(doc.Content)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tree.ComputeStats(tree.Build(parsed)))
}

// =============================================================================
// Response helpers
// =============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "error", err)
	}
}

func (s *Server) writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "error", err)
	}
	s.writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(code),
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound, errors.ErrCodeDocumentNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidDocument, errors.ErrCodeEmptyDocument, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidName, errors.ErrCodeInvalidID:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func boolParam(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
