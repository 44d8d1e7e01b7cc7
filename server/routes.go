package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/brettbedarf/previewfs"
	"github.com/brettbedarf/previewfs/filesystem"
	"github.com/brettbedarf/previewfs/internal/util"
	"github.com/brettbedarf/previewfs/preview"
	"github.com/brettbedarf/previewfs/requests"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gopkg.in/yaml.v3"
)

// maxBodyBytes bounds every request body
const maxBodyBytes = 8 << 20

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.RequestLogger(logFormatter{}),
		middleware.Recoverer,
	)

	// Hijacked by the websocket upgrade, so kept out of the instrumented group
	r.Get("/ws", s.hub.ServeWS)
	r.Handle("/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.metrics.Instrument)

		r.Get("/", s.handleShell)
		r.Get("/preview", s.handlePreview)

		r.Route("/api", func(r chi.Router) {
			r.Get("/state", s.handleState)
			r.Post("/rebuild", s.handleRebuild)
			r.Post("/errors", s.handleRuntimeError)
			r.Post("/recover", s.handleRecover)

			r.Get("/files", s.handleListFiles)
			r.Get("/files/*", s.handleGetNode)
			r.Put("/files/*", s.handlePutFile)
			r.Delete("/files/*", s.handleDelete)
			r.Post("/dirs/*", s.handleMkdir)
			r.Post("/rename", s.handleRename)
			r.Post("/tool", s.handleTool)

			r.Get("/snapshot", s.handleGetSnapshot)
			r.Put("/snapshot", s.handlePutSnapshot)
		})
	})
	return r
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, filesystem.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, filesystem.ErrAlreadyExists), errors.Is(err, preview.ErrStaleBuild):
		return http.StatusConflict
	case errors.Is(err, filesystem.ErrInvalidPath),
		errors.Is(err, filesystem.ErrInvalidOperation),
		errors.Is(err, filesystem.ErrNotAFile),
		errors.Is(err, filesystem.ErrNotADirectory),
		errors.Is(err, requests.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	logger := util.GetLogger("Server.writeJSON")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := util.GetLogger("Server.writeError")

	status := statusFor(err)
	ev := logger.Debug()
	if status >= http.StatusInternalServerError {
		ev = logger.Error()
	}
	ev.Err(err).Str("uri", r.RequestURI).Int("status", status).Msg("Request failed")
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Join(requests.ErrInvalidRequest, err)
	}
	return nil
}

// treePath returns the tree path captured by a /files/* or /dirs/* route
func treePath(r *http.Request) string {
	return "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
}

func (s *Server) handleShell(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, shellPage)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	doc := s.previewer.Current().Document
	if doc == nil {
		doc = &preview.Document{State: preview.StateEmpty}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := doc.WriteHTML(w); err != nil {
		writeError(w, r, err)
	}
}

type stateResponse struct {
	State      preview.State          `json:"state"`
	Revision   uint64                 `json:"revision"`
	Tree       uint64                 `json:"treeRevision"`
	DocumentID string                 `json:"documentId,omitempty"`
	Entry      string                 `json:"entry,omitempty"`
	LastGoodID string                 `json:"lastGoodId,omitempty"`
	Errors     []preview.PreviewError `json:"errors"`
}

func (s *Server) stateResponse() stateResponse {
	st := s.previewer.Current()
	resp := stateResponse{
		State:    st.State,
		Revision: st.Revision,
		Tree:     s.tree.Revision(),
		Errors:   st.Errors,
	}
	if st.Document != nil {
		resp.DocumentID = st.Document.ID
		resp.Entry = st.Document.Entry
	}
	if st.LastGood != nil {
		resp.LastGoodID = st.LastGood.ID
	}
	return resp
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.stateResponse())
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if _, err := s.watcher.Rebuild(r.Context()); err != nil && !errors.Is(err, preview.ErrStaleBuild) {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stateResponse())
}

type documentRequest struct {
	DocumentID string `json:"documentId"`
	Message    string `json:"message"`
}

type acceptedResponse struct {
	Accepted bool `json:"accepted"`
}

func (s *Server) handleRuntimeError(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.DocumentID == "" || req.Message == "" {
		writeError(w, r, errors.Join(requests.ErrInvalidRequest, errors.New("documentId and message are required")))
		return
	}
	writeJSON(w, http.StatusOK, acceptedResponse{Accepted: s.hub.ReportRuntimeError(req.DocumentID, req.Message)})
}

func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acceptedResponse{Accepted: s.hub.Recover(req.DocumentID)})
}

type filesResponse struct {
	Revision uint64   `json:"revision"`
	Files    []string `json:"files"`
}

func (s *Server) handleListFiles(w http.ResponseWriter, _ *http.Request) {
	files, rev := s.tree.AllFiles()
	resp := filesResponse{Revision: rev, Files: make([]string, 0, len(files))}
	for _, f := range files {
		resp.Files = append(resp.Files, f.Path)
	}
	writeJSON(w, http.StatusOK, resp)
}

type nodeResponse struct {
	Path     string             `json:"path"`
	Kind     previewfs.NodeKind `json:"kind"`
	Children []string           `json:"children"`
}

// handleGetNode returns file content as text, or a directory's child names
func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	node, err := s.tree.GetNode(treePath(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if node.IsDir() {
		writeJSON(w, http.StatusOK, nodeResponse{Path: node.Path, Kind: node.Kind, Children: node.Children})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, node.Content)
}

type revisionResponse struct {
	Path     string `json:"path,omitempty"`
	Revision uint64 `json:"revision"`
}

// handlePutFile creates the file, or replaces the content of an existing one
func (s *Server) handlePutFile(w http.ResponseWriter, r *http.Request) {
	p := treePath(r)
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if s.tree.Exists(p) {
		err = s.tree.UpdateFile(p, string(data))
	} else {
		status = http.StatusCreated
		err = s.tree.CreateFile(p, string(data))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, revisionResponse{Path: p, Revision: s.tree.Revision()})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.tree.DeleteNode(treePath(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMkdir(w http.ResponseWriter, r *http.Request) {
	p := treePath(r)
	if err := s.tree.CreateDirectory(p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, revisionResponse{Path: p, Revision: s.tree.Revision()})
}

type renameRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.tree.Rename(req.From, req.To); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, revisionResponse{Path: req.To, Revision: s.tree.Revision()})
}

type toolResponse struct {
	Message  string `json:"message"`
	Revision uint64 `json:"revision"`
}

// handleTool applies one agent tool call
func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg, err := requests.Handle(s.tree, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toolResponse{Message: msg, Revision: s.tree.Revision()})
}

func wantsYAML(v string) bool {
	return strings.Contains(v, "yaml") || strings.Contains(v, "yml")
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.tree.Serialize()
	if wantsYAML(r.URL.Query().Get("format")) || wantsYAML(r.Header.Get("Accept")) {
		data, err := yaml.Marshal(snap)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePutSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var snap previewfs.Snapshot
	if wantsYAML(r.Header.Get("Content-Type")) {
		err = yaml.Unmarshal(data, &snap)
	} else {
		err = json.Unmarshal(data, &snap)
	}
	if err != nil {
		writeError(w, r, errors.Join(requests.ErrInvalidRequest, err))
		return
	}
	if err := s.tree.Deserialize(snap); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, revisionResponse{Revision: s.tree.Revision()})
}
