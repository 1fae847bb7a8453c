package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gatherhall/member-import/internal/importer"
	"github.com/gatherhall/member-import/internal/logging"
)

// callerID extracts the caller identity supplied by the fronting auth
// layer. Authentication itself is external; the service only records who
// a session belongs to.
func callerID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return r.RemoteAddr
}

// handleUpload accepts one roster document and creates a pending session.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1024*1024)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	session, err := s.service.Upload(r.Context(), header.Filename, file, callerID(r))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	logging.FromContext(r.Context()).Info("upload stored",
		"session_id", session.ID,
		"filename", session.SourceFilename,
		"kind", session.SourceKind,
	)

	writeJSON(w, r, http.StatusCreated, map[string]string{
		"sessionId": session.ID,
		"filename":  session.SourceFilename,
		"kind":      string(session.SourceKind),
	})
}

// handleParse launches extraction for a session. Parsing can take seconds
// (OCR especially), so the default mode is a background job answered with
// 202; ?wait=true runs synchronously and returns rows and errors.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	checkDuplicates := r.URL.Query().Get("duplicates") == "true"

	if r.URL.Query().Get("wait") == "true" {
		session, err := s.service.Parse(r.Context(), sessionID, checkDuplicates)
		if err != nil {
			writeError(w, r, statusForError(err), err.Error())
			return
		}
		writeJSON(w, r, http.StatusOK, session)
		return
	}

	// Verify the session exists before answering 202.
	if _, err := s.service.Get(r.Context(), sessionID); err != nil {
		writeError(w, r, statusForError(err), err.Error())
		return
	}

	s.service.StartParse(sessionID, checkDuplicates)
	writeJSON(w, r, http.StatusAccepted, map[string]string{
		"sessionId": sessionID,
		"status":    "parsing",
	})
}

// commitRequest is the reviewer-supplied commit payload. Rows omitted
// means "use the session's stored rows".
type commitRequest struct {
	Rows        []importer.CandidateRecord `json:"rows"`
	SkipIndices []int                      `json:"skipIndices"`
}

// handleCommit applies a reviewed row set to the member directory.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req commitRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid commit payload")
			return
		}
	}

	result, err := s.service.Commit(r.Context(), sessionID, req.Rows, req.SkipIndices)
	if err != nil {
		writeError(w, r, statusForError(err), err.Error())
		return
	}

	logging.FromContext(r.Context()).Info("session committed",
		"session_id", sessionID,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)

	writeJSON(w, r, http.StatusOK, result)
}

// handleGetSession returns one session's metadata, rows, and errors.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, statusForError(err), err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, session)
}

// handleListSessions returns the caller's recent sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sessions, err := s.service.List(r.Context(), callerID(r), limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []*importer.Session{}
	}
	writeJSON(w, r, http.StatusOK, sessions)
}

// handleTemplate returns a pre-filled example CSV exhibiting every
// recognized column header.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="member-import-template.csv"`)
	_, _ = w.Write(importer.TemplateCSV())
}

// handleHealth reports liveness, including database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pool != nil {
		if err := s.pool.Ping(r.Context()); err != nil {
			writeError(w, r, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// statusForError maps service errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, importer.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, importer.ErrNotParsed):
		return http.StatusConflict
	case errors.Is(err, importer.ErrParseInFlight):
		return http.StatusConflict
	case errors.Is(err, importer.ErrTooManyParses):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
