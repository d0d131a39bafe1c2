package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vocespace/server/internal/domain"
	"github.com/vocespace/server/internal/record"
)

// recordKey extracts and validates the (uid, date) query pair shared by the
// record endpoints.
func recordKey(r *http.Request) (uid, date string, ok bool) {
	uid = r.URL.Query().Get("uid")
	date = r.URL.Query().Get("date")
	return uid, date, uid != "" && date != ""
}

func (s *Server) getTodo(w http.ResponseWriter, r *http.Request) {
	uid, date, ok := recordKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "uid and date are required")
		return
	}

	rec, err := s.store.GetTodoRecord(uid, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		// Not an error: first read before any write returns an empty record.
		rec = &domain.TodoRecord{OwnerID: uid, Day: date, Entries: []domain.TodoEntry{}}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"record": rec})
}

// SaveTodoRequest is the request body for merging a todo record
type SaveTodoRequest struct {
	Record domain.TodoRecord `json:"record"`
}

func (s *Server) saveTodo(w http.ResponseWriter, r *http.Request) {
	var req SaveTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Record.OwnerID == "" || req.Record.Day == "" {
		writeError(w, http.StatusBadRequest, "record ownerId and day are required")
		return
	}

	existing, err := s.store.GetTodoRecord(req.Record.OwnerID, req.Record.Day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	merged := record.MergeTodo(existing, req.Record)
	if err := s.store.SaveTodoRecord(merged); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"record": merged})
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	uid, date, ok := recordKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "uid and date are required")
		return
	}

	// With an entryId one entry is removed; without, the whole day is dropped.
	var err error
	if entryID := r.URL.Query().Get("entryId"); entryID != "" {
		err = s.store.DeleteTodoEntry(uid, date, entryID)
	} else {
		err = s.store.DeleteRecord(uid, date, domain.KindTodo)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// deleteOwnerRecords drops every daily record an owner has, both kinds, all
// days. This is the bulk-removal path used when an account is torn down.
func (s *Server) deleteOwnerRecords(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	if uid == "" {
		writeError(w, http.StatusBadRequest, "uid is required")
		return
	}

	if err := s.store.DeleteOwnerRecords(uid); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	uid, date, ok := recordKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "uid and date are required")
		return
	}

	rec, err := s.store.GetAnalysisRecord(uid, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		rec = &domain.AnalysisRecord{OwnerID: uid, Day: date, Entries: []domain.AnalysisEntry{}}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"record": rec})
}

// SaveAnalysisRequest is the request body for merging an analysis record
type SaveAnalysisRequest struct {
	Record domain.AnalysisRecord `json:"record"`
}

func (s *Server) saveAnalysis(w http.ResponseWriter, r *http.Request) {
	var req SaveAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Record.OwnerID == "" || req.Record.Day == "" {
		writeError(w, http.StatusBadRequest, "record ownerId and day are required")
		return
	}

	existing, err := s.store.GetAnalysisRecord(req.Record.OwnerID, req.Record.Day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	merged := record.MergeAnalysis(existing, req.Record)
	if err := s.store.SaveAnalysisRecord(merged); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"record": merged})
}

func (s *Server) deleteAnalysis(w http.ResponseWriter, r *http.Request) {
	uid, date, ok := recordKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "uid and date are required")
		return
	}

	var err error
	if raw := r.URL.Query().Get("timestamp"); raw != "" {
		ts, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid timestamp")
			return
		}
		err = s.store.DeleteAnalysisEntry(uid, date, ts)
	} else {
		err = s.store.DeleteRecord(uid, date, domain.KindAnalysis)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
