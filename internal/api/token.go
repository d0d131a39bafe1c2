package api

import (
	"encoding/json"
	"net/http"

	"github.com/vocespace/server/internal/domain"
	"github.com/vocespace/server/internal/platform"
	"github.com/vocespace/server/internal/token"
)

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request) {
	var claims token.Claims
	if err := json.NewDecoder(r.Body).Decode(&claims); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if claims.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	if claims.Identity != "" && !claims.Identity.Valid() {
		writeError(w, http.StatusBadRequest, "unknown identity")
		return
	}

	signed, err := s.issuer.Issue(claims)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": signed})
}

// buildRedirect issues a token for the requesting user and returns the
// cross-domain connection-details URL for the destination selected by the
// auth source flag.
func (s *Server) buildRedirect(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	if uid == "" {
		writeError(w, http.StatusBadRequest, "uid is required")
		return
	}

	source := platform.Source(r.URL.Query().Get("auth"))
	if source == "" {
		source = platform.SourceVoceSpace
	}
	if source != platform.SourceVoceSpace && source != platform.SourceMeeting {
		writeError(w, http.StatusBadRequest, "unknown auth source")
		return
	}

	user, err := s.lookupUser(uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	claims := token.Claims{
		ID:       user.ID,
		Username: user.Username,
		Avatar:   user.Avatar,
		Space:    r.URL.Query().Get("space"),
		Room:     r.URL.Query().Get("room"),
		Identity: domain.Identity(r.URL.Query().Get("identity")),
	}
	if claims.Identity != "" && !claims.Identity.Valid() {
		writeError(w, http.StatusBadRequest, "unknown identity")
		return
	}

	signed, err := s.issuer.Issue(claims)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url": s.redirector.URL(source, signed),
	})
}
