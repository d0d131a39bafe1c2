package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/vocespace/server/internal/avatar"
	"github.com/vocespace/server/internal/domain"
)

const (
	avatarMaxDim  = 512
	avatarQuality = 85
)

func userCacheKey(id string) string { return "user:" + id }

// lookupUser reads through the cache to the store.
func (s *Server) lookupUser(id string) (*domain.User, error) {
	if v, ok := s.cache.Get(userCacheKey(id)); ok {
		return v.(*domain.User), nil
	}

	user, err := s.store.GetUser(id)
	if err != nil {
		return nil, err
	}
	if user != nil {
		s.cache.Put(userCacheKey(id), user, s.userTTL)
	}
	return user, nil
}

// CreateUserRequest is the request body for registering a profile
type CreateUserRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	user, err := s.store.CreateUser(req.Username, req.Avatar)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": user})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.lookupUser(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.DeleteUser(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.cache.Invalidate(userCacheKey(id))

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// PublishSpaceRequest is the request body for publishing a space
type PublishSpaceRequest struct {
	OwnerID     string `json:"ownerId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Public      bool   `json:"public"`
}

func (s *Server) publishSpace(w http.ResponseWriter, r *http.Request) {
	var req PublishSpaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OwnerID == "" || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "ownerId and name are required")
		return
	}

	space, err := s.store.PublishSpace(req.OwnerID, req.Name, req.Description, req.Public)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Room creation on the platform is best effort; the space listing is the
	// source of truth and the room can be created lazily on first join.
	if s.platform != nil {
		if _, err := s.platform.CreateRoom(r.Context(), req.Name, 0); err != nil {
			s.logger.Warn("platform room creation failed",
				zap.String("space", req.Name), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"space": space})
}

func (s *Server) listSpaces(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	spaces, err := s.store.ListPublicSpaces(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"spaces": spaces,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) unpublishSpace(w http.ResponseWriter, r *http.Request) {
	if err := s.store.UnpublishSpace(r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// recompressAvatar accepts a raw PNG or JPEG body and responds with the
// recompressed JPEG bytes.
func (s *Server) recompressAvatar(w http.ResponseWriter, r *http.Request) {
	compressed, err := avatar.Recompress(r.Body, avatarMaxDim, avatarQuality)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(compressed)
}
