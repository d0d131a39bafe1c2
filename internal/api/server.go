package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vocespace/server/internal/cache"
	"github.com/vocespace/server/internal/platform"
	"github.com/vocespace/server/internal/store"
	"github.com/vocespace/server/internal/token"
)

// Server handles HTTP requests for the VoceSpace record service
type Server struct {
	store      *store.Store
	cache      *cache.Cache
	issuer     *token.Issuer
	redirector platform.Redirector
	platform   *platform.Client
	logger     *zap.Logger
	addr       string
	userTTL    time.Duration
}

// Options carries the collaborators the server is wired with.
type Options struct {
	Store      *store.Store
	Cache      *cache.Cache
	Issuer     *token.Issuer
	Redirector platform.Redirector
	// Platform is optional; when set, publishing a space also creates the
	// room on the external platform.
	Platform *platform.Client
	Logger   *zap.Logger
	Addr     string
	UserTTL  time.Duration
}

// New creates a new API server
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.UserTTL <= 0 {
		opts.UserTTL = 5 * time.Minute
	}
	return &Server{
		store:      opts.Store,
		cache:      opts.Cache,
		issuer:     opts.Issuer,
		redirector: opts.Redirector,
		platform:   opts.Platform,
		logger:     opts.Logger,
		addr:       opts.Addr,
		userTTL:    opts.UserTTL,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Daily records
	mux.HandleFunc("GET /api/todo", s.getTodo)
	mux.HandleFunc("POST /api/todo", s.saveTodo)
	mux.HandleFunc("DELETE /api/todo", s.deleteTodo)
	mux.HandleFunc("GET /api/analysis", s.getAnalysis)
	mux.HandleFunc("POST /api/analysis", s.saveAnalysis)
	mux.HandleFunc("DELETE /api/analysis", s.deleteAnalysis)
	mux.HandleFunc("DELETE /api/records", s.deleteOwnerRecords)

	// Tokens and cross-domain redirects
	mux.HandleFunc("POST /api/token", s.issueToken)
	mux.HandleFunc("GET /api/redirect", s.buildRedirect)

	// Users
	mux.HandleFunc("POST /api/users", s.createUser)
	mux.HandleFunc("GET /api/users/{id}", s.getUser)
	mux.HandleFunc("DELETE /api/users/{id}", s.deleteUser)

	// Space publishing and discovery
	mux.HandleFunc("POST /api/spaces", s.publishSpace)
	mux.HandleFunc("GET /api/spaces", s.listSpaces)
	mux.HandleFunc("DELETE /api/spaces/{id}", s.unpublishSpace)

	// Avatar recompression
	mux.HandleFunc("POST /api/avatar", s.recompressAvatar)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(s.withLogging(mux))
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.logger.Info("starting server", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
