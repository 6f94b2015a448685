package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/df07/go-bvh-raytracer/pkg/core"
	"github.com/df07/go-bvh-raytracer/pkg/renderer"
	"github.com/df07/go-bvh-raytracer/pkg/scene"
)

// Server handles web requests for the ray tracer
type Server struct {
	port      int
	scenesDir string
	logger    *zap.SugaredLogger
}

// NewServer creates a new web server. YAML scenes are discovered in scenesDir.
func NewServer(port int, scenesDir string, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{port: port, scenesDir: scenesDir, logger: logger}
}

// RenderRequest holds the parameters shared by render and inspect requests
type RenderRequest struct {
	Scene  string `json:"scene"`  // Scene ID as listed by /api/scenes
	Accel  string `json:"accel"`  // Optional accelerator override: bvh or linear
	Width  int    `json:"width"`  // Image width
	Height int    `json:"height"` // Image height
	Depth  int    `json:"depth"`  // Maximum recursion depth
}

// Handler returns the API routes wrapped in a permissive CORS policy.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.Handle("/", http.FileServer(http.Dir("static/")))
	return cors.AllowAll().Handler(mux)
}

// Start starts the web server and blocks until ctx is cancelled or the listener fails
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Infow("starting web server", "addr", "http://localhost"+srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "web server failed")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListScenes(s.scenesDir, s.logger)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, scenes)
}

// handleRender renders the requested scene and responds with a PNG
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}
	rt, err := s.newRaytracer(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	img, stats, err := rt.Render(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Render-Rays", strconv.FormatInt(stats.Rays, 10))
	w.Header().Set("X-Render-Duration-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		s.logger.Warnw("failed to write image", "scene", req.Scene, "error", err)
	}
}

// handleInspect reports what the primary ray through pixel (x, y) hits
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req, err := s.parseRenderRequest(query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	x, err := parseIntParam(query, "x", -1, 0, req.Width-1)
	if err != nil {
		s.writeError(w, err)
		return
	}
	y, err := parseIntParam(query, "y", -1, 0, req.Height-1)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if x < 0 || y < 0 {
		s.writeError(w, core.Invalidf("x and y are required"))
		return
	}

	rt, err := s.newRaytracer(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	result, err := rt.Inspect(x, y)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{
		Scene: values.Get("scene"),
		Accel: values.Get("accel"),
	}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 400, 1, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 225, 1, 2000); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(values, "depth", 5, 1, 50); err != nil {
		return nil, err
	}
	return req, nil
}

// newRaytracer opens and builds the requested scene. Only listed scenes can be opened,
// so arbitrary file paths are refused.
func (s *Server) newRaytracer(req *RenderRequest) (*renderer.Raytracer, error) {
	scenes, err := scene.ListScenes(s.scenesDir, s.logger)
	if err != nil {
		return nil, err
	}
	known := false
	for _, info := range scenes {
		if info.ID == req.Scene {
			known = true
			break
		}
	}
	if !known {
		return nil, core.Invalidf("unknown scene %q", req.Scene)
	}

	sc, err := scene.Open(req.Scene, req.Accel)
	if err != nil {
		return nil, err
	}
	if err := sc.Build(s.logger); err != nil {
		return nil, err
	}

	config := renderer.DefaultConfig()
	config.Width = req.Width
	config.Height = req.Height
	config.MaxDepth = req.Depth
	return renderer.NewRaytracer(sc, config, s.logger)
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, core.Invalidf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, core.Invalidf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// statusCode maps an error to the HTTP status reported to the client
func statusCode(err error) int {
	switch {
	case core.IsInvalidArgument(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		s.logger.Errorw("request failed", "status", code, "error", err)
	} else {
		s.logger.Debugw("bad request", "status", code, "error", err)
	}
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warnw("failed to write response", "error", err)
	}
}
