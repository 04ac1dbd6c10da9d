package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/shabda/internal/audio"
	"codeberg.org/snonux/shabda/internal/pipeline"
	"codeberg.org/snonux/shabda/internal/session"
	"codeberg.org/snonux/shabda/internal/validate"
	"codeberg.org/snonux/shabda/internal/vocab"
)

// MaxCount bounds the count a client may ask for
const MaxCount = 50

// maxBody bounds request bodies, uploads included
const maxBody = 4 << 20

// Generator runs one generation request
type Generator interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Speaker synthesizes and locates speech files
type Speaker interface {
	Enabled() bool
	Speak(ctx context.Context, text string) (*audio.Speech, error)
	Path(name string) (string, error)
}

// Config configures the listener
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server holds the HTTP handlers
type Server struct {
	generator Generator
	sessions  *session.Manager
	speaker   Speaker
	logger    *zap.Logger
	handler   http.Handler
}

// New creates a server. speaker may be nil when speech is off.
func New(generator Generator, sessions *session.Manager, speaker Speaker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		generator: generator,
		sessions:  sessions,
		speaker:   speaker,
		logger:    logger.Named("http"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("POST /save-session", s.handleSaveSession)
	mux.HandleFunc("GET /sessions", s.handleListSessions)
	mux.HandleFunc("GET /session", s.handleGetSession)
	mux.HandleFunc("DELETE /session", s.handleClearSession)
	mux.HandleFunc("POST /pronounce", s.handlePronounce)
	mux.HandleFunc("POST /upload-session", s.handleUploadSession)
	mux.HandleFunc("GET "+audio.URLPrefix+"{file}", s.handleAudio)

	s.handler = Chain(RequestID, Logger(s.logger), Recovery(s.logger))(mux)
	return s
}

// Handler returns the root handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, cfg Config) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// fail writes err with its mapped status
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	if status >= 500 {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("error_kind", kind),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err))
	}
	writeError(w, status, kind, err.Error())
}

// decode reads an optional JSON body into v
func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return badRequestf("invalid JSON body: %v", err)
	}
	return nil
}

// user picks the user from the body, then from ?username=
func user(r *http.Request, fromBody string) string {
	if u := strings.TrimSpace(fromBody); u != "" {
		return u
	}
	return strings.TrimSpace(r.URL.Query().Get("username"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type generateRequest struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Count    int    `json:"count"`
}

type generateResponse struct {
	Success      bool                 `json:"success"`
	Translations []vocab.Entry        `json:"translations"`
	StorageInfo  *session.StorageInfo `json:"storage_info"`
	Dropped      int                  `json:"dropped"`
	Mismatches   []string             `json:"mismatches,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	kind, err := vocab.ParseKind(req.Type)
	if err != nil {
		s.fail(w, r, badRequestf("%v", err))
		return
	}
	if req.Count < 0 || req.Count > MaxCount {
		s.fail(w, r, badRequestf("count must be between 0 and %d", MaxCount))
		return
	}

	u := user(r, req.Username)
	existing, err := s.sessions.Existing(r.Context(), u, kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.generator.Run(r.Context(), pipeline.Request{Kind: kind, Existing: existing, Count: req.Count})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	info, err := s.sessions.Append(r.Context(), u, res.Entries)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := generateResponse{
		Success:      true,
		Translations: res.Entries,
		StorageInfo:  info,
		Dropped:      res.Dropped,
	}
	for _, m := range res.Mismatches {
		resp.Mismatches = append(resp.Mismatches, m.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

type userRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	info, err := s.sessions.Snapshot(r.Context(), user(r, req.Username))
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, KindNotFound, "No active session to save")
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "storage_info": info})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	infos, err := s.sessions.Snapshots(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if infos == nil {
		infos = []session.SnapshotInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "sessions": infos})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), user(r, ""))
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, KindNotFound, "No active session")
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "session": sess})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Clear(r.Context(), user(r, "")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type pronounceRequest struct {
	Text     string `json:"text"`
	Username string `json:"username"`
}

func (s *Server) handlePronounce(w http.ResponseWriter, r *http.Request) {
	var req pronounceRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	text := validate.Normalize(req.Text)
	if text == "" {
		s.fail(w, r, badRequestf("No text provided"))
		return
	}
	if s.speaker == nil || !s.speaker.Enabled() {
		s.fail(w, r, audio.ErrSpeechDisabled)
		return
	}

	u := user(r, req.Username)
	if url, ok := s.sessions.AudioURL(r.Context(), u, text); ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "audio_url": url, "cached": true})
		return
	}

	speech, err := s.speaker.Speak(r.Context(), text)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.sessions.SetAudioURL(r.Context(), u, text, speech.URL); err != nil {
		s.logger.Warn("failed to remember audio url", zap.String("user", u), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "audio_url": speech.URL, "cached": speech.Cached})
}

type uploadRequest struct {
	Translations []vocab.Entry `json:"translations"`
	Username     string        `json:"username"`
}

func (s *Server) handleUploadSession(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, badRequestf("Invalid session file format"))
		return
	}
	if len(req.Translations) == 0 {
		s.fail(w, r, badRequestf("No translations found in session file"))
		return
	}

	normalized := make([]vocab.Entry, len(req.Translations))
	for i, e := range req.Translations {
		normalized[i] = validate.NormalizeEntry(e)
	}
	entries, err := validate.Entries(normalized, vocab.AllFields)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	info, err := s.sessions.Replace(r.Context(), user(r, req.Username), entries)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Success:      true,
		Translations: entries,
		StorageInfo:  info,
		Dropped:      len(req.Translations) - len(entries),
	})
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	if s.speaker == nil {
		s.fail(w, r, audio.ErrSpeechDisabled)
		return
	}
	path, err := s.speaker.Path(r.PathValue("file"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeFile(w, r, path)
}
