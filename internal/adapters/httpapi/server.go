package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

const (
	defaultEmojiLimit = 10
	maxEmojiLimit     = 100
)

// EmojiSource lo implementan storage.EmojiRepo y storage.MemEmojiRepo.
type EmojiSource interface {
	Top(ctx context.Context, guildID string, limit int) ([]domain.EmojiUsage, error)
}

type EmojiStat struct {
	Name      string    `json:"name"`
	Count     int64     `json:"count"`
	LastUsage time.Time `json:"last_usage"`
}

type EmojiStatsResponse struct {
	GuildID string      `json:"guild_id"`
	Emojis  []EmojiStat `json:"emojis"`
}

// ErrBadLimit se devuelve cuando el parámetro limit no es un entero positivo.
var ErrBadLimit = errors.New("limit must be a positive integer")

// EmojiStats arma la respuesta de estadísticas. La usa también cmd/statsapi.
func EmojiStats(ctx context.Context, src EmojiSource, guildID, rawLimit string) (EmojiStatsResponse, error) {
	limit := defaultEmojiLimit
	if rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n <= 0 {
			return EmojiStatsResponse{}, ErrBadLimit
		}
		limit = min(n, maxEmojiLimit)
	}
	top, err := src.Top(ctx, guildID, limit)
	if err != nil {
		return EmojiStatsResponse{}, err
	}
	resp := EmojiStatsResponse{GuildID: guildID, Emojis: make([]EmojiStat, 0, len(top))}
	for _, e := range top {
		resp.Emojis = append(resp.Emojis, EmojiStat{Name: e.Name, Count: e.Count, LastUsage: e.LastUsage})
	}
	return resp, nil
}

// Server expone health, métricas y stats de emojis.
type Server struct {
	log    *slog.Logger
	token  string
	emojis EmojiSource
	mux    *http.ServeMux
}

func New(log *slog.Logger, token string, emojis EmojiSource) *Server {
	s := &Server{log: log, token: token, emojis: emojis, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /v1/guilds/{guildID}/emojis", s.requireToken(s.handleEmojis))
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleEmojis(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	resp, err := EmojiStats(r.Context(), s.emojis, guildID, r.URL.Query().Get("limit"))
	switch {
	case errors.Is(err, ErrBadLimit):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case err != nil:
		s.log.Error("emoji stats", "guild", guildID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// requireToken exige "Authorization: Bearer <token>" si hay token configurado.
func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
		}
		next(w, r)
	}
}

// Run escucha en addr hasta que ctx se cancela.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("🌐 HTTP listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
