// Package server 提供 HTTP API：选手搜索、比赛历史、视频链接匹配。
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/John-Robertt/fightlink/internal/domain"
	"github.com/John-Robertt/fightlink/internal/match"
	"github.com/John-Robertt/fightlink/internal/stats"
)

// DefaultRequestTimeout 覆盖一次请求（含上游战绩站点抓取）的总耗时。
const DefaultRequestTimeout = 30 * time.Second

// FighterSource 是战绩查询能力；*stats.Client 实现了它。
type FighterSource interface {
	SearchFighters(ctx context.Context, name string) ([]domain.Fighter, error)
	FighterFights(ctx context.Context, fighterURL string) ([]domain.FighterFight, error)
}

// Server 持有请求处理所需的依赖；构建后只读，可并发使用。
type Server struct {
	Stats   FighterSource // 为 nil 时 /api/search 与 /api/fights 返回 503
	Matcher *match.Matcher
	Timeout time.Duration
}

// Handler 组装路由与中间件。
func (s *Server) Handler() http.Handler {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Accept"},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/fights", s.handleFights)
		r.Get("/paramount-link", s.handleLink)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n := 0
	if s.Matcher != nil {
		n = s.Matcher.Index.Len()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "catalog": n})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "Please provide a fighter name")
		return
	}
	if s.Stats == nil {
		writeError(w, http.StatusServiceUnavailable, "fighter lookup is disabled")
		return
	}
	fighters, err := s.Stats.SearchFighters(r.Context(), name)
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fighters": nonNil(fighters), "count": len(fighters)})
}

func (s *Server) handleFights(w http.ResponseWriter, r *http.Request) {
	u := strings.TrimSpace(r.URL.Query().Get("url"))
	if u == "" {
		writeError(w, http.StatusBadRequest, "Please provide a fighter URL")
		return
	}
	if s.Stats == nil {
		writeError(w, http.StatusServiceUnavailable, "fighter lookup is disabled")
		return
	}
	fights, err := s.Stats.FighterFights(r.Context(), u)
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fights": nonNil(fights), "count": len(fights)})
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.Query{
		Name:         strings.TrimSpace(q.Get("fighter")),
		OpponentName: strings.TrimSpace(q.Get("opponent")),
		EventLabel:   strings.TrimSpace(q.Get("event")),
	}
	if query.Name == "" || query.OpponentName == "" {
		writeError(w, http.StatusBadRequest, "Please provide fighter and opponent names")
		return
	}
	m := s.Matcher
	if m == nil {
		m = match.New(nil, "")
	}
	writeJSON(w, http.StatusOK, m.Resolve(query))
}

// upstreamError 把 stats 错误映射为状态码：参数问题 400，其余视为上游不可用 502。
func (s *Server) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, stats.ErrInvalidURL) || stats.Stage(err) == stats.StageValidate {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Warn().
		Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("stage", stats.Stage(err)).
		Msg("战绩站点请求失败")
	writeError(w, http.StatusBadGateway, "fighter stats are temporarily unavailable")
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("写响应失败")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// accessLog 每个请求一行结构化日志。
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("http")
		}()
		next.ServeHTTP(ww, r)
	})
}

// Run 监听 addr 并服务，ctx 取消后优雅关闭（最多等待 10 秒）。
func Run(ctx context.Context, addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, h)
}

// Serve 与 Run 相同，但使用调用方提供的 listener（测试用随机端口）。
func Serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("HTTP 服务已启动")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("HTTP 服务已关闭")
	return nil
}
