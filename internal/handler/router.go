package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/infectados/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenValidator    middleware.TokenValidator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	TrustProxyHeaders bool

	// 運用エンドポイント
	HTTPRecorder   middleware.HTTPRecorder // nilの場合はHTTPメトリクスを記録しない
	MetricsHandler http.Handler            // nilの場合は/metricsを公開しない
	HealthChecker  HealthChecker

	// サービス
	InfectadoService InfectadoServiceInterface
	UsuarioService   UsuarioServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したhttp.Handlerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	(ProxyHeaders) → RequestID → Recovery → Logging → Metrics → SecurityHeaders → CORS
//
// /api/usuario はIP単位の認証レート制限、/api/infectados はBearer認証とログイン単位のレート制限を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	if deps.TrustProxyHeaders {
		r.Use(middleware.NewProxyHeadersMiddleware())
	}
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.HTTPRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPRecorder))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	infectadoHandler := NewInfectadoHandler(deps.InfectadoService)
	usuarioHandler := NewUsuarioHandler(deps.UsuarioService)

	// --- 運用エンドポイント ---
	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証不要のルート ---
	r.Route("/api/usuario", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.AuthMiddleware())
		}
		r.Post("/inserir", usuarioHandler.Inserir)
		r.Post("/autenticar", usuarioHandler.Autenticar)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Route("/api/infectados", func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenValidator))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Post("/inserir", infectadoHandler.Inserir)
		r.Put("/atualizar/{id}", infectadoHandler.Atualizar)
		r.Delete("/excluir/{id}", infectadoHandler.Excluir)
		r.Get("/listar", infectadoHandler.Listar)
		r.Get("/obter/{id}", infectadoHandler.Obter)
	})

	return r
}
