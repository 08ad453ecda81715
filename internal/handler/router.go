package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kenyasue/kantancms/internal/metrics"
	"github.com/kenyasue/kantancms/internal/middleware"
	"github.com/kenyasue/kantancms/internal/upload"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// database.DBの部分集合として定義する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionResolver   middleware.SessionResolver
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter

	// メトリクス
	Collector *metrics.Collector
	Gatherer  prometheus.Gatherer

	// サービス
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig
	PostService PostServiceInterface
	UserService UserServiceInterface
	UploadStore upload.Store

	// アップロードファイルの静的配信
	UploadDir string

	// ヘルスチェック
	DB HealthChecker
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → (CSRF) → (Session / Access) → (RateLimit)
//
// 読み取り系の/api GETは認証不要、変更系はセッションとCSRFトークンを必須とする。
// /admin配下はアクセスミドルウェアが未認証をログイン画面へリダイレクトする。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Collector))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.Collector)
	postHandler := NewPostHandler(deps.PostService, deps.Collector)
	userHandler := NewUserHandler(deps.UserService, deps.UploadStore)
	uploadHandler := NewUploadHandler(deps.UploadStore, deps.Collector)
	adminHandler := NewAdminHandler(deps.PostService)

	// --- APIルート ---
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

		// 認証
		r.Route("/auth", func(r chi.Router) {
			// ログインは未認証で到達するため、IP単位のレート制限をかける
			r.With(deps.RateLimiter.LoginMiddleware()).Post("/", authHandler.Login)
			r.Delete("/", authHandler.Logout)
			r.Get("/", authHandler.Me)
		})

		// 公開読み取り
		r.Get("/posts", postHandler.ListPosts)
		r.Get("/posts/tree", postHandler.GetPostTree)
		r.Get("/posts/{id}", postHandler.GetPost)
		r.Get("/posts/{id}/html", postHandler.GetPostHTML)

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: Session → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.SessionResolver))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			// 記事の変更系
			r.Post("/posts", postHandler.CreatePost)
			r.Put("/posts/{id}", postHandler.UpdatePost)
			r.Delete("/posts/{id}", postHandler.DeletePost)

			// ユーザー管理
			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.ListUsers)
				r.Post("/", userHandler.CreateUser)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", userHandler.GetUser)
					r.Put("/", userHandler.UpdateUser)
					r.Delete("/", userHandler.DeleteUser)
				})
			})

			// エディタからの画像アップロード
			r.Post("/upload", uploadHandler.Upload)
		})
	})

	// --- 管理画面 ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAccessMiddleware(deps.SessionResolver))

		r.Get("/admin", adminHandler.ServePage)
		r.Get("/admin/login", adminHandler.ServeLoginPage)
		r.Get("/admin/*", adminHandler.ServePage)
	})

	// アップロード済みファイルの静的配信
	if deps.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadDir)))
		r.Method(http.MethodGet, "/uploads/*", fs)
	}

	// ヘルスチェック
	r.Get("/health", newHealthHandler(deps.DB))

	// Prometheusスクレイプ
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	return r
}

// newHealthHandler はヘルスチェックのハンドラーを返す。
// DBへの疎通が確認できない場合は503を返す。
func newHealthHandler(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
