package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/kenyasue/kantancms/internal/middleware"
	"github.com/kenyasue/kantancms/internal/post"
)

// adminPageTemplate は管理画面のHTMLシェル。
// 記事ツリーのナビゲーションとログインユーザー名を埋め込む。
var adminPageTemplate = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html lang="ja" data-theme="{{.Theme}}">
<head>
<meta charset="utf-8">
<title>kantancms admin</title>
</head>
<body>
<header>
<span class="username">{{.Username}}</span>
</header>
<nav>
{{.Nav}}
</nav>
<main id="app"></main>
</body>
</html>
`))

// loginPageTemplate はログイン画面のHTMLシェル。
var loginPageTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>kantancms login</title>
</head>
<body>
<main id="login"></main>
</body>
</html>
`))

// adminPageData はadminPageTemplateの描画データ。
type adminPageData struct {
	Username string
	Theme    string
	Nav      template.HTML
}

// AdminHandler は管理画面ページのHTTPハンドラー。
// アクセスミドルウェアの後段で動作し、認証済みであることを前提とする。
type AdminHandler struct {
	posts PostServiceInterface
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(posts PostServiceInterface) *AdminHandler {
	return &AdminHandler{posts: posts}
}

// ServePage は管理画面のHTMLシェルを返す。
// GET /admin, GET /admin/*
func (h *AdminHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/admin/login", http.StatusFound)
		return
	}

	roots, err := h.posts.Tree(r.Context())
	if err != nil {
		slog.Error("failed to build post tree", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	data := adminPageData{
		Username: principal.Username,
		Theme:    principal.Theme,
		Nav:      post.RenderNav(roots, middleware.PathFromContext(r.Context())),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := adminPageTemplate.Execute(w, data); err != nil {
		slog.Error("failed to render admin page", slog.String("error", err.Error()))
	}
}

// ServeLoginPage はログイン画面のHTMLシェルを返す。
// GET /admin/login
func (h *AdminHandler) ServeLoginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := loginPageTemplate.Execute(w, nil); err != nil {
		slog.Error("failed to render login page", slog.String("error", err.Error()))
	}
}
