package middleware

import (
	"net/http"
	"strings"
)

// loginPath は未認証の管理画面アクセスのリダイレクト先。
const loginPath = "/admin/login"

// publicAdminPaths は認証なしでアクセスできる管理画面パス。
var publicAdminPaths = map[string]struct{}{
	loginPath: {},
}

// NewAccessMiddleware は管理画面へのアクセスを制御するミドルウェアを返す。
//
// セッションが解決できないリクエストはログイン画面へ302リダイレクトする
// （APIと異なり401ではなくブラウザ向けの挙動をとる）。ログイン画面自体は
// 認証なしで通す。認証済みの場合はプリンシパルと現在のパスを
// コンテキストに注入し、後段がナビゲーションの現在位置を判定できるようにする。
func NewAccessMiddleware(resolver SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := normalizePath(r.URL.Path)
			ctx := ContextWithPath(r.Context(), path)

			if _, public := publicAdminPaths[path]; public {
				// ログイン済みならログイン画面ではなくトップへ
				if principal, err := resolveRequest(resolver, r); err == nil {
					ctx = ContextWithPrincipal(ctx, principal)
					http.Redirect(w, r.WithContext(ctx), "/admin", http.StatusFound)
					return
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			principal, err := resolveRequest(resolver, r)
			if err != nil {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}

			ctx = ContextWithPrincipal(ctx, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// normalizePath は末尾のスラッシュを取り除いたパスを返す。
// ルート（"/"）はそのまま返す。
func normalizePath(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}
	return path
}
