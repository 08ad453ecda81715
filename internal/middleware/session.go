// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kenyasue/kantancms/internal/model"
)

// SessionCookieName はセッショントークンを運搬するCookieの名前。
const SessionCookieName = "auth"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストに認証済みプリンシパルを格納するためのキー。
var principalContextKey = contextKey("principal")

// currentPathContextKey はリクエストコンテキストに現在のパスを格納するためのキー。
var currentPathContextKey = contextKey("current_path")

// SessionResolver はセッショントークンの解決に必要なインターフェース。
// auth.Serviceの部分集合として定義する。
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*model.UserProfile, error)
}

// NewSessionMiddleware はHTTP Only Cookieからセッショントークンを読み取り、
// プリンシパルに解決するミドルウェアを返す。
// 認証済みプリンシパルをリクエストコンテキストに注入する。
// 未認証リクエストには401 Unauthorizedを返す。
func NewSessionMiddleware(resolver SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := resolveRequest(resolver, r)
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveRequest はリクエストのCookieからプリンシパルを解決する。
func resolveRequest(resolver SessionResolver, r *http.Request) (*model.UserProfile, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, model.NewUnauthorizedError()
	}
	return resolver.Resolve(r.Context(), cookie.Value)
}

// PrincipalFromContext はリクエストコンテキストから認証済みプリンシパルを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func PrincipalFromContext(ctx context.Context) (*model.UserProfile, error) {
	principal, ok := ctx.Value(principalContextKey).(*model.UserProfile)
	if !ok || principal == nil {
		return nil, fmt.Errorf("principal not found in context")
	}
	return principal, nil
}

// ContextWithPrincipal はコンテキストにプリンシパルを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, principal *model.UserProfile) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PathFromContext はリクエストコンテキストから現在のリクエストパスを取得する。
// アクセスミドルウェアを通過したリクエストでのみ有効。
func PathFromContext(ctx context.Context) string {
	path, _ := ctx.Value(currentPathContextKey).(string)
	return path
}

// ContextWithPath はコンテキストに現在のリクエストパスを注入する。
func ContextWithPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, currentPathContextKey, path)
}
