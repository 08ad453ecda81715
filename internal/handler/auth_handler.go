package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kenyasue/kantancms/internal/middleware"
	"github.com/kenyasue/kantancms/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login はユーザー名とパスワードを検証し、認証済みプリンシパルを返す。
	Login(ctx context.Context, username, password string) (*model.UserProfile, error)
	// Resolve はセッショントークンをプリンシパルに解決する。
	Resolve(ctx context.Context, token string) (*model.UserProfile, error)
}

// LoginFailureRecorder はログイン失敗の記録に必要なインターフェース。
// metrics.MetricsCollectorの部分集合として定義する。
type LoginFailureRecorder interface {
	RecordLoginFailure()
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はログイン認証のHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	config    AuthHandlerConfig
	collector LoginFailureRecorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, collector LoginFailureRecorder) *AuthHandler {
	return &AuthHandler{
		service:   service,
		config:    config,
		collector: collector,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userProfileResponse はユーザー情報のAPIレスポンス。
// パスワードダイジェストは含まない。
type userProfileResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Theme    string `json:"theme"`
}

func toUserProfileResponse(profile *model.UserProfile) userProfileResponse {
	return userProfileResponse{
		ID:       profile.ID,
		Username: profile.Username,
		Avatar:   profile.Avatar,
		Theme:    profile.Theme,
	}
}

// Login はログインを処理する。
// POST /api/auth
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	profile, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if h.collector != nil {
			h.collector.RecordLoginFailure()
		}
		handleServiceError(w, err)
		return
	}

	// セッションCookieを設定（HTTP Only）
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    profile.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSON(w, http.StatusOK, toUserProfileResponse(profile))
}

// Logout はセッションCookieを破棄する。
// DELETE /api/auth
// セッションが存在しない場合も成功として扱う（冪等）。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// meResponse は現在のセッション状態のAPIレスポンス。
type meResponse struct {
	Authenticated bool                 `json:"authenticated"`
	User          *userProfileResponse `json:"user,omitempty"`
}

// Me は現在のログインユーザー情報を返す。
// GET /api/auth
// 未ログインでも200で返し、authenticatedフラグで状態を示す。
// 失効したCookieはここで破棄する。
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusOK, meResponse{Authenticated: false})
		return
	}

	profile, err := h.service.Resolve(r.Context(), cookie.Value)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeUnauthorized {
			// ユーザーが存在しない古いCookieは破棄する
			h.clearSessionCookie(w)
			writeJSON(w, http.StatusOK, meResponse{Authenticated: false})
			return
		}
		handleServiceError(w, err)
		return
	}

	user := toUserProfileResponse(profile)
	writeJSON(w, http.StatusOK, meResponse{Authenticated: true, User: &user})
}

// clearSessionCookie はセッションCookieを無効化する。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
