package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kenyasue/kantancms/internal/model"
	"github.com/kenyasue/kantancms/internal/upload"
	"github.com/kenyasue/kantancms/internal/user"
)

// maxUserFormSize はユーザーフォーム（アバター画像込み）の最大サイズ。
const maxUserFormSize = 10 << 20

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// List は全ユーザーのプロフィールを返す。
	List(ctx context.Context) ([]*model.UserProfile, error)
	// Get は指定IDのユーザープロフィールを返す。
	Get(ctx context.Context, id string) (*model.UserProfile, error)
	// Create は新規ユーザーを作成する。
	Create(ctx context.Context, input user.CreateInput) (*model.UserProfile, error)
	// Update は既存ユーザーを更新する。
	Update(ctx context.Context, id string, input user.UpdateInput) (*model.UserProfile, error)
	// Delete は指定IDのユーザーを削除する。
	Delete(ctx context.Context, id string) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
// 作成・更新はアバター画像を含むmultipart/form-dataを受け付ける。
type UserHandler struct {
	service UserServiceInterface
	uploads upload.Store
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, uploads upload.Store) *UserHandler {
	return &UserHandler{
		service: service,
		uploads: uploads,
	}
}

// ListUsers はユーザー一覧を返す。
// GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]userProfileResponse, len(profiles))
	for i, p := range profiles {
		results[i] = toUserProfileResponse(p)
	}
	writeJSON(w, http.StatusOK, results)
}

// GetUser はユーザー詳細を返す。
// GET /api/users/:id
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	profile, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserProfileResponse(profile))
}

// CreateUser はユーザーを作成する。
// POST /api/users (multipart/form-data)
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUserFormSize); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "フォームの解析に失敗しました。",
			Category: "validation",
			Action:   "multipart/form-data形式でリクエストしてください。",
		})
		return
	}

	avatarURL, ok := h.saveAvatar(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Create(r.Context(), user.CreateInput{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
		Avatar:   avatarURL,
		Theme:    r.FormValue("theme"),
	})
	if err != nil {
		// 作成に失敗した場合、保存済みのアバターは孤立するため削除する
		h.discardAvatar(r.Context(), avatarURL)
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserProfileResponse(profile))
}

// UpdateUser はユーザーを更新する。
// PUT /api/users/:id (multipart/form-data)
// avatarフィールドが含まれる場合のみアバターを差し替える。
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxUserFormSize); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "フォームの解析に失敗しました。",
			Category: "validation",
			Action:   "multipart/form-data形式でリクエストしてください。",
		})
		return
	}

	input := user.UpdateInput{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
		Theme:    r.FormValue("theme"),
	}

	if hasAvatarFile(r) {
		avatarURL, ok := h.saveAvatar(w, r)
		if !ok {
			return
		}
		input.Avatar = avatarURL
		input.AvatarSet = true
	}

	profile, err := h.service.Update(r.Context(), userID, input)
	if err != nil {
		if input.AvatarSet {
			h.discardAvatar(r.Context(), input.Avatar)
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserProfileResponse(profile))
}

// DeleteUser はユーザーを削除する。
// DELETE /api/users/:id
// ユーザーが作成した記事は削除されず、著者不在のまま残る。
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// hasAvatarFile はフォームにavatarファイルが含まれるかを判定する。
func hasAvatarFile(r *http.Request) bool {
	if r.MultipartForm == nil {
		return false
	}
	return len(r.MultipartForm.File["avatar"]) > 0
}

// saveAvatar はフォームのavatarファイルを保存し、公開URLを返す。
// ファイルが含まれない場合は空のURLを返す。エラー時はレスポンスを
// 書き込んだうえでok=falseを返す。
func (h *UserHandler) saveAvatar(w http.ResponseWriter, r *http.Request) (string, bool) {
	if !hasAvatarFile(r) {
		return "", true
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "アバターファイルの読み取りに失敗しました。",
			Category: "validation",
			Action:   "ファイルを確認して再度お試しください。",
		})
		return "", false
	}
	defer file.Close()

	url, err := h.uploads.Save(r.Context(), file, header.Header.Get("Content-Type"))
	if err != nil {
		handleServiceError(w, err)
		return "", false
	}
	return url, true
}

// discardAvatar は保存済みアバターを削除する。失敗はログのみ。
func (h *UserHandler) discardAvatar(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := h.uploads.Delete(ctx, url); err != nil {
		slog.Warn("failed to discard avatar",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}
