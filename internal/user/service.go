// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kenyasue/kantancms/internal/auth"
	"github.com/kenyasue/kantancms/internal/model"
	"github.com/kenyasue/kantancms/internal/repository"
)

// BlobDeleter はアバター画像の削除インターフェース。
type BlobDeleter interface {
	Delete(ctx context.Context, url string) error
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo repository.UserRepository
	hasher   auth.PasswordHasher
	blobs    BlobDeleter
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, hasher auth.PasswordHasher, blobs BlobDeleter) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		blobs:    blobs,
	}
}

// CreateInput はユーザー作成の入力。
// Avatarはアップロード済み画像の公開URL（任意）。
type CreateInput struct {
	Username string
	Password string
	Avatar   string
	Theme    string
}

// UpdateInput はユーザー更新の入力。
// Passwordが空の場合、パスワードは変更しない。
// AvatarSetがtrueの場合のみアバターを差し替える。
type UpdateInput struct {
	Username  string
	Password  string
	Avatar    string
	AvatarSet bool
	Theme     string
}

// List は全ユーザーのプロフィールを返す。
func (s *Service) List(ctx context.Context) ([]*model.UserProfile, error) {
	profiles, err := s.userRepo.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return profiles, nil
}

// Get は指定IDのユーザープロフィールを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.UserProfile, error) {
	profile, err := s.userRepo.FindProfileByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if profile == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return profile, nil
}

// Create は新規ユーザーを作成する。
// ユーザー名の重複はストア層のユニーク制約で検出され、
// DUPLICATE_USERNAMEエラーとして返る。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.UserProfile, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, model.NewValidationError("username", "ユーザー名は必須です")
	}
	if input.Password == "" {
		return nil, model.NewValidationError("password", "パスワードは必須です")
	}

	theme := input.Theme
	if theme == "" {
		theme = model.ThemeSystem
	}
	if !model.ValidTheme(theme) {
		return nil, model.NewValidationError("theme", "テーマはsystem・light・darkのいずれかです")
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, model.NewValidationError("password", err.Error())
	}

	now := time.Now()
	user := &model.User{
		ID:             uuid.New().String(),
		Username:       username,
		PasswordDigest: digest,
		Avatar:         input.Avatar,
		Theme:          theme,
		CreatedAt:      now,
		ModifiedAt:     now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user created",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user.Profile(), nil
}

// Update は既存ユーザーを更新する。
// アバターを差し替えた場合、古い画像ファイルは削除する。
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*model.UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, model.NewValidationError("username", "ユーザー名は必須です")
	}
	user.Username = username

	if input.Password != "" {
		digest, err := s.hasher.Hash(input.Password)
		if err != nil {
			return nil, model.NewValidationError("password", err.Error())
		}
		user.PasswordDigest = digest
	}

	if input.Theme != "" {
		if !model.ValidTheme(input.Theme) {
			return nil, model.NewValidationError("theme", "テーマはsystem・light・darkのいずれかです")
		}
		user.Theme = input.Theme
	}

	oldAvatar := user.Avatar
	if input.AvatarSet {
		user.Avatar = input.Avatar
	}

	user.ModifiedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if input.AvatarSet && oldAvatar != "" && oldAvatar != user.Avatar {
		if err := s.blobs.Delete(ctx, oldAvatar); err != nil {
			// 孤立ファイルはサービスの継続に影響しないため警告のみ
			slog.Warn("failed to delete old avatar",
				slog.String("user_id", user.ID),
				slog.String("avatar", oldAvatar),
				slog.String("error", err.Error()),
			)
		}
	}

	slog.Info("user updated",
		slog.String("user_id", user.ID),
	)

	return user.Profile(), nil
}

// Delete は指定IDのユーザーを削除する。
// アバター画像ファイルも削除する。ユーザーが作成した投稿は削除せず、
// 著者不在のまま残る。
func (s *Service) Delete(ctx context.Context, id string) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError(id)
	}

	if err := s.userRepo.DeleteByID(ctx, id); err != nil {
		return err
	}

	if user.Avatar != "" {
		if err := s.blobs.Delete(ctx, user.Avatar); err != nil {
			slog.Warn("failed to delete avatar",
				slog.String("user_id", id),
				slog.String("avatar", user.Avatar),
				slog.String("error", err.Error()),
			)
		}
	}

	slog.Info("user deleted",
		slog.String("user_id", id),
	)

	return nil
}
