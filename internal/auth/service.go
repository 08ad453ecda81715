// Package auth はログイン認証とセッション解決を提供する。
//
// セッショントークンはユーザーIDそのものであり、HTTP Only Cookieで
// 運搬される。有効期限はCookieのMaxAgeが担うため、サーバー側に
// セッションテーブルは持たない。解決はユーザーストアへの
// 主キー1回引きであり、リクエストごとに毎回実行する（キャッシュしない）。
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kenyasue/kantancms/internal/model"
	"github.com/kenyasue/kantancms/internal/repository"
)

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, hasher PasswordHasher) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// Login はユーザー名とパスワードを検証し、認証済みプリンシパルを返す。
//
// ユーザー名不一致とパスワード不一致はどちらも同一の
// INVALID_CREDENTIALSエラーとして返し、呼び出し側から
// どちらの要素が失敗したか区別できないようにする。
func (s *Service) Login(ctx context.Context, username, password string) (*model.UserProfile, error) {
	if username == "" || password == "" {
		return nil, model.NewValidationError("username", "ユーザー名とパスワードは必須です")
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(password, user.PasswordDigest) {
		return nil, model.NewInvalidCredentialsError()
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user.Profile(), nil
}

// Resolve はセッショントークンを認証済みプリンシパルに解決する。
//
// トークンが空、または参照先のユーザーが存在しない場合は
// UNAUTHORIZEDエラーを返す。プリンシパルにはパスワードダイジェストを
// 含まない（リポジトリのプロジェクションがSELECT句から除外する）。
func (s *Service) Resolve(ctx context.Context, token string) (*model.UserProfile, error) {
	if token == "" {
		return nil, model.NewUnauthorizedError()
	}

	profile, err := s.userRepo.FindProfileByID(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("プリンシパルの解決に失敗しました: %w", err)
	}
	if profile == nil {
		return nil, model.NewUnauthorizedError()
	}

	return profile, nil
}
