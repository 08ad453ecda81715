package post

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kenyasue/kantancms/internal/model"
	"github.com/kenyasue/kantancms/internal/repository"
)

// Service は記事管理のサービス層。
type Service struct {
	postRepo repository.PostRepository
}

// NewService はServiceを生成する。
func NewService(postRepo repository.PostRepository) *Service {
	return &Service{postRepo: postRepo}
}

// ListFilter は記事一覧の絞り込み条件。
type ListFilter struct {
	// ByParent がtrueの場合、ParentIDで絞り込む（空文字はルート記事を意味する）。
	ByParent bool
	ParentID string
}

// List は記事一覧を作成日時の降順で返す。
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*model.Post, error) {
	if filter.ByParent {
		posts, err := s.postRepo.ListByParent(ctx, filter.ParentID)
		if err != nil {
			return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
		}
		return posts, nil
	}

	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	return posts, nil
}

// Get は指定IDの記事を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}
	return post, nil
}

// Tree は全記事から階層フォレストを構築して返す。
func (s *Service) Tree(ctx context.Context) ([]*Node, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	return BuildForest(posts), nil
}

// CreateInput は記事作成の入力。
type CreateInput struct {
	Title    string
	Content  string
	UserID   string // 作成者。作成後は変更できない。
	ParentID string // 任意。存在しないIDやサイクルの形成は書き込み時には拒否しない。
}

// Create は記事を作成する。
// 親参照の存在確認・循環検査は行わない。不正な参照からの防御は
// 読み取り側（BuildForest / RenderNav）が担う。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Post, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, model.NewValidationError("title", "タイトルは必須です")
	}
	if input.Content == "" {
		return nil, model.NewValidationError("content", "本文は必須です")
	}
	if input.UserID == "" {
		return nil, model.NewValidationError("userId", "作成者は必須です")
	}

	now := time.Now()
	post := &model.Post{
		ID:         uuid.New().String(),
		ParentID:   input.ParentID,
		UserID:     input.UserID,
		Title:      input.Title,
		Content:    input.Content,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("記事の作成に失敗しました: %w", err)
	}

	slog.Info("post created",
		slog.String("post_id", post.ID),
		slog.String("user_id", post.UserID),
	)

	return post, nil
}

// UpdateInput は記事更新の入力。作成者（UserID）は受け付けない。
type UpdateInput struct {
	Title    string
	Content  string
	ParentID string
}

// Update は記事のタイトル・本文・親参照を更新する。
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*model.Post, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, model.NewValidationError("title", "タイトルは必須です")
	}
	if input.Content == "" {
		return nil, model.NewValidationError("content", "本文は必須です")
	}

	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}

	post.Title = input.Title
	post.Content = input.Content
	post.ParentID = input.ParentID
	post.ModifiedAt = time.Now()

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("記事の更新に失敗しました: %w", err)
	}

	slog.Info("post updated", slog.String("post_id", post.ID))

	return post, nil
}

// Delete は記事を削除する。子記事はカスケードせず孤児として残す。
func (s *Service) Delete(ctx context.Context, id string) error {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if post == nil {
		return model.NewPostNotFoundError(id)
	}

	if err := s.postRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("記事の削除に失敗しました: %w", err)
	}

	slog.Info("post deleted", slog.String("post_id", id))

	return nil
}
