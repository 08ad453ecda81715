// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/kenyasue/kantancms/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名の完全一致でユーザーを検索する。
	// 見つからない場合はnilを返す。大文字小文字は区別する。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindProfileByID は指定IDの公開プロジェクションを取得する。
	// SELECT句からパスワードダイジェストを除外することを実装側の責務とする。
	// 見つからない場合はnilを返す。
	FindProfileByID(ctx context.Context, id string) (*model.UserProfile, error)

	// ListProfiles は全ユーザーの公開プロジェクションを作成日時の降順で返す。
	ListProfiles(ctx context.Context) ([]*model.UserProfile, error)

	// Create はユーザーを作成する。ユーザー名の一意制約違反は
	// model.APIError（DUPLICATE_USERNAME）として返す。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザーを更新する。一意制約違反の扱いはCreateと同じ。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 当該ユーザーの記事は削除しない（孤児化は仕様）。
	DeleteByID(ctx context.Context, id string) error
}

// PostRepository は記事データの永続化インターフェース。
type PostRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// List は全記事を作成日時の降順で返す。
	List(ctx context.Context) ([]*model.Post, error)

	// ListByParent は指定の親を持つ記事を作成日時の降順で返す。
	// parentIDが空文字の場合はルート記事（parent_id IS NULL）を返す。
	ListByParent(ctx context.Context, parentID string) ([]*model.Post, error)

	// Create は記事を作成する。
	Create(ctx context.Context, post *model.Post) error

	// Update は記事のタイトル・本文・親参照を更新する。
	// user_id（作成者）は更新しない。
	Update(ctx context.Context, post *model.Post) error

	// DeleteByID は指定IDの記事を削除する。
	// 子記事には触れない（カスケードせず孤児化させる）。
	DeleteByID(ctx context.Context, id string) error
}
