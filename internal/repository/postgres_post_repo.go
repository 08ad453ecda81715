package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kenyasue/kantancms/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, parent_id, user_id, title, content, created_at, modified_at
		 FROM posts WHERE id = $1`,
		id,
	)

	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}

	return post, nil
}

// List は全記事を作成日時の降順で返す。
func (r *PostgresPostRepo) List(ctx context.Context) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, parent_id, user_id, title, content, created_at, modified_at
		 FROM posts ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

// ListByParent は指定の親を持つ記事を作成日時の降順で返す。
// parentIDが空文字の場合はルート記事（parent_id IS NULL）を返す。
func (r *PostgresPostRepo) ListByParent(ctx context.Context, parentID string) ([]*model.Post, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if parentID == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, parent_id, user_id, title, content, created_at, modified_at
			 FROM posts WHERE parent_id IS NULL ORDER BY created_at DESC`,
		)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, parent_id, user_id, title, content, created_at, modified_at
			 FROM posts WHERE parent_id = $1 ORDER BY created_at DESC`,
			parentID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by parent: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

// Create は記事を作成する。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, parent_id, user_id, title, content, created_at, modified_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		post.ID, nullableID(post.ParentID), post.UserID, post.Title, post.Content,
		post.CreatedAt, post.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// Update は記事のタイトル・本文・親参照を更新する。user_idは更新しない。
func (r *PostgresPostRepo) Update(ctx context.Context, post *model.Post) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE posts
		 SET parent_id = $2, title = $3, content = $4, modified_at = $5
		 WHERE id = $1`,
		post.ID, nullableID(post.ParentID), post.Title, post.Content, post.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewPostNotFoundError(post.ID)
	}
	return nil
}

// DeleteByID は指定IDの記事を削除する。子記事には触れない。
func (r *PostgresPostRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewPostNotFoundError(id)
	}
	return nil
}

// rowScanner はsql.Rowとsql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPost は1行を読み取りPostに変換する。parent_idのNULLを空文字に正規化する。
func scanPost(row rowScanner) (*model.Post, error) {
	post := &model.Post{}
	var parentID sql.NullString

	err := row.Scan(&post.ID, &parentID, &post.UserID, &post.Title, &post.Content,
		&post.CreatedAt, &post.ModifiedAt)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		post.ParentID = parentID.String
	}
	return post, nil
}

// collectPosts は結果セット全体をPostのスライスに変換する。
func collectPosts(rows *sql.Rows) ([]*model.Post, error) {
	var posts []*model.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

// nullableID は空文字のIDをNULLとして保存するための変換を行う。
func nullableID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
