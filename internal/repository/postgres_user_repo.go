package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kenyasue/kantancms/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = "23505"

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_digest, avatar, theme, created_at, modified_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Username, &user.PasswordDigest, &user.Avatar, &user.Theme,
		&user.CreatedAt, &user.ModifiedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByUsername はユーザー名の完全一致でユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_digest, avatar, theme, created_at, modified_at
		 FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordDigest, &user.Avatar, &user.Theme,
		&user.CreatedAt, &user.ModifiedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	return user, nil
}

// FindProfileByID は指定IDの公開プロジェクションを取得する。見つからない場合はnilを返す。
// SELECT句にpassword_digestを含めないことで、認証済みプリンシパルに
// シークレットが混入しないことをストア層で保証する。
func (r *PostgresUserRepo) FindProfileByID(ctx context.Context, id string) (*model.UserProfile, error) {
	profile := &model.UserProfile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, avatar, theme, created_at, modified_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&profile.ID, &profile.Username, &profile.Avatar, &profile.Theme,
		&profile.CreatedAt, &profile.ModifiedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user profile: %w", err)
	}

	return profile, nil
}

// ListProfiles は全ユーザーの公開プロジェクションを作成日時の降順で返す。
func (r *PostgresUserRepo) ListProfiles(ctx context.Context) ([]*model.UserProfile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, avatar, theme, created_at, modified_at
		 FROM users ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*model.UserProfile
	for rows.Next() {
		profile := &model.UserProfile{}
		if err := rows.Scan(&profile.ID, &profile.Username, &profile.Avatar, &profile.Theme,
			&profile.CreatedAt, &profile.ModifiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user profiles: %w", err)
	}

	return profiles, nil
}

// Create はユーザーを作成する。
// ユーザー名の一意制約違反はDUPLICATE_USERNAMEのAPIErrorとして返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_digest, avatar, theme, created_at, modified_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Username, user.PasswordDigest, user.Avatar, user.Theme,
		user.CreatedAt, user.ModifiedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateUsernameError(user.Username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update はユーザーを更新する。一意制約違反の扱いはCreateと同じ。
func (r *PostgresUserRepo) Update(ctx context.Context, user *model.User) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET username = $2, password_digest = $3, avatar = $4, theme = $5, modified_at = $6
		 WHERE id = $1`,
		user.ID, user.Username, user.PasswordDigest, user.Avatar, user.Theme, user.ModifiedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateUsernameError(user.Username)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewUserNotFoundError(user.ID)
	}
	return nil
}

// DeleteByID は指定IDのユーザーを削除する。
// 当該ユーザーの記事には外部キー制約を張っていないため削除されず残る。
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewUserNotFoundError(id)
	}
	return nil
}

// isUniqueViolation はエラーが一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
