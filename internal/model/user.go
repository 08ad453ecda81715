// Package model はドメインモデルを定義する。
package model

import "time"

// テーマ設定の有効値。
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// User は管理画面を操作するオペレーターを表す。
// PasswordDigestはbcryptハッシュであり、クライアントには決して返さない。
type User struct {
	ID             string
	Username       string
	PasswordDigest string
	Avatar         string // アップロード済みアバター画像のURL。未設定時は空文字。
	Theme          string
	CreatedAt      time.Time
	ModifiedAt     time.Time
}

// UserProfile はUserの公開プロジェクション。
// パスワードダイジェストを含まないため、APIレスポンスにそのまま使える。
type UserProfile struct {
	ID         string
	Username   string
	Avatar     string
	Theme      string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Profile はUserから公開プロジェクションを生成する。
func (u *User) Profile() *UserProfile {
	return &UserProfile{
		ID:         u.ID,
		Username:   u.Username,
		Avatar:     u.Avatar,
		Theme:      u.Theme,
		CreatedAt:  u.CreatedAt,
		ModifiedAt: u.ModifiedAt,
	}
}

// ValidTheme はテーマ設定値が有効かどうかを判定する。
func ValidTheme(theme string) bool {
	switch theme {
	case ThemeSystem, ThemeLight, ThemeDark:
		return true
	default:
		return false
	}
}
