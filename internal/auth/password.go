package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost はbcryptのワークファクター。
const defaultCost = 10

// bcryptMaxLen はbcryptが受け付ける平文の最大バイト数。
// これを超える入力は黙って切り詰められるため、明示的に拒否する。
const bcryptMaxLen = 72

// PasswordHasher はパスワードのハッシュ化・検証のインターフェース。
// 比較が一定時間で行われることは実装側の契約とする。
type PasswordHasher interface {
	// Hash は平文パスワードからダイジェストを生成する。
	Hash(plaintext string) (string, error)
	// Verify は平文パスワードがダイジェストと一致するかを判定する。
	Verify(plaintext, digest string) bool
}

// BcryptHasher はbcryptによるPasswordHasherの実装。
// ソルト生成とダイジェストへの埋め込みはbcryptが行う。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はデフォルトコストのBcryptHasherを生成する。
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: defaultCost}
}

// NewBcryptHasherWithCost は指定コストのBcryptHasherを生成する。
// テストでは最小コスト（bcrypt.MinCost）を使い実行時間を短縮できる。
func NewBcryptHasherWithCost(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

// Hash は平文パスワードからbcryptダイジェストを生成する。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > bcryptMaxLen {
		return "", fmt.Errorf("password must be %d bytes or fewer", bcryptMaxLen)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文パスワードがダイジェストと一致するかを判定する。
// bcrypt.CompareHashAndPasswordは内部で一定時間比較を行う。
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// compile-time interface check
var _ PasswordHasher = (*BcryptHasher)(nil)
