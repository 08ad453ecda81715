package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() *BcryptHasher {
	return NewBcryptHasherWithCost(bcrypt.MinCost)
}

func TestHash_ProducesVerifiableDigest(t *testing.T) {
	h := newTestHasher()

	digest, err := h.Hash("secret-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if digest == "" || digest == "secret-password" {
		t.Fatalf("digest = %q, want non-empty hash distinct from plaintext", digest)
	}

	if !h.Verify("secret-password", digest) {
		t.Error("Verify should succeed for the original password")
	}
}

func TestHash_SamePasswordDifferentDigests(t *testing.T) {
	h := newTestHasher()

	// ソルトがランダムなため、同一パスワードでもダイジェストは異なる
	d1, _ := h.Hash("same")
	d2, _ := h.Hash("same")
	if d1 == d2 {
		t.Error("digests for the same password should differ")
	}
}

func TestHash_RejectsOverlongPassword(t *testing.T) {
	h := newTestHasher()

	_, err := h.Hash(strings.Repeat("a", bcryptMaxLen+1))
	if err == nil {
		t.Fatal("Hash should reject passwords longer than 72 bytes")
	}
}

func TestVerify_WrongPassword_ReturnsFalse(t *testing.T) {
	h := newTestHasher()

	digest, _ := h.Hash("right")
	if h.Verify("wrong", digest) {
		t.Error("Verify should fail for a wrong password")
	}
}

func TestVerify_GarbageDigest_ReturnsFalse(t *testing.T) {
	h := newTestHasher()

	if h.Verify("anything", "not-a-bcrypt-digest") {
		t.Error("Verify should fail for a malformed digest")
	}
}
