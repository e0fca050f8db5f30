package usuario

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher はパスワードのハッシュ化と照合を行うインターフェース。
type PasswordHasher interface {
	// Hash は平文のパスワードから保存形式を生成する。
	Hash(senha string) (string, error)
	// Compare は保存形式と平文を照合する。
	// needsRehashは照合に成功し、かつ保存形式を更新すべき場合にtrueとなる。
	Compare(stored, senha string) (ok bool, needsRehash bool, err error)
}

// BcryptHasher はbcryptによるPasswordHasher。
// bcryptの72バイト制限を避けるため、SHA-256のダイジェストをbcryptに渡す。
// bcrypt形式でない保存値は旧来の平文として扱う。
type BcryptHasher struct {
	cost int
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher はBcryptHasherを生成する。範囲外のcostは既定値に置き換える。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash はパスワードをbcryptでハッシュ化する。
func (h *BcryptHasher) Hash(senha string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(prehash(senha), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare は保存値と平文を照合する。
func (h *BcryptHasher) Compare(stored, senha string) (bool, bool, error) {
	cost, err := bcrypt.Cost([]byte(stored))
	if err != nil {
		// 旧来の平文
		ok := subtle.ConstantTimeCompare([]byte(stored), []byte(senha)) == 1
		return ok, ok, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(stored), prehash(senha))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to compare password: %w", err)
	}
	return true, cost < h.cost, nil
}

// prehash はパスワードを44バイトの固定長に変換する。
func prehash(senha string) []byte {
	sum := sha256.Sum256([]byte(senha))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
