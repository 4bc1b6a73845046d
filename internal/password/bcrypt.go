// Package password はパスワードの一方向ハッシュと照合を提供します。
package password

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost はハッシュ計算のデフォルトコストです。
const DefaultCost = 10

// Hasher は bcrypt によるハッシュ化と照合を行います。
// ソルトは bcrypt がハッシュごとに生成し、出力に埋め込みます。
type Hasher struct {
	cost int
}

// NewHasher は指定コストの Hasher を作成します。
// コストは bcrypt の許容範囲に丸められます。
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Cost は使用中のコストを返します。
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash は平文パスワードのハッシュを返します。
// 72 バイトを超えるパスワードはエラーになります。
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify は平文とハッシュが一致するかを返します。
// ハッシュが壊れている場合も false を返します。
func (h *Hasher) Verify(plaintext, hashed string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
