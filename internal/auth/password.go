package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost はbcryptのワークファクタ。
const passwordHashCost = 10

// HashPassword は平文パスワードをbcryptでハッシュ化する。
// ソルトはbcryptがハッシュに内包する。
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword は平文パスワードを保存済みハッシュと照合する。
// 生のハッシュ同士の等価比較は行わず、bcryptの定数時間比較のみを使用する。
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
