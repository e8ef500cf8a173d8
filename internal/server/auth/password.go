// Package auth holds the credential primitives of the server: password
// hashing, session tokens and Google identity verification.
package auth

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor for new hashes.
const PasswordCost = 10

// HashPassword returns a salted bcrypt hash of pw. Two calls with the same
// password yield different hashes.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hash. Empty or malformed hashes
// never match.
func CheckPassword(hash, pw string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
