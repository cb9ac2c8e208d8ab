package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/signin/internal/common"
)

// UnusablePasswordPrefix marks a stored hash that no password can match.
const UnusablePasswordPrefix = "!"

// HashPassword returns a salted bcrypt hash of raw. An empty raw password
// yields an unusable marker instead of a hash.
func HashPassword(raw string) (string, error) {
	if raw == "" {
		suffix, err := common.MakeRandHexString(20)
		if err != nil {
			return "", err
		}
		return UnusablePasswordPrefix + suffix, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether raw matches hash.
func CheckPassword(hash, raw string) bool {
	if !IsUsable(hash) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// IsUsable is false for empty hashes and unusable markers.
func IsUsable(hash string) bool {
	return hash != "" && !strings.HasPrefix(hash, UnusablePasswordPrefix)
}

// DescribeHash renders a read-only summary of a stored hash for display in
// the console. The hash itself is masked.
func DescribeHash(hash string) string {
	if hash == "" {
		return "No password set."
	}
	if !IsUsable(hash) {
		return "No usable password set."
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return "Invalid password format or unknown hashing algorithm."
	}
	visible := hash
	if len(visible) > 13 {
		visible = visible[7:13]
	}
	return fmt.Sprintf("algorithm: bcrypt cost: %d hash: %s**********", cost, visible)
}
