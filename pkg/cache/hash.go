package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HashJSON returns the hex SHA-256 of v's JSON encoding. Map keys are
// encoded in sorted order, so equal maps hash equally.
func HashJSON(v any) (string, error) {
	h := sha256.New()
	if err := json.NewEncoder(h).Encode(v); err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashKey builds "kind:<sha256 of parts>". Parts JSON cannot encode
// (NaN sizes) are hashed by their %v form.
func hashKey(kind string, parts ...any) string {
	sum, err := HashJSON(parts)
	if err != nil {
		raw := sha256.Sum256(fmt.Appendf(nil, "%v", parts))
		sum = hex.EncodeToString(raw[:])
	}
	return kind + ":" + sum
}
