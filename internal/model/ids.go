package model

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

const idPrefix = "task"

// NewID returns task-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
func NewID() string {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(err)
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return idPrefix + "-" + strings.ToLower(enc.EncodeToString(b[:]))
}

// LooksLikeID reports whether s has the task-<suffix> shape.
func LooksLikeID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, idPrefix+"-") && len(s) > len(idPrefix)+1
}
