package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Seen remembers keys for a limited time
type Seen interface {
	// Mark records key and reports whether it was absent
	Mark(key string) bool
	Contains(key string) bool
	Forget(key string)
	Len() int
}

// VanishedKey identifies one report of vanished answers on a thread
func VanishedKey(threadID string, answerIDs []string) string {
	hash := sha256.Sum256([]byte(strings.Join(answerIDs, ",")))
	return "answermirror:vanished:" + threadID + ":" + hex.EncodeToString(hash[:8])
}

// DefaultCleanup is the expiry sweep interval used for memory sets
const DefaultCleanup = 10 * time.Minute
