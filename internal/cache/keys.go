package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// keyVersion is bumped whenever the announcement format changes, which
// invalidates older cached audio without needing a migration.
const keyVersion = "v1"

// AudioKey derives the cache key for synthesized audio. Engine and voice
// are part of the identity: the same text spoken by a different voice is
// different audio.
func AudioKey(engine, voice, text string) string {
	h := sha256.Sum256([]byte(strings.Join([]string{keyVersion, engine, voice, text}, "|")))
	return hex.EncodeToString(h[:])
}

// TextKey derives the text store key for a track identity.
func TextKey(trackKey string) string {
	h := sha256.Sum256([]byte(keyVersion + "|" + trackKey))
	return hex.EncodeToString(h[:16])
}
