package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/studiowebux/docportal/internal/types"
)

// Cache memoizes the normalized document on the raw YAML text, so repeated
// renders of unchanged text reuse the previous result
type Cache struct {
	mu   sync.Mutex
	hash string
	doc  types.NormalizedDocument
}

// Normalize returns the cached document when text is unchanged
func (c *Cache) Normalize(text string) (types.NormalizedDocument, bool) {
	sum := sha256.Sum256([]byte(text))
	hash := hex.EncodeToString(sum[:])

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hash == hash {
		return c.doc, true
	}
	c.doc = NormalizeInsomniaYAML(text)
	c.hash = hash
	return c.doc, false
}
