// Package dedup recognises machine-generated tasks that already exist, by the
// content hash of their normalised text.
package dedup

import (
	"encoding/hex"
	"strings"
	"sync"
	"unicode"

	"github.com/Kaktotak00p/notes/internal/client/models"
	"golang.org/x/crypto/blake2b"
)

// Normalize trims the text, lower-cases it and collapses runs of whitespace
// into a single space, so cosmetic differences hash the same.
func Normalize(text string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(text), unicode.IsSpace), " ")
}

// Hash is the hex BLAKE2b-256 digest of Normalize(text).
func Hash(text string) string {
	sum := blake2b.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// Index is a concurrency-safe set of known content hashes.
type Index struct {
	mu    sync.RWMutex
	known map[string]struct{}
}

func NewIndex() *Index {
	return &Index{known: make(map[string]struct{})}
}

func (i *Index) IsKnown(hash string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()

	_, ok := i.known[hash]
	return ok
}

func (i *Index) Record(hash string) {
	if hash == "" {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	i.known[hash] = struct{}{}
}

// Reset replaces the set with the hashes of tasks.
func (i *Index) Reset(tasks []models.Task) {
	known := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if t.Hash != nil && *t.Hash != "" {
			known[*t.Hash] = struct{}{}
		}
	}

	i.mu.Lock()
	i.known = known
	i.mu.Unlock()
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return len(i.known)
}
