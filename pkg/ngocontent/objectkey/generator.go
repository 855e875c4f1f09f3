// Package objectkey names image blobs before they are written to a blob store.
package objectkey

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates a unique object key for an uploaded file
	GenerateKey(fileName string) string
}

// FlatGenerator produces "{uuid}_{filename}" keys in a single namespace.
type FlatGenerator struct{}

func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) GenerateKey(fileName string) string {
	id := uuid.NewString()
	name := sanitizeFilename(path.Base(fileName))
	if name == "" || name == "." || name == "_" {
		return id
	}
	return fmt.Sprintf("%s_%s", id, name)
}

// ShardedGenerator spreads keys over directories named after the first
// characters of the random id, optionally below a fixed prefix.
// Example: images/ab/cd1234ef5678_logo.png
type ShardedGenerator struct {
	Prefix      string
	ShardLength int
}

func NewShardedGenerator(prefix string) *ShardedGenerator {
	return &ShardedGenerator{
		Prefix:      strings.Trim(prefix, "/"),
		ShardLength: 2,
	}
}

func (g *ShardedGenerator) GenerateKey(fileName string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")

	shardLength := g.ShardLength
	if shardLength <= 0 || shardLength > len(id) {
		shardLength = 2
	}

	key := fmt.Sprintf("%s/%s", id[:shardLength], id[shardLength:])
	if name := sanitizeFilename(path.Base(fileName)); name != "" && name != "." && name != "_" {
		key = fmt.Sprintf("%s_%s", key, name)
	}
	if g.Prefix != "" {
		key = fmt.Sprintf("%s/%s", g.Prefix, key)
	}
	return key
}

func sanitizeFilename(filename string) string {
	// Replace problematic characters for filesystem and URL compatibility
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		"#", "_",
		"%", "_",
		" ", "_",
	)
	return replacer.Replace(strings.TrimSpace(filename))
}
