package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Metadata describes an ingested CV document
type Metadata struct {
	Filename  string `json:"filename,omitempty"`
	Timestamp string `json:"timestamp"` // RFC3339
	Hash      string `json:"hash"`      // SHA256 hex digest of the cleaned text
	CharCount int    `json:"char_count"`
	WordCount int    `json:"word_count"`
	LineCount int    `json:"line_count"`
}

// NewMetadata captures metadata for cleaned CV text
func NewMetadata(content, path string) *Metadata {
	name := ""
	if path != "" {
		name = filepath.Base(path)
	}
	return &Metadata{
		Filename:  name,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
		CharCount: len(content),
		WordCount: len(strings.Fields(content)),
		LineCount: strings.Count(content, "\n") + 1,
	}
}

// computeHash computes the SHA256 hash of content as a hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
