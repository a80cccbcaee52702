package memstore

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/jarsclient/internal/timex"
)

// Seed is the initial content of a Store.
type Seed struct {
	// Secret signs session tokens. A random secret is used when empty.
	Secret     string         `json:"secret"`
	SessionTTL timex.Duration `json:"session_ttl"`

	Users     []SeedUser            `json:"users"`
	Linetypes map[string][]any      `json:"linetypes"`
	Reports   map[string]SeedReport `json:"reports"`
	// Records maps table name to record id to record.
	Records map[string]map[string]SeedRecord `json:"records"`
	Lines   []map[string]any                 `json:"lines"`
}

// SeedUser is a user account. PasswordHash, a bcrypt hash, takes precedence
// over Password.
type SeedUser struct {
	Username     string `json:"username"`
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// SeedReport is a report with its groups already computed. The group named ""
// is the report's top level.
type SeedReport struct {
	Linetypes []string       `json:"linetypes"`
	Groups    map[string]any `json:"groups"`
}

// SeedRecord is raw record content. Content is taken verbatim unless
// Base64 is set.
type SeedRecord struct {
	Content     string `json:"content"`
	Base64      bool   `json:"base64,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Filename    string `json:"filename,omitempty"`
}

func (r SeedRecord) bytes() ([]byte, error) {
	if !r.Base64 {
		return []byte(r.Content), nil
	}
	return base64.StdEncoding.DecodeString(r.Content)
}

// ParseSeed decodes a seed document. Numbers inside lines and report groups
// keep their literal form.
func ParseSeed(r io.Reader) (*Seed, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var s Seed
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &s, nil
}

// LoadSeed reads a seed document from path.
func LoadSeed(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseSeed(f)
}
