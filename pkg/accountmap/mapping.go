// Package accountmap keeps the learned receiver name → masked account
// mapping used to fill in accounts that OCR could not read.
package accountmap

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Mapping is the persisted document:
//
//	{"nameToAccount": {"NAME": "***1234"}, "lastUpdated": "2025-07-25", "version": "1.2"}
type Mapping struct {
	NameToAccount map[string]string `json:"nameToAccount"`
	LastUpdated   string            `json:"lastUpdated"`
	Version       string            `json:"version"`
}

const (
	dateLayout      = "2006-01-02"
	fallbackVersion = "1.0-fallback"
)

func (m *Mapping) clone() Mapping {
	out := Mapping{
		NameToAccount: make(map[string]string, len(m.NameToAccount)),
		LastUpdated:   m.LastUpdated,
		Version:       m.Version,
	}
	for k, v := range m.NameToAccount {
		out.NameToAccount[k] = v
	}
	return out
}

// fallbackMapping is used when the seed cannot be loaded.
func fallbackMapping(now time.Time) *Mapping {
	return &Mapping{
		NameToAccount: map[string]string{"YULIA NINGSIH": "***********8532"},
		LastUpdated:   now.Format(dateLayout),
		Version:       fallbackVersion,
	}
}

// NormalizeName is the mapping key for name: upper-cased with single spaces.
func NormalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	return cases.Upper(language.Indonesian).String(name)
}

// Source provides the seed mapping.
type Source interface {
	Load(ctx context.Context) (*Mapping, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*Mapping, error)

func (f SourceFunc) Load(ctx context.Context) (*Mapping, error) { return f(ctx) }

//go:embed seed/account_mapping.json
var seedFS embed.FS

// EmbeddedSeed returns the mapping bundled with the binary.
func EmbeddedSeed() Source {
	return SourceFunc(func(context.Context) (*Mapping, error) {
		b, err := seedFS.ReadFile("seed/account_mapping.json")
		if err != nil {
			return nil, fmt.Errorf("read embedded seed: %w", err)
		}
		return decode(b)
	})
}

// FileSource reads the seed from a JSON file on disk.
func FileSource(path string) Source {
	return SourceFunc(func(context.Context) (*Mapping, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", path, err)
		}
		m, err := decode(b)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", path, err)
		}
		return m, nil
	})
}

func decode(b []byte) (*Mapping, error) {
	var m Mapping
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode mapping: %w", err)
	}
	if m.NameToAccount == nil {
		return nil, ErrEmptySeed
	}
	normalized := make(map[string]string, len(m.NameToAccount))
	for k, v := range m.NameToAccount {
		if key := NormalizeName(k); key != "" {
			normalized[key] = v
		}
	}
	m.NameToAccount = normalized
	return &m, nil
}
