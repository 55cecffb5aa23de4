// Package memory keeps one small document per Telegram user: a rolling window
// of their recent messages and a one-line summary of the last reply. The
// document is loaded at turn start and overwritten wholesale at turn end.
package memory

import "context"

type Record struct {
	Summary   string
	UpdatedAt string
	Window    []string
}

// Store persists the per-user record. Two backends exist: flat markdown files
// and an embedded sqlite table.
type Store interface {
	Load(ctx context.Context, userID int64) (Record, bool, error)
	Save(ctx context.Context, userID int64, rec Record) error
}

// Frontmatter is the YAML header of the file-backed document.
type Frontmatter struct {
	UpdatedAt string `yaml:"updated_at"`
	Summary   string `yaml:"summary"`
}
