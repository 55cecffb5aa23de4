package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/samuel-rocha-gestao-trafego/estoque-bot/internal/fsstore"
)

const windowHeader = "# Mensagens recentes"

// FileStore writes one markdown document per user under Dir, YAML frontmatter
// plus a bullet list of recent messages. Writes are atomic (temp + rename).
type FileStore struct {
	Dir string
	Now func() time.Time
}

func NewFileStore(dir string) *FileStore {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "memory_users"
	}
	return &FileStore{Dir: dir, Now: time.Now}
}

func (s *FileStore) path(userID int64) string {
	return filepath.Join(s.Dir, fmt.Sprintf("user_%d.md", userID))
}

func (s *FileStore) Load(ctx context.Context, userID int64) (Record, bool, error) {
	contents, found, err := fsstore.ReadText(s.path(userID))
	if err != nil || !found {
		return Record{}, false, err
	}
	fm, body, ok := ParseFrontmatter(contents)
	if !ok {
		// A mangled document is treated as absent rather than fatal.
		return Record{}, false, nil
	}
	rec := Record{Summary: fm.Summary, UpdatedAt: fm.UpdatedAt}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if item, ok := strings.CutPrefix(line, "- "); ok {
			rec.Window = append(rec.Window, item)
		}
	}
	return rec, true, nil
}

func (s *FileStore) Save(ctx context.Context, userID int64, rec Record) error {
	if rec.UpdatedAt == "" {
		rec.UpdatedAt = s.Now().UTC().Format(time.RFC3339)
	}
	var b strings.Builder
	b.WriteString(RenderFrontmatter(Frontmatter{UpdatedAt: rec.UpdatedAt, Summary: rec.Summary}))
	b.WriteString("\n" + windowHeader + "\n\n")
	for _, item := range rec.Window {
		item = strings.ReplaceAll(item, "\n", " ")
		b.WriteString("- " + strings.TrimSpace(item) + "\n")
	}
	return fsstore.WriteTextAtomic(s.path(userID), b.String(), fsstore.FileOptions{})
}
