package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/anonto42/tooth-fae/backend/internal/models"
)

var (
	// ErrGameNotFound is returned when no game exists for a slug
	ErrGameNotFound = errors.New("game not found")
	// ErrInvalidSlug is returned for slugs that are not lower-case kebab case
	ErrInvalidSlug = errors.New("invalid game slug")
)

var slugRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ValidSlug reports whether slug is safe to use as a file name
func ValidSlug(slug string) bool {
	return len(slug) <= 120 && slugRe.MatchString(slug)
}

// GameContentRepository defines the interface for per-game content artifacts
type GameContentRepository interface {
	GetContent(ctx context.Context, slug string) (*models.GameContent, error)
	ListContent(ctx context.Context) ([]models.GameContent, error)
	SaveContent(ctx context.Context, content *models.GameContent) error
}

// FileGameContentRepository stores one JSON file per slug in a directory
type FileGameContentRepository struct {
	dir string
}

// NewFileGameContentRepository creates a new FileGameContentRepository
func NewFileGameContentRepository(dir string) *FileGameContentRepository {
	return &FileGameContentRepository{dir: dir}
}

func (r *FileGameContentRepository) path(slug string) string {
	return filepath.Join(r.dir, slug+".json")
}

// GetContent reads <dir>/<slug>.json
func (r *FileGameContentRepository) GetContent(_ context.Context, slug string) (*models.GameContent, error) {
	if !ValidSlug(slug) {
		return nil, ErrInvalidSlug
	}

	data, err := os.ReadFile(r.path(slug))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("read game content %s: %w", slug, err)
	}

	var content models.GameContent
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("decode game content %s: %w", slug, err)
	}
	if content.Slug == "" {
		content.Slug = slug
	}
	return &content, nil
}

// ListContent reads every artifact in the directory, ordered by slug. A
// missing directory yields an empty list.
func (r *FileGameContentRepository) ListContent(ctx context.Context) ([]models.GameContent, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.GameContent{}, nil
		}
		return nil, fmt.Errorf("list game content: %w", err)
	}

	var slugs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if slug := strings.TrimSuffix(name, ".json"); ValidSlug(slug) {
			slugs = append(slugs, slug)
		}
	}
	sort.Strings(slugs)

	contents := make([]models.GameContent, 0, len(slugs))
	for _, slug := range slugs {
		content, err := r.GetContent(ctx, slug)
		if err != nil {
			return nil, err
		}
		contents = append(contents, *content)
	}
	return contents, nil
}

// SaveContent writes the artifact atomically
func (r *FileGameContentRepository) SaveContent(_ context.Context, content *models.GameContent) error {
	if !ValidSlug(content.Slug) {
		return ErrInvalidSlug
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("encode game content %s: %w", content.Slug, err)
	}

	tmp, err := os.CreateTemp(r.dir, content.Slug+".*.tmp")
	if err != nil {
		return fmt.Errorf("write game content %s: %w", content.Slug, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write game content %s: %w", content.Slug, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write game content %s: %w", content.Slug, err)
	}
	return os.Rename(tmp.Name(), r.path(content.Slug))
}
