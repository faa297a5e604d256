package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/docuscribe/internal/types"
)

// DefaultDebounce is the delay between the last filesystem event and a reload.
const DefaultDebounce = 250 * time.Millisecond

// fileDocument is the on-disk shape of a document file.
type fileDocument struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Hashtags  []string     `json:"hashtags"`
	UpdatedAt *time.Time   `json:"updated_at"`
	Text      *string      `json:"text"`
	Words     []string     `json:"words"`
	Pages     []types.Page `json:"pages"`
}

type snapshot struct {
	byID      map[string]*types.Document
	summaries []types.Summary
}

// FileStore serves documents from a directory of JSON and YAML files.
// The loaded set is an immutable snapshot replaced wholesale by Reload.
type FileStore struct {
	dir    string
	logger *slog.Logger

	mu   sync.RWMutex
	snap *snapshot
}

var _ Store = (*FileStore)(nil)
var _ Watcher = (*FileStore)(nil)

// NewFileStore loads every document file under dir.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileStore{dir: dir, logger: logger.With("store", "file")}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the directory the store reads from.
func (s *FileStore) Dir() string {
	return s.dir
}

// Len returns the number of loaded documents.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snap.summaries)
}

// Reload rescans the directory and swaps in the new snapshot.
// Invalid files are skipped with a warning; only an unreadable
// directory fails the reload, leaving the previous snapshot in place.
func (s *FileStore) Reload() error {
	next := &snapshot{byID: make(map[string]*types.Document)}
	sources := make(map[string]string)

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isDocumentFile(path) {
			return nil
		}

		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		doc, err := loadDocumentFile(path, filepath.ToSlash(rel))
		if err != nil {
			s.logger.Warn("skipping document file", "path", rel, "error", err)
			return nil
		}
		if prev, ok := sources[doc.ID]; ok {
			s.logger.Warn("skipping duplicate document id", "path", rel, "id", doc.ID, "first", prev)
			return nil
		}
		sources[doc.ID] = rel
		next.byID[doc.ID] = doc
		next.summaries = append(next.summaries, doc.Summary())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", s.dir, err)
	}
	sortSummaries(next.summaries)

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()

	s.logger.Debug("documents loaded", "count", len(next.summaries))
	return nil
}

// Get returns the document with the given id.
func (s *FileStore) Get(ctx context.Context, id string) (*types.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	doc, ok := s.snap.byID[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

// List returns summaries, most recently updated first.
func (s *FileStore) List(ctx context.Context, limit, offset int) ([]types.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return window(s.snap.summaries, limit, offset), nil
}

// HealthCheck verifies the directory is still readable.
func (s *FileStore) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

// Watch reloads the store when document files change, until ctx is done.
// Bursts of events within debounce trigger a single reload.
func (s *FileStore) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	err = filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != s.dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}
	s.logger.Info("watching document directory", "path", s.dir)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			reload := isDocumentFile(ev.Name) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.Add(ev.Name); err != nil {
						s.logger.Warn("failed to watch directory", "path", ev.Name, "error", err)
					}
					reload = true
				}
			}
			if reload {
				pending = time.After(debounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", "error", err)

		case <-pending:
			pending = nil
			if err := s.Reload(); err != nil {
				s.logger.Error("reload failed", "error", err)
				continue
			}
			s.logger.Info("documents reloaded", "count", s.Len())
		}
	}
}

func isDocumentFile(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// loadDocumentFile parses, validates and converts one document file.
// rel is the slash-separated path used to derive a stable id.
func loadDocumentFile(path, rel string) (*types.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		if raw, err = yamlToJSON(raw); err != nil {
			return nil, err
		}
	}

	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var fd fileDocument
	if err := json.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	doc := &types.Document{
		ID:       fd.ID,
		Title:    fd.Title,
		Hashtags: fd.Hashtags,
		Pages:    normalizePages(fd.Pages),
	}
	if doc.ID == "" {
		doc.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(rel)).String()
	}
	if fd.Text != nil {
		doc.Words = strings.Fields(*fd.Text)
	} else {
		doc.Words = fd.Words
	}
	if doc.Words == nil {
		doc.Words = []string{}
	}
	if fd.UpdatedAt != nil {
		doc.UpdatedAt = fd.UpdatedAt.UTC()
	} else {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		doc.UpdatedAt = info.ModTime().UTC()
	}
	return doc, nil
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return out, nil
}

func validateDocument(raw []byte) error {
	schema, err := documentSchema()
	if err != nil {
		return fmt.Errorf("compile document schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	return nil
}

// normalizePages fills in missing lengths.
func normalizePages(pages []types.Page) []types.Page {
	for i := range pages {
		if pages[i].Length == 0 && pages[i].End > pages[i].Start {
			pages[i].Length = pages[i].End - pages[i].Start
		}
	}
	return pages
}
