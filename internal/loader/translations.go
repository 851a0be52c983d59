package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

// maxParallelFiles bounds concurrent namespace file reads
const maxParallelFiles = 8

// TranslationLoader reads <root>/<locale>/<namespace>.json documents. The
// namespace id is the path below the locale directory without its extension,
// so <root>/es/workspace/pos.json is namespace "workspace/pos" of locale "es".
// YAML documents (.yaml, .yml) are read the same way.
type TranslationLoader struct {
	root   string
	logger *slog.Logger
}

// NewTranslationLoader creates a loader rooted at dir
func NewTranslationLoader(root string, logger *slog.Logger) *TranslationLoader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TranslationLoader{root: filepath.Clean(root), logger: logger}
}

// Root returns the translation root directory
func (l *TranslationLoader) Root() string {
	return l.root
}

// Locales lists locale directories under the root, sorted. Directories whose
// name is not a BCP 47 tag are ignored.
func (l *TranslationLoader) Locales() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("read translations root: %w", err)
	}
	var locales []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := language.Parse(e.Name()); err != nil {
			l.logger.Debug("skipping non-locale directory", "dir", e.Name())
			continue
		}
		locales = append(locales, e.Name())
	}
	sort.Strings(locales)
	return locales, nil
}

// Load reads every namespace document of one locale. A missing locale
// directory yields empty translations.
func (l *TranslationLoader) Load(ctx context.Context, locale string) (model.Translations, error) {
	if _, err := language.Parse(locale); err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	dir := filepath.Join(l.root, locale)

	files, err := namespaceFiles(dir)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug("locale directory missing", "locale", locale)
			return model.Translations{}, nil
		}
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	out := make(model.Translations, len(files))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for ns, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tree, err := readTree(path)
			if err != nil {
				return fmt.Errorf("load %s namespace %s: %w", locale, ns, err)
			}
			mu.Lock()
			out[ns] = tree
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.Debug("translations loaded", "locale", locale, "namespaces", len(out))
	return out, nil
}

// LoadCatalog loads every locale under the root
func (l *TranslationLoader) LoadCatalog(ctx context.Context) (model.Catalog, error) {
	locales, err := l.Locales()
	if err != nil {
		return nil, err
	}
	catalog := make(model.Catalog, len(locales))
	for _, locale := range locales {
		tr, err := l.Load(ctx, locale)
		if err != nil {
			return nil, err
		}
		catalog[locale] = tr
	}
	return catalog, nil
}

// namespaceFiles maps namespace id -> document path for one locale directory
func namespaceFiles(dir string) (map[string]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	files := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isTranslationFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		ns := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		if prev, dup := files[ns]; dup {
			return fmt.Errorf("namespace %s defined by both %s and %s", ns, prev, path)
		}
		files[ns] = path
		return nil
	})
	return files, err
}

func isTranslationFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func readTree(path string) (model.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tree model.Tree
	if isJSON(path) {
		err = json.Unmarshal(data, &tree)
	} else {
		err = yaml.Unmarshal(data, &tree)
	}
	if err != nil {
		return nil, err
	}
	if tree == nil {
		tree = model.Tree{}
	}
	return tree, nil
}
