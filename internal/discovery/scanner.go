// Package discovery walks the asset root, decodes every supported file,
// and registers the assets it finds with the catalog. Discovery is the
// single entry point for new identities; everything after it works in
// terms of AssetIDs.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/calder-games/assetforge/internal/catalog"
	"github.com/calder-games/assetforge/internal/formats"
)

// Asset is one discovered asset: its identity, its parsed document, and
// the category set that gates its readiness.
type Asset struct {
	ID       catalog.AssetID
	Slug     catalog.Slug
	Kind     catalog.Kind
	Path     string
	Doc      formats.Document
	Required []catalog.Category
}

// RequiresCategory reports whether c is in the asset's required set.
func (a *Asset) RequiresCategory(c catalog.Category) bool {
	for _, rc := range a.Required {
		if rc == c {
			return true
		}
	}
	return false
}

// Scanner discovers assets under a root directory.
type Scanner struct {
	root    string
	catalog *catalog.Catalog
	logger  *log.Logger
}

// NewScanner creates a scanner that registers into cat.
func NewScanner(root string, cat *catalog.Catalog, logger *log.Logger) *Scanner {
	return &Scanner{root: root, catalog: cat, logger: logger}
}

// Scan walks the root recursively and returns discovered assets sorted by
// slug. Files that fail to decode are logged and skipped (syntax is the
// author's problem to fix, not a pipeline failure); identity conflicts
// abort the scan because they poison cross-references.
func (s *Scanner) Scan() ([]Asset, error) {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		s.logger.Warn("asset root does not exist, nothing discovered", "root", s.root)
		return nil, nil
	}

	var assets []Asset

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !formats.Supported(ext) {
			return nil
		}

		asset, err := s.loadFile(path, ext)
		if err != nil {
			var skip *skipError
			if errors.As(err, &skip) {
				s.logger.Warn("skipping asset file", "path", path, "reason", skip.reason)
				return nil
			}
			return err
		}

		assets = append(assets, asset)
		s.logger.Debug("discovered asset", "slug", asset.Slug, "kind", asset.Kind, "path", path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: walking %s: %w", s.root, err)
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Slug < assets[j].Slug })

	s.logger.Info("discovery complete", "assets", len(assets), "root", s.root)
	return assets, nil
}

func (s *Scanner) loadFile(path, ext string) (Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Asset{}, fmt.Errorf("discovery: reading %s: %w", path, err)
	}

	doc, err := formats.Parse(data, ext)
	if err != nil {
		return Asset{}, &skipError{reason: err.Error()}
	}

	slug, err := catalog.ParseSlug(doc.Slug)
	if err != nil {
		return Asset{}, &skipError{reason: err.Error()}
	}
	kind, err := catalog.ParseKind(doc.Kind)
	if err != nil {
		return Asset{}, &skipError{reason: err.Error()}
	}

	required := requiredSet(kind, doc)
	if len(required) == 0 {
		// A kind with no gating categories is a configuration error; an
		// empty set would read as instantly ready.
		return Asset{}, &skipError{reason: fmt.Sprintf("kind %s has no required categories", kind)}
	}

	// Identity errors surface immediately; two files claiming the same
	// slug with different kinds cannot be loaded in one session.
	id, err := s.catalog.Register(slug, kind)
	if err != nil {
		return Asset{}, fmt.Errorf("discovery: %s: %w", path, err)
	}

	return Asset{
		ID:       id,
		Slug:     slug,
		Kind:     kind,
		Path:     path,
		Doc:      doc,
		Required: required,
	}, nil
}

// requiredSet derives the gating categories from the kind, extended with
// Spawn when a map declares a spawn table. Fixed at discovery time.
func requiredSet(kind catalog.Kind, doc formats.Document) []catalog.Category {
	required := catalog.RequiredCategories(kind)
	if kind == catalog.KindMap && doc.Spawn != nil {
		required = append(append([]catalog.Category(nil), required...), catalog.CategorySpawn)
	}
	return required
}

// skipError marks a file-local problem that excludes the file from the
// session without failing discovery.
type skipError struct {
	reason string
}

func (e *skipError) Error() string { return e.reason }
