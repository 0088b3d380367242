package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/loader/file"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/components/document/parser"
	"github.com/sirupsen/logrus"

	"speakersite/internal/models"
	"speakersite/internal/storage"
)

// DefaultSection labels documents placed directly in the portfolio directory.
const DefaultSection = "Portfolio"

var documentExts = map[string]bool{".md": true, ".markdown": true, ".txt": true}

// Options selects the seed sources. File is required; PortfolioDir is optional.
type Options struct {
	File         string
	PortfolioDir string
}

// ReadFile decodes a JSON seed file.
func ReadFile(path string) (storage.ReferenceData, error) {
	var data storage.ReferenceData
	raw, err := os.ReadFile(path)
	if err != nil {
		return data, fmt.Errorf("read seed file: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return data, nil
}

// LoadPortfolioDir turns every markdown or text document under dir into a
// portfolio entry. The section is the first-level sub directory name, the
// title is the first "# " heading or the file name. Orders continue after startOrder.
func LoadPortfolioDir(ctx context.Context, dir string, startOrder int) ([]models.PortfolioContent, error) {
	p, err := parser.NewExtParser(ctx, &parser.ExtParserConfig{
		FallbackParser: parser.TextParser{},
	})
	if err != nil {
		return nil, fmt.Errorf("init document parser: %w", err)
	}
	loader, err := file.NewFileLoader(ctx, &file.FileLoaderConfig{
		UseNameAsID: true,
		Parser:      p,
	})
	if err != nil {
		return nil, fmt.Errorf("init document loader: %w", err)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !documentExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	entries := make([]models.PortfolioContent, 0, len(paths))
	for _, path := range paths {
		docs, err := loader.Load(ctx, document.Source{URI: path})
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		var body strings.Builder
		for _, doc := range docs {
			body.WriteString(doc.Content)
		}
		title, content := splitTitle(body.String(), path)
		if content == "" {
			continue
		}
		startOrder++
		entries = append(entries, models.PortfolioContent{
			Section: sectionFor(dir, path),
			Title:   title,
			Content: content,
			Order:   startOrder,
		})
	}
	return entries, nil
}

// Run replaces the reference data with the seed file plus any portfolio documents.
func Run(ctx context.Context, store *storage.Store, opts Options, log *logrus.Logger) (storage.ReferenceData, error) {
	data, err := ReadFile(opts.File)
	if err != nil {
		return data, err
	}
	if opts.PortfolioDir != "" {
		maxOrder := 0
		for _, p := range data.Portfolio {
			if p.Order > maxOrder {
				maxOrder = p.Order
			}
		}
		docs, err := LoadPortfolioDir(ctx, opts.PortfolioDir, maxOrder)
		if err != nil {
			return data, err
		}
		data.Portfolio = append(data.Portfolio, docs...)
	}
	if err := store.ReplaceReferenceData(ctx, data); err != nil {
		return data, err
	}
	log.WithFields(logrus.Fields{
		"portfolio":    len(data.Portfolio),
		"talks":        len(data.Talks),
		"events":       len(data.Events),
		"testimonials": len(data.Testimonials),
	}).Info("reference data seeded")
	return data, nil
}

func sectionFor(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return DefaultSection
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return DefaultSection
	}
	return parts[0]
}

func splitTitle(text, path string) (string, string) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			title = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			text = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		}
		break
	}
	return title, text
}
