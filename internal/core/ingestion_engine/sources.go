package ingestion_engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/steentj/dho-sub001/internal/models"
)

// ReadSources loads a source list. Files ending in .yaml or .yml are a
// manifest of {url, title, author} entries, anything else is one URL per
// line with '#' comments.
func ReadSources(path string) ([]models.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseManifest(f)
	default:
		return ParseSourceList(f)
	}
}

func ParseSourceList(r io.Reader) ([]models.Source, error) {
	var out []models.Source
	seen := make(map[string]bool)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, models.Source{URL: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read source list: %w", err)
	}
	return out, nil
}

// ParseManifest accepts either a top-level list of sources or a mapping
// with a books list.
func ParseManifest(r io.Reader) ([]models.Source, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	var entries []models.Source
	if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.SequenceNode {
		if err := doc.Decode(&entries); err != nil {
			return nil, fmt.Errorf("decode manifest: %w", err)
		}
	} else {
		var manifest struct {
			Books []models.Source `yaml:"books"`
		}
		if err := doc.Decode(&manifest); err != nil {
			return nil, fmt.Errorf("decode manifest: %w", err)
		}
		entries = manifest.Books
	}

	var out []models.Source
	seen := make(map[string]bool)
	for n, s := range entries {
		s.URL = strings.TrimSpace(s.URL)
		if s.URL == "" {
			return nil, fmt.Errorf("manifest entry %d: url is empty", n+1)
		}
		if seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		out = append(out, s)
	}
	return out, nil
}
