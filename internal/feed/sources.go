package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package feed contains the source registry and the fetcher that turns one
// configured feed into normalized items.

// Source is one configured feed provider. Sources are defined at process
// start and never mutated.
type Source struct {
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	Category string `json:"category" yaml:"category"`
}

type registryFile struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

// Registry holds the loaded, validated source set.
type Registry struct {
	sources []Source
	idx     map[string]Source
}

// LoadRegistry loads the source registry from a YAML/JSON file. An empty
// path yields the built-in default source set.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return newRegistry(DefaultSources())
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	reg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(reg.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	return newRegistry(reg.Sources)
}

func newRegistry(sources []Source) (*Registry, error) {
	reg := &Registry{
		sources: make([]Source, len(sources)),
		idx:     make(map[string]Source, len(sources)),
	}
	for i := range sources {
		s := sanitizeSource(sources[i])
		if err := validateSource(s); err != nil {
			return nil, fmt.Errorf("source[%d]: %w", i, err)
		}
		if _, exists := reg.idx[s.Name]; exists {
			return nil, fmt.Errorf("duplicate source name %q", s.Name)
		}
		reg.sources[i] = s
		reg.idx[s.Name] = s
	}
	return reg, nil
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg registryFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

func sanitizeSource(s Source) Source {
	s.Name = strings.TrimSpace(s.Name)
	s.URL = strings.TrimSpace(s.URL)
	s.Category = strings.ToLower(strings.TrimSpace(s.Category))
	if s.Category == "" {
		s.Category = "all"
	}
	return s
}

func validateSource(s Source) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.URL == "" {
		return fmt.Errorf("url is required for source %q", s.Name)
	}
	return nil
}

// All returns a copy of the loaded sources.
func (r *Registry) All() []Source {
	if r == nil || len(r.sources) == 0 {
		return nil
	}
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// ByName returns the source entry for the given name, if loaded.
func (r *Registry) ByName(name string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	s, ok := r.idx[strings.TrimSpace(name)]
	return s, ok
}

// Size returns the number of configured sources.
func (r *Registry) Size() int {
	if r == nil {
		return 0
	}
	return len(r.sources)
}

// DefaultSources returns the built-in feed set.
func DefaultSources() []Source {
	return []Source{
		{Name: "TechCrunch", URL: "https://techcrunch.com/feed/", Category: "startup"},
		{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml", Category: "all"},
		{Name: "Hacker News", URL: "https://feeds.feedburner.com/hacker-news-feed-50", Category: "all"},
		{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/index", Category: "all"},
		{Name: "Wired", URL: "https://www.wired.com/feed/rss", Category: "all"},
		{Name: "Krebs on Security", URL: "https://krebsonsecurity.com/feed/", Category: "security"},
		{Name: "DevOps.com", URL: "https://devops.com/feed/", Category: "devtools"},
		{Name: "VentureBeat", URL: "https://feeds.feedburner.com/venturebeat/SZYF", Category: "startup"},
		{Name: "ZDNet", URL: "https://www.zdnet.com/news/rss.xml", Category: "all"},
		{Name: "TechRadar", URL: "https://www.techradar.com/rss", Category: "all"},
	}
}
