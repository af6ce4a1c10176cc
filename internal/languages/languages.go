// Package languages knows the submission languages kilonova accepts and the
// languages statements are published in.
package languages

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed languages.toml
var languagesTOML []byte

// Language is one submission language.
type Language struct {
	Name       string   `toml:"name"`
	Display    string   `toml:"display"`
	Extensions []string `toml:"extensions"`
}

type languagesFile struct {
	Languages []Language `toml:"languages"`
}

// StatementLanguages are the statement languages in their default lookup order.
var StatementLanguages = []string{"ro", "en"}

// Registry is an ordered table of submission languages.
type Registry struct {
	languages []Language
	byName    map[string]int
}

var defaultRegistry = mustLoad(languagesTOML)

func mustLoad(data []byte) *Registry {
	r, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return r
}

// Parse builds a registry from a languages.toml document.
func Parse(data []byte) (*Registry, error) {
	var f languagesFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing languages.toml: %w", err)
	}

	r := &Registry{byName: make(map[string]int, len(f.Languages))}
	for _, lang := range f.Languages {
		if lang.Name == "" {
			return nil, fmt.Errorf("parsing languages.toml: language without name")
		}
		if _, dup := r.byName[lang.Name]; dup {
			return nil, fmt.Errorf("parsing languages.toml: duplicate language %q", lang.Name)
		}
		r.byName[lang.Name] = len(r.languages)
		r.languages = append(r.languages, lang)
	}
	return r, nil
}

func (r *Registry) Lookup(name string) (Language, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Language{}, false
	}
	return r.languages[i], true
}

// Names lists language names in table order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.languages))
	for i, lang := range r.languages {
		names[i] = lang.Name
	}
	return names
}

// Detect picks the language for a source file from its extension.
func (r *Registry) Detect(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return Language{}, false
	}
	for _, lang := range r.languages {
		for _, e := range lang.Extensions {
			if strings.ToLower(e) == ext {
				return lang, true
			}
		}
	}
	return Language{}, false
}

func Lookup(name string) (Language, bool) { return defaultRegistry.Lookup(name) }

func Names() []string { return defaultRegistry.Names() }

func Detect(path string) (Language, bool) { return defaultRegistry.Detect(path) }

// IsStatementLanguage reports whether statements are published in lang.
func IsStatementLanguage(lang string) bool {
	for _, l := range StatementLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
