// Package i18n provides the localized strings shown by the editor.
//
// Catalogs are embedded YAML documents, one per language. Nested keys are
// addressed with dots ("config.module.remoteHardware.title"). A key missing
// from the selected catalog falls back to English, then to the key itself.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

// Fallback is the language used when no catalog matches.
var Fallback = language.English

// Catalog maps flattened keys to translated strings for one language.
type Catalog struct {
	Tag      language.Tag
	messages map[string]string
}

// Translator looks up strings in a selected catalog with English fallback.
type Translator struct {
	primary  *Catalog
	fallback *Catalog
}

var (
	catalogs     map[string]*Catalog
	catalogsErr  error
	catalogsOnce sync.Once
	matcher      language.Matcher
	tags         []language.Tag
)

// LoadCatalogs parses the embedded catalogs, keyed by language tag. It is safe to call repeatedly;
// the catalogs are parsed once.
func LoadCatalogs() (map[string]*Catalog, error) {
	catalogsOnce.Do(func() {
		catalogs, catalogsErr = loadCatalogsInternal()
		if catalogsErr != nil {
			return
		}

		// the first supported tag is the matcher's default
		var others []language.Tag
		for key, c := range catalogs {
			if key != Fallback.String() {
				others = append(others, c.Tag)
			}
		}
		sort.Slice(others, func(i, j int) bool { return others[i].String() < others[j].String() })
		tags = append([]language.Tag{Fallback}, others...)
		matcher = language.NewMatcher(tags)
	})
	return catalogs, catalogsErr
}

func loadCatalogsInternal() (map[string]*Catalog, error) {
	entries, err := catalogFS.ReadDir("catalogs")
	if err != nil {
		return nil, fmt.Errorf("failed to list catalogs: %w", err)
	}

	out := make(map[string]*Catalog, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		data, err := catalogFS.ReadFile(path.Join("catalogs", name))
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", name, err)
		}

		tag, err := language.Parse(strings.TrimSuffix(name, path.Ext(name)))
		if err != nil {
			return nil, fmt.Errorf("invalid catalog language %s: %w", name, err)
		}

		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse catalog %s: %w", name, err)
		}

		messages := make(map[string]string)
		flatten("", doc, messages)
		out[tag.String()] = &Catalog{Tag: tag, messages: messages}
	}

	if _, ok := out[Fallback.String()]; !ok {
		return nil, fmt.Errorf("missing %s catalog", Fallback)
	}
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// New returns a translator for the best match of the given locales, in
// preference order (e.g. "de-AT", "en"). Unparseable locales are skipped.
// POSIX forms such as "de_DE.UTF-8" are accepted.
func New(locales ...string) (*Translator, error) {
	all, err := LoadCatalogs()
	if err != nil {
		return nil, err
	}

	var wanted []language.Tag
	for _, l := range locales {
		l = normalizeLocale(l)
		if l == "" {
			continue
		}
		tag, err := language.Parse(l)
		if err != nil {
			continue
		}
		wanted = append(wanted, tag)
	}

	_, idx, _ := matcher.Match(wanted...)
	return &Translator{
		primary:  all[tags[idx].String()],
		fallback: all[Fallback.String()],
	}, nil
}

func normalizeLocale(l string) string {
	if i := strings.IndexAny(l, ".@"); i >= 0 {
		l = l[:i]
	}
	l = strings.ReplaceAll(l, "_", "-")
	if l == "C" || l == "POSIX" {
		return ""
	}
	return l
}

// Language returns the selected catalog's language.
func (t *Translator) Language() language.Tag {
	return t.primary.Tag
}

// T returns the string for key. Missing keys fall back to English and then
// to the key itself.
func (t *Translator) T(key string) string {
	if t == nil {
		return key
	}
	if s, ok := t.primary.messages[key]; ok {
		return s
	}
	if s, ok := t.fallback.messages[key]; ok {
		return s
	}
	return key
}
