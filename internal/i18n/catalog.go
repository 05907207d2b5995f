// Package i18n holds the Arabic and Korean alert messages shown to learners.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when a request names no supported language.
const DefaultLanguage = "ar"

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog stores messages per locale.
type Catalog struct {
	messages map[string]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
}

//go:embed locales/*.yaml
var embeddedFS embed.FS

var defaultCatalog = mustLoadEmbedded()

// Default returns the process-wide embedded catalog.
func Default() *Catalog {
	return defaultCatalog
}

func mustLoadEmbedded() *Catalog {
	c, err := LoadFromFS(embeddedFS)
	if err != nil {
		panic(fmt.Sprintf("i18n: load embedded catalogs: %v", err))
	}
	return c
}

// LoadFromFS loads locales/*.yaml from the provided filesystem.
// Every locale must define the same keys as the default language.
func LoadFromFS(catalogFS fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(catalogFS, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	c := &Catalog{messages: map[string]map[string]string{}}

	for _, p := range paths {
		data, err := fs.ReadFile(catalogFS, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}

		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}

		locale := strings.TrimSpace(file.Locale)
		if want := strings.TrimSuffix(path.Base(p), path.Ext(p)); locale != want {
			return nil, fmt.Errorf("catalog %s: locale %q must match file name %q", p, locale, want)
		}
		if _, exists := c.messages[locale]; exists {
			return nil, fmt.Errorf("catalog %s: locale %q defined twice", p, locale)
		}
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}

		c.messages[locale] = file.Messages
		c.tags = append(c.tags, tag)
	}

	base, ok := c.messages[DefaultLanguage]
	if !ok {
		return nil, fmt.Errorf("default locale %s is not defined in catalogs", DefaultLanguage)
	}
	for locale, msgs := range c.messages {
		for key := range base {
			if _, ok := msgs[key]; !ok {
				return nil, fmt.Errorf("locale %s is missing key %q", locale, key)
			}
		}
	}

	// The matcher falls back to its first tag.
	sort.SliceStable(c.tags, func(i, j int) bool {
		return c.tags[i].String() == DefaultLanguage && c.tags[j].String() != DefaultLanguage
	})
	c.matcher = language.NewMatcher(c.tags)

	return c, nil
}

// Message returns the text for key in lang, falling back to the default
// language and finally to the key itself.
func (c *Catalog) Message(lang, key string) string {
	if msgs, ok := c.messages[lang]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if msg, ok := c.messages[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// Supports reports whether lang has a catalog.
func (c *Catalog) Supports(lang string) bool {
	_, ok := c.messages[lang]
	return ok
}

// Match resolves an Accept-Language header value to a supported locale.
func (c *Catalog) Match(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return DefaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, index, confidence := c.matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLanguage
	}
	return c.tags[index].String()
}

// Message looks key up in the default catalog.
func Message(lang, key string) string {
	return defaultCatalog.Message(lang, key)
}
