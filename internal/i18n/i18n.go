// Package i18n holds the player-facing text of the game in several
// languages. Tables are embedded YAML files keyed by message id; messages
// use {name} placeholders.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/mnac/internal/games/mnac"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// ErrUnknownLanguage is returned for a language code with no table.
var ErrUnknownLanguage = errors.New("i18n: unknown language")

// Language is one message table.
type Language struct {
	Code     string            `yaml:"code"`
	Name     string            `yaml:"name"`
	Messages map[string]string `yaml:"messages"`

	fallback *Language
}

// Catalog is the set of loaded languages.
type Catalog struct {
	langs   map[string]*Language
	codes   []string
	def     *Language
	matcher language.Matcher
	tags    []string // code per matcher index
}

// Load reads the embedded tables. defaultCode names the language used for
// unmatched codes and missing messages.
func Load(defaultCode string) (*Catalog, error) {
	return LoadFS(localeFS, "locales", defaultCode)
}

// LoadFS reads every *.yaml table in dir of fsys.
func LoadFS(fsys fs.FS, dir, defaultCode string) (*Catalog, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("i18n: list tables: %w", err)
	}

	c := &Catalog{langs: make(map[string]*Language)}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", f, err)
		}
		var l Language
		if err := yaml.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", f, err)
		}
		if l.Code == "" {
			l.Code = strings.TrimSuffix(path.Base(f), ".yaml")
		}
		if _, err := language.Parse(l.Code); err != nil {
			return nil, fmt.Errorf("i18n: %s: bad code %q: %w", f, l.Code, err)
		}
		c.langs[l.Code] = &l
		c.codes = append(c.codes, l.Code)
	}
	sort.Strings(c.codes)

	def, ok := c.langs[defaultCode]
	if !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownLanguage, defaultCode)
	}
	c.def = def

	// The matcher falls back to its first tag, so the default goes first.
	supported := []language.Tag{language.MustParse(def.Code)}
	c.tags = []string{def.Code}
	for _, code := range c.codes {
		if code == def.Code {
			continue
		}
		c.langs[code].fallback = def
		supported = append(supported, language.MustParse(code))
		c.tags = append(c.tags, code)
	}
	c.matcher = language.NewMatcher(supported)

	return c, nil
}

// Codes returns the loaded language codes in sorted order.
func (c *Catalog) Codes() []string {
	out := make([]string, len(c.codes))
	copy(out, c.codes)
	return out
}

// Default returns the default language.
func (c *Catalog) Default() *Language {
	return c.def
}

// Get returns the language with exactly this code.
func (c *Catalog) Get(code string) (*Language, error) {
	if l, ok := c.langs[code]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
}

// Match returns the closest language for a BCP 47 code such as "de-AT" or
// "fr_CA". Unparseable or unsupported codes get the default language.
func (c *Catalog) Match(code string) *Language {
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return c.def
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return c.def
	}
	return c.langs[c.tags[idx]]
}

// Text returns message key with placeholders filled from kv, which holds
// alternating names and values. Missing messages fall back to the default
// language and then to the key itself.
func (l *Language) Text(key string, kv ...any) string {
	msg, ok := l.Messages[key]
	if !ok && l.fallback != nil {
		msg, ok = l.fallback.Messages[key]
	}
	if !ok {
		msg = key
	}
	if len(kv) < 2 {
		return msg
	}

	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+fmt.Sprint(kv[i])+"}", fmt.Sprint(kv[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Has reports whether the language or its fallback defines key.
func (l *Language) Has(key string) bool {
	if _, ok := l.Messages[key]; ok {
		return true
	}
	if l.fallback != nil {
		_, ok := l.fallback.Messages[key]
		return ok
	}
	return false
}

// Reject explains a refused move. Errors that are not move rejections are
// reported as internal errors.
func (l *Language) Reject(err error) string {
	var me *mnac.MoveError
	if errors.As(err, &me) {
		return l.Text("reject_" + me.Reason.String())
	}
	return l.Text("error_internal", "err", err)
}

// Phase describes what the player to move must do.
func (l *Language) Phase(p mnac.Phase) string {
	return l.Text("phase_" + p.String())
}

// Player names the side playing m.
func (l *Language) Player(m mnac.Mark) string {
	switch m {
	case mnac.Nought:
		return l.Text("noughts")
	case mnac.Cross:
		return l.Text("crosses")
	}
	return ""
}

// Result announces a final status. forced selects the eight-decided draw
// message.
func (l *Language) Result(s mnac.Status, forced bool) string {
	switch {
	case s == mnac.NoughtsWin:
		return l.Text("result_noughts")
	case s == mnac.CrossesWin:
		return l.Text("result_crosses")
	case s == mnac.Draw && forced:
		return l.Text("result_forced_draw")
	case s == mnac.Draw:
		return l.Text("result_draw")
	}
	return ""
}

// Direction names board position i.
func (l *Language) Direction(i int) string {
	name := mnac.DirectionName(i)
	if name == "" {
		return ""
	}
	return l.Text("dir_" + name)
}

// Prompt tells the player to move what to do next.
func (l *Language) Prompt(g *mnac.Game) string {
	player := l.Player(g.Player())
	action := l.Phase(g.Phase())
	if g.ActiveGrid() == mnac.NoGrid {
		return l.Text("prompt", "player", player, "action", action)
	}
	return l.Text("prompt_grid", "player", player, "grid", l.Direction(g.ActiveGrid()), "action", action)
}
