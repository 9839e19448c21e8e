// Package catalog loads the universe of introducible items from YAML files.
//
// Each file holds a list of entries:
//
//	- id: break-the-ice
//	  kind: phrase
//	  prompt: break the ice
//	  answer: to make people feel more relaxed
//	  note: often used at parties
package catalog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/reviewdeck/internal/srs"
)

var ErrDuplicateItem = errors.New("catalog: duplicate item id")

// Entry is one learnable item.
type Entry struct {
	ID     string `yaml:"id" validate:"required"`
	Kind   string `yaml:"kind" validate:"omitempty,oneof=vocabulary vocab phrase pronunciation"`
	Prompt string `yaml:"prompt" validate:"required"`
	Answer string `yaml:"answer" validate:"required"`
	Note   string `yaml:"note,omitempty"`

	// Source is the file the entry was read from.
	Source string `yaml:"-"`
}

// ItemKind returns the kind of the entry, vocabulary when unset.
func (e Entry) ItemKind() srs.ItemKind {
	if e.Kind == "" {
		return srs.Vocabulary
	}
	kind, err := srs.ParseItemKind(e.Kind)
	if err != nil {
		return srs.Vocabulary
	}
	return kind
}

type Catalog struct {
	entries []Entry
	index   map[string]int
}

// New validates entries and returns a Catalog keeping their order.
func New(entries []Entry) (*Catalog, error) {
	v, err := newEntryValidator()
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	var errs []error
	for i, entry := range entries {
		entry.ID = strings.TrimSpace(entry.ID)
		if err := v.check(entry); err != nil {
			errs = append(errs, fmt.Errorf("%s: entry %d: %w", entry.Source, i+1, err))
			continue
		}
		if j, ok := c.index[entry.ID]; ok {
			errs = append(errs, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateItem, entry.ID, c.entries[j].Source, entry.Source))
			continue
		}
		c.index[entry.ID] = len(c.entries)
		c.entries = append(c.entries, entry)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// Load reads every .yml and .yaml file under dirs, walking each directory in lexical order.
func Load(dirs ...string) (*Catalog, error) {
	var entries []Entry
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if ext := filepath.Ext(path); ext != ".yml" && ext != ".yaml" {
				return nil
			}

			fileEntries, err := readEntries(path)
			if err != nil {
				return err
			}
			entries = append(entries, fileEntries...)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("filepath.WalkDir(%s) > %w", dir, err)
		}
	}
	return New(entries)
}

func readEntries(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	var entries []Entry
	if err := yaml.NewDecoder(file).Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("yaml.NewDecoder(%s).Decode() > %w", path, err)
	}
	for i := range entries {
		entries[i].Source = path
	}
	return entries, nil
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns the entries in load order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Lookup(id string) (Entry, bool) {
	i, ok := c.index[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Candidates returns every item in load order, for introducing new cards.
func (c *Catalog) Candidates() []srs.Item {
	items := make([]srs.Item, 0, len(c.entries))
	for _, e := range c.entries {
		items = append(items, srs.Item{ID: e.ID, Kind: e.ItemKind()})
	}
	return items
}

type entryValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newEntryValidator() (*entryValidator, error) {
	validate := validator.New()
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &entryValidator{validate: validate, translator: trans}, nil
}

func (v *entryValidator) check(entry Entry) error {
	err := v.validate.Struct(entry)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, e.Translate(v.translator))
	}
	return fmt.Errorf("id=%q: %s", entry.ID, strings.Join(msgs, ", "))
}
