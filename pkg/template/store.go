package template

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"

	"github.com/akam1o/tna-routegen/pkg/errors"
)

// Kind names one of the three descriptor templates.
type Kind string

const (
	KindFiltering Kind = "filtering"
	KindForward   Kind = "forward"
	KindNext      Kind = "next"
)

// Kinds lists every template kind in pipeline order.
var Kinds = []Kind{KindFiltering, KindForward, KindNext}

// ArgCount is the number of positional arguments the generator supplies per kind.
func (k Kind) ArgCount() int {
	switch k {
	case KindFiltering:
		return 2 // port, mac
	case KindForward:
		return 2 // ip/mask, next id
	case KindNext:
		return 4 // port, switch mac, peer mac, next id
	default:
		return 0
	}
}

func (k Kind) fileName() string {
	return string(k) + ".json"
}

//go:embed defaults/*.json
var defaultsFS embed.FS

// Store loads template bodies by kind.
type Store interface {
	Load(kind Kind) (string, error)
}

// DirStore loads <Dir>/<kind>.json.
type DirStore struct {
	Dir string
}

func (s *DirStore) Load(kind Kind) (string, error) {
	path := filepath.Join(s.Dir, kind.fileName())
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NotFound(fmt.Sprintf("Template %s (%s)", kind, path))
		}
		return "", errors.Wrap(pkgerrors.Wrapf(err, "read %s", path),
			errors.ErrCodeConfigPermission,
			fmt.Sprintf("Failed to read template: %s", path),
			"The template file exists but is not readable",
			"Check file permissions on the template directory")
	}
	return string(data), nil
}

// EmbeddedStore serves the built-in fabric-tna templates.
type EmbeddedStore struct{}

func (EmbeddedStore) Load(kind Kind) (string, error) {
	data, err := fs.ReadFile(defaultsFS, "defaults/"+kind.fileName())
	if err != nil {
		return "", errors.NotFound(fmt.Sprintf("Built-in template %s", kind))
	}
	return string(data), nil
}

// LayeredStore prefers Primary and falls back when it has no such template.
type LayeredStore struct {
	Primary  Store
	Fallback Store
}

func (s *LayeredStore) Load(kind Kind) (string, error) {
	if s.Primary != nil {
		body, err := s.Primary.Load(kind)
		if err == nil {
			return body, nil
		}
		if !errors.IsCode(err, errors.ErrCodeNotFound) {
			return "", err
		}
	}
	return s.Fallback.Load(kind)
}

// NewStore returns the embedded templates overridden by dir when dir is set.
func NewStore(dir string) Store {
	if dir == "" {
		return EmbeddedStore{}
	}
	return &LayeredStore{Primary: &DirStore{Dir: dir}, Fallback: EmbeddedStore{}}
}

// Template is a loaded template body.
type Template struct {
	Kind Kind
	Body string
}

// Render substitutes args into the template body.
func (t *Template) Render(args ...any) (string, error) {
	return render(string(t.Kind), t.Body, args)
}

// Set holds one template per kind.
type Set map[Kind]*Template

// LoadSet loads every kind from store and checks that no template references
// an argument the generator does not supply.
func LoadSet(store Store) (Set, error) {
	set := make(Set, len(Kinds))
	for _, kind := range Kinds {
		body, err := store.Load(kind)
		if err != nil {
			return nil, err
		}
		t := &Template{Kind: kind, Body: body}
		if err := t.check(); err != nil {
			return nil, err
		}
		set[kind] = t
	}
	return set, nil
}

func (t *Template) check() error {
	for _, i := range Placeholders(t.Body) {
		if i >= t.Kind.ArgCount() {
			return errors.TemplateError(string(t.Kind), fmt.Sprintf(
				"placeholder $%d is out of range, %s templates take %d arguments",
				i, t.Kind, t.Kind.ArgCount()))
		}
	}
	return nil
}
