package theme

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"dtc/token"
)

// Transform derives theme key and CSS value from a resolved record.
type Transform func(r token.Record) (key, value string, err error)

// Identity keeps record name as key. Lists are rendered as comma separated
// CSS lists, structured values cannot be rendered without dedicated
// transform.
func Identity(r token.Record) (string, string, error) {
	v, err := render(r)
	return r.Name, v, err
}

// SlugKeys lowercases and slugifies record names, "Step 1" becomes "step-1".
func SlugKeys(r token.Record) (string, string, error) {
	v, err := render(r)
	return slug.Make(r.Name), v, err
}

// FontStack renders font stacks. Family names with spaces are quoted.
// Structured font records ({name, weight, ...}) collapse into their family
// name.
func FontStack(r token.Record) (string, string, error) {
	key := slug.Make(r.Name)
	switch r.Value.Kind() {
	case token.KindList:
		return key, fontStack(r.Value.List()), nil
	case token.KindStruct:
		for _, field := range []string{"name", "family"} {
			if v, ok := r.Value.Field(field); ok {
				return key, v, nil
			}
		}
		return "", "", fmt.Errorf("font token %q has neither name nor family field (has %s)", r.Name, fieldNames(r.Value))
	}
	v, err := render(r)
	return key, v, err
}

// FontWeights collapses structured font records into their weight.
func FontWeights(r token.Record) (string, string, error) {
	key := slug.Make(r.Name)
	if r.Value.Kind() == token.KindStruct {
		if v, ok := r.Value.Field("weight"); ok {
			return key, v, nil
		}
		return "", "", fmt.Errorf("font token %q has no weight field (has %s)", r.Name, fieldNames(r.Value))
	}
	v, err := render(r)
	return key, v, err
}

func fieldNames(v token.Value) string {
	fields := v.Fields()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return strings.Join(names, ", ")
}

func render(r token.Record) (string, error) {
	switch r.Value.Kind() {
	case token.KindScalar:
		return r.Value.String(), nil
	case token.KindList:
		return strings.Join(r.Value.List(), ", "), nil
	default:
		return "", fmt.Errorf("token %q: %s value cannot be used as is", r.Name, r.Value.Kind())
	}
}

func fontStack(families []string) string {
	quoted := make([]string, 0, len(families))
	for _, f := range families {
		f = strings.TrimSpace(f)
		if strings.ContainsAny(f, " \t") && !strings.HasPrefix(f, `"`) && !strings.HasPrefix(f, "'") {
			f = `"` + f + `"`
		}
		quoted = append(quoted, f)
	}
	return strings.Join(quoted, ", ")
}

// Map normalizes records of a category into theme group. Nil transform means
// Identity. Every record must already be resolved and no two records may end
// up under the same key, otherwise nothing is returned.
func Map(category string, src token.Source, t Transform) (*Group, error) {
	if t == nil {
		t = Identity
	}

	g := NewGroup()
	owners := make(map[string]string)

	var err error
	for _, r := range src.Records() {
		if !r.Value.IsResolved() {
			err = multierr.Append(err, &token.UnresolvedTokenError{Category: category, Name: r.Name})
			continue
		}
		key, value, terr := t(r)
		if terr != nil {
			err = multierr.Append(err, fmt.Errorf("category %s: %w", category, terr))
			continue
		}
		if key == "" {
			err = multierr.Append(err, fmt.Errorf("category %s: token %q maps to empty key", category, r.Name))
			continue
		}
		if !g.Set(key, value) {
			err = multierr.Append(err, &token.DuplicateTokenNameError{Category: category, Key: key, Names: []string{owners[key], r.Name}})
			continue
		}
		owners[key] = r.Name
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Mapper keeps per category transforms.
type Mapper struct {
	log        *zap.Logger
	transforms map[string]Transform
}

// NewMapper returns mapper which uses Identity for every category until told
// otherwise.
func NewMapper(log *zap.Logger) *Mapper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mapper{log: log.Named("mapper"), transforms: make(map[string]Transform)}
}

// Register sets transform for category.
func (m *Mapper) Register(category string, t Transform) *Mapper {
	m.transforms[category] = t
	return m
}

// Map normalizes source using transform registered for category.
func (m *Mapper) Map(category string, src token.Source) (*Group, error) {
	if src == nil {
		return nil, errors.New("nothing to map")
	}
	g, err := Map(category, src, m.transforms[category])
	if err != nil {
		return nil, err
	}
	m.log.Debug("Mapped category", zap.String("category", category), zap.Int("entries", g.Len()))
	return g, nil
}

// TransformByName resolves transform from its configuration name.
func TransformByName(name string) (Transform, error) {
	switch name {
	case "", "identity":
		return Identity, nil
	case "slug":
		return SlugKeys, nil
	case "font-family":
		return FontStack, nil
	case "font-weight":
		return FontWeights, nil
	default:
		return nil, fmt.Errorf("unknown transform %q", name)
	}
}
