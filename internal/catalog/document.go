package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

//go:embed catalog.yaml
var builtinYAML []byte

// document mirrors the YAML catalog file. JSON tags drive the CUE encoding.
type document struct {
	DefaultVersion string       `yaml:"default_version" json:"default_version"`
	Versions       []versionDoc `yaml:"versions" json:"versions"`
	Verses         []verseDoc   `yaml:"verses" json:"verses"`
	Songs          []songDoc    `yaml:"songs" json:"songs"`
}

type versionDoc struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Abbreviation string `yaml:"abbreviation" json:"abbreviation"`
	Language     string `yaml:"language" json:"language"`
	Description  string `yaml:"description" json:"description"`
}

type verseDoc struct {
	Reference string            `yaml:"reference" json:"reference"`
	Versions  map[string]string `yaml:"versions" json:"versions"`
}

type songDoc struct {
	ID       string       `yaml:"id" json:"id"`
	Title    string       `yaml:"title" json:"title"`
	Artist   string       `yaml:"artist,omitempty" json:"artist,omitempty"`
	Sections []sectionDoc `yaml:"sections" json:"sections"`
}

type sectionDoc struct {
	ID      string `yaml:"id" json:"id"`
	Type    string `yaml:"type" json:"type"`
	Number  *int   `yaml:"number,omitempty" json:"number,omitempty"`
	Content string `yaml:"content" json:"content"`
}

// parseDocument decodes YAML and validates it against the CUE schema and the
// cross-reference rules the schema cannot express.
func parseDocument(data []byte) (*document, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	// The schema requires lists; an omitted section is an empty list.
	if doc.Verses == nil {
		doc.Verses = []verseDoc{}
	}
	if doc.Songs == nil {
		doc.Songs = []songDoc{}
	}

	if err := validateSchema(&doc); err != nil {
		return nil, err
	}
	if err := validateRefs(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// validateSchema unifies the document with #Catalog and requires a concrete
// result.
func validateSchema(doc *document) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Catalog"))
	v := def.Unify(ctx.Encode(doc))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, cueerrors.Details(err, nil))
	}
	return nil
}

// validateRefs checks identifier uniqueness and version references.
func validateRefs(doc *document) error {
	var errs []error

	versions := make(map[string]bool, len(doc.Versions))
	for _, v := range doc.Versions {
		if versions[v.ID] {
			errs = append(errs, fmt.Errorf("duplicate version id %q", v.ID))
		}
		versions[v.ID] = true
	}
	if !versions[doc.DefaultVersion] {
		errs = append(errs, fmt.Errorf("default_version %q is not a declared version", doc.DefaultVersion))
	}

	refs := make(map[string]bool, len(doc.Verses))
	for _, verse := range doc.Verses {
		if refs[verse.Reference] {
			errs = append(errs, fmt.Errorf("duplicate verse %q", verse.Reference))
		}
		refs[verse.Reference] = true
		for id := range verse.Versions {
			if !versions[id] {
				errs = append(errs, fmt.Errorf("verse %q uses unknown version %q", verse.Reference, id))
			}
		}
	}

	songs := make(map[string]bool, len(doc.Songs))
	for _, s := range doc.Songs {
		if songs[s.ID] {
			errs = append(errs, fmt.Errorf("duplicate song id %q", s.ID))
		}
		songs[s.ID] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
	}
	return nil
}
