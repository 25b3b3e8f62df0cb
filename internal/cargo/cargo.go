// Package cargo provides the Cargo.toml manifest codec.
package cargo

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/git-pkgs/manifests/internal/core"
)

const ecosystem = "cargo"

func init() {
	core.RegisterFormat(ecosystem, []string{"Cargo.toml"}, func() core.Format {
		return New()
	})
}

// Format is the Cargo.toml codec.
type Format struct{}

func New() *Format {
	return &Format{}
}

func (f *Format) Ecosystem() string {
	return ecosystem
}

func (f *Format) Filenames() []string {
	return []string{"Cargo.toml"}
}

type manifestDoc struct {
	Package   packageInfo               `toml:"package"`
	Features  map[string][]string       `toml:"features"`
	Deps      map[string]toml.Primitive `toml:"dependencies"`
	DevDeps   map[string]toml.Primitive `toml:"dev-dependencies"`
	BuildDeps map[string]toml.Primitive `toml:"build-dependencies"`
}

type packageInfo struct {
	Name          string   `toml:"name"`
	Version       string   `toml:"version"`
	Edition       string   `toml:"edition"`
	Authors       []string `toml:"authors"`
	Keywords      []string `toml:"keywords"`
	Description   string   `toml:"description"`
	License       string   `toml:"license"`
	Repository    string   `toml:"repository"`
	Homepage      string   `toml:"homepage"`
	Documentation string   `toml:"documentation"`
	Readme        string   `toml:"readme"`
	Exclude       []string `toml:"exclude"`
}

// requirementTable is the long form of a dependency declaration.
type requirementTable struct {
	Version         string   `toml:"version"`
	Optional        bool     `toml:"optional"`
	DefaultFeatures *bool    `toml:"default-features"`
	Features        []string `toml:"features"`
}

// Parse decodes Cargo.toml source into the shared manifest model.
// Identity fields carry over verbatim. Dependencies accept either a bare
// version string or a table; both forms decode to the same Requirement.
func (f *Format) Parse(data []byte) (*core.Manifest, error) {
	var doc manifestDoc
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc)
	if err != nil {
		return nil, &core.ParseError{Ecosystem: ecosystem, Err: err}
	}

	m := &core.Manifest{
		Ecosystem: ecosystem,
		Package: core.Package{
			Name:          doc.Package.Name,
			Version:       doc.Package.Version,
			Edition:       doc.Package.Edition,
			Authors:       doc.Package.Authors,
			Keywords:      doc.Package.Keywords,
			Description:   doc.Package.Description,
			License:       doc.Package.License,
			Repository:    doc.Package.Repository,
			Homepage:      doc.Package.Homepage,
			Documentation: doc.Package.Documentation,
			Readme:        doc.Package.Readme,
			Exclude:       doc.Package.Exclude,
		},
		Features: doc.Features,
	}

	sections := []struct {
		name  string
		prims map[string]toml.Primitive
		out   *map[string]core.Requirement
	}{
		{"dependencies", doc.Deps, &m.Dependencies},
		{"dev-dependencies", doc.DevDeps, &m.DevDependencies},
		{"build-dependencies", doc.BuildDeps, &m.BuildDependencies},
	}
	for _, section := range sections {
		if section.prims == nil {
			continue
		}
		reqs := make(map[string]core.Requirement, len(section.prims))
		for name, prim := range section.prims {
			req, err := decodeRequirement(md, prim)
			if err != nil {
				return nil, &core.ParseError{
					Ecosystem: ecosystem,
					Err:       fmt.Errorf("%s.%s: %w", section.name, name, err),
				}
			}
			reqs[name] = req
		}
		*section.out = reqs
	}

	return m, nil
}

// decodeRequirement handles the string-or-table dependency forms.
func decodeRequirement(md toml.MetaData, prim toml.Primitive) (core.Requirement, error) {
	var version string
	if err := md.PrimitiveDecode(prim, &version); err == nil {
		if version == "" {
			return core.Requirement{}, fmt.Errorf("empty version requirement")
		}
		return core.DefaultRequirement(version), nil
	}

	var tbl requirementTable
	if err := md.PrimitiveDecode(prim, &tbl); err != nil {
		return core.Requirement{}, fmt.Errorf("expected version string or table: %w", err)
	}
	if tbl.Version == "" {
		return core.Requirement{}, fmt.Errorf("missing version requirement")
	}

	req := core.Requirement{
		Constraint:      tbl.Version,
		Optional:        tbl.Optional,
		DefaultFeatures: true,
		Features:        tbl.Features,
	}
	if tbl.DefaultFeatures != nil {
		req.DefaultFeatures = *tbl.DefaultFeatures
	}
	return req, nil
}
