package resolve

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// BuildPlan is the concrete result of resolving a manifest: one locked
// version per dependency, transitively closed.
type BuildPlan struct {
	Root     string          `yaml:"root"`
	Packages []LockedPackage `yaml:"packages"`
}

// LockedPackage is one resolved dependency.
type LockedPackage struct {
	Name         string   `yaml:"name"`
	Version      string   `yaml:"version"`
	Checksum     string   `yaml:"checksum,omitempty"`
	PURL         string   `yaml:"purl"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

// Package returns the locked entry for a dependency name.
func (p *BuildPlan) Package(name string) (*LockedPackage, bool) {
	for i := range p.Packages {
		if p.Packages[i].Name == name {
			return &p.Packages[i], true
		}
	}
	return nil, false
}

// WriteLock renders the plan as lockfile text: one [[package]] block per
// locked dependency, sorted by name.
func (p *BuildPlan) WriteLock(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# resolved by git-pkgs/manifests\nroot = %s\n", strconv.Quote(p.Root)); err != nil {
		return err
	}
	for _, pkg := range p.Packages {
		if _, err := fmt.Fprintf(w, "\n[[package]]\nname = %s\nversion = %s\n",
			strconv.Quote(pkg.Name), strconv.Quote(pkg.Version)); err != nil {
			return err
		}
		if pkg.Checksum != "" {
			if _, err := fmt.Fprintf(w, "checksum = %s\n", strconv.Quote(pkg.Checksum)); err != nil {
				return err
			}
		}
		if len(pkg.Dependencies) > 0 {
			deps := make([]string, len(pkg.Dependencies))
			for i, d := range pkg.Dependencies {
				deps[i] = strconv.Quote(d)
			}
			sort.Strings(deps)
			if _, err := fmt.Fprintf(w, "dependencies = [%s]\n", strings.Join(deps, ", ")); err != nil {
				return err
			}
		}
	}
	return nil
}
