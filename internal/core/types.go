// Package core provides the shared manifest model and the format system.
package core

// Package identifies and describes a publishable artifact.
// Name and Version together identify one publishable release.
type Package struct {
	Name          string
	Version       string
	Edition       string
	Authors       []string
	Keywords      []string
	Description   string
	License       string
	Repository    string
	Homepage      string
	Documentation string
	Readme        string
	Exclude       []string // path globs removed from the packaged artifact
}

// Requirement constrains a single declared dependency.
//
// A dependency declared as a bare version string is equivalent to a table
// with only the version set: not optional, default features on, no extra
// features.
type Requirement struct {
	Constraint      string
	Optional        bool
	DefaultFeatures bool
	Features        []string
}

// DefaultRequirement returns the Requirement equivalent of a bare version string.
func DefaultRequirement(constraint string) Requirement {
	return Requirement{Constraint: constraint, DefaultFeatures: true}
}

// Scope indicates when a dependency is required.
// Aligns with github.com/git-pkgs/registries core.Scope.
type Scope string

const (
	Runtime     Scope = "runtime"
	Development Scope = "development"
	Test        Scope = "test"
	Build       Scope = "build"
	Optional    Scope = "optional"
)

// Manifest is a parsed package manifest.
//
// Dependency names are unique per section by construction; a manifest source
// declaring the same name twice in one section fails to parse.
type Manifest struct {
	Ecosystem string

	Package  Package
	Features map[string][]string

	Dependencies      map[string]Requirement
	DevDependencies   map[string]Requirement
	BuildDependencies map[string]Requirement
}

// Deps returns the dependency section for the given scope.
// Returns nil for scopes the manifest does not carry.
func (m *Manifest) Deps(scope Scope) map[string]Requirement {
	switch scope {
	case Runtime:
		return m.Dependencies
	case Development:
		return m.DevDependencies
	case Build:
		return m.BuildDependencies
	default:
		return nil
	}
}

// Requirement looks a dependency up across sections, runtime first.
func (m *Manifest) Requirement(name string) (Requirement, bool) {
	for _, section := range []map[string]Requirement{m.Dependencies, m.BuildDependencies, m.DevDependencies} {
		if req, ok := section[name]; ok {
			return req, true
		}
	}
	return Requirement{}, false
}
