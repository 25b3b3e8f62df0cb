package core

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/github/go-spdx/v2/spdxexp"
)

// ParseConstraint parses a manifest version requirement into a semver
// constraint. Bare requirements default to caret semantics, so "1.0" is
// treated as "^1.0". Comma-separated requirement lists and the usual
// comparison, tilde, and wildcard operators pass through untouched.
func ParseConstraint(req string) (*semver.Constraints, error) {
	parts := strings.Split(req, ",")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" && part[0] >= '0' && part[0] <= '9' && !strings.ContainsAny(part, "*xX") {
			part = "^" + part
		}
		parts[i] = part
	}
	return semver.NewConstraint(strings.Join(parts, ", "))
}

// Validate checks the structural invariants of the manifest: a complete
// identity block, a parseable version, a valid SPDX license expression,
// parseable dependency constraints, and feature effects that resolve to
// declared features or dependencies.
func (m *Manifest) Validate() error {
	if m.Package.Name == "" {
		return &ValidationError{Field: "package.name", Reason: "must not be empty"}
	}
	if m.Package.Version == "" {
		return &ValidationError{Field: "package.version", Reason: "must not be empty"}
	}
	if _, err := semver.StrictNewVersion(m.Package.Version); err != nil {
		return &ValidationError{Field: "package.version", Reason: fmt.Sprintf("%q is not a semantic version", m.Package.Version)}
	}
	if m.Package.License != "" {
		if valid, _ := spdxexp.ValidateLicenses([]string{m.Package.License}); !valid {
			return &ValidationError{Field: "package.license", Reason: fmt.Sprintf("%q is not a valid SPDX expression", m.Package.License)}
		}
	}

	for scope, section := range map[Scope]map[string]Requirement{
		Runtime:     m.Dependencies,
		Development: m.DevDependencies,
		Build:       m.BuildDependencies,
	} {
		for name, req := range section {
			if req.Constraint == "" {
				return &ValidationError{
					Field:  fmt.Sprintf("%s dependency %s", scope, name),
					Reason: "missing version requirement",
				}
			}
			if _, err := ParseConstraint(req.Constraint); err != nil {
				return &ValidationError{
					Field:  fmt.Sprintf("%s dependency %s", scope, name),
					Reason: fmt.Sprintf("invalid requirement %q", req.Constraint),
				}
			}
		}
	}

	for feature, effects := range m.Features {
		for _, effect := range effects {
			if err := m.checkEffect(feature, effect); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Manifest) checkEffect(feature, effect string) error {
	dep := effect
	switch {
	case strings.Contains(effect, "?/"):
		dep = effect[:strings.Index(effect, "?/")]
	case strings.Contains(effect, "/"):
		dep = effect[:strings.Index(effect, "/")]
	case strings.HasPrefix(effect, "dep:"):
		dep = strings.TrimPrefix(effect, "dep:")
	default:
		if _, ok := m.Features[effect]; ok {
			return nil
		}
	}
	if _, ok := m.Requirement(dep); !ok {
		return &ValidationError{
			Field:  fmt.Sprintf("feature %s", feature),
			Reason: fmt.Sprintf("references unknown feature or dependency %q", effect),
		}
	}
	return nil
}
