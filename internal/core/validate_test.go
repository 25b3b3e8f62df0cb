package core

import (
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
)

func mustVersion(t *testing.T, s string) *semver.Version {
	t.Helper()
	v, err := semver.NewVersion(s)
	if err != nil {
		t.Fatalf("parsing version %q: %v", s, err)
	}
	return v
}

func TestValidateOK(t *testing.T) {
	m := engineManifest()
	if err := m.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestValidateIdentity(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(m *Manifest)
	}{
		{"empty name", func(m *Manifest) { m.Package.Name = "" }},
		{"empty version", func(m *Manifest) { m.Package.Version = "" }},
		{"non-semver version", func(m *Manifest) { m.Package.Version = "one point oh" }},
		{"bad license", func(m *Manifest) { m.Package.License = "NOT-A-LICENSE-!!" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := engineManifest()
			tc.mutate(m)

			err := m.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidManifest) {
				t.Errorf("error %v does not wrap ErrInvalidManifest", err)
			}
		})
	}
}

func TestValidateLicenseExpression(t *testing.T) {
	m := engineManifest()
	m.Package.License = "MIT OR Apache-2.0"
	if err := m.Validate(); err != nil {
		t.Errorf("compound SPDX expression rejected: %v", err)
	}
}

func TestValidateRequirements(t *testing.T) {
	m := engineManifest()
	m.Dependencies["broken"] = Requirement{Constraint: ">>nope", DefaultFeatures: true}
	if err := m.Validate(); err == nil {
		t.Error("expected error for invalid requirement")
	}

	m = engineManifest()
	m.Dependencies["empty"] = Requirement{DefaultFeatures: true}
	if err := m.Validate(); err == nil {
		t.Error("expected error for missing requirement")
	}
}

func TestValidateFeatureReferences(t *testing.T) {
	m := engineManifest()
	m.Features["broken"] = []string{"missing/cap"}
	if err := m.Validate(); err == nil {
		t.Error("expected error for feature referencing unknown dependency")
	}

	m = engineManifest()
	m.Features["combo"] = []string{"async", "webgl"}
	if err := m.Validate(); err != nil {
		t.Errorf("feature referencing features rejected: %v", err)
	}
}

func TestParseConstraintCaretDefault(t *testing.T) {
	c, err := ParseConstraint("1.0")
	if err != nil {
		t.Fatalf("ParseConstraint failed: %v", err)
	}
	cases := []struct {
		version string
		want    bool
	}{
		{"1.0.0", true},
		{"1.9.3", true},
		{"2.0.0", false},
		{"0.9.0", false},
	}
	for _, tc := range cases {
		v := mustVersion(t, tc.version)
		if got := c.Check(v); got != tc.want {
			t.Errorf("1.0 matches %s = %v, want %v", tc.version, got, tc.want)
		}
	}
}

func TestParseConstraintOperatorsPassThrough(t *testing.T) {
	c, err := ParseConstraint(">= 1.2, < 2.0")
	if err != nil {
		t.Fatalf("ParseConstraint failed: %v", err)
	}
	if !c.Check(mustVersion(t, "1.5.0")) {
		t.Error(">= 1.2, < 2.0 should match 1.5.0")
	}
	if c.Check(mustVersion(t, "2.1.0")) {
		t.Error(">= 1.2, < 2.0 should not match 2.1.0")
	}

	if _, err := ParseConstraint("1.*"); err != nil {
		t.Errorf("wildcard requirement rejected: %v", err)
	}
}
