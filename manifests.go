// Package manifests parses, validates, and resolves package manifests.
//
// The package models a manifest as an identity block, a feature table, and
// per-scope dependency tables, with format codecs registered per ecosystem.
//
// Basic usage:
//
//	import (
//		"github.com/git-pkgs/manifests"
//		_ "github.com/git-pkgs/manifests/internal/cargo"
//	)
//
//	m, err := manifests.ParseFile("Cargo.toml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	act, err := m.Activate([]string{"async"}, true)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(m.Package.Name, act.Dependencies["tokio"].Features)
//
// To automatically import all supported formats, use the imports subpackage:
//
//	import (
//		"github.com/git-pkgs/manifests"
//		_ "github.com/git-pkgs/manifests/all"
//	)
package manifests

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/git-pkgs/purl"

	"github.com/git-pkgs/manifests/client"
	"github.com/git-pkgs/manifests/internal/core"
)

// Re-export types from internal/core
type (
	// Manifest is a parsed package manifest.
	Manifest = core.Manifest

	// Package is the identity block of a manifest.
	Package = core.Package

	// Requirement is a single dependency declaration.
	Requirement = core.Requirement

	// Scope indicates when a dependency is required.
	Scope = core.Scope

	// Activation is the transitive result of enabling a set of features.
	Activation = core.Activation

	// DepActivation records how a dependency ends up enabled.
	DepActivation = core.DepActivation

	// Format is the interface implemented by all manifest format codecs.
	Format = core.Format
)

// Re-export constants
const (
	Runtime     = core.Runtime
	Development = core.Development
	Test        = core.Test
	Build       = core.Build
	Optional    = core.Optional
)

// Re-export errors
var (
	ErrUnknownEcosystem = core.ErrUnknownEcosystem
	ErrInvalidManifest  = core.ErrInvalidManifest
	ErrNotFound         = client.ErrNotFound
)

// Error types
type (
	ParseError          = core.ParseError
	ValidationError     = core.ValidationError
	UnknownFeatureError = core.UnknownFeatureError
	HTTPError           = client.HTTPError
	NotFoundError       = client.NotFoundError
	RateLimitError      = client.RateLimitError
)

// New creates a format codec for the given ecosystem.
//
// Supported ecosystems: "cargo"
func New(ecosystem string) (Format, error) {
	return core.NewFormat(ecosystem)
}

// Detect returns the format codec that claims the given manifest filename
// (e.g. "Cargo.toml").
func Detect(filename string) (Format, error) {
	return core.Detect(filename)
}

// Parse decodes manifest source text for the given ecosystem.
func Parse(ecosystem string, data []byte) (*Manifest, error) {
	f, err := core.NewFormat(ecosystem)
	if err != nil {
		return nil, err
	}
	return f.Parse(data)
}

// ParseFile reads a manifest file, detecting the format from its filename.
func ParseFile(path string) (*Manifest, error) {
	f, err := core.Detect(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return f.Parse(data)
}

// Encode renders a manifest back to canonical source text using the codec
// for its ecosystem.
func Encode(m *Manifest) ([]byte, error) {
	f, err := core.NewFormat(m.Ecosystem)
	if err != nil {
		return nil, err
	}
	return f.Encode(m)
}

// SupportedEcosystems returns all registered ecosystem types.
// Note: formats must be imported to be registered.
func SupportedEcosystems() []string {
	return core.SupportedEcosystems()
}

// DefaultRequirement returns the Requirement equivalent of a bare version string.
func DefaultRequirement(constraint string) Requirement {
	return core.DefaultRequirement(constraint)
}

// ParseConstraint parses a manifest version requirement; bare requirements
// default to caret semantics.
var ParseConstraint = core.ParseConstraint

// PURL represents a parsed Package URL.
type PURL = purl.PURL

// ParsePURL parses a Package URL string into its components.
// Supports both package PURLs (pkg:cargo/piston) and version PURLs
// (pkg:cargo/piston@1.0.0).
func ParsePURL(purlStr string) (*PURL, error) {
	return purl.Parse(purlStr)
}

// PackagePURL returns the versioned Package URL for the manifest's own
// identity block.
func PackagePURL(m *Manifest) string {
	if m.Package.Version == "" {
		return fmt.Sprintf("pkg:%s/%s", m.Ecosystem, m.Package.Name)
	}
	return fmt.Sprintf("pkg:%s/%s@%s", m.Ecosystem, m.Package.Name, m.Package.Version)
}
