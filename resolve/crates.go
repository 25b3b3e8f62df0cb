package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	manifests "github.com/git-pkgs/manifests"
	"github.com/git-pkgs/manifests/client"
)

// DefaultCratesURL is the public crates.io registry.
const DefaultCratesURL = "https://crates.io"

// VersionInfo is one published version of a package.
type VersionInfo struct {
	Number   string
	Checksum string // sha256-... when the registry publishes one
	Yanked   bool
}

// Dependency is one edge in the registry's dependency graph.
type Dependency struct {
	Name        string
	Requirement string
	Scope       manifests.Scope
	Optional    bool
}

// Registry provides the version and dependency data resolution needs.
type Registry interface {
	Ecosystem() string
	Versions(ctx context.Context, name string) ([]VersionInfo, error)
	Dependencies(ctx context.Context, name, version string) ([]Dependency, error)
	URLs() client.URLBuilder
}

// CratesIO is a Registry backed by the crates.io API.
type CratesIO struct {
	baseURL string
	client  *client.Client
	urls    *CrateURLs
}

// NewCratesIO creates a crates.io registry client.
// If baseURL is empty, the public registry is used.
// If c is nil, client.DefaultClient() is used.
func NewCratesIO(baseURL string, c *client.Client) *CratesIO {
	if baseURL == "" {
		baseURL = DefaultCratesURL
	}
	if c == nil {
		c = client.DefaultClient()
	}
	r := &CratesIO{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  c,
	}
	r.urls = &CrateURLs{baseURL: r.baseURL}
	return r
}

func (r *CratesIO) Ecosystem() string {
	return "cargo"
}

func (r *CratesIO) URLs() client.URLBuilder {
	return r.urls
}

type crateResponse struct {
	Versions []versionInfo `json:"versions"`
}

type versionInfo struct {
	Num      string `json:"num"`
	Checksum string `json:"checksum"`
	Yanked   bool   `json:"yanked"`
}

type dependenciesResponse struct {
	Dependencies []dependencyInfo `json:"dependencies"`
}

type dependencyInfo struct {
	CrateID  string `json:"crate_id"`
	Req      string `json:"req"`
	Kind     string `json:"kind"`
	Optional bool   `json:"optional"`
}

func (r *CratesIO) Versions(ctx context.Context, name string) ([]VersionInfo, error) {
	url := fmt.Sprintf("%s/api/v1/crates/%s", r.baseURL, name)

	var resp crateResponse
	if err := r.client.GetJSON(ctx, url, &resp); err != nil {
		return nil, r.mapNotFound(err, name, "")
	}

	versions := make([]VersionInfo, len(resp.Versions))
	for i, v := range resp.Versions {
		var checksum string
		if v.Checksum != "" {
			checksum = "sha256-" + v.Checksum
		}
		versions[i] = VersionInfo{
			Number:   v.Num,
			Checksum: checksum,
			Yanked:   v.Yanked,
		}
	}
	return versions, nil
}

func (r *CratesIO) Dependencies(ctx context.Context, name, version string) ([]Dependency, error) {
	url := fmt.Sprintf("%s/api/v1/crates/%s/%s/dependencies", r.baseURL, name, version)

	var resp dependenciesResponse
	if err := r.client.GetJSON(ctx, url, &resp); err != nil {
		return nil, r.mapNotFound(err, name, version)
	}

	deps := make([]Dependency, len(resp.Dependencies))
	for i, d := range resp.Dependencies {
		deps[i] = Dependency{
			Name:        d.CrateID,
			Requirement: d.Req,
			Scope:       mapScope(d.Kind),
			Optional:    d.Optional,
		}
	}
	return deps, nil
}

func (r *CratesIO) mapNotFound(err error, name, version string) error {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && httpErr.IsNotFound() {
		return &client.NotFoundError{Ecosystem: r.Ecosystem(), Name: name, Version: version}
	}
	return err
}

func mapScope(kind string) manifests.Scope {
	switch kind {
	case "dev":
		return manifests.Development
	case "build":
		return manifests.Build
	default:
		return manifests.Runtime
	}
}

// CrateURLs builds registry, download, docs, and purl links for crates.
type CrateURLs struct {
	baseURL string
}

func (u *CrateURLs) Registry(name, version string) string {
	if version != "" {
		return fmt.Sprintf("%s/crates/%s/%s", u.baseURL, name, version)
	}
	return fmt.Sprintf("%s/crates/%s", u.baseURL, name)
}

func (u *CrateURLs) Download(name, version string) string {
	if version == "" {
		return ""
	}
	return fmt.Sprintf("https://static.crates.io/crates/%s/%s-%s.crate", name, name, version)
}

func (u *CrateURLs) Documentation(name, version string) string {
	if version != "" {
		return fmt.Sprintf("https://docs.rs/%s/%s", name, version)
	}
	return fmt.Sprintf("https://docs.rs/%s", name)
}

func (u *CrateURLs) PURL(name, version string) string {
	if version != "" {
		return fmt.Sprintf("pkg:cargo/%s@%s", name, version)
	}
	return fmt.Sprintf("pkg:cargo/%s", name)
}
