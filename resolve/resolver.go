// Package resolve turns a parsed manifest into a concrete build plan by
// querying a package registry for published versions and dependency graphs.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"

	manifests "github.com/git-pkgs/manifests"
)

// ErrConflict is returned when a transitive requirement cannot be satisfied
// by an already-locked version.
var ErrConflict = errors.New("version conflict")

// ErrNoMatch is returned when no published version satisfies a requirement.
var ErrNoMatch = errors.New("no matching version")

// ConflictError reports an unsatisfiable transitive requirement.
type ConflictError struct {
	Name        string
	Locked      string
	Requirement string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: locked version %s does not satisfy %q", e.Name, e.Locked, e.Requirement)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NoMatchError reports a requirement no published version satisfies.
type NoMatchError struct {
	Name         string
	Requirements []string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("%s: no version satisfies %q", e.Name, strings.Join(e.Requirements, ", "))
}

func (e *NoMatchError) Unwrap() error {
	return ErrNoMatch
}

const defaultConcurrency = 15

// Resolver computes build plans against a registry.
type Resolver struct {
	registry    Registry
	concurrency int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithConcurrency bounds parallel registry requests.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		r.concurrency = n
	}
}

// New creates a Resolver for the given registry.
func New(registry Registry, opts ...Option) *Resolver {
	r := &Resolver{
		registry:    registry,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve computes a concrete build plan for the manifest under the given
// feature activation. A nil activation means default features.
//
// Resolution locks, per dependency name, the highest non-yanked version
// satisfying every requirement seen for it; a later transitive requirement
// that the locked version cannot satisfy is a ConflictError. Optional and
// development edges of transitive dependencies are not followed.
func (r *Resolver) Resolve(ctx context.Context, m *manifests.Manifest, act *manifests.Activation) (*BuildPlan, error) {
	if act == nil {
		var err error
		act, err = m.Activate(nil, true)
		if err != nil {
			return nil, err
		}
	}

	type edge struct {
		name        string
		requirement string
	}

	var frontier []edge
	for name, req := range m.Dependencies {
		if req.Optional && !act.Enabled(name) {
			continue
		}
		frontier = append(frontier, edge{name: name, requirement: req.Constraint})
	}

	locked := make(map[string]*LockedPackage)

	for len(frontier) > 0 {
		wants := make(map[string][]string)
		for _, e := range frontier {
			wants[e.name] = append(wants[e.name], e.requirement)
		}

		var fresh []string
		for name, requirements := range wants {
			if lp, ok := locked[name]; ok {
				if err := satisfies(lp, requirements); err != nil {
					return nil, err
				}
				continue
			}
			fresh = append(fresh, name)
		}
		sort.Strings(fresh)

		picks := make([]*LockedPackage, len(fresh))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)
		for i, name := range fresh {
			g.Go(func() error {
				lp, err := r.pick(gctx, name, wants[name])
				if err != nil {
					return err
				}
				picks[i] = lp
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, lp := range picks {
			locked[lp.Name] = lp
		}

		next := make([][]edge, len(picks))
		g, gctx = errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)
		for i, lp := range picks {
			g.Go(func() error {
				deps, err := r.registry.Dependencies(gctx, lp.Name, lp.Version)
				if err != nil {
					return err
				}
				for _, d := range deps {
					if d.Optional || d.Scope == manifests.Development {
						continue
					}
					lp.Dependencies = append(lp.Dependencies, d.Name)
					next[i] = append(next[i], edge{name: d.Name, requirement: d.Requirement})
				}
				sort.Strings(lp.Dependencies)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		frontier = frontier[:0]
		for _, edges := range next {
			frontier = append(frontier, edges...)
		}
	}

	plan := &BuildPlan{
		Root:     fmt.Sprintf("pkg:%s/%s@%s", m.Ecosystem, m.Package.Name, m.Package.Version),
		Packages: make([]LockedPackage, 0, len(locked)),
	}
	for _, lp := range locked {
		plan.Packages = append(plan.Packages, *lp)
	}
	sort.Slice(plan.Packages, func(i, j int) bool {
		return plan.Packages[i].Name < plan.Packages[j].Name
	})
	return plan, nil
}

// pick locks the highest non-yanked version of name satisfying every
// requirement.
func (r *Resolver) pick(ctx context.Context, name string, requirements []string) (*LockedPackage, error) {
	constraints := make([]*semver.Constraints, len(requirements))
	for i, req := range requirements {
		c, err := manifests.ParseConstraint(req)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid requirement %q: %w", name, req, err)
		}
		constraints[i] = c
	}

	published, err := r.registry.Versions(ctx, name)
	if err != nil {
		return nil, err
	}

	var best *semver.Version
	var bestInfo VersionInfo
	for _, info := range published {
		if info.Yanked {
			continue
		}
		v, err := semver.NewVersion(info.Number)
		if err != nil {
			continue
		}
		ok := true
		for _, c := range constraints {
			if !c.Check(v) {
				ok = false
				break
			}
		}
		if ok && (best == nil || v.GreaterThan(best)) {
			best = v
			bestInfo = info
		}
	}
	if best == nil {
		return nil, &NoMatchError{Name: name, Requirements: requirements}
	}

	return &LockedPackage{
		Name:     name,
		Version:  bestInfo.Number,
		Checksum: bestInfo.Checksum,
		PURL:     r.registry.URLs().PURL(name, bestInfo.Number),
	}, nil
}

func satisfies(lp *LockedPackage, requirements []string) error {
	v, err := semver.NewVersion(lp.Version)
	if err != nil {
		return fmt.Errorf("%s: locked version %q: %w", lp.Name, lp.Version, err)
	}
	for _, req := range requirements {
		c, err := manifests.ParseConstraint(req)
		if err != nil {
			return fmt.Errorf("%s: invalid requirement %q: %w", lp.Name, req, err)
		}
		if !c.Check(v) {
			return &ConflictError{Name: lp.Name, Locked: lp.Version, Requirement: req}
		}
	}
	return nil
}
