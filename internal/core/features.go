package core

import (
	"sort"
	"strings"
)

// DepActivation records how a dependency ends up enabled after feature
// activation.
type DepActivation struct {
	Enabled         bool
	DefaultFeatures bool
	Features        []string
}

// Activation is the transitive result of enabling a set of features: the
// closed set of named features plus the per-dependency effects.
type Activation struct {
	Features     []string
	Dependencies map[string]DepActivation
}

// Enabled reports whether a dependency is active under this activation.
func (a *Activation) Enabled(dep string) bool {
	return a.Dependencies[dep].Enabled
}

type depState struct {
	defaultFeatures bool
	features        map[string]bool
}

func newDepState(req Requirement) *depState {
	st := &depState{defaultFeatures: req.DefaultFeatures, features: make(map[string]bool)}
	for _, f := range req.Features {
		st.features[f] = true
	}
	return st
}

// Activate computes the transitive closure of enabling the given features.
//
// Feature effects follow manifest syntax: a plain name enables another
// declared feature, or failing that an optional dependency of that name;
// "dep/feat" enables the dependency and one of its features; "dep?/feat"
// enables the feature only on dependencies that end up enabled anyway;
// "dep:name" enables an optional dependency without treating it as a feature.
//
// Non-optional runtime dependencies are always part of the result. When
// withDefaults is set and the manifest declares a "default" feature, it is
// activated as well. Names that resolve to neither a feature nor a dependency
// yield an UnknownFeatureError.
func (m *Manifest) Activate(features []string, withDefaults bool) (*Activation, error) {
	enabled := make(map[string]bool)
	deps := make(map[string]*depState)

	type weakEffect struct {
		dep, feat string
	}
	var weaks []weakEffect

	for name, req := range m.Dependencies {
		if !req.Optional {
			deps[name] = newDepState(req)
		}
	}

	enableDep := func(name string) error {
		req, ok := m.Requirement(name)
		if !ok {
			return &UnknownFeatureError{Name: name}
		}
		if deps[name] == nil {
			deps[name] = newDepState(req)
		}
		return nil
	}

	var apply func(name string) error
	apply = func(name string) error {
		effects, declared := m.Features[name]
		if !declared {
			// implicit feature created by an optional dependency
			return enableDep(name)
		}
		if enabled[name] {
			return nil
		}
		enabled[name] = true

		for _, effect := range effects {
			switch {
			case strings.Contains(effect, "?/"):
				i := strings.Index(effect, "?/")
				weaks = append(weaks, weakEffect{dep: effect[:i], feat: effect[i+2:]})
			case strings.Contains(effect, "/"):
				i := strings.Index(effect, "/")
				dep, feat := effect[:i], effect[i+1:]
				if err := enableDep(dep); err != nil {
					return err
				}
				deps[dep].features[feat] = true
			case strings.HasPrefix(effect, "dep:"):
				if err := enableDep(strings.TrimPrefix(effect, "dep:")); err != nil {
					return err
				}
			default:
				if err := apply(effect); err != nil {
					return err
				}
			}
		}
		return nil
	}

	seed := features
	if withDefaults {
		if _, ok := m.Features["default"]; ok {
			seed = append([]string{"default"}, features...)
		}
	}
	for _, name := range seed {
		if err := apply(name); err != nil {
			return nil, err
		}
	}

	// Weak effects only touch dependencies something else enabled.
	for _, w := range weaks {
		if st := deps[w.dep]; st != nil {
			st.features[w.feat] = true
		}
	}

	act := &Activation{
		Features:     make([]string, 0, len(enabled)),
		Dependencies: make(map[string]DepActivation, len(deps)),
	}
	for name := range enabled {
		act.Features = append(act.Features, name)
	}
	sort.Strings(act.Features)

	for name, st := range deps {
		da := DepActivation{Enabled: true, DefaultFeatures: st.defaultFeatures}
		for f := range st.features {
			da.Features = append(da.Features, f)
		}
		sort.Strings(da.Features)
		act.Dependencies[name] = da
	}
	return act, nil
}
