package cargo

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/git-pkgs/manifests/internal/core"
)

// Encode renders the manifest as canonical Cargo.toml text: fixed identity
// field order, sorted feature and dependency tables, bare version strings for
// default-shaped requirements. Encoding then re-parsing yields an identical
// record.
func (f *Format) Encode(m *core.Manifest) ([]byte, error) {
	if m.Package.Name == "" {
		return nil, &core.ValidationError{Field: "package.name", Reason: "must not be empty"}
	}

	var b bytes.Buffer
	b.WriteString("[package]\n")
	writeString(&b, "name", m.Package.Name)
	writeString(&b, "version", m.Package.Version)
	writeString(&b, "edition", m.Package.Edition)
	writeStrings(&b, "authors", m.Package.Authors)
	writeStrings(&b, "keywords", m.Package.Keywords)
	writeString(&b, "description", m.Package.Description)
	writeString(&b, "license", m.Package.License)
	writeString(&b, "repository", m.Package.Repository)
	writeString(&b, "homepage", m.Package.Homepage)
	writeString(&b, "documentation", m.Package.Documentation)
	writeString(&b, "readme", m.Package.Readme)
	writeStrings(&b, "exclude", m.Package.Exclude)

	if m.Features != nil {
		b.WriteString("\n[features]\n")
		for _, name := range sortedKeys(m.Features) {
			fmt.Fprintf(&b, "%s = %s\n", tomlKey(name), tomlArray(m.Features[name]))
		}
	}

	writeDeps(&b, "dependencies", m.Dependencies)
	writeDeps(&b, "dev-dependencies", m.DevDependencies)
	writeDeps(&b, "build-dependencies", m.BuildDependencies)

	return b.Bytes(), nil
}

func writeDeps(b *bytes.Buffer, section string, deps map[string]core.Requirement) {
	if deps == nil {
		return
	}
	fmt.Fprintf(b, "\n[%s]\n", section)

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		req := deps[name]
		if !req.Optional && req.DefaultFeatures && len(req.Features) == 0 {
			fmt.Fprintf(b, "%s = %s\n", tomlKey(name), strconv.Quote(req.Constraint))
			continue
		}

		parts := []string{"version = " + strconv.Quote(req.Constraint)}
		if req.Optional {
			parts = append(parts, "optional = true")
		}
		if !req.DefaultFeatures {
			parts = append(parts, "default-features = false")
		}
		if len(req.Features) > 0 {
			parts = append(parts, "features = "+tomlArray(req.Features))
		}
		fmt.Fprintf(b, "%s = { %s }\n", tomlKey(name), strings.Join(parts, ", "))
	}
}

func writeString(b *bytes.Buffer, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s = %s\n", key, strconv.Quote(value))
}

func writeStrings(b *bytes.Buffer, key string, values []string) {
	if values == nil {
		return
	}
	fmt.Fprintf(b, "%s = %s\n", key, tomlArray(values))
}

func tomlArray(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// tomlKey quotes table keys that are not bare-safe.
func tomlKey(name string) string {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return strconv.Quote(name)
		}
	}
	if name == "" {
		return `""`
	}
	return name
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
