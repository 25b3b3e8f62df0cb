package manifests_test

import (
	"testing"

	manifests "github.com/git-pkgs/manifests"
	_ "github.com/git-pkgs/manifests/all"
)

func BenchmarkParse(b *testing.B) {
	data := []byte(pistonManifest)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := manifests.Parse("cargo", data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkActivate(b *testing.B) {
	m, err := manifests.Parse("cargo", []byte(pistonManifest))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.Activate([]string{"async", "webgl"}, true); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncode(b *testing.B) {
	m, err := manifests.Parse("cargo", []byte(pistonManifest))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := manifests.Encode(m); err != nil {
			b.Fatal(err)
		}
	}
}
