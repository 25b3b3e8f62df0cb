package cargo

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestEncodeRoundTrip(t *testing.T) {
	m := parseTestdata(t)

	encoded, err := New().Encode(m)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	reparsed, err := New().Parse(encoded)
	if err != nil {
		t.Fatalf("re-parsing encoded manifest: %v\n%s", err, encoded)
	}

	if !reflect.DeepEqual(m, reparsed) {
		t.Errorf("round trip changed the record\noriginal: %+v\nreparsed: %+v", m, reparsed)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	m := parseTestdata(t)

	first, err := New().Encode(m)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	second, err := New().Encode(m)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Encode is not deterministic")
	}
}

func TestEncodeCanonicalForms(t *testing.T) {
	m := parseTestdata(t)

	encoded, err := New().Encode(m)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	text := string(encoded)

	// default-shaped requirements collapse to bare strings
	if !strings.Contains(text, "bitflags = \"1.0\"\n") {
		t.Errorf("expected bare string for bitflags, got:\n%s", text)
	}
	// non-default requirements keep the table form
	if !strings.Contains(text, `tokio = { version = "1.0", optional = true, default-features = false }`) {
		t.Errorf("expected table form for tokio, got:\n%s", text)
	}
	if !strings.Contains(text, `serde = { version = "1.0", features = ["derive"] }`) {
		t.Errorf("expected features list for serde, got:\n%s", text)
	}
	// empty feature effect lists survive verbatim
	if !strings.Contains(text, "webgl = []\n") {
		t.Errorf("expected empty webgl feature, got:\n%s", text)
	}
}

func TestEncodeRequiresName(t *testing.T) {
	m := parseTestdata(t)
	m.Package.Name = ""

	if _, err := New().Encode(m); err == nil {
		t.Fatal("expected error for manifest without a name")
	}
}
