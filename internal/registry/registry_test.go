package registry

import (
	"testing"

	"github.com/simonhull/audiotag/internal/types"
)

// mockExtractor implements Extractor for testing.
type mockExtractor struct {
	name string
}

func (m *mockExtractor) Extract(path string) (*types.Tag, error) {
	return &types.Tag{Title: m.name, Time: types.UnknownTime}, nil
}

func TestRegisterAndGet(t *testing.T) {
	// Use a format that's unlikely to conflict with real registrations
	format := types.Format(999)
	Register(format, &mockExtractor{name: "test"})

	got := Get(format)
	if got == nil {
		t.Fatal("Get() returned nil for registered format")
	}

	tag, err := got.Extract("x")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if tag.Title != "test" {
		t.Errorf("Title = %q, want %q", tag.Title, "test")
	}
}

func TestGet_Unregistered(t *testing.T) {
	if got := Get(types.Format(998)); got != nil {
		t.Errorf("Get() = %v for unregistered format, want nil", got)
	}
}

func TestRegister_Overwrites(t *testing.T) {
	format := types.Format(997)
	Register(format, &mockExtractor{name: "first"})
	Register(format, &mockExtractor{name: "second"})

	mp, ok := Get(format).(*mockExtractor)
	if !ok {
		t.Fatal("Get() returned wrong extractor type")
	}
	if mp.name != "second" {
		t.Errorf("name = %q, want %q (should be overwritten)", mp.name, "second")
	}
}

func TestFormats(t *testing.T) {
	Register(types.FormatAIFF, &mockExtractor{name: "aiff"})
	found := false
	for _, f := range Formats() {
		if f == types.FormatAIFF {
			found = true
		}
		if f == types.FormatUnknown {
			t.Error("Formats() should never list FormatUnknown")
		}
	}
	if !found {
		t.Error("Formats() should list a registered format")
	}
}
