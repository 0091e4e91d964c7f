package registry

import (
	"errors"
	"slices"
	"testing"
)

func TestRegistryCreate(t *testing.T) {
	r := New[string]()
	r.Register("echo", func(config map[string]string) (string, error) {
		return config["value"], nil
	})

	got, err := r.Create("echo", map[string]string{"value": "hi"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got != "hi" {
		t.Errorf("Create = %q, want %q", got, "hi")
	}

	if _, err := r.Create("missing", nil); !errors.Is(err, ErrUnknown) {
		t.Errorf("Create(missing) err = %v, want ErrUnknown", err)
	}
}

func TestRegistryListSorted(t *testing.T) {
	r := New[int]()
	for _, name := range []string{"say", "espeak", "powershell"} {
		r.Register(name, func(map[string]string) (int, error) { return 0, nil })
	}
	if got, want := r.List(), []string{"espeak", "powershell", "say"}; !slices.Equal(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
	if !r.Has("say") || r.Has("festival") {
		t.Error("Has reported wrong membership")
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := New[int]()
	f := func(map[string]string) (int, error) { return 0, nil }
	r.Register("x", f)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	r.Register("x", f)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name, goos string
		want       string
		wantErr    bool
	}{
		{"auto", "windows", "powershell", false},
		{"auto", "darwin", "say", false},
		{"", "linux", "espeak", false},
		{"say", "linux", "say", false},
		{"auto", "plan9", "", true},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.name, tt.goos)
		if (err != nil) != tt.wantErr {
			t.Errorf("Resolve(%q, %q) err = %v", tt.name, tt.goos, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.name, tt.goos, got, tt.want)
		}
	}
}
