package properties

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMap(t *testing.T) {
	t.Parallel()

	m := Map{"b": "2", "a": "1", "empty": ""}

	if v, ok := m.Lookup("a"); !ok || v != "1" {
		t.Errorf("Lookup(a) = %q, %v", v, ok)
	}
	if v, ok := m.Lookup("empty"); !ok || v != "" {
		t.Errorf("Lookup(empty) = %q, %v, want present and empty", v, ok)
	}
	if _, ok := m.Lookup("missing"); ok {
		t.Error("Lookup(missing) reported present")
	}
	if diff := cmp.Diff([]string{"a", "b", "empty"}, m.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestChain(t *testing.T) {
	t.Parallel()

	env := Env{LookupEnv: func(name string) (string, bool) {
		if name == "FROM_ENV" {
			return "env", true
		}
		return "", false
	}}
	c := Chain{
		Map{"shared": "first", "only.first": "1"},
		nil,
		env,
		Map{"shared": "second", "only.second": "2"},
	}

	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{key: "shared", want: "first", wantOK: true},
		{key: "only.first", want: "1", wantOK: true},
		{key: "only.second", want: "2", wantOK: true},
		{key: "from.env", want: "env", wantOK: true},
		{key: "missing"},
	}
	for _, tt := range tests {
		got, ok := c.Lookup(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Lookup(%q) = %q, %v, want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}

	if diff := cmp.Diff([]string{"only.first", "only.second", "shared"}, c.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}
