package properties

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnvNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want []string
	}{
		{key: "jasypt.encryptor.password", want: []string{"JASYPT_ENCRYPTOR_PASSWORD"}},
		{
			key:  "jasypt.encryptor.private-key-string",
			want: []string{"JASYPT_ENCRYPTOR_PRIVATEKEYSTRING", "JASYPT_ENCRYPTOR_PRIVATE_KEY_STRING"},
		},
		{
			key:  "jasypt.encryptor.key-obtention-iterations",
			want: []string{"JASYPT_ENCRYPTOR_KEYOBTENTIONITERATIONS", "JASYPT_ENCRYPTOR_KEY_OBTENTION_ITERATIONS"},
		},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, EnvNames(tt.key)); diff != "" {
			t.Errorf("EnvNames(%q) mismatch (-want +got):\n%s", tt.key, diff)
		}
	}
}

func TestEnv_Lookup(t *testing.T) {
	t.Parallel()

	vars := map[string]string{
		"JASYPT_ENCRYPTOR_PASSWORD":           "pw",
		"JASYPT_ENCRYPTOR_PRIVATE_KEY_STRING": "legacy",
		"JASYPT_ENCRYPTOR_POOLSIZE":           "4",
		"JASYPT_ENCRYPTOR_POOL_SIZE":          "8",
		"JASYPT_ENCRYPTOR_PRIVATE_KEY_FORMAT": "pem",
	}
	env := Env{LookupEnv: func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}}

	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{key: "jasypt.encryptor.password", want: "pw", wantOK: true},
		{key: "jasypt.encryptor.private-key-string", want: "legacy", wantOK: true},
		{key: "jasypt.encryptor.pool-size", want: "4", wantOK: true},
		{key: "jasypt.encryptor.private-key-format", want: "pem", wantOK: true},
		{key: "jasypt.encryptor.algorithm"},
	}
	for _, tt := range tests {
		got, ok := env.Lookup(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Lookup(%q) = %q, %v, want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEnv_DefaultsToProcessEnv(t *testing.T) {
	t.Setenv("JASYPT_TEST_PROCESSENV", "yes")

	got, ok := Env{}.Lookup("jasypt.test.process-env")
	if !ok || got != "yes" {
		t.Errorf("Lookup() = %q, %v, want %q, true", got, ok, "yes")
	}
}
