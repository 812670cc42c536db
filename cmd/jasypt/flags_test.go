package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"jasypt-go/internal/properties"
)

func TestParseDefines(t *testing.T) {
	tests := []struct {
		name    string
		defs    []string
		want    properties.Map
		wantErr bool
	}{
		{name: "none", want: properties.Map{}},
		{
			name: "several",
			defs: []string{"jasypt.encryptor.password=s3cret", "jasypt.encryptor.pool-size=4"},
			want: properties.Map{"jasypt.encryptor.password": "s3cret", "jasypt.encryptor.pool-size": "4"},
		},
		{
			name: "value containing equals",
			defs: []string{"jasypt.encryptor.private-key-string=MIIE==", "a="},
			want: properties.Map{"jasypt.encryptor.private-key-string": "MIIE==", "a": ""},
		},
		{
			name: "last wins",
			defs: []string{"k=1", "k=2"},
			want: properties.Map{"k": "2"},
		},
		{name: "missing equals", defs: []string{"jasypt.encryptor.password"}, wantErr: true},
		{name: "empty key", defs: []string{"=value"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDefines(tt.defs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDefines() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseDefines() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
