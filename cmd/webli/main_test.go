package main

import (
	"testing"

	"github.com/MINAqwq/LibWebli/internal/config"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    map[string]string
		wantErr bool
	}{
		{"none", nil, map[string]string{}, false},
		{"single", []string{"Token: $1234%"}, map[string]string{"Token": "$1234%"}, false},
		{"colon in value", []string{"X-Time: 12:30"}, map[string]string{"X-Time": "12:30"}, false},
		{"empty value", []string{"X-Empty:"}, map[string]string{"X-Empty": ""}, false},
		{"missing colon", []string{"Token"}, nil, true},
		{"empty key", []string{": v"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHeaders(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHeaders() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Errorf("parseHeaders() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got.Get(k) != v {
					t.Errorf("header %q = %q, want %q", k, got.Get(k), v)
				}
			}
		})
	}
}

func TestApplyServeFlags(t *testing.T) {
	if err := serveCmd.Flags().Parse([]string{"--port", "9443", "--storage", "./www", "--mdns"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	f := config.Default()
	f.Server.Host = "127.0.0.1"
	applyServeFlags(serveCmd, f)

	if f.Server.Port != 9443 {
		t.Errorf("Server.Port = %d, want 9443", f.Server.Port)
	}
	if f.Storage.Root != "./www" {
		t.Errorf("Storage.Root = %q, want ./www", f.Storage.Root)
	}
	if !f.MDNS.Enabled {
		t.Error("MDNS.Enabled should be set by --mdns")
	}
	// Unset flags keep the loaded value.
	if f.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", f.Server.Host)
	}
}
