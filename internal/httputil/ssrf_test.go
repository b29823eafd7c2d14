package httputil

import (
	"errors"
	"net"
	"strings"
	"testing"
)

func TestValidateIP(t *testing.T) {
	tests := []struct {
		ip   string
		kind string
	}{
		{"10.0.0.1", "private"},
		{"172.16.0.1", "private"},
		{"192.168.255.255", "private"},
		{"127.0.0.1", "loopback"},
		{"::1", "loopback"},
		{"169.254.169.254", "link-local"},
		{"fe80::1", "link-local"},
		{"224.0.0.1", "multicast"},
		{"0.0.0.0", "unspecified"},
		{"93.184.216.34", ""},
		{"2606:2800:220:1:248:1893:25c8:1946", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			err := ValidateIP(net.ParseIP(tt.ip), tt.ip)
			if tt.kind == "" {
				if err != nil {
					t.Errorf("ValidateIP(%s) = %v, want nil", tt.ip, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateIP(%s) = nil, want %s error", tt.ip, tt.kind)
			}
			if !strings.Contains(err.Error(), tt.kind) {
				t.Errorf("ValidateIP(%s) = %v, want %q in message", tt.ip, err, tt.kind)
			}
		})
	}
}

func TestValidateHost(t *testing.T) {
	lookup := func(host string) ([]net.IP, error) {
		switch host {
		case "cdn.example.com":
			return []net.IP{net.ParseIP("93.184.216.34")}, nil
		case "rebind.example.com":
			return []net.IP{net.ParseIP("93.184.216.34"), net.ParseIP("10.1.2.3")}, nil
		default:
			return nil, errors.New("no such host")
		}
	}

	if err := ValidateHost("cdn.example.com", lookup); err != nil {
		t.Errorf("public host rejected: %v", err)
	}
	if err := ValidateHost("rebind.example.com", lookup); err == nil || !strings.Contains(err.Error(), "blocked IP") {
		t.Errorf("expected rebinding host to be refused, got %v", err)
	}
	if err := ValidateHost("missing.example.com", lookup); err == nil || !strings.Contains(err.Error(), "resolve") {
		t.Errorf("expected resolution failure, got %v", err)
	}
	if err := ValidateHost("127.0.0.1", lookup); err == nil {
		t.Error("expected literal loopback to be refused")
	}
}
