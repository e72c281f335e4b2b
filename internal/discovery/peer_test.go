package discovery

import "testing"

func TestPeer_String(t *testing.T) {
	peer := &Peer{
		Instance: "canplot-bench",
		Hostname: "bench.local.",
		IP:       "192.168.4.16",
		Port:     8080,
	}

	expected := "canplot canplot-bench (bench.local.) at 192.168.4.16:8080"
	if peer.String() != expected {
		t.Errorf("Peer.String() = %v, want %v", peer.String(), expected)
	}
}

func TestPeer_BaseURL(t *testing.T) {
	tests := []struct {
		name     string
		peer     *Peer
		expected string
	}{
		{
			name:     "IPv4",
			peer:     &Peer{IP: "192.168.4.16", Port: 8080},
			expected: "http://192.168.4.16:8080",
		},
		{
			name:     "IPv6 is bracketed",
			peer:     &Peer{IP: "fe80::1", Port: 80},
			expected: "http://[fe80::1]:80",
		},
		{
			name:     "TLS peer",
			peer:     &Peer{IP: "10.0.0.5", Port: 8443, Metadata: map[string]string{"tls": "true"}},
			expected: "https://10.0.0.5:8443",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.peer.BaseURL(); got != tt.expected {
				t.Errorf("Peer.BaseURL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPeer_GetMetadata(t *testing.T) {
	peer := &Peer{Metadata: map[string]string{"version": "1.0.0"}}

	if got := peer.GetMetadata("version"); got != "1.0.0" {
		t.Errorf("GetMetadata(version) = %q", got)
	}
	if got := peer.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q, want empty", got)
	}
	if got := (&Peer{}).GetMetadata("version"); got != "" {
		t.Errorf("GetMetadata on nil map = %q", got)
	}
}
