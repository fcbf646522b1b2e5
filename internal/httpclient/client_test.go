package httpclient

import (
	"net/http"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	client := Default()
	if client == nil {
		t.Fatal("Expected client to not be nil")
	}
	if client.Timeout != DefaultTimeout {
		t.Errorf("Expected timeout to be %v, got %v", DefaultTimeout, client.Timeout)
	}
	if Default() != client {
		t.Errorf("Expected singleton client instance")
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient(5 * time.Second)
	if client.Timeout != 5*time.Second {
		t.Errorf("Expected timeout to be 5s, got %v", client.Timeout)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok || transport == nil {
		t.Fatalf("Expected transport to be *http.Transport")
	}
	if transport.MaxIdleConnsPerHost != MaxIdleConnsPerHost {
		t.Errorf("Expected MaxIdleConnsPerHost to be %d, got %d", MaxIdleConnsPerHost, transport.MaxIdleConnsPerHost)
	}
	if transport.TLSHandshakeTimeout != TLSHandshakeTimeout {
		t.Errorf("Expected TLSHandshakeTimeout to be %v, got %v", TLSHandshakeTimeout, transport.TLSHandshakeTimeout)
	}
	if transport.Proxy == nil {
		t.Errorf("Expected proxy from environment")
	}
}

func TestSetDefaultForTesting(t *testing.T) {
	custom := &http.Client{Timeout: time.Second}
	restore := SetDefaultForTesting(custom)
	if Default() != custom {
		t.Fatalf("override not applied")
	}
	restore()
	if Default() == custom {
		t.Fatalf("override not restored")
	}
}
