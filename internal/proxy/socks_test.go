package proxy

import (
	"net/http"
	"testing"
)

func TestDirectClient(t *testing.T) {
	c, err := NewClient("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Transport != nil {
		t.Fatalf("direct client should use the default transport")
	}
}

func TestSocksClient(t *testing.T) {
	c, err := NewClient("127.0.0.1:1080")
	if err != nil {
		t.Fatal(err)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok || tr.DialContext == nil {
		t.Fatalf("expected a SOCKS transport, got %T", c.Transport)
	}
}
