package server

import (
	"context"
	"testing"
)

func TestAddr(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ":3000"},
		{"8080", ":8080"},
		{":9090", ":9090"},
		{"127.0.0.1:8080", "127.0.0.1:8080"},
		{" 7000 ", ":7000"},
	}
	for _, tc := range cases {
		if got := Addr(tc.in); got != tc.want {
			t.Fatalf("Addr(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestShutdownBeforeRun(t *testing.T) {
	var s Server
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown of idle server: %v", err)
	}
}
