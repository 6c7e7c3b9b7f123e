package main

import "testing"

func TestHealthURL(t *testing.T) {
	cases := []struct {
		name string
		addr string
		want string
	}{
		{"unset defaults", "", "http://localhost:8080/healthz"},
		{"bare port", ":9090", "http://localhost:9090/healthz"},
		{"wildcard host", "0.0.0.0:8080", "http://0.0.0.0:8080/healthz"},
		{"named host", "bot.internal:8081", "http://bot.internal:8081/healthz"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := healthURL(tc.addr); got != tc.want {
				t.Errorf("healthURL(%q) = %q, want %q", tc.addr, got, tc.want)
			}
		})
	}
}
