package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCookieDomain(t *testing.T) {
	cases := []struct {
		name      string
		local     bool
		custom    bool
		hostname  string
		want      string
		wantSet   bool
	}{
		{"local dev is host-only", true, false, "acme.localhost", "", false},
		{"custom domain is host-only", false, true, "custom.biz", "", false},
		{"base domain spans subdomains", false, false, "tenant.example.net", ".tenant.example.net", true},
		{"www stripped", false, false, "www.tenant.example.net", ".tenant.example.net", true},
		{"subdomain scoped beneath itself", false, false, "acme.tenant.example.net", ".acme.tenant.example.net", true},
		{"single label unset", false, false, "intranet", "", false},
		{"empty host unset", false, false, "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CookieDomain(tc.local, tc.custom, tc.hostname)
			assert.Equal(t, tc.wantSet, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
