package repository

import (
	"strings"
	"testing"
)

func TestClientAndCompanyQueriesAreTenantScoped(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		fragment string
	}{
		{"get company", getCompanyQuery, "where id = $1 and organization_id = $2"},
		{"list companies", listCompaniesQuery, "where organization_id = $1"},
		{"get client", getClientQuery, "where id = $1 and organization_id = $2"},
		{"list clients", listClientsQuery, "where organization_id = $1"},
	}

	for _, tc := range cases {
		if !strings.Contains(strings.ToLower(tc.query), tc.fragment) {
			t.Fatalf("%s: expected tenant-scoped fragment %q", tc.name, tc.fragment)
		}
	}
}

func TestDeletionGuardCountsAreTenantScoped(t *testing.T) {
	if !strings.Contains(strings.ToLower(countClientQuotesQuery), "where client_id = $1 and organization_id = $2") {
		t.Fatal("expected the client quote count to be tenant scoped")
	}
	if !strings.Contains(strings.ToLower(countCompanyClientsQuery), "where company_id = $1 and organization_id = $2") {
		t.Fatal("expected the company client count to be tenant scoped")
	}
}
