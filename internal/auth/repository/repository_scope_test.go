package repository

import (
	"strings"
	"testing"
)

func TestListMembersQueryIsTenantScoped(t *testing.T) {
	query := strings.ToLower(listMembersQuery)

	requiredFragments := []string{
		"from organization_members om",
		"join users u on u.id = om.user_id",
		"where om.organization_id = $1",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected tenant-scoped query fragment %q to be present", fragment)
		}
	}
}

func TestGetUserByEmailIsCaseInsensitive(t *testing.T) {
	query := strings.ToLower(getUserByEmailQuery)

	if !strings.Contains(query, "lower(email) = lower($1)") {
		t.Fatal("expected email lookup to be case insensitive")
	}
}
