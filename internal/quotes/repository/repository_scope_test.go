package repository

import (
	"strings"
	"testing"
)

func assertFragments(t *testing.T, query string, fragments []string) {
	t.Helper()
	lowered := strings.ToLower(query)
	for _, fragment := range fragments {
		if !strings.Contains(lowered, fragment) {
			t.Fatalf("expected query fragment %q to be present", fragment)
		}
	}
}

func TestGetQuoteQueryIsTenantScoped(t *testing.T) {
	assertFragments(t, GetQuoteQuery, []string{
		"from quotes",
		"where id = $1 and organization_id = $2",
	})
}

func TestListQuotesQueryIsTenantScoped(t *testing.T) {
	assertFragments(t, ListQuotesQuery, []string{
		"where organization_id = $1",
		"($2::text is null or status = $2)",
		"($3::uuid is null or client_id = $3)",
		"($4::text is null or quote_number ilike $4)",
		"limit $5 offset $6",
	})
}

func TestCountQuotesQueryMatchesListFilters(t *testing.T) {
	assertFragments(t, CountQuotesQuery, []string{
		"where organization_id = $1",
		"($2::text is null or status = $2)",
		"($3::uuid is null or client_id = $3)",
		"($4::text is null or quote_number ilike $4)",
	})
}

func TestItemQueriesAreTenantScoped(t *testing.T) {
	assertFragments(t, ListItemsQuery, []string{
		"from quote_items",
		"where quote_id = $1 and organization_id = $2",
	})
	assertFragments(t, GetItemQuery, []string{
		"where id = $1 and quote_id = $2 and organization_id = $3",
	})
}

func TestAuditQueriesAreTenantScoped(t *testing.T) {
	assertFragments(t, ListEventsQuery, []string{
		"from quote_events",
		"where quote_id = $1 and organization_id = $2",
	})
	assertFragments(t, ListCommentsQuery, []string{
		"from quote_comments",
		"where quote_id = $1 and organization_id = $2",
	})
}

// Status transitions are compare-and-set: the WHERE clause pins the
// expected current status so concurrent writers lose cleanly.
func TestLifecycleQueriesCompareAndSet(t *testing.T) {
	assertFragments(t, markSentQuery, []string{
		"set status = 'sent'",
		"and organization_id = $2 and status = 'draft'",
	})
	assertFragments(t, markApprovedQuery, []string{
		"set status = 'approved'",
		"status in ('sent', 'viewed')",
	})
	assertFragments(t, markDeclinedQuery, []string{
		"set status = 'declined'",
		"status in ('sent', 'viewed')",
	})
	assertFragments(t, markConvertedQuery, []string{
		"set status = 'converted'",
		"and organization_id = $2 and status = 'approved'",
	})
	assertFragments(t, markExpiredQuery, []string{
		"set status = 'expired'",
		"and organization_id = $2 and status in ('sent', 'viewed')",
	})
}

// The viewed transition is driven by the public token link, which has
// already proven access; there is no organization to scope by.
func TestMarkViewedQueryGuardsSentStatus(t *testing.T) {
	assertFragments(t, markViewedQuery, []string{
		"set status = 'viewed'",
		"where id = $1 and status = 'sent'",
	})
}

func TestTokenLookupHasNoTenantScope(t *testing.T) {
	lowered := strings.ToLower(getQuoteByTokenQuery)
	if !strings.Contains(lowered, "select quote_id from quote_access_tokens where token = $1") {
		t.Fatal("expected the quote lookup to resolve through the access token")
	}
	if strings.Contains(lowered, "organization_id =") {
		t.Fatal("token lookup must not require an organization; the token is the capability")
	}
}
