package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"stockquote_backend/internal/quotes/repository"
	"stockquote_backend/internal/quotes/transport"
	"stockquote_backend/platform/apperr"
)

func assertNotFound(t *testing.T, err error, message string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found kind, got %v", apperr.GetKind(err))
	}
	if err.Error() != message {
		t.Fatalf("expected %q, got %q", message, err.Error())
	}
}

func publicStore(status string) *testStore {
	orgID := uuid.New()
	q := testQuote(orgID, uuid.New(), status)
	return &testStore{
		quote:   q,
		contact: &repository.ClientContact{ID: q.ClientID, Name: "Acme BV", Email: strPtr("buyer@acme.example")},
		orgName: "Warehouse Direct",
		token: &repository.AccessToken{
			Token:     "tok",
			QuoteID:   q.ID,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		},
	}
}

func TestGetPublicQuoteUnknownToken(t *testing.T) {
	svc, _ := newTestService(&testStore{})

	_, err := svc.GetPublicQuote(context.Background(), "no-such-token")
	assertNotFound(t, err, "Invalid or expired link")
}

func TestGetPublicQuoteExpiredToken(t *testing.T) {
	store := publicStore("sent")
	store.token.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	svc, _ := newTestService(store)

	_, err := svc.GetPublicQuote(context.Background(), "tok")
	assertNotFound(t, err, "This link has expired")
}

func TestGetPublicQuoteMarksViewedOnFirstOpen(t *testing.T) {
	store := publicStore("sent")
	store.viewedResult = true
	svc, bus := newTestService(store)

	resp, err := svc.GetPublicQuote(context.Background(), "tok")
	if err != nil {
		t.Fatalf("get public quote failed: %v", err)
	}
	if resp.Status != "viewed" {
		t.Fatalf("expected status viewed, got %q", resp.Status)
	}
	if !store.viewedCalled {
		t.Fatal("expected the viewed transition to be attempted")
	}
	if !bus.has("quotes.quote.viewed") {
		t.Fatalf("expected a viewed event, got %v", bus.names())
	}
}

func TestGetPublicQuoteHidesInternalComments(t *testing.T) {
	store := publicStore("viewed")
	store.comments = []repository.QuoteComment{
		{ID: uuid.New(), QuoteID: store.quote.ID, AuthorName: "rep", UserType: "team", IsInternal: true, Body: "margin is thin"},
		{ID: uuid.New(), QuoteID: store.quote.ID, AuthorName: "Client", UserType: "client", Body: "looks good"},
	}
	svc, _ := newTestService(store)

	resp, err := svc.GetPublicQuote(context.Background(), "tok")
	if err != nil {
		t.Fatalf("get public quote failed: %v", err)
	}
	if len(resp.Comments) != 1 {
		t.Fatalf("expected 1 visible comment, got %d", len(resp.Comments))
	}
	if resp.Comments[0].Body != "looks good" {
		t.Fatalf("internal comment leaked: %+v", resp.Comments)
	}
}

func TestApproveByTokenRejectsDecidedQuote(t *testing.T) {
	store := publicStore("approved")
	svc, _ := newTestService(store)

	_, err := svc.ApproveByToken(context.Background(), "tok", transport.PublicApproveRequest{})
	assertBadRequest(t, err, "This quote cannot be approved in its current state")
}

func TestApproveByTokenRecordsClientName(t *testing.T) {
	store := publicStore("viewed")
	svc, bus := newTestService(store)

	resp, err := svc.ApproveByToken(context.Background(), "tok", transport.PublicApproveRequest{
		Name:    "Jan Jansen",
		Comment: "please deliver before friday",
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if resp.Status != "approved" {
		t.Fatalf("expected status approved, got %q", resp.Status)
	}
	if store.approveParams == nil {
		t.Fatal("expected the repository approve to be called")
	}
	if store.approveParams.Event.UserName != "Jan Jansen" {
		t.Fatalf("expected the client name on the audit event, got %q", store.approveParams.Event.UserName)
	}
	if store.approveParams.Comment == nil || store.approveParams.Comment.Body != "please deliver before friday" {
		t.Fatalf("expected the approval comment to be recorded, got %+v", store.approveParams.Comment)
	}
	if !bus.has("quotes.quote.approved") {
		t.Fatalf("expected an approved event, got %v", bus.names())
	}
}

func TestDeclineByTokenReleasesStock(t *testing.T) {
	store := publicStore("sent")
	svc, bus := newTestService(store)

	resp, err := svc.DeclineByToken(context.Background(), "tok", transport.PublicDeclineRequest{
		Reason: "too expensive",
	})
	if err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if resp.Status != "declined" {
		t.Fatalf("expected status declined, got %q", resp.Status)
	}
	if store.declineRelease != "Quote declined by client" {
		t.Fatalf("expected the release reason to be recorded, got %q", store.declineRelease)
	}
	if store.declineParams.Comment == nil || store.declineParams.Comment.Body != "Declined: too expensive" {
		t.Fatalf("expected a decline comment, got %+v", store.declineParams.Comment)
	}
	if !bus.has("quotes.quote.declined") || !bus.has("inventory.stock.released") {
		t.Fatalf("expected declined and released events, got %v", bus.names())
	}
}

func TestCommentByTokenReachesTeam(t *testing.T) {
	store := publicStore("viewed")
	svc, bus := newTestService(store)

	resp, err := svc.CommentByToken(context.Background(), "tok", transport.PublicCommentRequest{
		Body: "can you include installation?",
	})
	if err != nil {
		t.Fatalf("comment failed: %v", err)
	}
	if resp.AuthorName != "Client" {
		t.Fatalf("expected anonymous client fallback name, got %q", resp.AuthorName)
	}
	if len(store.comments) != 1 {
		t.Fatalf("expected the comment to be stored, got %d", len(store.comments))
	}
	if !bus.has("quotes.quote.commented") {
		t.Fatalf("expected a commented event, got %v", bus.names())
	}
}
