package domain

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusDraft, StatusSent, true},
		{StatusDraft, StatusApproved, false},
		{StatusSent, StatusViewed, true},
		{StatusSent, StatusApproved, true},
		{StatusSent, StatusDeclined, true},
		{StatusSent, StatusExpired, true},
		{StatusSent, StatusConverted, false},
		{StatusViewed, StatusApproved, true},
		{StatusViewed, StatusDeclined, true},
		{StatusViewed, StatusExpired, true},
		{StatusViewed, StatusSent, false},
		{StatusApproved, StatusConverted, true},
		{StatusApproved, StatusDeclined, false},
		{StatusDeclined, StatusSent, false},
		{StatusConverted, StatusDraft, false},
		{StatusExpired, StatusSent, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []Status{StatusDeclined, StatusConverted, StatusExpired}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	open := []Status{StatusDraft, StatusSent, StatusViewed, StatusApproved}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestClientActionable(t *testing.T) {
	if !StatusSent.ClientActionable() || !StatusViewed.ClientActionable() {
		t.Fatal("sent and viewed quotes must be client actionable")
	}
	for _, s := range []Status{StatusDraft, StatusApproved, StatusDeclined, StatusConverted, StatusExpired} {
		if s.ClientActionable() {
			t.Errorf("expected %s not to be client actionable", s)
		}
	}
}

func TestValid(t *testing.T) {
	if Status("unknown").Valid() {
		t.Fatal("unknown status should not validate")
	}
	if !StatusDraft.Valid() {
		t.Fatal("draft should validate")
	}
}
