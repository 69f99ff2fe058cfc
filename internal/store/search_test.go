package store

import (
	"context"
	"testing"
)

func seedSearchGuests(t *testing.T, s *Store) {
	t.Helper()
	addGuest(t, s, "John Doe", hostPtr("Ann Lee"))
	addGuest(t, s, "Jo Park", hostPtr("Ann Lee"))
	addGuest(t, s, "Bob Jo", hostPtr("Max Stone"))
}

func TestSearchGuests_EmptyQueryAlphabetical(t *testing.T) {
	s := createTestStore(t)
	seedSearchGuests(t, s)

	results, err := s.SearchGuests(context.Background(), "   ", 0)
	if err != nil {
		t.Fatalf("SearchGuests() failed: %v", err)
	}
	want := []string{"Bob Jo", "Jo Park", "John Doe"}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, name := range want {
		if results[i].DisplayName != name {
			t.Errorf("result[%d] = %q, want %q", i, results[i].DisplayName, name)
		}
	}
}

func TestSearchGuests_EmptyQueryHonorsLimit(t *testing.T) {
	s := createTestStore(t)
	seedSearchGuests(t, s)

	results, err := s.SearchGuests(context.Background(), "", 2)
	if err != nil {
		t.Fatalf("SearchGuests() failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}

func TestSearchGuests_PrefixMatch(t *testing.T) {
	s := createTestStore(t)
	seedSearchGuests(t, s)

	results, err := s.SearchGuests(context.Background(), "jo", 0)
	if err != nil {
		t.Fatalf("SearchGuests() failed: %v", err)
	}
	// All three names contain a token with prefix "jo".
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
}

func TestSearchGuests_MultiTokenAND(t *testing.T) {
	s := createTestStore(t)
	seedSearchGuests(t, s)

	results, err := s.SearchGuests(context.Background(), "jo do", 0)
	if err != nil {
		t.Fatalf("SearchGuests() failed: %v", err)
	}
	if len(results) != 1 || results[0].DisplayName != "John Doe" {
		t.Fatalf("got %+v, want only John Doe", results)
	}
}

func TestSearchGuests_SubstringFallback(t *testing.T) {
	s := createTestStore(t)
	seedSearchGuests(t, s)

	// "hn" is not a token prefix anywhere, but is a substring of "John Doe".
	results, err := s.SearchGuests(context.Background(), "hn", 0)
	if err != nil {
		t.Fatalf("SearchGuests() failed: %v", err)
	}
	if len(results) != 1 || results[0].DisplayName != "John Doe" {
		t.Fatalf("got %+v, want only John Doe via substring fallback", results)
	}
}

func TestSearchGuests_PunctuationOnlyQueryFallsBackToDefault(t *testing.T) {
	s := createTestStore(t)
	seedSearchGuests(t, s)

	results, err := s.SearchGuests(context.Background(), "!!! ???", 0)
	if err != nil {
		t.Fatalf("SearchGuests() failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want full default list", len(results))
	}
}

func TestSearchGuests_ReportsPresenceAndHistory(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	in := addGuest(t, s, "Jane Smith", nil)
	addGuest(t, s, "Sue Ann", nil)
	if _, err := s.InsertOpenEvent(ctx, in, "02:30:00 PM", nil); err != nil {
		t.Fatal(err)
	}

	results, err := s.SearchGuests(ctx, "", 0)
	if err != nil {
		t.Fatalf("SearchGuests() failed: %v", err)
	}
	byName := map[string]GuestResult{}
	for _, r := range results {
		byName[r.DisplayName] = r
	}
	if r := byName["Jane Smith"]; !r.IsCheckedIn || !r.HasHistory {
		t.Errorf("Jane Smith = %+v, want checked in with history", r)
	}
	if r := byName["Sue Ann"]; r.IsCheckedIn || r.HasHistory {
		t.Errorf("Sue Ann = %+v, want out with no history", r)
	}
}

func TestSearchGuests_IndexReflectsDeletes(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedSearchGuests(t, s)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.WipeGuests(ctx); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	results, err := s.SearchGuests(ctx, "jo", 0)
	if err != nil {
		t.Fatalf("SearchGuests() failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results after wipe, want 0", len(results))
	}
}

func TestSearchMembers_AggregatesAndOrders(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a1 := addGuest(t, s, "Guest One", hostPtr("Ann Lee"))
	addGuest(t, s, "Guest Two", hostPtr("Ann Lee"))
	addGuest(t, s, "Guest Three", hostPtr("Max Stone"))
	addGuest(t, s, "Guest Four", hostPtr("Max Stone"))
	addGuest(t, s, "Guest Five", hostPtr("Max Stone"))
	addGuest(t, s, "Hostless", nil)

	if _, err := s.InsertOpenEvent(ctx, a1, "02:30:00 PM", nil); err != nil {
		t.Fatal(err)
	}

	results, err := s.SearchMembers(ctx, "", 0)
	if err != nil {
		t.Fatalf("SearchMembers() failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d hosts, want 2 (hostless guests excluded)", len(results))
	}
	// Ann Lee has one present guest; Max Stone has none but more total.
	if results[0].MemberHost != "Ann Lee" || results[0].PresentGuests != 1 || results[0].TotalGuests != 2 {
		t.Errorf("results[0] = %+v, want Ann Lee 1/2", results[0])
	}
	if results[1].MemberHost != "Max Stone" || results[1].PresentGuests != 0 || results[1].TotalGuests != 3 {
		t.Errorf("results[1] = %+v, want Max Stone 0/3", results[1])
	}
}

func TestSearchMembers_TokensAreSubstringsANDed(t *testing.T) {
	s := createTestStore(t)
	addGuest(t, s, "Guest One", hostPtr("Ann Lee"))
	addGuest(t, s, "Guest Two", hostPtr("Annette Stone"))

	results, err := s.SearchMembers(context.Background(), "ann lee", 0)
	if err != nil {
		t.Fatalf("SearchMembers() failed: %v", err)
	}
	if len(results) != 1 || results[0].MemberHost != "Ann Lee" {
		t.Fatalf("got %+v, want only Ann Lee", results)
	}
}

func TestSearchMembers_HostileTokensBindAsParameters(t *testing.T) {
	s := createTestStore(t)
	addGuest(t, s, "Guest One", hostPtr("Ann Lee"))

	// Quote characters are stripped by tokenization; the remainder binds as
	// a parameter and simply matches nothing.
	results, err := s.SearchMembers(context.Background(), `x' OR '1'='1`, 0)
	if err != nil {
		t.Fatalf("SearchMembers() failed: %v", err)
	}
	for _, r := range results {
		if r.MemberHost == "Ann Lee" {
			t.Error("injection-shaped query matched an unrelated host")
		}
	}
}

func TestGuestsForMember(t *testing.T) {
	s := createTestStore(t)
	addGuest(t, s, "Zed Quill", hostPtr("Ann Lee"))
	addGuest(t, s, "Amy Field", hostPtr("ANN LEE"))
	addGuest(t, s, "Other Guest", hostPtr("Max Stone"))

	results, err := s.GuestsForMember(context.Background(), "ann lee")
	if err != nil {
		t.Fatalf("GuestsForMember() failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d guests, want 2", len(results))
	}
	if results[0].DisplayName != "Amy Field" || results[1].DisplayName != "Zed Quill" {
		t.Errorf("results not alphabetical: %+v", results)
	}

	empty, err := s.GuestsForMember(context.Background(), "   ")
	if err != nil {
		t.Fatalf("GuestsForMember(blank) failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("blank host returned %d guests, want 0", len(empty))
	}
}

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"John  Doe", []string{"john", "doe"}},
		{"O'Brien-42", []string{"obrien42"}},
		{"  ", nil},
		{"!!!", nil},
	}
	for _, tc := range cases {
		got := tokenize(tc.in)
		if len(got) != len(tc.want) {
			t.Errorf("tokenize(%q) = %v, want %v", tc.in, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("tokenize(%q)[%d] = %q, want %q", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}

func TestClampLimit(t *testing.T) {
	if got := clampLimit(0, MaxGuestSearchLimit); got != DefaultSearchLimit {
		t.Errorf("clampLimit(0) = %d, want default %d", got, DefaultSearchLimit)
	}
	if got := clampLimit(500, MaxGuestSearchLimit); got != MaxGuestSearchLimit {
		t.Errorf("clampLimit(500) = %d, want max %d", got, MaxGuestSearchLimit)
	}
	if got := clampLimit(7, MaxGuestSearchLimit); got != 7 {
		t.Errorf("clampLimit(7) = %d, want 7", got)
	}
}
