package store

import (
	"context"
	"testing"
)

func TestExportRows_OneRowPerGuest(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	present := addGuest(t, s, "Jane Smith", hostPtr("Ann Lee"))
	departed := addGuest(t, s, "Bob Jones", hostPtr("Max Stone"))
	addGuest(t, s, "Sue Ann", nil) // never visited

	if _, err := s.InsertOpenEvent(ctx, present, "02:30:00 PM", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertClosedEvent(ctx, departed, "01:00:00 PM", "01:45:00 PM", nil, nil); err != nil {
		t.Fatal(err)
	}

	rows, err := s.ExportRows(ctx)
	if err != nil {
		t.Fatalf("ExportRows() failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	// Alphabetical: Bob Jones, Jane Smith, Sue Ann.
	bob, jane, sue := rows[0], rows[1], rows[2]

	if bob.GuestName != "Bob Jones" || bob.IsIn || bob.LastIn == nil || *bob.LastIn != "01:00:00 PM" || bob.LastOut == nil || *bob.LastOut != "01:45:00 PM" {
		t.Errorf("Bob Jones row = %+v", bob)
	}
	if jane.GuestName != "Jane Smith" || !jane.IsIn || jane.LastIn == nil || *jane.LastIn != "02:30:00 PM" || jane.LastOut != nil {
		t.Errorf("Jane Smith row = %+v", jane)
	}
	if sue.GuestName != "Sue Ann" || sue.IsIn || sue.LastIn != nil || sue.LastOut != nil {
		t.Errorf("Sue Ann row = %+v (never-visited guests must not read as present)", sue)
	}
}

func TestExportRows_EmptyStore(t *testing.T) {
	s := createTestStore(t)
	rows, err := s.ExportRows(context.Background())
	if err != nil {
		t.Fatalf("ExportRows() failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}
