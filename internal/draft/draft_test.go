package draft

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wudworks/fitquote/internal/models"
)

func seedSections() []models.Section {
	return []models.Section{
		{
			ID: 1, PackageID: 10, Name: "Living Room", Type: models.SectionTypeSquareNet, Order: 1,
			Items: []models.WorkItem{
				{ID: 11, Item: "TV unit", Nos: 2, Width: 3, Length: 4, PricePerSqFt: 50, Order: 1},
			},
		},
		{
			ID: 2, PackageID: 10, Name: "Kitchen", Type: models.SectionTypeDescription, Order: 2,
			Items: []models.WorkItem{
				{ID: 21, CarpentryWork: "Chimney ducting", Price: 300, Order: 1},
			},
		},
	}
}

func TestNewRecalculatesSeed(t *testing.T) {
	d := New(10, seedSections(), nil)
	total, err := d.SectionTotal(1)
	if err != nil {
		t.Fatalf("SectionTotal: %v", err)
	}
	if total != 1200 {
		t.Fatalf("section total = %v, want 1200", total)
	}
	if got := d.PackageTotal(); got != 1500 {
		t.Fatalf("package total = %v, want 1500", got)
	}
	secs := d.Sections()
	if secs[0].Items[0].SqFt != 24 || secs[0].Items[0].Total != 1200 {
		t.Fatalf("derived fields not computed on seed: %+v", secs[0].Items[0])
	}
}

func TestAddSectionValidation(t *testing.T) {
	d := New(10, nil, nil)
	if _, err := d.AddSection("", models.SectionTypeSquareNet); err == nil {
		t.Fatal("unnamed section must be rejected")
	}
	if _, err := d.AddSection("Bedroom", "lumpSum"); err == nil {
		t.Fatal("unknown section type must be rejected")
	}
	if got := len(d.Sections()); got != 0 {
		t.Fatalf("rejected mutations leaked state: %d sections", got)
	}
}

func TestAddSectionAppendsWithNextRank(t *testing.T) {
	d := New(10, seedSections(), nil)
	id, err := d.AddSection("Bedroom", models.SectionTypeSquareNet)
	if err != nil {
		t.Fatalf("AddSection: %v", err)
	}
	secs := d.Sections()
	if len(secs) != 3 || secs[2].ID != id || secs[2].Order != 3 {
		t.Fatalf("appended section misplaced: %+v", secs)
	}
}

func TestUpdateItemRecomputesDerivedFields(t *testing.T) {
	d := New(10, seedSections(), nil)
	err := d.UpdateItem(1, 11, models.WorkItem{Item: "TV unit", Nos: 1, Width: 5, Length: 2, PricePerSqFt: 10})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	secs := d.Sections()
	it := secs[0].Items[0]
	if it.SqFt != 10 || it.Total != 100 {
		t.Fatalf("derived fields = (%v, %v), want (10, 100)", it.SqFt, it.Total)
	}
	if !d.Editing(11) {
		t.Fatal("updated item should be marked edit-in-progress")
	}
	if got := d.PackageTotal(); got != 400 {
		t.Fatalf("package total = %v, want 400", got)
	}
}

func TestUpdateItemReadsOnlyActiveVariant(t *testing.T) {
	d := New(10, seedSections(), nil)
	// Section 2 is description; squareNet fields in the input are ignored.
	err := d.UpdateItem(2, 21, models.WorkItem{CarpentryWork: "Loft", Price: 450, Nos: 9, PricePerSqFt: 999})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	it := d.Sections()[1].Items[0]
	if it.CarpentryWork != "Loft" || it.Price != 450 {
		t.Fatalf("description fields not applied: %+v", it)
	}
	if it.Nos != 0 || it.PricePerSqFt != 0 {
		t.Fatalf("foreign variant fields leaked in: %+v", it)
	}
}

func TestRemoveItemReindexes(t *testing.T) {
	d := New(10, seedSections(), nil)
	for _, name := range []string{"shelf", "loft"} {
		id, err := d.AddItem(1)
		if err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		if err := d.UpdateItem(1, id, models.WorkItem{Item: name, Nos: 1, Width: 1, Length: 1, PricePerSqFt: 10}); err != nil {
			t.Fatalf("UpdateItem: %v", err)
		}
	}
	secs := d.Sections()
	if len(secs[0].Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(secs[0].Items))
	}
	// Delete the 2nd of 3; survivors must be at orders 1 and 2.
	if err := d.RemoveItem(1, secs[0].Items[1].ID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	items := d.Sections()[0].Items
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Order != 1 || items[1].Order != 2 {
		t.Fatalf("orders = (%d, %d), want (1, 2)", items[0].Order, items[1].Order)
	}
	if items[0].Item != "TV unit" || items[1].Item != "loft" {
		t.Fatalf("wrong survivors: %q, %q", items[0].Item, items[1].Item)
	}
}

func TestMoveItemRoundTrip(t *testing.T) {
	d := New(10, seedSections(), nil)
	id, err := d.AddItem(1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	before := d.Sections()[0].Items
	if !d.MoveItemUp(1, id) {
		t.Fatal("MoveItemUp reported no-op")
	}
	if !d.MoveItemDown(1, id) {
		t.Fatal("MoveItemDown reported no-op")
	}
	after := d.Sections()[0].Items
	for i := range before {
		if before[i].ID != after[i].ID || before[i].Order != after[i].Order {
			t.Fatalf("round trip did not restore order: %+v vs %+v", before, after)
		}
	}
}

func TestMoveItemBoundary(t *testing.T) {
	d := New(10, seedSections(), nil)
	if d.MoveItemUp(1, 11) {
		t.Fatal("first item cannot move up")
	}
	if d.MoveItemDown(1, 11) {
		t.Fatal("only item cannot move down")
	}
}

func TestMoveSection(t *testing.T) {
	d := New(10, seedSections(), nil)
	if d.MoveSectionUp(1) {
		t.Fatal("first section cannot move up")
	}
	if !d.MoveSectionDown(1) {
		t.Fatal("MoveSectionDown reported no-op")
	}
	secs := d.Sections()
	if secs[0].ID != 2 || secs[0].Order != 1 || secs[1].ID != 1 || secs[1].Order != 2 {
		t.Fatalf("sections after move: %+v", secs)
	}
}

func TestCommitItemResolvesOnlyThatItem(t *testing.T) {
	st := newRecordingStore()
	s := NewScheduler(st, time.Hour, nil)
	defer s.Close()
	d := New(10, seedSections(), s)

	if err := d.UpdateItem(1, 11, models.WorkItem{Item: "TV unit", Nos: 2, Width: 3, Length: 4, PricePerSqFt: 50}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if err := d.UpdateItem(2, 21, models.WorkItem{CarpentryWork: "Chimney ducting", Price: 300}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	if err := d.CommitItem(context.Background(), 1, 11); err != nil {
		t.Fatalf("CommitItem: %v", err)
	}
	if d.Editing(11) {
		t.Fatal("committed item still marked edit-in-progress")
	}
	if !d.Editing(21) {
		t.Fatal("commit must not resolve other items' pending state")
	}
	if got := st.saveCount(); got != 1 {
		t.Fatalf("saves = %d, want 1", got)
	}
	<-st.saved
}

func TestCommitItemFailureKeepsFlag(t *testing.T) {
	st := newRecordingStore()
	st.fail(errors.New("disk full"))
	s := NewScheduler(st, time.Hour, nil)
	defer s.Close()
	d := New(10, seedSections(), s)

	if err := d.UpdateItem(1, 11, models.WorkItem{Item: "x", Nos: 1, Width: 1, Length: 1, PricePerSqFt: 1}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if err := d.CommitItem(context.Background(), 1, 11); err == nil {
		t.Fatal("CommitItem should surface the flush error")
	}
	if !d.Editing(11) {
		t.Fatal("failed commit must leave the edit flag set")
	}
	<-st.saved
}

func TestSnapshotStripsTempIDs(t *testing.T) {
	d := New(10, seedSections(), nil)
	secID, err := d.AddSection("Bedroom", models.SectionTypeSquareNet)
	if err != nil {
		t.Fatalf("AddSection: %v", err)
	}
	itemID, err := d.AddItem(secID)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if secID < tempIDBase || itemID < tempIDBase {
		t.Fatalf("draft-local ids not in temp range: %d, %d", secID, itemID)
	}
	snap := d.Snapshot()
	if snap[2].ID != 0 {
		t.Fatalf("new section kept temp id %d in snapshot", snap[2].ID)
	}
	if snap[2].Items[0].ID != 0 || snap[2].Items[0].SectionID != 0 {
		t.Fatalf("new item kept temp ids in snapshot: %+v", snap[2].Items[0])
	}
	// Persisted ids survive.
	if snap[0].ID != 1 || snap[0].Items[0].ID != 11 {
		t.Fatalf("real ids stripped from snapshot: %+v", snap[0])
	}
}

func TestDraftErrors(t *testing.T) {
	d := New(10, seedSections(), nil)
	if err := d.RenameSection(99, "x"); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("RenameSection err = %v, want ErrSectionNotFound", err)
	}
	if err := d.RemoveItem(1, 99); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("RemoveItem err = %v, want ErrItemNotFound", err)
	}
	if err := d.CommitItem(context.Background(), 99, 1); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("CommitItem err = %v, want ErrSectionNotFound", err)
	}
}
