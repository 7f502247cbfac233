// Package draft holds the in-memory working copy of a package's sections.
// Mutations apply synchronously and optimistically: derived totals are
// recomputed and ranks repaired before the call returns, then a debounced
// flush of the whole snapshot is scheduled through the Scheduler.
package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wudworks/fitquote/internal/compute"
	"github.com/wudworks/fitquote/internal/models"
	"github.com/wudworks/fitquote/internal/ordering"
)

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrItemNotFound    = errors.New("work item not found")
)

// Items created in the draft before their first persist get identifiers in
// the temp range; Snapshot strips them so the store assigns real ids.
const tempIDBase uint = 1 << 31

// Draft is the working copy of one package's section tree. A single logical
// writer is assumed (concurrent editors overwrite each other at flush), but
// the mutex keeps mutations and the timer goroutine's snapshot reads safe.
type Draft struct {
	packageID uint
	sched     *Scheduler

	mu       sync.Mutex
	sections []models.Section
	editing  map[uint]bool // item id -> edit in progress
	nextTemp uint
}

// New seeds a draft from a loaded snapshot. sched may be nil for purely
// in-memory use (no persistence).
func New(packageID uint, sections []models.Section, sched *Scheduler) *Draft {
	d := &Draft{
		packageID: packageID,
		sections:  copySections(sections),
		editing:   make(map[uint]bool),
		nextTemp:  tempIDBase,
		sched:     sched,
	}
	for i := range d.sections {
		d.sections[i].Normalize()
		compute.Recalculate(&d.sections[i])
	}
	ordering.Renumber(d.sections, setSectionOrder)
	return d
}

// AddSection appends a named section of the given variant with the next
// rank. An unnamed section or an unknown variant is rejected before any
// state changes.
func (d *Draft) AddSection(name, typ string) (uint, error) {
	if name == "" {
		return 0, fmt.Errorf("section name required")
	}
	if !models.ValidSectionType(typ) {
		return 0, fmt.Errorf("invalid section type %q", typ)
	}
	d.mu.Lock()
	id := d.tempID()
	sec := models.Section{ID: id, PackageID: d.packageID, Name: name, Type: typ}
	d.sections = ordering.Append(d.sections, sec, setSectionOrder)
	d.mu.Unlock()
	d.scheduleFlush()
	return id, nil
}

// RenameSection changes a section's display name. The type is immutable
// after creation and has no corresponding mutation.
func (d *Draft) RenameSection(sectionID uint, name string) error {
	if name == "" {
		return fmt.Errorf("section name required")
	}
	d.mu.Lock()
	sec, err := d.section(sectionID)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	sec.Name = name
	d.mu.Unlock()
	d.scheduleFlush()
	return nil
}

// RemoveSection deletes a section and compacts the remaining ranks.
func (d *Draft) RemoveSection(sectionID uint) error {
	d.mu.Lock()
	idx := d.sectionIndex(sectionID)
	if idx < 0 {
		d.mu.Unlock()
		return ErrSectionNotFound
	}
	for _, it := range d.sections[idx].Items {
		delete(d.editing, it.ID)
	}
	d.sections = ordering.Remove(d.sections, idx, setSectionOrder)
	d.mu.Unlock()
	d.scheduleFlush()
	return nil
}

// MoveSectionUp swaps the section with its predecessor; no-op at the top.
func (d *Draft) MoveSectionUp(sectionID uint) bool {
	d.mu.Lock()
	moved := ordering.MoveUp(d.sections, d.sectionIndex(sectionID), setSectionOrder)
	d.mu.Unlock()
	if moved {
		d.scheduleFlush()
	}
	return moved
}

// MoveSectionDown swaps the section with its successor; no-op at the bottom.
func (d *Draft) MoveSectionDown(sectionID uint) bool {
	d.mu.Lock()
	moved := ordering.MoveDown(d.sections, d.sectionIndex(sectionID), setSectionOrder)
	d.mu.Unlock()
	if moved {
		d.scheduleFlush()
	}
	return moved
}

// AddItem appends an empty work item of the section's variant and marks it
// edit-in-progress.
func (d *Draft) AddItem(sectionID uint) (uint, error) {
	d.mu.Lock()
	sec, err := d.section(sectionID)
	if err != nil {
		d.mu.Unlock()
		return 0, err
	}
	id := d.tempID()
	item := models.WorkItem{ID: id, SectionID: sec.ID, Variant: sec.Type}
	sec.Items = ordering.Append(sec.Items, item, setItemOrder)
	d.editing[id] = true
	compute.Recalculate(sec)
	d.mu.Unlock()
	d.scheduleFlush()
	return id, nil
}

// UpdateItem overwrites the item's authored fields from in (only the arm
// matching the section's variant is read), recomputes derived fields and
// totals, and marks the item edit-in-progress.
func (d *Draft) UpdateItem(sectionID, itemID uint, in models.WorkItem) error {
	d.mu.Lock()
	sec, err := d.section(sectionID)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	idx := itemIndex(sec.Items, itemID)
	if idx < 0 {
		d.mu.Unlock()
		return ErrItemNotFound
	}
	it := &sec.Items[idx]
	switch sec.Type {
	case models.SectionTypeDescription:
		it.CarpentryWork = in.CarpentryWork
		it.Description = in.Description
		it.Size = in.Size
		it.Price = in.Price
	default:
		it.Item = in.Item
		it.Nos = in.Nos
		it.Width = in.Width
		it.Length = in.Length
		it.PricePerSqFt = in.PricePerSqFt
	}
	compute.Recalculate(sec)
	d.editing[itemID] = true
	d.mu.Unlock()
	d.scheduleFlush()
	return nil
}

// RemoveItem deletes a work item and compacts the section's serials.
func (d *Draft) RemoveItem(sectionID, itemID uint) error {
	d.mu.Lock()
	sec, err := d.section(sectionID)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	idx := itemIndex(sec.Items, itemID)
	if idx < 0 {
		d.mu.Unlock()
		return ErrItemNotFound
	}
	delete(d.editing, itemID)
	sec.Items = ordering.Remove(sec.Items, idx, setItemOrder)
	compute.Recalculate(sec)
	d.mu.Unlock()
	d.scheduleFlush()
	return nil
}

// MoveItemUp swaps the item with its predecessor; no-op at the top.
func (d *Draft) MoveItemUp(sectionID, itemID uint) bool {
	return d.moveItem(sectionID, itemID, ordering.MoveUp[models.WorkItem])
}

// MoveItemDown swaps the item with its successor; no-op at the bottom.
func (d *Draft) MoveItemDown(sectionID, itemID uint) bool {
	return d.moveItem(sectionID, itemID, ordering.MoveDown[models.WorkItem])
}

func (d *Draft) moveItem(sectionID, itemID uint, move func([]models.WorkItem, int, func(*models.WorkItem, int)) bool) bool {
	d.mu.Lock()
	sec, err := d.section(sectionID)
	if err != nil {
		d.mu.Unlock()
		return false
	}
	moved := move(sec.Items, itemIndex(sec.Items, itemID), setItemOrder)
	d.mu.Unlock()
	if moved {
		d.scheduleFlush()
	}
	return moved
}

// CommitItem forces an immediate flush of the whole snapshot and, on
// success, resolves only the committed item's edit-in-progress flag. Other
// items' pending state is untouched either way, and a failed flush leaves
// the flag set.
func (d *Draft) CommitItem(ctx context.Context, sectionID, itemID uint) error {
	d.mu.Lock()
	sec, err := d.section(sectionID)
	if err == nil && itemIndex(sec.Items, itemID) < 0 {
		err = ErrItemNotFound
	}
	d.mu.Unlock()
	if err != nil {
		return err
	}
	if d.sched != nil {
		if err := d.sched.FlushNow(ctx, d.packageID, d.Snapshot); err != nil {
			return err
		}
	}
	d.mu.Lock()
	d.editing[itemID] = false
	d.mu.Unlock()
	return nil
}

// Editing reports the item's edit-in-progress flag.
func (d *Draft) Editing(itemID uint) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.editing[itemID]
}

// SectionTotal returns the current total of one section.
func (d *Draft) SectionTotal(sectionID uint) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sec, err := d.section(sectionID)
	if err != nil {
		return 0, err
	}
	return compute.SectionTotal(*sec), nil
}

// PackageTotal returns the sum of all section totals.
func (d *Draft) PackageTotal() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return compute.PackageTotal(d.sections)
}

// Sections returns a deep copy of the working tree in rank order.
func (d *Draft) Sections() []models.Section {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copySections(d.sections)
}

// Snapshot is the flush payload: the full current collection with
// draft-local temp ids stripped so the store can assign real ones.
func (d *Draft) Snapshot() []models.Section {
	out := d.Sections()
	for i := range out {
		if out[i].ID >= tempIDBase {
			out[i].ID = 0
		}
		for j := range out[i].Items {
			if out[i].Items[j].ID >= tempIDBase {
				out[i].Items[j].ID = 0
			}
			if out[i].Items[j].SectionID >= tempIDBase {
				out[i].Items[j].SectionID = 0
			}
		}
	}
	return out
}

func (d *Draft) scheduleFlush() {
	if d.sched != nil {
		d.sched.ScheduleFlush(d.packageID, d.Snapshot)
	}
}

func (d *Draft) tempID() uint {
	d.nextTemp++
	return d.nextTemp
}

func (d *Draft) sectionIndex(id uint) int {
	for i := range d.sections {
		if d.sections[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Draft) section(id uint) (*models.Section, error) {
	idx := d.sectionIndex(id)
	if idx < 0 {
		return nil, ErrSectionNotFound
	}
	return &d.sections[idx], nil
}

func itemIndex(items []models.WorkItem, id uint) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func setSectionOrder(s *models.Section, order int) { s.Order = order }
func setItemOrder(w *models.WorkItem, order int)   { w.Order = order }

func copySections(in []models.Section) []models.Section {
	out := make([]models.Section, len(in))
	copy(out, in)
	for i := range out {
		items := make([]models.WorkItem, len(in[i].Items))
		copy(items, in[i].Items)
		out[i].Items = items
	}
	return out
}
