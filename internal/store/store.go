// Package store defines the persistence boundary for package section
// snapshots. The contract is whole-collection in, whole-collection out:
// there is no server-side merge, so a save always replaces everything the
// package owns.
package store

import (
	"context"

	"github.com/wudworks/fitquote/internal/models"
)

// SectionStore loads and saves the full ordered section collection of a
// package. Implementations must treat SaveSections as a snapshot replace,
// never a partial patch.
type SectionStore interface {
	LoadSections(ctx context.Context, packageID uint) ([]models.Section, error)
	SaveSections(ctx context.Context, packageID uint, sections []models.Section) error
}
