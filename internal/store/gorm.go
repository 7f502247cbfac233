package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/wudworks/fitquote/internal/models"
)

// GormStore persists section snapshots relationally. A save deletes the
// package's current sections and items and reinserts the snapshot inside
// one transaction, which is the literal form of the replace contract.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{DB: db} }

func (s *GormStore) LoadSections(ctx context.Context, packageID uint) ([]models.Section, error) {
	var sections []models.Section
	err := s.DB.WithContext(ctx).
		Where("package_id = ?", packageID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		Order("sort_order asc").
		Find(&sections).Error
	if err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}
	for i := range sections {
		sections[i].Normalize()
	}
	return sections, nil
}

func (s *GormStore) SaveSections(ctx context.Context, packageID uint, sections []models.Section) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id IN (?)",
			tx.Model(&models.Section{}).Select("id").Where("package_id = ?", packageID),
		).Delete(&models.WorkItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("package_id = ?", packageID).Delete(&models.Section{}).Error; err != nil {
			return err
		}
		if len(sections) == 0 {
			return nil
		}
		for i := range sections {
			sections[i].PackageID = packageID
			sections[i].Normalize()
		}
		return tx.Create(&sections).Error
	})
	if err != nil {
		return fmt.Errorf("save sections: %w", err)
	}
	return nil
}
