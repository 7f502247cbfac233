package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/wudworks/fitquote/internal/models"
)

// LeadService covers the lead lifecycle, including conversion into a client.
type LeadService struct {
	DB *gorm.DB
}

func NewLeadService(db *gorm.DB) *LeadService { return &LeadService{DB: db} }

// Convert copies a lead's contact details into a new client and marks the
// lead converted, in one transaction. Converting twice is rejected.
func (s *LeadService) Convert(leadID uint) (*models.Client, error) {
	var client models.Client
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := tx.First(&lead, leadID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if lead.Status == models.LeadStatusConverted {
			return errors.New("lead already converted")
		}
		client = models.Client{Name: lead.Name, Email: lead.Email, Phone: lead.Phone}
		if err := tx.Create(&client).Error; err != nil {
			return err
		}
		return tx.Model(&lead).Update("status", models.LeadStatusConverted).Error
	})
	if err != nil {
		return nil, err
	}
	return &client, nil
}
