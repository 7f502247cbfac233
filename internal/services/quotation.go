package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/wudworks/fitquote/internal/models"
)

var ErrNotFound = errors.New("not found")

// QuotationService owns quotation commercial terms. It never re-prices the
// referenced package; the document path reads the package's live sections
// at render time instead.
type QuotationService struct {
	DB *gorm.DB
}

func NewQuotationService(db *gorm.DB) *QuotationService { return &QuotationService{DB: db} }

type QuotationInput struct {
	PackageID   uint      `json:"packageId"`
	ClientID    uint      `json:"clientId"`
	Amount      float64   `json:"amount"`
	Discount    float64   `json:"discount"`
	Area        float64   `json:"area"`
	ValidFrom   time.Time `json:"validFrom"`
	ValidTo     time.Time `json:"validTo"`
	SalesPerson string    `json:"salesPerson"`
	ProjectCode string    `json:"projectCode"`
}

// QuotationPatch updates commercial terms only. Nil fields are left alone.
// DiscountedPrice is re-derived iff amount or discount is present in the
// patch; other field changes leave it untouched. The derivation is not
// clamped at zero on this path.
type QuotationPatch struct {
	Amount      *float64   `json:"amount"`
	Discount    *float64   `json:"discount"`
	Area        *float64   `json:"area"`
	ValidFrom   *time.Time `json:"validFrom"`
	ValidTo     *time.Time `json:"validTo"`
	SalesPerson *string    `json:"salesPerson"`
	ProjectCode *string    `json:"projectCode"`
}

// Create verifies the referenced package and client exist, derives
// discountedPrice, and inserts the quotation.
func (s *QuotationService) Create(in QuotationInput) (*models.Quotation, error) {
	var pkg models.Package
	if err := s.DB.Select("id").First(&pkg, in.PackageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var client models.Client
	if err := s.DB.Select("id").First(&client, in.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	q := models.Quotation{
		PackageID:       in.PackageID,
		ClientID:        in.ClientID,
		Amount:          in.Amount,
		Discount:        in.Discount,
		DiscountedPrice: in.Amount - in.Discount,
		Area:            in.Area,
		ValidFrom:       in.ValidFrom,
		ValidTo:         in.ValidTo,
		SalesPerson:     in.SalesPerson,
		ProjectCode:     in.ProjectCode,
	}
	if err := s.DB.Create(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// Get loads a quotation with its package and client summaries joined.
func (s *QuotationService) Get(id uint) (*models.Quotation, error) {
	var q models.Quotation
	err := s.DB.Preload("Package").Preload("Client").First(&q, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// List returns quotations newest first with client summaries.
func (s *QuotationService) List() ([]models.Quotation, error) {
	var qs []models.Quotation
	if err := s.DB.Preload("Client").Order("id desc").Find(&qs).Error; err != nil {
		return nil, err
	}
	return qs, nil
}

// Update applies a terms patch and persists the result.
func (s *QuotationService) Update(id uint, patch QuotationPatch) (*models.Quotation, error) {
	var q models.Quotation
	if err := s.DB.First(&q, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if patch.Amount != nil {
		q.Amount = *patch.Amount
	}
	if patch.Discount != nil {
		q.Discount = *patch.Discount
	}
	if patch.Amount != nil || patch.Discount != nil {
		q.DiscountedPrice = q.Amount - q.Discount
	}
	if patch.Area != nil {
		q.Area = *patch.Area
	}
	if patch.ValidFrom != nil {
		q.ValidFrom = *patch.ValidFrom
	}
	if patch.ValidTo != nil {
		q.ValidTo = *patch.ValidTo
	}
	if patch.SalesPerson != nil {
		q.SalesPerson = *patch.SalesPerson
	}
	if patch.ProjectCode != nil {
		q.ProjectCode = *patch.ProjectCode
	}
	if err := s.DB.Save(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// Delete removes a quotation.
func (s *QuotationService) Delete(id uint) error {
	res := s.DB.Delete(&models.Quotation{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
