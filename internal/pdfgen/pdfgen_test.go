package pdfgen

import (
	"bytes"
	"testing"

	"github.com/wudworks/fitquote/internal/models"
)

func sampleData() Data {
	return Data{
		Title:           "Quotation",
		ClientName:      "Asha Rao",
		ProjectName:     "Lakeview 402",
		PackageName:     "2BHK Premium",
		Area:            24,
		Amount:          10000,
		Discount:        1500,
		DiscountedPrice: 8500,
		ValidFrom:       "01 Mar 2026",
		ValidTo:         "31 Mar 2026",
		SalesPerson:     "Ravi",
		Sections: []models.Section{
			{
				Name: "Living Room", Type: models.SectionTypeSquareNet, Order: 1,
				Items: []models.WorkItem{
					{Item: "TV unit", Nos: 2, Width: 3, Length: 4, PricePerSqFt: 50, Order: 1},
				},
			},
			{
				Name: "Kitchen", Type: models.SectionTypeDescription, Order: 2,
				Items: []models.WorkItem{
					{CarpentryWork: "Chimney ducting", Description: "SS duct", Size: "6 ft", Price: 300, Order: 1},
				},
			},
		},
	}
}

func TestQuotationPDFProducesDocument(t *testing.T) {
	out, err := QuotationPDF(sampleData())
	if err != nil {
		t.Fatalf("QuotationPDF: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty document")
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not start with %%PDF: %q", out[:8])
	}
}

func TestQuotationPDFHandlesEmptySections(t *testing.T) {
	d := sampleData()
	d.Sections = nil
	out, err := QuotationPDF(d)
	if err != nil {
		t.Fatalf("QuotationPDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}
