// Package pdfgen renders a priced quotation into a paginated PDF using
// maroto/v2. The caller assembles the input (quotation terms, client
// display fields, and the package's current section snapshot); nothing here
// touches the database, and the same compute formulas used by the editor
// produce every figure on the page.
package pdfgen

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/wudworks/fitquote/internal/compute"
	"github.com/wudworks/fitquote/internal/models"
)

// Data is everything the quotation document shows.
type Data struct {
	Title           string
	ClientName      string
	ProjectName     string
	PackageName     string
	Area            float64
	Amount          float64
	Discount        float64
	DiscountedPrice float64
	ValidFrom       string
	ValidTo         string
	SalesPerson     string
	Sections        []models.Section
}

// QuotationPDF builds the full document and returns its bytes. Assembly is
// all-or-nothing: any generation failure yields an error and no output.
func QuotationPDF(d Data) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addTitle(m, d)
	addSummary(m, d)
	for _, sec := range d.Sections {
		addSectionTable(m, sec)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate quotation pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func addTitle(m core.Maroto, d Data) {
	title := d.Title
	if title == "" {
		title = "Quotation"
	}
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}),
			),
		),
		row.New(4),
	)
}

// addSummary lays out the commercial block: client, project, package, area,
// amount, discount, discounted price, validity window, sales person.
func addSummary(m core.Maroto, d Data) {
	pairs := []struct{ label, value string }{
		{"Client", d.ClientName},
		{"Project", d.ProjectName},
		{"Package", d.PackageName},
		{"Area (sq. ft)", formatQty(d.Area)},
		{"Amount", FormatINR(d.Amount)},
		{"Discount", FormatINR(d.Discount)},
		{"Discounted Price", FormatINR(d.DiscountedPrice)},
		{"Valid From", d.ValidFrom},
		{"Valid To", d.ValidTo},
		{"Sales Person", d.SalesPerson},
	}
	labelText := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left}
	valueText := props.Text{Size: 9, Align: align.Left}
	for _, p := range pairs {
		m.AddRows(
			row.New(6).Add(
				col.New(4).Add(text.New(p.label, labelText)),
				col.New(8).Add(text.New(p.value, valueText)),
			),
		)
	}
	m.AddRows(row.New(6))
}

// addSectionTable emits one table for a section: caption, variant-dependent
// header, item rows in serial order, subtotal.
func addSectionTable(m core.Maroto, sec models.Section) {
	sec.Normalize()
	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New(sec.Name, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Left}),
			),
		),
	)
	if sec.Type == models.SectionTypeDescription {
		addDescriptionHeader(m)
		for _, it := range sec.Items {
			addDescriptionRow(m, it)
		}
	} else {
		addSquareNetHeader(m)
		for _, it := range sec.Items {
			addSquareNetRow(m, it)
		}
	}
	addSubtotal(m, compute.SectionTotal(sec))
	m.AddRows(row.New(4))
}

var headerCell = props.Cell{BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41}}

func headerText(a align.Type) props.Text {
	return props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: a,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
}

func addSquareNetHeader(m core.Maroto) {
	c := headerText(align.Center)
	l := headerText(align.Left)
	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("Sl. No.", c)).WithStyle(&headerCell),
			col.New(3).Add(text.New("Item", l)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Nos", c)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Width", c)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Length", c)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Sq. Ft", c)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Price/Sq. Ft", c)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Total", c)).WithStyle(&headerCell),
		),
	)
}

func addSquareNetRow(m core.Maroto, it models.WorkItem) {
	base := props.Text{Size: 7, Align: align.Center}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right
	m.AddRows(
		row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Order), base)),
			col.New(3).Add(text.New(it.Item, left)),
			col.New(1).Add(text.New(formatQty(it.Nos.Float()), right)),
			col.New(1).Add(text.New(formatQty(it.Width.Float()), right)),
			col.New(1).Add(text.New(formatQty(it.Length.Float()), right)),
			col.New(1).Add(text.New(formatQty(it.SqFt.Float()), right)),
			col.New(2).Add(text.New(FormatINR(it.PricePerSqFt.Float()), right)),
			col.New(2).Add(text.New(FormatINR(it.Total.Float()), right)),
		),
	)
}

func addDescriptionHeader(m core.Maroto) {
	c := headerText(align.Center)
	l := headerText(align.Left)
	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("Sl. No.", c)).WithStyle(&headerCell),
			col.New(3).Add(text.New("Work", l)).WithStyle(&headerCell),
			col.New(4).Add(text.New("Description", l)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Size", c)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Price", c)).WithStyle(&headerCell),
		),
	)
}

func addDescriptionRow(m core.Maroto, it models.WorkItem) {
	base := props.Text{Size: 7, Align: align.Center}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right
	m.AddRows(
		row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Order), base)),
			col.New(3).Add(text.New(it.CarpentryWork, left)),
			col.New(4).Add(text.New(it.Description, left)),
			col.New(2).Add(text.New(it.Size, base)),
			col.New(2).Add(text.New(FormatINR(it.Price.Float()), right)),
		),
	)
}

func addSubtotal(m core.Maroto, total float64) {
	bg := &props.Color{Red: 240, Green: 240, Blue: 240}
	cell := &props.Cell{BackgroundColor: bg}
	style := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}
	m.AddRows(
		row.New(7).Add(
			col.New(10).Add(text.New("Subtotal", style)).WithStyle(cell),
			col.New(2).Add(text.New(FormatINR(total), style)).WithStyle(cell),
		),
	)
}
