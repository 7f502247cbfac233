// Package xlsxgen exports a quotation's section snapshot as an Excel
// workbook, one sheet per section. Figures come from the same compute
// package as the editor and the PDF renderer.
package xlsxgen

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wudworks/fitquote/internal/compute"
	"github.com/wudworks/fitquote/internal/models"
)

var squareNetHeaders = []string{"Sl. No.", "Item", "Nos", "Width", "Length", "Sq. Ft", "Price/Sq. Ft", "Total"}
var descriptionHeaders = []string{"Sl. No.", "Work", "Description", "Size", "Price"}

// QuotationXLSX builds the workbook and returns its bytes.
func QuotationXLSX(packageName string, sections []models.Section) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	subtotalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create subtotal style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i := range sections {
		sec := sections[i]
		sec.Normalize()
		name := sheetName(sec.Name, i)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return nil, fmt.Errorf("set sheet name: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %q: %w", name, err)
		}
		if err := writeSection(f, name, sec, headerStyle, subtotalStyle); err != nil {
			return nil, err
		}
	}
	if len(sections) == 0 {
		if err := f.SetSheetName(defaultSheet, sheetName(packageName, 0)); err != nil {
			return nil, fmt.Errorf("set sheet name: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSection(f *excelize.File, sheet string, sec models.Section, headerStyle, subtotalStyle int) error {
	headers := squareNetHeaders
	if sec.Type == models.SectionTypeDescription {
		headers = descriptionHeaders
	}
	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", endHeader, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	r := 2
	for _, it := range sec.Items {
		var values []any
		if sec.Type == models.SectionTypeDescription {
			values = []any{it.Order, it.CarpentryWork, it.Description, it.Size, it.Price.Float()}
		} else {
			values = []any{it.Order, it.Item, it.Nos.Float(), it.Width.Float(), it.Length.Float(), it.SqFt.Float(), it.PricePerSqFt.Float(), it.Total.Float()}
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
		r++
	}

	labelCell, _ := excelize.CoordinatesToCellName(len(headers)-1, r)
	valueCell, _ := excelize.CoordinatesToCellName(len(headers), r)
	if err := f.SetCellValue(sheet, labelCell, "Subtotal"); err != nil {
		return fmt.Errorf("write subtotal: %w", err)
	}
	if err := f.SetCellValue(sheet, valueCell, compute.SectionTotal(sec)); err != nil {
		return fmt.Errorf("write subtotal: %w", err)
	}
	if err := f.SetCellStyle(sheet, labelCell, valueCell, subtotalStyle); err != nil {
		return fmt.Errorf("style subtotal: %w", err)
	}
	return nil
}

// sheetName makes a legal, unique Excel sheet name (31-char cap, no
// reserved characters) from a section name.
func sheetName(name string, idx int) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return ' '
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" {
		clean = "Section"
	}
	suffix := fmt.Sprintf(" (%d)", idx+1)
	if len(clean)+len(suffix) > 31 {
		clean = clean[:31-len(suffix)]
	}
	return clean + suffix
}
