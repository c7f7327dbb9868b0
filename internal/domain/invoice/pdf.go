package invoice

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF produces a printable invoice document in memory.
func RenderPDF(inv Invoice, companyName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Invoice %s", inv.Number))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("From: %s", companyName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Bill to: %s", inv.CustomerName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Issued: %s", inv.IssuedOn.Format("2006-01-02")))
	pdf.Ln(7)
	if inv.DueOn != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Due: %s", inv.DueOn.Format("2006-01-02")))
		pdf.Ln(7)
	}
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 8, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Unit price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, item := range inv.Items {
		pdf.CellFormat(90, 8, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", item.Amount()), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(150, 10, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 10, fmt.Sprintf("%.2f %s", inv.Total, inv.Currency), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
