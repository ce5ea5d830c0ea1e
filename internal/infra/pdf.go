package infra

// pdf.go renders sale receipts on a narrow 74mm page with go-pdf/fpdf:
// header, sale id and timestamp, one row per line, bold total.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"shopinventory/internal/model"

	"github.com/go-pdf/fpdf"
)

const receiptStoreName = "Shop Inventory"

// RenderReceipt writes the receipt PDF for sale to w.
func RenderReceipt(w io.Writer, sale *model.Sale) error {
	pdf := buildReceipt(sale)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render receipt: %w", err)
	}
	return nil
}

// WriteReceiptFile saves the receipt under storagePath (created if needed) and
// returns the file path.
func WriteReceiptFile(sale *model.Sale, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("receipt_%s.pdf", sale.ID))

	pdf := buildReceipt(sale)
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func buildReceipt(sale *model.Sale) *fpdf.Fpdf {
	// page height grows with the number of lines
	height := 70 + float64(len(sale.Lines))*5
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, receiptStoreName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 6)
	pdf.CellFormat(contentW, 4, "Sale "+sale.ID.String(), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, sale.SoldAt.Format("2006-01-02  15:04"), "", 1, "L", false, 0, "")
	if sale.Client != nil {
		pdf.CellFormat(contentW, 4, "Client: "+truncate(sale.Client.Name, 34), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for i := range sale.Lines {
		line := &sale.Lines[i]
		name := line.ProductID.String()[:8]
		if line.Product != nil {
			name = line.Product.Name
		}
		pdf.CellFormat(col1, 5, truncate(name, 22), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", line.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, line.Subtotal().StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, sale.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")
	return pdf
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}
