package infra

// Comanda ticket generation using go-pdf/fpdf.
// Produces a 74mm-wide thermal receipt with:
//   - Venue name header
//   - Short comanda id, customer and timestamp
//   - Item table (product name, quantity, subtotal)
//   - Bold total and payment state
//   - QR code with the comanda id, scanned at the bar to look the order up

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"comandas/internal/model"

	"github.com/go-pdf/fpdf"
)

const ticketAncho = 74.0 // mm

// GenerateTicketPDF renders the ticket for c (Items.Producto loaded) and
// returns the PDF bytes. Times are shown in loc.
func GenerateTicketPDF(c *model.Comanda, nombreLocal string, loc *time.Location) ([]byte, error) {
	qr, err := GenerateQRPNG(c.ID.String(), 256)
	if err != nil {
		return nil, err
	}

	alto := 80.0 + 5*float64(len(c.Items)) + 40
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: ticketAncho, Ht: alto},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	contentW := ticketAncho - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(nombreLocal), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Comanda", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Comanda info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr("N° "+strings.ToUpper(c.ID.String()[:8])), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, tr("Cliente: "+c.NombreCliente), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, c.CreatedAt.In(loc).Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), ticketAncho-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range c.Items {
		nombre := []rune(item.Producto.Nombre)
		if len(nombre) > 22 {
			nombre = append(nombre[:21], '.')
		}
		pdf.CellFormat(col1, 5, tr(string(nombre)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), ticketAncho-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+c.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	estado := string(c.Estado)
	if c.MetodoPago != nil {
		estado += " (" + string(*c.MetodoPago) + ")"
	}
	pdf.CellFormat(contentW, 4, "Estado: "+estado, "", 1, "L", false, 0, "")

	// ── QR ───────────────────────────────────────────────────────────────────
	pdf.Ln(2)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qr))
	lado := 30.0
	pdf.ImageOptions("qr", (ticketAncho-lado)/2, pdf.GetY(), lado, lado, false, opts, 0, "")
	pdf.SetY(pdf.GetY() + lado + 2)

	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias!"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: write: %w", err)
	}
	return buf.Bytes(), nil
}
