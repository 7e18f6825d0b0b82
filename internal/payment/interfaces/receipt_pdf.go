package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	parking "campus-parking/internal/parking/domain"
	payment "campus-parking/internal/payment/domain"
)

// BuildReceiptPDF renders a minimal PDF receipt for a settled payment.
func BuildReceiptPDF(txn *payment.Transaction, session *parking.Session) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Parking Payment Receipt")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Transaction: %s", txn.ID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Session: %s", txn.SessionID))
	pdf.Ln(5)
	if txn.GatewayRef != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Gateway Ref: %s", txn.GatewayRef))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Slot: %s", session.SlotID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Entry: %s", session.EntryTime.Format(time.RFC3339)))
	pdf.Ln(5)
	if session.ExitTime != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Exit: %s", session.ExitTime.Format(time.RFC3339)))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Paid: %s", txn.UpdatedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Amount (VND): %d", txn.Amount))
	pdf.Ln(5)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
