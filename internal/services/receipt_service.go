package services

import (
	"bytes"
	"context"
	"fmt"

	"filmsoc-backend/internal/repositories"
	"filmsoc-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// ReceiptService renders a printable checkout slip for an equipment
// log. The hall office keeps a paper copy with the gate register.
type ReceiptService struct {
	LogRepo       *repositories.EquipmentLogRepository
	EquipmentRepo *repositories.EquipmentRepository
	MemberRepo    *repositories.MemberRepository
}

func NewReceiptService(
	logRepo *repositories.EquipmentLogRepository,
	equipmentRepo *repositories.EquipmentRepository,
	memberRepo *repositories.MemberRepository,
) *ReceiptService {
	return &ReceiptService{
		LogRepo:       logRepo,
		EquipmentRepo: equipmentRepo,
		MemberRepo:    memberRepo,
	}
}

// CheckoutReceipt builds a one-page PDF for the given log
func (s *ReceiptService) CheckoutReceipt(ctx context.Context, logID string) ([]byte, error) {
	entry, err := s.LogRepo.Get(ctx, logID)
	if err != nil {
		return nil, err
	}

	equipment, err := s.EquipmentRepo.Get(ctx, entry.EquipmentID)
	if err != nil {
		return nil, err
	}

	member, err := s.MemberRepo.Get(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(128, 8, "Film & Photography Society - Checkout Slip", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(128, 5, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 15:04 MST")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Equipment box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(128, 7, "Equipment", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(64, 6, fmt.Sprintf("Name: %s", equipment.Name), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(64, 6, fmt.Sprintf("Type: %s", equipment.Type), "RB", 1, "L", false, 0, "")
	ownership := "Hall"
	if equipment.OwnerName != "" {
		ownership = fmt.Sprintf("Student (%s)", equipment.OwnerName)
	}
	pdf.CellFormat(64, 6, fmt.Sprintf("Ownership: %s", ownership), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(64, 6, fmt.Sprintf("Log ID: %s", shortID(entry.ID)), "RB", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Checkout box
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(128, 7, "Checkout", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(128, 6, fmt.Sprintf("Borrower: %s (%s)", member.Name, member.Username), "LRB", 1, "L", false, 0, "")
	pdf.CellFormat(128, 6, fmt.Sprintf("Checked out: %s", entry.CheckoutTime.Format("02-Jan-2006 15:04 MST")), "LRB", 1, "L", false, 0, "")
	if entry.ExpectedReturnTime != nil {
		pdf.CellFormat(128, 6, fmt.Sprintf("Expected return: %s", entry.ExpectedReturnTime.Format("02-Jan-2006 15:04 MST")), "LRB", 1, "L", false, 0, "")
	}
	if entry.ReturnTime != nil {
		pdf.CellFormat(128, 6, fmt.Sprintf("Returned: %s", entry.ReturnTime.Format("02-Jan-2006 15:04 MST")), "LRB", 1, "L", false, 0, "")
	}
	pdf.Ln(10)

	// Signature lines
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(64, 6, "_______________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(64, 6, "_______________________", "", 1, "R", false, 0, "")
	pdf.CellFormat(64, 5, "Borrower signature", "", 0, "L", false, 0, "")
	pdf.CellFormat(64, 5, "Core team signature", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
