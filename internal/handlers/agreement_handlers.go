package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"vatrentals/internal/common"
	"vatrentals/internal/models"
	"vatrentals/internal/services"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"
)

// AgreementHandlers renders the printable rental agreement for a booking
type AgreementHandlers struct {
	bookingService  services.BookingServiceInterface
	customerService services.CustomerService
}

// NewAgreementHandlers creates a new agreement handlers instance
func NewAgreementHandlers(bookingService services.BookingServiceInterface,
	customerService services.CustomerService) *AgreementHandlers {
	return &AgreementHandlers{
		bookingService:  bookingService,
		customerService: customerService,
	}
}

// GetAgreementPDF handles GET /bookings/:id/agreement
// Streams the agreement as a PDF attachment.
func (h *AgreementHandlers) GetAgreementPDF(c echo.Context) error {
	ctx := c.Request().Context()

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid booking ID")
	}

	booking, err := h.bookingService.GetBookingByID(ctx, bookingID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	// Contact details come from the live directory; the agreement body
	// uses the booking's snapshots so it matches what was signed.
	customer, err := h.customerService.GetCustomerByID(ctx, booking.CustomerID)
	if err != nil {
		customer = nil
	}

	pdfBytes, err := h.generateAgreementPDF(booking, customer)
	if err != nil {
		return common.SendServerError(c, fmt.Sprintf("Failed to generate PDF: %v", err))
	}
	if len(pdfBytes) == 0 {
		return common.SendServerError(c, "Generated PDF is empty")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s-agreement.pdf"`, booking.BookingID))
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}

// generateAgreementPDF creates the printable rental agreement
func (h *AgreementHandlers) generateAgreementPDF(booking *models.Booking, customer *models.Customer) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, "VAT RENTALS - RENTAL AGREEMENT")
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Booking Number: %s", booking.BookingID))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Booking Date: %s", booking.CreatedAt.Format("02-Jan-2006")))
	pdf.Ln(13)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "RENTER:")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, booking.CustomerName)
	pdf.Ln(6)
	if customer != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Phone: %s", customer.Phone))
		pdf.Ln(6)
		if customer.LicenseNumber != nil && *customer.LicenseNumber != "" {
			pdf.Cell(0, 6, fmt.Sprintf("License Number: %s", *customer.LicenseNumber))
			pdf.Ln(6)
		}
		if customer.Address != nil && *customer.Address != "" {
			pdf.Cell(0, 6, fmt.Sprintf("Address: %s", *customer.Address))
			pdf.Ln(6)
		}
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "VEHICLE:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, booking.CarDetails)
	pdf.Ln(10)

	// Rental period and charges table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)

	headers := []string{"Description", "Value"}
	colWidths := []float64{90, 80}
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(255, 255, 255)

	period := fmt.Sprintf("%s to %s", booking.StartDate.Format("02-Jan-2006"), booking.EndDate.Format("02-Jan-2006"))
	if booking.StartTime != "" || booking.EndTime != "" {
		period = fmt.Sprintf("%s (%s - %s)", period, booking.StartTime, booking.EndTime)
	}

	rows := [][2]string{
		{"Rental Period", period},
		{"Duration", fmt.Sprintf("%d day(s)", booking.Duration)},
		{"Daily Rate", fmt.Sprintf("%.2f", booking.DailyRate)},
		{"Total Amount", fmt.Sprintf("%.2f", booking.TotalAmount)},
		{"Deposit", fmt.Sprintf("%.2f", booking.DepositAmount)},
		{"Rent Received", fmt.Sprintf("%.2f", booking.TotalRentReceived)},
		{"Balance Due", fmt.Sprintf("%.2f", booking.TotalAmount-booking.TotalRentReceived)},
		{"Payment Mode", booking.PaymentMode},
	}
	for _, row := range rows {
		pdf.CellFormat(colWidths[0], 8, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, row[1], "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}
	pdf.Ln(5)

	if booking.Notes != nil && *booking.Notes != "" {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Notes:")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, *booking.Notes, "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.Cell(0, 6, "Terms & Conditions:")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 8)
	terms := []string{
		"1. The vehicle must be returned on or before the agreed end date",
		"2. Fuel charges are borne by the renter",
		"3. The deposit is refunded after the vehicle is returned and inspected",
		"4. Any traffic fines incurred during the rental period are the renter's responsibility",
		"5. This is a computer generated agreement",
	}
	for _, term := range terms {
		pdf.Cell(0, 5, term)
		pdf.Ln(5)
	}

	// Signature blocks
	pdf.Ln(15)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(85, 6, "_______________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(85, 6, "_______________________", "", 0, "R", false, 0, "")
	pdf.Ln(6)
	pdf.CellFormat(85, 6, "Renter Signature", "", 0, "L", false, 0, "")
	pdf.CellFormat(85, 6, "Authorized Signatory", "", 0, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Cell(0, 5, "Thank you for choosing VAT Rentals!")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
