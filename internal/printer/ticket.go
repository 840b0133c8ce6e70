package printer

import (
	"math"
	"strconv"
	"strings"
)

const (
	lineWidth = 42
	banner    = "-- SANTAS --"
)

// cut is the ESC/POS full-cut command the venue's printer expects.
var cut = []byte{0x1D, 0x56, 0x00}

// Ticket is one physical ticket to print. Redemptions and sales of N units
// print N tickets, one call each.
type Ticket struct {
	TicketTypeName string
	UnitPrice      float64
	IncludesDrink  bool
	// QRPayload, when non-empty, is appended as a QR code below the text
	// body. Redeemed pre-sales encode their id here for door-side lookup.
	QRPayload string
}

// Render produces the ESC/POS byte stream for one ticket: the 42-column
// text body the venue has always used, an optional QR block and the cut
// command.
func Render(t Ticket) ([]byte, error) {
	var b strings.Builder

	rule := strings.Repeat("=", 15)

	b.WriteString("\n")
	b.WriteString(rule + "\n")

	pad := lineWidth - len(banner)
	left := pad / 2
	right := pad - left
	b.WriteString(strings.Repeat(" ", left) + banner + strings.Repeat(" ", right) + "\n")

	b.WriteString(rule + "\n\n")

	b.WriteString("Entrada: " + t.TicketTypeName + "\n")
	b.WriteString("Total: $" + formatAmount(t.UnitPrice) + "\n")

	if t.IncludesDrink {
		b.WriteString("INCLUYE TRAGO GRATIS\n")
	}

	b.WriteString("\n" + rule + "\n")
	b.WriteString(" Gracias por tu compra \n")
	b.WriteString(rule + "\n\n")

	out := []byte(b.String())

	if t.QRPayload != "" {
		qr, err := qrBlock(t.QRPayload)
		if err != nil {
			return nil, err
		}
		out = append(out, qr...)
		out = append(out, '\n')
	}

	out = append(out, '\n')
	out = append(out, cut...)
	return out, nil
}

// formatAmount renders a peso amount with dot thousand separators and no
// decimals, matching the receipts the venue prints.
func formatAmount(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
