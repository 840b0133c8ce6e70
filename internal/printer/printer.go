package printer

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Printer is the external printing service contract. Failures must reach
// the caller; nothing in the system swallows a print error.
type Printer interface {
	Print(ctx context.Context, t Ticket) error
}

// NetworkPrinter spools rendered tickets to an ESC/POS printer listening on
// a raw socket (the usual host:9100 setup).
type NetworkPrinter struct {
	Addr    string
	Timeout time.Duration
}

func NewNetworkPrinter(addr string, timeout time.Duration) *NetworkPrinter {
	return &NetworkPrinter{Addr: addr, Timeout: timeout}
}

func (p *NetworkPrinter) Print(ctx context.Context, t Ticket) error {
	payload, err := Render(t)
	if err != nil {
		return err
	}

	dialer := net.Dialer{Timeout: p.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return fmt.Errorf("printer dial %s: %w", p.Addr, err)
	}
	defer conn.Close()

	if p.Timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(p.Timeout))
	}
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("printer write: %w", err)
	}
	return nil
}
