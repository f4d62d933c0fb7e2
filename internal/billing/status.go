package billing

import "strings"

// State is the payment state shown for an invoice.
type State int

const (
	Unpaid State = iota
	Pending
	Paid
)

const (
	gatewayPending = "1"
	gatewaySettled = "2"
)

func (s State) Label() string {
	switch s {
	case Paid:
		return "Lunas"
	case Pending:
		return "Menunggu"
	default:
		return "Belum Lunas"
	}
}

// DetailLabel is the longer wording used on the invoice detail page.
func (s State) DetailLabel() string {
	if s == Pending {
		return "Menunggu Pembayaran"
	}
	return s.Label()
}

func (s State) String() string {
	switch s {
	case Paid:
		return "paid"
	case Pending:
		return "pending"
	default:
		return "unpaid"
	}
}

func isLunas(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), "lunas")
}

// State derives the payment state from the invoice flag and the gateway
// checkout, whichever reports payment first.
func (t Transaction) State() State {
	if isLunas(t.PaymentStatus) {
		return Paid
	}
	if t.Payment != nil {
		switch string(t.Payment.Status) {
		case gatewaySettled:
			return Paid
		case gatewayPending:
			return Pending
		}
	}
	return Unpaid
}

// PayKind says how an unpaid invoice can be paid.
type PayKind int

const (
	PayUnavailable PayKind = iota
	PayVirtualAccount
	PayGateway
)

// PayAction is what the pay button does for one invoice.
type PayAction struct {
	Kind           PayKind
	VirtualAccount string
	URL            string
}

// PayAction prefers a virtual account over a gateway checkout.
func (t Transaction) PayAction() PayAction {
	if va := strings.TrimSpace(t.VirtualAccount); va != "" {
		return PayAction{Kind: PayVirtualAccount, VirtualAccount: va}
	}
	if t.Payment != nil && strings.TrimSpace(t.Payment.RedirectURL) != "" {
		return PayAction{Kind: PayGateway, URL: t.Payment.RedirectURL}
	}
	return PayAction{Kind: PayUnavailable}
}

func (k KeyedInvoice) Paid() bool { return isLunas(k.PaymentStatus) }

func (k KeyedInvoice) PayAction() PayAction {
	if u := strings.TrimSpace(k.PaymentURL); u != "" {
		return PayAction{Kind: PayGateway, URL: u}
	}
	return PayAction{Kind: PayUnavailable}
}
