package billing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexString decodes a JSON string, number or null into a string. The billing
// API is not consistent about quoting ids and role codes.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("flex string: %w", err)
		}
		*f = FlexString(n.String())
	}
	return nil
}

func (f FlexString) String() string { return string(f) }

// Int parses the value as a base-10 integer.
func (f FlexString) Int() (int, error) { return strconv.Atoi(string(f)) }

// envelope is the wrapper every billing API response uses.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Session is the result of a successful login.
type Session struct {
	Token string  `json:"token"`
	User  Account `json:"user"`
}

type Account struct {
	ID     FlexString `json:"id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	RoleID FlexString `json:"role_id"`
}

// Bill is the billing period an invoice belongs to.
type Bill struct {
	TagihID    string `json:"TagihId"`
	School     string `json:"sekolah"`
	SchoolYear string `json:"tahunajaran"`
	Class      string `json:"kelas"`
	Period     string `json:"Periode"`
	DueDate    string `json:"Tanggal_Tagihan"`
}

// Payment is the gateway checkout attached to an invoice, if any.
type Payment struct {
	ID           FlexString `json:"id"`
	TagihID      FlexString `json:"tagih_id"`
	InvoiceNo    string     `json:"no_faktur"`
	CheckoutTime string     `json:"checkout_time"`
	Total        FlexString `json:"nominal_total"`
	Status       FlexString `json:"status_transaksi"`
	Method       string     `json:"pg_payment_method"`
	RedirectURL  string     `json:"pg_url_redirect"`
}

// Transaction is one row of the payment history.
type Transaction struct {
	TagihID        FlexString `json:"tagihId"`
	InvoiceNo      string     `json:"no_faktur"`
	StudentRegID   FlexString `json:"regidsiswa"`
	StudentName    string     `json:"nama_siswa"`
	Total          FlexString `json:"totaltagih"`
	PaymentStatus  string     `json:"status_bayar"`
	PaidAt         string     `json:"tgl_bayar"`
	VirtualAccount string     `json:"VA"`
	Bill           Bill       `json:"tagih"`
	Payment        *Payment   `json:"payments"`
}

type LineItem struct {
	RowID     FlexString `json:"rowid"`
	InvoiceNo string     `json:"no_faktur"`
	Name      string     `json:"Nama_Pembayaran"`
	Amount    FlexString `json:"Nilai"`
	Code      string     `json:"kd_pembayaran"`
}

// InvoiceDetail is a transaction together with its line items.
type InvoiceDetail struct {
	Transaction
	Items []LineItem `json:"nominals"`
}

type PageInfo struct {
	TotalRecords int `json:"total_record"`
	PerPage      int `json:"size_per_page"`
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
}

// HasPrev and HasNext drive the pager on the history pages.
func (p PageInfo) HasPrev() bool { return p.CurrentPage > 1 }
func (p PageInfo) HasNext() bool { return p.CurrentPage < p.TotalPages }

type HistoryPage struct {
	SchoolName string        `json:"nama_sekolah"`
	Items      []Transaction `json:"data"`
	PageInfo   PageInfo      `json:"page_info"`
}

type InstructionStep struct {
	Step  string `json:"step"`
	Value string `json:"value"`
}

type InstructionMethod struct {
	ID      int               `json:"id"`
	Name    string            `json:"name"`
	Details []InstructionStep `json:"details"`
}

type KeyedLine struct {
	Name   string     `json:"nama_tagihan"`
	Amount FlexString `json:"nominal"`
}

// KeyedInvoice is the public view of an invoice reached through a payment link.
type KeyedInvoice struct {
	InvoiceNo     string      `json:"no_faktur"`
	School        string      `json:"sekolah"`
	SchoolYear    string      `json:"tahun_ajaran"`
	Class         string      `json:"kelas"`
	StudentName   string      `json:"nama_siswa"`
	Period        string      `json:"periode"`
	Total         FlexString  `json:"total_tagih"`
	WhatsApp      string      `json:"no_wa"`
	PaymentStatus string      `json:"status_bayar"`
	Lines         []KeyedLine `json:"detail"`
	PaymentURL    string      `json:"url_payment"`
}
