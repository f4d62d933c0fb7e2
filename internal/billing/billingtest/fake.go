// Package billingtest provides an in-memory billing API for handler tests.
package billingtest

import (
	"context"
	"net/http"
	"sync"

	"github.com/cakrabuana/payment-portal/internal/billing"
)

const (
	StaffToken   = "staff-token"
	StudentToken = "student-token"
)

type Credential struct {
	Password string
	Token    string
}

// Fake implements every billing call the portal makes. Unknown tokens get
// billing.ErrUnauthorized, unknown records a 404 APIError.
type Fake struct {
	mu sync.Mutex

	Credentials  map[string]Credential
	Accounts     map[string]billing.Account
	Page         billing.HistoryPage
	Invoices     map[string]billing.InvoiceDetail
	Methods      []billing.InstructionMethod
	Keyed        map[string]billing.KeyedInvoice

	// Err, when set, is returned by every call.
	Err error

	Calls            map[string]int
	LastHistoryQuery billing.HistoryQuery
	LastUserAgent    string
}

func (f *Fake) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Calls == nil {
		f.Calls = make(map[string]int)
	}
	f.Calls[name]++
	return f.Err
}

// CallCount returns how many times the named method ran.
func (f *Fake) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[name]
}

func (f *Fake) authorize(token string) error {
	if _, ok := f.Accounts[token]; !ok {
		return billing.ErrUnauthorized
	}
	return nil
}

func notFound() error {
	return &billing.APIError{Status: http.StatusNotFound, Message: "Data tidak ditemukan"}
}

func (f *Fake) Login(_ context.Context, in billing.LoginRequest) (billing.Session, error) {
	if err := f.record("Login"); err != nil {
		return billing.Session{}, err
	}
	f.mu.Lock()
	f.LastUserAgent = in.UserAgent
	f.mu.Unlock()

	cred, ok := f.Credentials[in.Email]
	if !ok || cred.Password != in.Password {
		return billing.Session{}, &billing.APIError{Status: http.StatusBadRequest, Message: "Email atau password salah"}
	}
	return billing.Session{Token: cred.Token, User: f.Accounts[cred.Token]}, nil
}

func (f *Fake) Me(_ context.Context, token string) (billing.Account, error) {
	if err := f.record("Me"); err != nil {
		return billing.Account{}, err
	}
	if err := f.authorize(token); err != nil {
		return billing.Account{}, err
	}
	return f.Accounts[token], nil
}

func (f *Fake) History(_ context.Context, token string, q billing.HistoryQuery) (billing.HistoryPage, error) {
	if err := f.record("History"); err != nil {
		return billing.HistoryPage{}, err
	}
	if err := f.authorize(token); err != nil {
		return billing.HistoryPage{}, err
	}
	f.mu.Lock()
	f.LastHistoryQuery = q
	f.mu.Unlock()

	page := f.Page
	page.PageInfo.CurrentPage = q.Page
	return page, nil
}

func (f *Fake) InvoiceDetail(_ context.Context, token, invoiceNo string) (billing.InvoiceDetail, error) {
	if err := f.record("InvoiceDetail"); err != nil {
		return billing.InvoiceDetail{}, err
	}
	if err := f.authorize(token); err != nil {
		return billing.InvoiceDetail{}, err
	}
	d, ok := f.Invoices[invoiceNo]
	if !ok {
		return billing.InvoiceDetail{}, notFound()
	}
	return d, nil
}

func (f *Fake) Instructions(_ context.Context, token string) ([]billing.InstructionMethod, error) {
	if err := f.record("Instructions"); err != nil {
		return nil, err
	}
	if err := f.authorize(token); err != nil {
		return nil, err
	}
	return f.Methods, nil
}

func (f *Fake) DetailByKey(_ context.Context, key string) (billing.KeyedInvoice, error) {
	if err := f.record("DetailByKey"); err != nil {
		return billing.KeyedInvoice{}, err
	}
	k, ok := f.Keyed[key]
	if !ok {
		return billing.KeyedInvoice{}, notFound()
	}
	return k, nil
}

func bill(period string) billing.Bill {
	return billing.Bill{
		TagihID:    "T-" + period,
		School:     "SMP Cakra Buana",
		SchoolYear: "2025/2026",
		Class:      "VIII-A",
		Period:     period,
		DueDate:    period[:8] + "10",
	}
}

// Seeded returns a Fake with one staff account, one student account and an
// invoice for each payment path:
//
//	INV-001 unpaid, virtual account
//	INV-002 pending, gateway checkout
//	INV-003 paid
//	INV-004 unpaid, no payment method
func Seeded() *Fake {
	txs := []billing.Transaction{
		{InvoiceNo: "INV-001", StudentName: "Budi Santoso", Total: "150000", PaymentStatus: "Belum Lunas", VirtualAccount: "8808001234567890", Bill: bill("2025-07-01")},
		{InvoiceNo: "INV-002", StudentName: "Budi Santoso", Total: "150000", PaymentStatus: "Belum Lunas", Bill: bill("2025-08-01"),
			Payment: &billing.Payment{Status: "1", RedirectURL: "https://checkout.example/pay/002"}},
		{InvoiceNo: "INV-003", StudentName: "Budi Santoso", Total: "150000", PaymentStatus: "Lunas", PaidAt: "2025-06-05 09:00:00", Bill: bill("2025-06-01")},
		{InvoiceNo: "INV-004", StudentName: "Budi Santoso", Total: "75000", PaymentStatus: "Belum Lunas", Bill: bill("2025-09-01")},
	}

	invoices := make(map[string]billing.InvoiceDetail, len(txs))
	for _, tx := range txs {
		invoices[tx.InvoiceNo] = billing.InvoiceDetail{
			Transaction: tx,
			Items: []billing.LineItem{
				{RowID: "1", InvoiceNo: tx.InvoiceNo, Name: "SPP", Amount: tx.Total, Code: "SPP"},
			},
		}
	}

	return &Fake{
		Credentials: map[string]Credential{
			"tu@cakrabuana.sch.id":   {Password: "admin123", Token: StaffToken},
			"wali@cakrabuana.sch.id": {Password: "siswa123", Token: StudentToken},
		},
		Accounts: map[string]billing.Account{
			StaffToken:   {ID: "1", Name: "Tata Usaha", Email: "tu@cakrabuana.sch.id", RoleID: "1"},
			StudentToken: {ID: "2", Name: "Wali Budi", Email: "wali@cakrabuana.sch.id", RoleID: "2"},
		},
		Page: billing.HistoryPage{
			SchoolName: "SMP Cakra Buana",
			Items:      txs,
			PageInfo:   billing.PageInfo{TotalRecords: 4, PerPage: 10, CurrentPage: 1, TotalPages: 1},
		},
		Invoices: invoices,
		Methods: []billing.InstructionMethod{
			{ID: 1, Name: "ATM BNI", Details: []billing.InstructionStep{{Step: "1", Value: "Masukkan kartu ATM dan PIN"}, {Step: "2", Value: "Pilih menu Transfer Virtual Account"}}},
			{ID: 2, Name: "Mobile Banking", Details: []billing.InstructionStep{{Step: "1", Value: "Buka aplikasi dan pilih Virtual Account"}}},
		},
		Keyed: map[string]billing.KeyedInvoice{
			"abc123":  {InvoiceNo: "INV-101", School: "SD Bintara", StudentName: "Sari", Period: "2025-07-01", Total: "200000", PaymentStatus: "Belum Lunas", PaymentURL: "https://checkout.example/pay/101", Lines: []billing.KeyedLine{{Name: "SPP", Amount: "200000"}}},
			"paidkey": {InvoiceNo: "INV-102", School: "SD Bintara", StudentName: "Sari", Period: "2025-06-01", Total: "200000", PaymentStatus: "Lunas"},
			"nolink":  {InvoiceNo: "INV-103", School: "SD Bintara", StudentName: "Sari", Period: "2025-08-01", Total: "200000", PaymentStatus: "Belum Lunas"},
		},
	}
}
