package billing

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionState(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
		want State
	}{
		{"lunas flag", Transaction{PaymentStatus: "LUNAS"}, Paid},
		{"gateway settled", Transaction{PaymentStatus: "Belum Lunas", Payment: &Payment{Status: "2"}}, Paid},
		{"gateway pending", Transaction{Payment: &Payment{Status: "1"}}, Pending},
		{"no checkout", Transaction{PaymentStatus: "Belum Lunas"}, Unpaid},
		{"unknown gateway status", Transaction{Payment: &Payment{Status: "9"}}, Unpaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tx.State())
		})
	}
}

func TestStateLabels(t *testing.T) {
	assert.Equal(t, "Lunas", Paid.Label())
	assert.Equal(t, "Menunggu", Pending.Label())
	assert.Equal(t, "Menunggu Pembayaran", Pending.DetailLabel())
	assert.Equal(t, "Belum Lunas", Unpaid.DetailLabel())
}

func TestTransactionPayAction(t *testing.T) {
	va := Transaction{VirtualAccount: " 8808 ", Payment: &Payment{RedirectURL: "https://gw/1"}}
	assert.Equal(t, PayAction{Kind: PayVirtualAccount, VirtualAccount: "8808"}, va.PayAction())

	gw := Transaction{Payment: &Payment{RedirectURL: "https://gw/1"}}
	assert.Equal(t, PayAction{Kind: PayGateway, URL: "https://gw/1"}, gw.PayAction())

	assert.Equal(t, PayUnavailable, Transaction{}.PayAction().Kind)
	assert.Equal(t, PayUnavailable, Transaction{Payment: &Payment{}}.PayAction().Kind)
}

func TestKeyedInvoice(t *testing.T) {
	assert.True(t, KeyedInvoice{PaymentStatus: "Lunas"}.Paid())
	assert.False(t, KeyedInvoice{PaymentStatus: "Belum Lunas"}.Paid())
	assert.Equal(t, PayUnavailable, KeyedInvoice{}.PayAction().Kind)
}

func TestParseHistoryQuery(t *testing.T) {
	q := ParseHistoryQuery(url.Values{})
	assert.Equal(t, HistoryQuery{Page: 1, PerPage: DefaultPerPage}, q)

	q = ParseHistoryQuery(url.Values{"page": {"3"}, "per_page": {"500"}, "search": {"  budi "}})
	assert.Equal(t, HistoryQuery{Page: 3, PerPage: MaxPerPage, Search: "budi"}, q)

	q = ParseHistoryQuery(url.Values{"page": {"-1"}, "per_page": {"abc"}})
	assert.Equal(t, HistoryQuery{Page: 1, PerPage: DefaultPerPage}, q)

	assert.Equal(t, "page=4&per_page=10", q.WithPage(4).Values().Encode())
}
