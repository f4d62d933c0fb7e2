package student

import (
	"encoding/base64"
	"errors"
	"net/url"
	"unicode/utf8"
)

var ErrInvalidInvoiceID = errors.New("invalid invoice id")

// EncodeInvoiceID turns an invoice number into the path segment used by the
// detail pages: unpadded URL-safe base64, so the segment never holds '/'.
func EncodeInvoiceID(invoiceNo string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(invoiceNo))
}

// DecodeInvoiceID reverses EncodeInvoiceID. Older links carrying standard,
// URL-escaped base64 are still accepted, whether or not the router already
// unescaped them.
func DecodeInvoiceID(id string) (string, error) {
	if id == "" {
		return "", ErrInvalidInvoiceID
	}
	unescaped, err := url.PathUnescape(id)
	if err != nil {
		return "", ErrInvalidInvoiceID
	}
	raw, err := base64.RawURLEncoding.DecodeString(unescaped)
	if err != nil {
		raw, err = base64.StdEncoding.DecodeString(unescaped)
	}
	if err != nil || len(raw) == 0 || !utf8.Valid(raw) {
		return "", ErrInvalidInvoiceID
	}
	return string(raw), nil
}
