package format

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const zeroDateTime = "0000-00-00 00:00:00"

var printer = message.NewPrinter(language.Indonesian)

// Rupiah renders an API amount such as "150000" or "150000.00" as
// "Rp\u00a0150.000": a no-break space after the symbol, grouped the
// Indonesian way and without decimals.
func Rupiah(amount string) string {
	n, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		n = 0
	}
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	return sign + "Rp\u00a0" + printer.Sprint(number.Decimal(n, number.MaxFractionDigits(0)))
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
	"2006-01",
}

func parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == zeroDateTime {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Period renders a billing period as "July 2025". Unparseable input is
// returned as is, empty input as "-".
func Period(s string) string {
	return layout(s, "January 2006")
}

// DueDate renders a date as "31/07/2025".
func DueDate(s string) string {
	return layout(s, "02/01/2006")
}

// PaidOn renders a settlement timestamp as "05 Jul 2025". The API's zero
// timestamp becomes "-".
func PaidOn(s string) string {
	if strings.TrimSpace(s) == zeroDateTime {
		return "-"
	}
	return layout(s, "02 Jan 2006")
}

func layout(s, out string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	t, ok := parse(s)
	if !ok {
		return s
	}
	return t.Format(out)
}
