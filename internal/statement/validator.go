package statement

import (
	"fmt"
	"strings"
	"time"
)

// ValidateTransaction checks a single raw transaction. Order of checks:
// required fields (missing ones named), positive credit amount, parseable
// DD-MM-YYYY date, date not in the future. now is injected so callers and
// tests agree on "the current moment".
func ValidateTransaction(t Transaction, now time.Time) error {
	var missing []string
	if strings.TrimSpace(t.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(t.CompanyName) == "" {
		missing = append(missing, "companyName")
	}
	if strings.TrimSpace(t.BankName) == "" {
		missing = append(missing, "bankName")
	}
	if strings.TrimSpace(t.AccountNo) == "" {
		missing = append(missing, "accountNo")
	}
	if t.CreditAmount.IsZero() {
		missing = append(missing, "creditAmount")
	}
	if len(missing) > 0 {
		return &ValidationError{Msg: "missing required fields: " + strings.Join(missing, ", ")}
	}
	if !t.CreditAmount.IsPositive() {
		return &ValidationError{Msg: fmt.Sprintf("credit amount must be greater than zero, got %s", t.CreditAmount.String())}
	}
	parsed, err := time.Parse(DateLayout, t.Date)
	if err != nil {
		return &ValidationError{Msg: fmt.Sprintf("invalid date %q, expected DD-MM-YYYY", t.Date)}
	}
	if parsed.After(now) {
		return &ValidationError{Msg: fmt.Sprintf("transaction date %s is in the future", t.Date)}
	}
	return nil
}

// ValidateBatch validates every transaction before any commission work
// begins. One bad record fails the whole batch; the error names the first
// offending row.
func ValidateBatch(txns []Transaction, now time.Time) error {
	for i, t := range txns {
		if err := ValidateTransaction(t, now); err != nil {
			return &ValidationError{Msg: fmt.Sprintf("transaction %d: %v", i+1, err)}
		}
	}
	return nil
}
