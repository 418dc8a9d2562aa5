package statement

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func validTransaction() Transaction {
	return Transaction{
		Date:         "10-06-2024",
		CompanyName:  "Acme Traders",
		BankName:     "HDFC",
		AccountNo:    "ACC-001",
		CreditAmount: decimal.NewFromInt(25000),
	}
}

func TestValidateTransactionAcceptsValidRow(t *testing.T) {
	if err := ValidateTransaction(validTransaction(), testNow); err != nil {
		t.Fatalf("expected valid transaction, got %v", err)
	}
}

func TestValidateTransactionMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		mention string
	}{
		{"missing date", func(tx *Transaction) { tx.Date = "" }, "date"},
		{"missing company", func(tx *Transaction) { tx.CompanyName = "  " }, "companyName"},
		{"missing bank", func(tx *Transaction) { tx.BankName = "" }, "bankName"},
		{"missing account", func(tx *Transaction) { tx.AccountNo = "" }, "accountNo"},
		{"missing amount", func(tx *Transaction) { tx.CreditAmount = decimal.Zero }, "creditAmount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := ValidateTransaction(tx, testNow)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if !strings.Contains(ve.Msg, tt.mention) {
				t.Errorf("error %q does not name field %q", ve.Msg, tt.mention)
			}
		})
	}
}

func TestValidateTransactionNegativeAmount(t *testing.T) {
	tx := validTransaction()
	tx.CreditAmount = decimal.NewFromInt(-100)
	if err := ValidateTransaction(tx, testNow); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestValidateTransactionBadDate(t *testing.T) {
	for _, date := range []string{"2024-06-10", "31-02-2024", "notadate", "10/06/2024"} {
		tx := validTransaction()
		tx.Date = date
		if err := ValidateTransaction(tx, testNow); err == nil {
			t.Errorf("date %q: expected error", date)
		}
	}
}

func TestValidateTransactionFutureDate(t *testing.T) {
	tx := validTransaction()
	tx.Date = "16-06-2024"
	err := ValidateTransaction(tx, testNow)
	if err == nil {
		t.Fatal("expected error for future date")
	}
	if !strings.Contains(err.Error(), "future") {
		t.Errorf("error %q should mention the future", err.Error())
	}
}

func TestValidateBatchNamesFirstOffendingRow(t *testing.T) {
	bad := validTransaction()
	bad.AccountNo = ""
	err := ValidateBatch([]Transaction{validTransaction(), validTransaction(), bad}, testNow)
	if err == nil {
		t.Fatal("expected batch validation error")
	}
	if !strings.Contains(err.Error(), "transaction 3") {
		t.Errorf("error %q should name transaction 3", err.Error())
	}
}

func TestValidateBatchAllValid(t *testing.T) {
	batch := []Transaction{validTransaction(), validTransaction()}
	if err := ValidateBatch(batch, testNow); err != nil {
		t.Fatalf("expected valid batch, got %v", err)
	}
}
