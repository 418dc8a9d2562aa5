package statement

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFingerprintAmountCanonicalization(t *testing.T) {
	a := validTransaction()
	a.CreditAmount, _ = decimal.NewFromString("100")
	b := validTransaction()
	b.CreditAmount, _ = decimal.NewFromString("100.00")

	if FingerprintOf(a) != FingerprintOf(b) {
		t.Fatal("100 and 100.00 should share a fingerprint")
	}
}

func TestFingerprintDistinguishesAccountNo(t *testing.T) {
	a := validTransaction()
	b := validTransaction()
	b.AccountNo = "ACC-002"

	if FingerprintOf(a) == FingerprintOf(b) {
		t.Fatal("rows differing only in accountNo must have distinct fingerprints")
	}
}

func TestIndexFirstDuplicate(t *testing.T) {
	ix := NewIndex()
	first := validTransaction()
	ix.Observe("user-1", []Transaction{first})

	fresh := validTransaction()
	fresh.AccountNo = "ACC-002"

	batch := []Transaction{fresh, first}
	if got := ix.FirstDuplicate("user-1", batch); got != 1 {
		t.Errorf("FirstDuplicate = %d, want 1", got)
	}
}

func TestIndexIsPerUser(t *testing.T) {
	ix := NewIndex()
	tx := validTransaction()
	ix.Observe("user-1", []Transaction{tx})

	if got := ix.FirstDuplicate("user-2", []Transaction{tx}); got != -1 {
		t.Errorf("other user's history leaked: FirstDuplicate = %d, want -1", got)
	}
	if !ix.Contains("user-1", FingerprintOf(tx)) {
		t.Error("owner's history missing the observed transaction")
	}
}

func TestIndexReplaceUser(t *testing.T) {
	ix := NewIndex()
	old := validTransaction()
	ix.Observe("user-1", []Transaction{old})

	replacement := validTransaction()
	replacement.AccountNo = "ACC-009"
	ix.ReplaceUser("user-1", []Fingerprint{FingerprintOf(replacement)})

	if ix.Contains("user-1", FingerprintOf(old)) {
		t.Error("old fingerprint survived ReplaceUser")
	}
	if !ix.Contains("user-1", FingerprintOf(replacement)) {
		t.Error("replacement fingerprint missing after ReplaceUser")
	}
}

func TestIndexReset(t *testing.T) {
	ix := NewIndex()
	tx := validTransaction()
	ix.Observe("user-1", []Transaction{tx})
	ix.Reset()
	if ix.Contains("user-1", FingerprintOf(tx)) {
		t.Error("fingerprint survived Reset")
	}
}
