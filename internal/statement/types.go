package statement

import (
	"time"

	"github.com/shopspring/decimal"

	"BrokerLedger/internal/commission"
)

// DateLayout is the transaction date format on the wire (DD-MM-YYYY).
const DateLayout = "02-01-2006"

// Statuses a statement record moves through. A record is created pending,
// ends processed or failed, and is never deleted or re-processed.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

// Transaction is one raw credit row from an uploaded statement. Immutable
// once accepted.
type Transaction struct {
	Date         string          `json:"date"`
	CompanyName  string          `json:"companyName"`
	BankName     string          `json:"bankName"`
	AccountNo    string          `json:"accountNo"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
}

// Upload is the JSON statement-upload payload.
type Upload struct {
	FileName      string        `json:"fileName"`
	FileType      string        `json:"fileType"` // csv | xml
	StatementDate string        `json:"statementDate"`
	Transactions  []Transaction `json:"transactions"`
}

// CompanySummary is the per-company aggregate produced by one ingestion run.
// Append-only: created once, never mutated.
type CompanySummary struct {
	CompanyID   string          `json:"companyId"`
	CompanyName string          `json:"companyName"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Commission  decimal.Decimal `json:"commission"`
	AppliedSlab commission.Slab `json:"appliedSlab"`
}

// Record is the persisted statement, owned by the uploading user.
type Record struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	FileName        string           `json:"fileName"`
	FileType        string           `json:"fileType"`
	StatementDate   time.Time        `json:"statementDate"`
	UploadDate      time.Time        `json:"uploadDate"`
	Status          string           `json:"status"`
	Error           string           `json:"error,omitempty"`
	Transactions    []Transaction    `json:"originalTransactions"`
	Summaries       []CompanySummary `json:"companySummaries"`
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
	TotalCommission decimal.Decimal  `json:"totalCommission"`
}

// Company is the slice of the company master the engine reads: identity plus
// its validated slab schedule.
type Company struct {
	ID       string
	Name     string
	Schedule commission.Schedule
}
