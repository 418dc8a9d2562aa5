package statements

import (
	"encoding/csv"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"BrokerLedger/api"
	"BrokerLedger/api/constants"
	"BrokerLedger/internal/statement"
	"BrokerLedger/internal/store"
)

// Helper: get file extension
func getFileExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// parseStatementFile reads an uploaded CSV/XLSX/XLS into rows of cells.
func parseStatementFile(file multipart.File, ext string) ([][]string, error) {
	switch ext {
	case ".csv":
		r := csv.NewReader(file)
		r.FieldsPerRecord = -1
		return r.ReadAll()
	case ".xlsx":
		f, err := excelize.OpenReader(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		return f.GetRows(sheet)
	case ".xls":
		wb, err := xls.OpenReader(file, "utf-8")
		if err != nil {
			return nil, err
		}
		sheet := wb.GetSheet(0)
		if sheet == nil {
			return nil, errors.New("xls file has no sheets")
		}
		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for i := 0; i <= int(sheet.MaxRow); i++ {
			row := sheet.Row(i)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for j := row.FirstCol(); j < row.LastCol(); j++ {
				cells = append(cells, row.Col(j))
			}
			rows = append(rows, cells)
		}
		return rows, nil
	}
	return nil, errors.New("unsupported file type")
}

// rowToTransaction maps a data row against the header positions.
func rowToTransaction(header map[string]int, row []string) (statement.Transaction, error) {
	cell := func(name string) string {
		idx, ok := header[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	amount, err := decimal.NewFromString(cell("creditamount"))
	if err != nil {
		return statement.Transaction{}, fmt.Errorf("bad creditAmount %q", cell("creditamount"))
	}
	return statement.Transaction{
		Date:         cell("date"),
		CompanyName:  cell("companyname"),
		BankName:     cell("bankname"),
		AccountNo:    cell("accountno"),
		CreditAmount: amount,
	}, nil
}

// UploadBankStatementFile is the file-based reconciliation path: it filters
// the uploaded rows to the requested bank account and stores them on a
// BankStatement batch. No commission resolution, no ledger posting.
func UploadBankStatementFile(batches *store.BankStatementStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())

		if r.MultipartForm == nil {
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrFileUploadFailed)
				return
			}
		}

		bankName := strings.TrimSpace(r.FormValue("bank_name"))
		accountNo := strings.TrimSpace(r.FormValue("account_no"))
		if bankName == "" || accountNo == "" {
			api.RespondWithError(w, http.StatusBadRequest, "bank_name and account_no are required")
			return
		}

		files := r.MultipartForm.File["file"]
		if len(files) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrEmptyFile)
			return
		}
		fileHeader := files[0]
		file, err := fileHeader.Open()
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrFileUploadFailed)
			return
		}
		defer file.Close()

		ext := getFileExt(fileHeader.Filename)
		rows, err := parseStatementFile(file, ext)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrFileParsingFailed)
			return
		}
		if len(rows) < 2 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrEmptyFile)
			return
		}

		header := make(map[string]int, len(rows[0]))
		for i, h := range rows[0] {
			header[strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), " ", ""))] = i
		}

		matched := make([]statement.Transaction, 0)
		for i, row := range rows[1:] {
			txn, err := rowToTransaction(header, row)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.FormatError("Row %d: %s", i+2, err.Error()))
				return
			}
			if strings.EqualFold(txn.BankName, bankName) && strings.EqualFold(txn.AccountNo, accountNo) {
				matched = append(matched, txn)
			}
		}
		if len(matched) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrNoMatchingRows)
			return
		}

		batch := store.BankStatementBatch{
			BatchID:      uuid.New().String(),
			UserID:       userID,
			FileName:     fileHeader.Filename,
			BankName:     bankName,
			AccountNo:    accountNo,
			Status:       statement.StatusProcessed,
			Transactions: matched,
			UploadedAt:   time.Now(),
		}
		if err := batches.SaveBatch(r.Context(), batch); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTransactionFailed)
			return
		}

		api.LogInfo("bank statement batch %s stored for user %s (%d rows)", batch.BatchID, userID, len(matched))
		api.RespondWithPayload(w, map[string]interface{}{
			"batch_id": batch.BatchID,
			"message":  constants.FormatError(constants.SuccessUploaded, len(matched)),
			"batch":    batch,
		})
	}
}

// ListBankStatements returns the caller's file-based upload batches.
func ListBankStatements(batches *store.BankStatementStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		out, err := batches.ListByUser(r.Context(), userID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed)
			return
		}
		api.RespondWithPayload(w, out)
	}
}
