package constants

import "fmt"

// ============================================================================
// AUTHENTICATION & SESSION ERRORS
// ============================================================================

const (
	ErrSessionExpired = "Your session has expired. Please login again"
	ErrUnauthorized   = "You are not authorized to perform this action"
)

// ============================================================================
// VALIDATION ERRORS - Statement Upload
// ============================================================================

const (
	ErrEmptyStatement        = "Statement contains no transactions"
	ErrStatementTooLarge     = "Statement exceeds the maximum batch size"
	ErrInvalidFileType       = "Invalid fileType. Expected csv or xml"
	ErrFileNameRequired      = "fileName is required"
	ErrStatementDateInvalid  = "Invalid statementDate. Expected format: DD-MM-YYYY"
	ErrStatementDateInFuture = "statementDate cannot be in the future"
	ErrDuplicateBatch        = "One or more transactions already exist in a previous statement. Remove the duplicates and upload again"
)

// ============================================================================
// VALIDATION ERRORS - Company & Slabs
// ============================================================================

const (
	ErrCompanyNotFound      = "Company not found in the system"
	ErrCompanyNameRequired  = "Company name is required"
	ErrCompanyCreateFailed  = "Failed to create company. Please check if the company already exists"
	ErrSlabsRequired        = "At least the schedule owner and slab list are required"
	ErrSlabNotContiguous    = "Slab schedule is not contiguous. Each slab must start where the previous one ends"
	ErrNoApplicableSlab     = "No commission slab covers the transacted amount"
	ErrScheduleUpdateFailed = "Failed to update slab schedule. Please verify the owner and try again"
)

// ============================================================================
// VALIDATION ERRORS - Advances & Expenses
// ============================================================================

const (
	ErrAdvanceNotFound      = "Advance not found or you don't have access to it"
	ErrAdvanceTypeInvalid   = "Advance type must be either given or received"
	ErrExpenseNotFound      = "Expense not found or you don't have access to it"
	ErrExpenseStatusInvalid = "Expense status must be pending, approved or rejected"
	ErrAmountRequired       = "A positive amount is required"
	ErrYearMonthRequired    = "Both year and month are required"
)

// ============================================================================
// DATABASE OPERATION ERRORS
// ============================================================================

const (
	ErrQueryFailed       = "Database query failed. Please contact support if this persists"
	ErrTransactionFailed = "Transaction failed. Please try again"
	ErrLedgerPostFailed  = "Failed to update the ledger. The statement was recorded as failed"
)

// ============================================================================
// FILE UPLOAD ERRORS
// ============================================================================

const (
	ErrFileUploadFailed  = "File upload failed. Please check the file format and try again"
	ErrInvalidFileFormat = "Invalid file format. Please upload a valid CSV, XLSX or XLS file"
	ErrFileParsingFailed = "Failed to parse file contents. Please check the file format"
	ErrEmptyFile         = "Uploaded file is empty"
	ErrNoMatchingRows    = "No rows in the file match the given bank and account number"
)

// ============================================================================
// GENERAL ERRORS
// ============================================================================

const (
	ErrInternalServer = "Internal server error. Please contact support"
	ErrInvalidRequest = "Invalid request. Please check your input"
)

// ============================================================================
// SUCCESS MESSAGES
// ============================================================================

const (
	SuccessCreated   = "Record created successfully"
	SuccessUpdated   = "Record updated successfully"
	SuccessProcessed = "Statement processed successfully"
	SuccessUploaded  = "File uploaded successfully. %d rows matched"
)

// FormatError formats an error message with additional context
func FormatError(baseError string, context ...interface{}) string {
	if len(context) == 0 {
		return baseError
	}
	return fmt.Sprintf(baseError, context...)
}
