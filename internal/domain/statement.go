package domain

import (
	"time"
)

// ValidationDetails carries the model's self-reported reconciliation checks.
type ValidationDetails struct {
	BalancesMatch            bool     `json:"balances_match"`
	AllTransactionsProcessed bool     `json:"all_transactions_processed"`
	DateRangeCovered         string   `json:"date_range_covered"`
	MissingTransactions      []string `json:"missing_transactions"`
	RoundingDifferences      float64  `json:"rounding_differences"`
}

// Metadata identifies the statement and records how it was parsed.
// ParsedBy, ParsedOn, ProcessingDuration and Timezone are stamped by the
// extraction service, not taken from the model output.
type Metadata struct {
	BankName           string            `json:"bank_name"`
	AccountNumber      string            `json:"account_number"`
	AccountHolder      string            `json:"account_holder"`
	Year               string            `json:"year"`
	Month              string            `json:"month"`
	Currency           string            `json:"currency"`
	ParsedBy           string            `json:"parsed_by"`
	ParsedOn           time.Time         `json:"parsed_on"`
	ProcessingDuration string            `json:"processing_duration"`
	Timezone           string            `json:"timezone"`
	ValidationStatus   string            `json:"validation_status"`
	ValidationDetails  ValidationDetails `json:"validation_details"`
}

// FileMetadata describes the uploaded file itself. Computed from the actual
// upload bytes, never trusted from the model.
type FileMetadata struct {
	FileName string `json:"file_name"`
	FileSize string `json:"file_size"`
	FileHash string `json:"file_hash"`
}

// TotalTransactions aggregates deposit and withdrawal figures.
type TotalTransactions struct {
	TotalDeposits        float64 `json:"Total_Deposits"`
	RecurringDeposits    float64 `json:"Recurring_Deposits"`
	OneOffDeposits       float64 `json:"One_Off_Deposits"`
	TotalWithdrawals     float64 `json:"Total_Withdrawals"`
	RecurringWithdrawals float64 `json:"Recurring_Withdrawals"`
	IrregularWithdrawals float64 `json:"Irregular_Withdrawals"`
	NetChange            float64 `json:"Net_Change"`
}

// CheckingSummary holds the statement's period balances.
type CheckingSummary struct {
	BeginningBalance      float64 `json:"Beginning_Balance"`
	DepositsAndAdditions  float64 `json:"Deposits_and_Additions"`
	ElectronicWithdrawals float64 `json:"Electronic_Withdrawals"`
	EndingBalance         float64 `json:"Ending_Balance"`
}

// FlaggedTransaction marks a transaction the model considers notable.
type FlaggedTransaction struct {
	IsHighValue bool   `json:"is_high_value"`
	Reason      string `json:"reason"`
}

// TransactionDetail is one statement line item. IDs are unique within a
// statement and ordering follows statement chronology.
type TransactionDetail struct {
	ID                 int                `json:"id"`
	Date               string             `json:"Date"`
	Description        string             `json:"Description"`
	TransactionType    string             `json:"Transaction_Type"`
	Category           string             `json:"Category"`
	Amount             float64            `json:"Amount"`
	Balance            float64            `json:"Balance"`
	CategoryConfidence float64            `json:"Category_Confidence"`
	Location           string             `json:"Location"`
	Notes              string             `json:"Notes"`
	Flagged            FlaggedTransaction `json:"Flagged"`
}

// LargestTransaction is the single biggest movement on the statement.
type LargestTransaction struct {
	Description string  `json:"Description"`
	Amount      float64 `json:"Amount"`
	Date        string  `json:"Date"`
}

// SpendingAnalysis summarizes spending behavior across the period.
type SpendingAnalysis struct {
	TotalSpentOnSubscriptions float64            `json:"total_spent_on_subscriptions"`
	LargestTransaction        LargestTransaction `json:"largest_transaction"`
	AverageDailySpending      float64            `json:"average_daily_spending"`
}

// ErrorTracking records what the model could not process.
type ErrorTracking struct {
	UnprocessedSections []string `json:"unprocessed_sections"`
	ParsingErrors       []string `json:"parsing_errors"`
}

// BankStatementData is the canonical extraction result for one statement.
// It is built once per request and not mutated afterwards.
type BankStatementData struct {
	Metadata          Metadata            `json:"metadata"`
	FileMetadata      FileMetadata        `json:"file_metadata"`
	TotalTransactions TotalTransactions   `json:"Total_Transactions"`
	CheckingSummary   CheckingSummary     `json:"Checking_Summary"`
	TransactionDetail []TransactionDetail `json:"Transaction_Detail"`
	SpendingAnalysis  SpendingAnalysis    `json:"spending_analysis"`
	ErrorTracking     ErrorTracking       `json:"error_tracking"`
}
