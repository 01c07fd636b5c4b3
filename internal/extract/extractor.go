package extract

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/docuflow/statement-extraction-service/internal/domain"
)

const stageExtract = "extract_response"

// Extract locates the JSON object embedded in the model's free-text reply,
// validates it against the statement schema, and decodes it into a typed
// BankStatementData. The model may surround the object with prose or code
// fences; both are tolerated. The output shape is never trusted: anything
// that does not satisfy the schema fails with a SchemaViolation naming the
// offending path.
func Extract(rawText string) (*domain.BankStatementData, error) {
	cleaned := stripCodeFences(rawText)

	span, ok := firstJSONObject(cleaned)
	if !ok {
		return nil, NewError(KindNoStructuredContent, stageExtract,
			fmt.Errorf("no JSON object found in model response (%d chars)", len(rawText)))
	}

	var probe any
	if err := json.Unmarshal([]byte(span), &probe); err != nil {
		return nil, NewError(KindMalformedJSON, stageExtract, err)
	}

	path, detail, err := validateAgainstSchema(buildStatementJSONSchema(), []byte(span))
	if err != nil {
		return nil, &Error{
			Kind:  KindSchemaViolation,
			Stage: stageExtract,
			Page:  -1,
			Path:  path,
			Err:   fmt.Errorf("%s", detail),
		}
	}

	var data domain.BankStatementData
	if err := json.Unmarshal([]byte(span), &data); err != nil {
		return nil, NewError(KindMalformedJSON, stageExtract, err)
	}

	if path, err := checkTransactionIDs(data.TransactionDetail); err != nil {
		return nil, &Error{Kind: KindSchemaViolation, Stage: stageExtract, Page: -1, Path: path, Err: err}
	}

	crossCheckBalances(&data)

	return &data, nil
}

// checkTransactionIDs enforces id uniqueness across the statement.
func checkTransactionIDs(txs []domain.TransactionDetail) (string, error) {
	seen := make(map[int]int, len(txs))
	for i, tx := range txs {
		if prev, dup := seen[tx.ID]; dup {
			path := fmt.Sprintf("/Transaction_Detail/%d/id", i)
			return path, fmt.Errorf("duplicate transaction id %d (first used at index %d)", tx.ID, prev)
		}
		seen[tx.ID] = i
	}
	return "", nil
}

// crossCheckBalances recomputes the Beginning + Net_Change = Ending arithmetic
// the model claims to have verified. The model's verdict is not overwritten;
// an inconsistency is recorded in error_tracking so callers can see the
// self-reported flag disagrees with the numbers.
func crossCheckBalances(data *domain.BankStatementData) {
	tolerance := math.Abs(data.Metadata.ValidationDetails.RoundingDifferences)
	if tolerance < 0.01 {
		tolerance = 0.01
	}

	expected := data.CheckingSummary.BeginningBalance + data.TotalTransactions.NetChange
	diff := math.Abs(expected - data.CheckingSummary.EndingBalance)
	reconciles := diff <= tolerance

	if data.Metadata.ValidationDetails.BalancesMatch != reconciles {
		data.ErrorTracking.ParsingErrors = append(data.ErrorTracking.ParsingErrors,
			fmt.Sprintf("balances_match=%t is inconsistent with statement arithmetic: beginning %.2f + net change %.2f vs ending %.2f (diff %.2f, tolerance %.2f)",
				data.Metadata.ValidationDetails.BalancesMatch,
				data.CheckingSummary.BeginningBalance,
				data.TotalTransactions.NetChange,
				data.CheckingSummary.EndingBalance,
				diff, tolerance))
	}
}
