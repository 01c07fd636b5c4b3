package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// buildStatementJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the
// model's output, as a generic map. The prompt describes the same shape in
// prose; this is the mechanical enforcement of it. file_metadata and the
// parser-stamped metadata fields are filled in server-side and therefore not
// required from the model.
func buildStatementJSONSchema() map[string]any {
	amount := map[string]any{"type": "number"}
	str := map[string]any{"type": "string"}
	strList := map[string]any{"type": "array", "items": str}

	validationDetails := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"balances_match":             map[string]any{"type": "boolean"},
			"all_transactions_processed": map[string]any{"type": "boolean"},
			"date_range_covered":         str,
			"missing_transactions":       strList,
			"rounding_differences":       amount,
		},
		"required": []string{
			"balances_match", "all_transactions_processed",
			"date_range_covered", "rounding_differences",
		},
	}

	metadata := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"bank_name":          str,
			"account_number":     str,
			"account_holder":     str,
			"year":               str,
			"month":              str,
			"currency":           str,
			"validation_status":  str,
			"validation_details": validationDetails,
		},
		"required": []string{
			"bank_name", "account_number", "account_holder",
			"year", "month", "currency",
			"validation_status", "validation_details",
		},
	}

	totalTransactions := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"Total_Deposits":        amount,
			"Recurring_Deposits":    amount,
			"One_Off_Deposits":      amount,
			"Total_Withdrawals":     amount,
			"Recurring_Withdrawals": amount,
			"Irregular_Withdrawals": amount,
			"Net_Change":            amount,
		},
		"required": []string{"Total_Deposits", "Total_Withdrawals", "Net_Change"},
	}

	checkingSummary := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"Beginning_Balance":      amount,
			"Deposits_and_Additions": amount,
			"Electronic_Withdrawals": amount,
			"Ending_Balance":         amount,
		},
		"required": []string{
			"Beginning_Balance", "Deposits_and_Additions",
			"Electronic_Withdrawals", "Ending_Balance",
		},
	}

	transactionDetail := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":               map[string]any{"type": "integer"},
			"Date":             str,
			"Description":      str,
			"Transaction_Type": str,
			"Category":         str,
			"Amount":           amount,
			"Balance":          amount,
			"Category_Confidence": map[string]any{
				"type": "number", "minimum": 0.0, "maximum": 1.0,
			},
			"Location": str,
			"Notes":    str,
			"Flagged": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"is_high_value": map[string]any{"type": "boolean"},
					"reason":        str,
				},
				"required": []string{"is_high_value"},
			},
		},
		"required": []string{
			"id", "Date", "Description", "Transaction_Type",
			"Category", "Amount", "Balance", "Category_Confidence", "Flagged",
		},
	}

	spendingAnalysis := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"total_spent_on_subscriptions": amount,
			"largest_transaction": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"Description": str,
					"Amount":      amount,
					"Date":        str,
				},
				"required": []string{"Description", "Amount", "Date"},
			},
			"average_daily_spending": amount,
		},
		"required": []string{
			"total_spent_on_subscriptions",
			"largest_transaction", "average_daily_spending",
		},
	}

	errorTracking := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"unprocessed_sections": strList,
			"parsing_errors":       strList,
		},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"metadata":           metadata,
			"Total_Transactions": totalTransactions,
			"Checking_Summary":   checkingSummary,
			"Transaction_Detail": map[string]any{
				"type":  "array",
				"items": transactionDetail,
			},
			"spending_analysis": spendingAnalysis,
			"error_tracking":    errorTracking,
		},
		"required": []string{
			"metadata", "Total_Transactions", "Checking_Summary",
			"Transaction_Detail", "spending_analysis", "error_tracking",
		},
	}
}

// validateAgainstSchema validates data against schemaMap and reports the
// first failing instance path plus the expectation that was violated.
func validateAgainstSchema(schemaMap map[string]any, data []byte) (path, detail string, err error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return "", "", fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("statement.json", bytes.NewReader(b)); err != nil {
		return "", "", fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("statement.json")
	if err != nil {
		return "", "", fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return "", "", fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := leafCause(ve)
			return leaf.InstanceLocation, leaf.Message, err
		}
		return "", err.Error(), err
	}
	return "", "", nil
}

// leafCause walks to the deepest cause so the reported path names the actual
// offending field instead of the document root.
func leafCause(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}
