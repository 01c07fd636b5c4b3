package extract

// ImageURL references an inline image in a chat message.
type ImageURL struct {
	URL string `json:"url"`
}

// ContentPart is one element of a multi-part chat message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// Message is a single chat message in the upstream request.
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ExtractionRequest is the outbound payload to the vision model: the fixed
// system instruction plus every encoded page, in page order.
type ExtractionRequest struct {
	Messages []Message
}

const systemPrompt = `You are a specialized bank statement analyzer. Extract and structure the following information from the provided bank statement images:
1. Account Information (bank name, account holder, account number, statement period, currency).
2. Transaction Summary (total deposits, withdrawals, balances, net change).
3. Transaction Details (date, description, type, category, amount, running balance).
4. Spending Analysis (subscription spend, largest transaction, average daily spending).
5. Validation Details (balance reconciliation, completeness, missing or unclear information).

Return ONLY a single valid JSON object with exactly this structure and nothing else:
{
  "metadata": {
    "bank_name": "...",
    "account_number": "...",
    "account_holder": "...",
    "year": "YYYY",
    "month": "MM",
    "currency": "ISO 4217 code",
    "validation_status": "passed|failed|partial",
    "validation_details": {
      "balances_match": true,
      "all_transactions_processed": true,
      "date_range_covered": "YYYY-MM-DD to YYYY-MM-DD",
      "missing_transactions": ["..."],
      "rounding_differences": 0.0
    }
  },
  "Total_Transactions": {
    "Total_Deposits": 0.0,
    "Recurring_Deposits": 0.0,
    "One_Off_Deposits": 0.0,
    "Total_Withdrawals": 0.0,
    "Recurring_Withdrawals": 0.0,
    "Irregular_Withdrawals": 0.0,
    "Net_Change": 0.0
  },
  "Checking_Summary": {
    "Beginning_Balance": 0.0,
    "Deposits_and_Additions": 0.0,
    "Electronic_Withdrawals": 0.0,
    "Ending_Balance": 0.0
  },
  "Transaction_Detail": [
    {
      "id": 1,
      "Date": "YYYY-MM-DD",
      "Description": "...",
      "Transaction_Type": "deposit|withdrawal|fee|transfer",
      "Category": "...",
      "Amount": 0.0,
      "Balance": 0.0,
      "Category_Confidence": 0.0,
      "Location": "",
      "Notes": "",
      "Flagged": {"is_high_value": false, "reason": ""}
    }
  ],
  "spending_analysis": {
    "total_spent_on_subscriptions": 0.0,
    "largest_transaction": {"Description": "...", "Amount": 0.0, "Date": "YYYY-MM-DD"},
    "average_daily_spending": 0.0
  },
  "error_tracking": {
    "unprocessed_sections": [],
    "parsing_errors": []
  }
}

Rules:
- Transaction ids must be unique integers; keep transaction order chronological as printed on the statement. If ordering is ambiguous, note it in error_tracking.parsing_errors.
- Amounts are signed decimal numbers (withdrawals negative, deposits positive).
- Category_Confidence is a number between 0 and 1.
- Record any section you could not process in error_tracking.unprocessed_sections.
- Do not wrap the response in code fences or add any text outside the JSON object.`

const userPrompt = "Extract all required data from these bank statement images. Return only JSON."

// BuildRequest assembles the two-part extraction request: the fixed system
// instruction and a user message carrying every page as an inline data
// reference, in page order. Pure and deterministic.
func BuildRequest(images []EncodedImage) ExtractionRequest {
	userContent := make([]ContentPart, 0, len(images)+1)
	userContent = append(userContent, ContentPart{Type: "text", Text: userPrompt})
	for _, img := range images {
		userContent = append(userContent, ContentPart{
			Type:     "image_url",
			ImageURL: &ImageURL{URL: img.DataURI},
		})
	}

	return ExtractionRequest{
		Messages: []Message{
			{Role: "system", Content: []ContentPart{{Type: "text", Text: systemPrompt}}},
			{Role: "user", Content: userContent},
		},
	}
}
