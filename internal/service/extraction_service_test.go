package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/statement-extraction-service/internal/extract"
)

type fakeRasterizer struct {
	pages []extract.PageImage
	err   error
	calls int
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, pdf []byte) ([]extract.PageImage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

type fakeModelClient struct {
	reply string
	err   error
	delay time.Duration
	calls int
}

func (f *fakeModelClient) Invoke(ctx context.Context, req extract.ExtractionRequest) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", extract.NewError(extract.KindUpstreamTimeout, "invoke_model", ctx.Err())
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testPage(t *testing.T) extract.PageImage {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))
	return extract.PageImage{Index: 0, Data: buf.Bytes(), Format: "jpeg"}
}

// modelReply returns a schema-complete model response.
func modelReply(t *testing.T) string {
	t.Helper()
	reply := map[string]any{
		"metadata": map[string]any{
			"bank_name":         "First National",
			"account_number":    "****1234",
			"account_holder":    "J. Doe",
			"year":              "2024",
			"month":             "03",
			"currency":          "USD",
			"validation_status": "passed",
			"validation_details": map[string]any{
				"balances_match":             true,
				"all_transactions_processed": true,
				"date_range_covered":         "2024-03-01 to 2024-03-31",
				"missing_transactions":       []any{},
				"rounding_differences":       0.01,
			},
		},
		"Total_Transactions": map[string]any{
			"Total_Deposits": 200.0, "Recurring_Deposits": 200.0, "One_Off_Deposits": 0.0,
			"Total_Withdrawals": -150.0, "Recurring_Withdrawals": -100.0,
			"Irregular_Withdrawals": -50.0, "Net_Change": 50.0,
		},
		"Checking_Summary": map[string]any{
			"Beginning_Balance": 100.0, "Deposits_and_Additions": 200.0,
			"Electronic_Withdrawals": -150.0, "Ending_Balance": 150.0,
		},
		"Transaction_Detail": []any{
			map[string]any{
				"id": 1, "Date": "2024-03-04", "Description": "GROCERY STORE",
				"Transaction_Type": "withdrawal", "Category": "Groceries",
				"Amount": -50.0, "Balance": 250.0, "Category_Confidence": 0.9,
				"Location": "", "Notes": "",
				"Flagged": map[string]any{"is_high_value": false, "reason": ""},
			},
		},
		"spending_analysis": map[string]any{
			"total_spent_on_subscriptions": 15.99,
			"largest_transaction": map[string]any{
				"Description": "GROCERY STORE", "Amount": -50.0, "Date": "2024-03-04",
			},
			"average_daily_spending": 4.84,
		},
		"error_tracking": map[string]any{
			"unprocessed_sections": []any{}, "parsing_errors": []any{},
		},
	}
	b, err := json.Marshal(reply)
	require.NoError(t, err)
	return string(b)
}

func newTestService(r *fakeRasterizer, c *fakeModelClient) *ExtractionService {
	return NewExtractionService(r, c, Config{MaxWorkers: 2}, zerolog.Nop())
}

func TestProcessSuccess(t *testing.T) {
	rast := &fakeRasterizer{pages: []extract.PageImage{testPage(t)}}
	client := &fakeModelClient{reply: modelReply(t)}
	svc := newTestService(rast, client)

	pdf := []byte("%PDF-1.4 fake")
	data, err := svc.Process(context.Background(), pdf, "statement.pdf")
	require.NoError(t, err)

	assert.Equal(t, 1, rast.calls)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, "First National", data.Metadata.BankName)

	// File identity and parser provenance are stamped server-side.
	assert.Equal(t, "statement.pdf", data.FileMetadata.FileName)
	assert.NotEmpty(t, data.FileMetadata.FileSize)
	assert.Len(t, data.FileMetadata.FileHash, 64)
	assert.Equal(t, "BankStatementParser v1.0", data.Metadata.ParsedBy)
	assert.Equal(t, "UTC", data.Metadata.Timezone)
	assert.NotEmpty(t, data.Metadata.ProcessingDuration)
	assert.False(t, data.Metadata.ParsedOn.IsZero())
}

func TestProcessRejectsUnsupportedFileTypeBeforeAnyWork(t *testing.T) {
	rast := &fakeRasterizer{pages: []extract.PageImage{testPage(t)}}
	client := &fakeModelClient{reply: modelReply(t)}
	svc := newTestService(rast, client)

	_, err := svc.Process(context.Background(), []byte("hello"), "test.txt")

	kind, ok := extract.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, extract.KindUnsupportedFileType, kind)
	assert.Zero(t, rast.calls, "rasterizer must not run for rejected uploads")
	assert.Zero(t, client.calls, "model must not be invoked for rejected uploads")
}

func TestProcessExtensionCheckIsCaseInsensitive(t *testing.T) {
	rast := &fakeRasterizer{pages: []extract.PageImage{testPage(t)}}
	client := &fakeModelClient{reply: modelReply(t)}
	svc := newTestService(rast, client)

	_, err := svc.Process(context.Background(), []byte("%PDF"), "Statement.PDF")
	require.NoError(t, err)
}

func TestProcessPropagatesEmptyDocument(t *testing.T) {
	rast := &fakeRasterizer{err: extract.NewError(extract.KindEmptyDocument, "rasterize", fmt.Errorf("no pages"))}
	client := &fakeModelClient{}
	svc := newTestService(rast, client)

	_, err := svc.Process(context.Background(), []byte("%PDF"), "empty.pdf")

	kind, ok := extract.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, extract.KindEmptyDocument, kind)
	assert.Zero(t, client.calls, "model must not be invoked when rasterization fails")
}

func TestProcessSurfacesUpstreamTimeoutWithinBound(t *testing.T) {
	rast := &fakeRasterizer{pages: []extract.PageImage{testPage(t)}}
	client := &fakeModelClient{delay: 5 * time.Second}
	svc := newTestService(rast, client)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := svc.Process(ctx, []byte("%PDF"), "slow.pdf")
	elapsed := time.Since(start)

	kind, ok := extract.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, extract.KindUpstreamTimeout, kind)
	assert.Less(t, elapsed, 2*time.Second, "wall time must be bounded by the timeout, not the upstream")
}

func TestProcessSaturatedWorkerGateIsNotAnUpstreamError(t *testing.T) {
	rast := &fakeRasterizer{pages: []extract.PageImage{testPage(t)}}
	client := &fakeModelClient{reply: modelReply(t)}
	svc := NewExtractionService(rast, client, Config{MaxWorkers: 1}, zerolog.Nop())

	svc.workerQueue <- struct{}{} // occupy the only worker slot

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Process(ctx, []byte("%PDF"), "statement.pdf")
	require.Error(t, err)

	_, ok := extract.KindOf(err)
	assert.False(t, ok, "gate saturation must not masquerade as a pipeline error kind")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, rast.calls)
	assert.Zero(t, client.calls)
}

func TestProcessDoesNotRetryModelFailures(t *testing.T) {
	rast := &fakeRasterizer{pages: []extract.PageImage{testPage(t)}}
	client := &fakeModelClient{err: extract.NewError(extract.KindUpstreamRejected, "invoke_model", fmt.Errorf("quota exceeded"))}
	svc := newTestService(rast, client)

	_, err := svc.Process(context.Background(), []byte("%PDF"), "statement.pdf")

	kind, ok := extract.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, extract.KindUpstreamRejected, kind)
	assert.Equal(t, 1, client.calls, "a single upstream failure surfaces immediately")
}
