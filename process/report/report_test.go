package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buktitf/models"
)

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange("2025-12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)

	_, _, err = MonthRange("12/2025")
	assert.Error(t, err)
}

func TestSummarizeGroupsByBank(t *testing.T) {
	rows := []models.ReceiptUpload{
		{BankType: "BRI", Amount: 300000, DetectedBank: true},
		{BankType: "BCA", Amount: 130000},
		{BankType: "BRI", Amount: 0, Failed: true},
		{BankType: "BCA", Amount: 20000, DetectedBank: true},
	}
	m := Summarize("2025-07", rows)

	require.Len(t, m.Banks, 2)
	assert.Equal(t, BankTotal{Bank: "BCA", Uploads: 2, Detected: 1, Amount: 150000}, m.Banks[0])
	assert.Equal(t, BankTotal{Bank: "BRI", Uploads: 2, Failed: 1, Detected: 1, Amount: 300000}, m.Banks[1])
	assert.Equal(t, BankTotal{Bank: "ALL", Uploads: 4, Failed: 1, Detected: 2, Amount: 450000}, m.Totals)
}

func TestWriteListsTotalsLast(t *testing.T) {
	var buf bytes.Buffer
	Write(&buf, Summarize("2025-07", []models.ReceiptUpload{{BankType: "DANA", Amount: 5}}))
	out := buf.String()
	assert.Contains(t, out, "month=2025-07")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("DANA")), bytes.Index(buf.Bytes(), []byte("ALL")))
}
