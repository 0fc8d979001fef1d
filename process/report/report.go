// Package report summarizes the receipt upload log per provider for a month.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"gorm.io/gorm"

	"buktitf/models"
)

// BankTotal aggregates one provider's uploads.
type BankTotal struct {
	Bank     string
	Uploads  int
	Failed   int
	Detected int
	Amount   int64
}

// Monthly is the report for one month (UTC).
type Monthly struct {
	Month  string
	Banks  []BankTotal
	Totals BankTotal
}

// MonthRange returns [start, end) for a YYYY-MM month in UTC.
func MonthRange(month string) (time.Time, time.Time, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month format, expected YYYY-MM: %w", err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

// Summarize groups rows by bank tag, sorted by tag.
func Summarize(month string, rows []models.ReceiptUpload) Monthly {
	by := map[string]*BankTotal{}
	out := Monthly{Month: month, Totals: BankTotal{Bank: "ALL"}}
	for _, r := range rows {
		bt, ok := by[r.BankType]
		if !ok {
			bt = &BankTotal{Bank: r.BankType}
			by[r.BankType] = bt
		}
		for _, t := range []*BankTotal{bt, &out.Totals} {
			t.Uploads++
			t.Amount += r.Amount
			if r.Failed {
				t.Failed++
			}
			if r.DetectedBank {
				t.Detected++
			}
		}
	}
	for _, bt := range by {
		out.Banks = append(out.Banks, *bt)
	}
	sort.Slice(out.Banks, func(i, j int) bool { return out.Banks[i].Bank < out.Banks[j].Bank })
	return out
}

// Run loads the month's uploads and writes the report to w. With list set it
// also prints every row.
func Run(ctx context.Context, db *gorm.DB, w io.Writer, month string, list bool) error {
	start, end, err := MonthRange(month)
	if err != nil {
		return err
	}
	var rows []models.ReceiptUpload
	if err := db.WithContext(ctx).Where("created_at >= ? AND created_at < ?", start, end).Order("id").Find(&rows).Error; err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	Write(w, Summarize(month, rows))
	if list {
		for _, r := range rows {
			fmt.Fprintf(w, "%d|%s|%s|%s|%d|%s|%s\n", r.ID, r.BankType, r.FileName, r.ReceiverName, r.Amount, r.ReferenceNumber, r.CreatedAt.Format(time.RFC3339))
		}
	}
	return nil
}

// Write prints m as a plain-text table.
func Write(w io.Writer, m Monthly) {
	fmt.Fprintf(w, "Receipt uploads month=%s (UTC):\n", m.Month)
	for _, b := range append(m.Banks, m.Totals) {
		fmt.Fprintf(w, "  %-8s uploads=%d failed=%d detected=%d total_amount=%d\n", b.Bank, b.Uploads, b.Failed, b.Detected, b.Amount)
	}
}
