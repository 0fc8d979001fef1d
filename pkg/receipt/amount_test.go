package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"Rp 130,000.00", 130000, true},
		{"Rp300.000", 300000, true},
		{"Rp 1.250.000,00", 1250000, true},
		{"Rp0", 0, true},
		{"Rp 0,00", 0, true},
		{"Rp. 25.000", 25000, true},
		{"Total Bayar Rp300.000", 300000, true},
		{"RP 7,500", 7500, true},
		{"no amount here", 0, false},
		{"1.250.000", 0, false},
		{"Berita: SHARP 5000", 0, false},
		{"Catatan: bayarRp 5000", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

// The total label wins over the first bare amount. This is a layout
// heuristic, not a guarantee: receipts that print a larger promo line under
// "Total" will pick that line.
func TestHeuristicLabeledTotalBeatsBareAmount(t *testing.T) {
	lines := []string{"Rp 50.000", "Nominal", "Rp 50.000", "Total Bayar", "Rp 40.000"}
	s := newAmountScanner()
	for i := range lines {
		s.scan(lines, i)
	}
	var rec TransferRecord
	s.apply(&rec)
	assert.Equal(t, int64(40000), rec.Amount)
}

func TestFirstBareAmountWinsWithoutLabel(t *testing.T) {
	lines := []string{"Rp 10.000", "Rp 99.000"}
	s := newAmountScanner()
	for i := range lines {
		s.scan(lines, i)
	}
	var rec TransferRecord
	s.apply(&rec)
	assert.Equal(t, int64(10000), rec.Amount)
}

func TestFeeLineIsNotTheAmount(t *testing.T) {
	lines := []string{"Biaya Admin", "Rp 2.500", "Rp 75.000"}
	s := newAmountScanner()
	for i := range lines {
		s.scan(lines, i)
	}
	var rec TransferRecord
	s.apply(&rec)
	assert.Equal(t, int64(75000), rec.Amount)
	assert.Equal(t, int64(2500), rec.AdminFee)
}

func TestFillDefaultsKeepsAmountsNonNegative(t *testing.T) {
	rec := TransferRecord{Amount: -5000, AdminFee: -100}
	rec.fillDefaults(fixedNow)
	assert.Equal(t, int64(5000), rec.Amount)
	assert.Equal(t, int64(100), rec.AdminFee)
}
