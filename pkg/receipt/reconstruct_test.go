package receipt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconstructDigitsJoinsWrappedLines(t *testing.T) {
	got, ok := ReconstructDigits([]string{"102050", "12141001", "01"}, 0, 10)
	assert.True(t, ok)
	assert.Equal(t, "1020501214100101", got)
}

func TestReconstructDigitsStopsAtNonDigitLine(t *testing.T) {
	lines := []string{"ID Transaksi", "12345678", "90123456", "Rp 10.000", "99999999"}
	got, ok := ReconstructDigits(lines, 1, 10)
	assert.True(t, ok)
	assert.Equal(t, "1234567890123456", got)
}

func TestReconstructDigitsRejectsShortResult(t *testing.T) {
	_, ok := ReconstructDigits([]string{"2025", "07"}, 0, 12)
	assert.False(t, ok)

	_, ok = ReconstructDigits([]string{"Ref"}, 0, 1)
	assert.False(t, ok)

	_, ok = ReconstructDigits([]string{"123"}, 5, 1)
	assert.False(t, ok)
}

func TestReconstructDigitsBoundedToForty(t *testing.T) {
	a := strings.Repeat("1", 25)
	b := strings.Repeat("2", 20)
	got, ok := ReconstructDigits([]string{a, b}, 0, 10)
	assert.True(t, ok)
	assert.Equal(t, a, got)

	long := strings.Repeat("9", 45)
	got, ok = ReconstructDigits([]string{long}, 0, 10)
	assert.True(t, ok)
	assert.Len(t, got, maxIdentifierDigits)
}

func TestDigitJoinerCompleteLengthStopsEarly(t *testing.T) {
	head := strings.Repeat("3", 37)
	j := DigitJoiner{MinAccepted: 30, Complete: 37}
	got, ok := j.Join([]string{head, "123"}, 0)
	assert.True(t, ok)
	assert.Equal(t, head, got)
}

func TestJoinFromLabelLine(t *testing.T) {
	got, ok := DigitJoiner{MinAccepted: 20}.joinFrom("2025072143504461", []string{"No. Transaksi 2025072143504461", "9659"}, 1)
	assert.True(t, ok)
	assert.Equal(t, "20250721435044619659", got)
}
