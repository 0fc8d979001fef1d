package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleTableApply(t *testing.T) {
	tests := []struct {
		name  string
		table RuleTable
		in    string
		want  string
	}{
		{"upper and collapse", DefaultNames, "  yulia   ningsih ", "YULIA NINGSIH"},
		{"strip punctuation", DefaultNames, "BUDI, SANTOSO.", "BUDI SANTOSO"},
		{"stray L", DefaultNames, "Gani Muhammad Ramladlan", "GANI MUHAMMAD RAMADLAN"},
		{"double V", DefaultNames, "HADI VVIBOVVO", "HADI WIBOWO"},
		{"merged words", DefaultNames, "MUHAMMADRIZKI", "MUHAMMAD RIZKI"},
		{"truncated wan", DefaultNames, "ANDI SETIAWA", "ANDI SETIAWAN"},
		{"short prefix", DefaultNames, "a1 DEWI LESTARI", "DEWI LESTARI"},
		{"short name kept", DefaultNames, "AN", "AN"},
		{"short token kept when remainder too short", DefaultNames, "AB CD", "AB CD"},
		{"dana forward prefix", danaForwardNames, "WN DNID Oian Permata", "DIAH PERMATA"},
		{"repair exposing a short token", DefaultNames, "VVX ANDI", "ANDI"},
		{"prefix only at start", danaForwardNames, "DIAH WN DNID", "DIAH WN DNID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := tt.table.Apply(tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleTableApplyReportsRationale(t *testing.T) {
	_, applied := danaForwardNames.Apply("WN DNID Oian Permata")
	assert.Equal(t, []string{"removed WN DNID prefix", "D read as O and H read as N"}, applied)

	_, applied = DefaultNames.Apply("BUDI SANTOSO")
	assert.Empty(t, applied)
}

func TestRuleTableApplyIsIdempotent(t *testing.T) {
	inputs := []string{
		"WN DNID Oian Permata",
		"WN DNID WN DNID siti aminah",
		"Gani Muhammad Ramladlan",
		"x HADI VVIBOVVO",
		"SITIAMINAH",
		"BUDI PRATAM",
		"12 ab",
		"VVX ANDI",
	}
	for _, table := range []RuleTable{DefaultNames, danaForwardNames} {
		for _, in := range inputs {
			once, _ := table.Apply(in)
			twice, _ := table.Apply(once)
			assert.Equal(t, once, twice, in)
		}
	}
}

func TestRuleTableNeverTouchesDigits(t *testing.T) {
	got, _ := DefaultNames.Apply("0812****337")
	assert.Equal(t, "", got)
	assert.Equal(t, "", DefaultNames.cleanName("0812"))
}
