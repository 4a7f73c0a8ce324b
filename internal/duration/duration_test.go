package duration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"anachron/internal/civil"
)

func d(s string) civil.NullDate { return civil.ParseLoose(s) }

func TestDays(t *testing.T) {
	tests := []struct {
		name       string
		collected  civil.NullDate
		designated civil.NullDate
		want       civil.NullInt
	}{
		{"positive", d("2021-03-20"), d("2021-02-18"), civil.Int(30)},
		{"zero", d("2021-02-18"), d("2021-02-18"), civil.Int(0)},
		{"negative", d("2020-12-01"), d("2021-01-01"), civil.Int(-31)},
		{"collection year typo far ahead", d("3021-03-20"), d("2021-02-18"), civil.Int(365272)},
		{"collection year typo far behind", d("1021-03-20"), d("2021-02-18"), civil.Int(-365213)},
		{"missing collection", civil.NullDate{}, d("2021-01-01"), civil.NullInt{}},
		{"missing designation", d("2021-01-01"), civil.NullDate{}, civil.NullInt{}},
		{"both missing", civil.NullDate{}, civil.NullDate{}, civil.NullInt{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Days(tc.collected, tc.designated)
			assert.Equal(t, tc.want, got)
			// same inputs, same answer
			assert.Equal(t, got, Days(tc.collected, tc.designated))
		})
	}
}
