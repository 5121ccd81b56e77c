package taxpayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferIDType(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		category Category
		id       string
		want     IDType
	}{
		{"company is always ntn", 2018, CategoryCompany, "1234567890123", IDTypeNTN},
		{"aop is always ntn", 2015, CategoryAOP, "12345678", IDTypeNTN},
		{"2013 individual is ntn", 2013, CategoryIndividual, "1234567890123", IDTypeNTN},
		{"individual cnic", 2016, CategoryIndividual, "3520212345671", IDTypeCNIC},
		{"individual short id is legacy ntn", 2017, CategoryIndividual, "12345678", IDTypeNTN},
		{"individual 7 digits is ntn", 2018, CategoryIndividual, "1234567", IDTypeNTN},
		{"individual 9 digits is cnic", 2018, CategoryIndividual, "123456789", IDTypeCNIC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferIDType(tt.year, tt.category, tt.id))
		})
	}
}

func TestNTN7(t *testing.T) {
	t.Run("eight digit ntn keeps first seven", func(t *testing.T) {
		got := NTN7(IDTypeNTN, "12345678")
		require.NotNil(t, got)
		assert.Equal(t, "1234567", *got)
	})

	t.Run("seven digit ntn unchanged", func(t *testing.T) {
		got := NTN7(IDTypeNTN, "1234567")
		require.NotNil(t, got)
		assert.Equal(t, "1234567", *got)
	})

	t.Run("cnic has no ntn", func(t *testing.T) {
		assert.Nil(t, NTN7(IDTypeCNIC, "3520212345671"))
	})
}

func TestPadIdentifier(t *testing.T) {
	tests := []struct {
		id    string
		width int
		want  string
	}{
		{"123", 7, "0000123"},
		{"1234567", 7, "1234567"},
		{"12345678", 7, "1234567"},
		{"123456789", 8, "12345678"},
		{"", 8, "00000000"},
		{" 42 ", 4, "0042"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, PadIdentifier(tt.id, tt.width))
		})
	}
}

func TestPadIdentifier_OrdersNumerically(t *testing.T) {
	a := PadIdentifier("99", 7)
	b := PadIdentifier("100", 7)
	assert.Less(t, a, b)
}
