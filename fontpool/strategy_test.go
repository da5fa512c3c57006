package fontpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrategy_Select(t *testing.T) {
	digits := make([]int, 0, 10)
	for _, c := range "0123456789" {
		digits = append(digits, int(c))
	}

	tests := []struct {
		name     string
		codes    []int
		expected Strategy
	}{
		{"empty", nil, Linear},
		{"digits", digits, Linear},
		{"sparse extremes", []int{32, 255}, Binary},
		{"small range with gaps", []int{40, 54}, Linear},
		{"gaps within budget", []int{32, 33, 34, 35, 36, 37, 38, 39, 40, 41, 42, 43, 44, 45, 46, 47, 48, 49, 50, 51, 52, 53}, Linear},
		{"gaps over budget", []int{32, 33, 34, 35, 36, 37, 38, 39, 60}, Binary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SelectStrategy(tt.codes))
		})
	}

	assert.Equal(t, "LINEAR", Linear.String())
	assert.Equal(t, "BINARY", Binary.String())
}
