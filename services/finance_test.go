package services

import (
	"englishcenter_go/models"
	"testing"
)

func TestDeriveFeeStatus(t *testing.T) {
	tests := []struct {
		name      string
		totalPaid int64
		totalFee  int64
		expected  string
	}{
		{
			name:      "no payments no fees",
			totalPaid: 0,
			totalFee:  0,
			expected:  models.FeeStatusUnpaid,
		},
		{
			name:      "no payments with fees",
			totalPaid: 0,
			totalFee:  2500000,
			expected:  models.FeeStatusUnpaid,
		},
		{
			name:      "partial payment",
			totalPaid: 1000000,
			totalFee:  2500000,
			expected:  models.FeeStatusPartial,
		},
		{
			name:      "cumulative payments reach fee",
			totalPaid: 2500000,
			totalFee:  2500000,
			expected:  models.FeeStatusPaid,
		},
		{
			name:      "overpaid",
			totalPaid: 3000000,
			totalFee:  2500000,
			expected:  models.FeeStatusPaid,
		},
		{
			name:      "payments but no billable enrollments",
			totalPaid: 500000,
			totalFee:  0,
			expected:  models.FeeStatusPartial,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveFeeStatus(tc.totalPaid, tc.totalFee)
			if got != tc.expected {
				t.Fatalf("DeriveFeeStatus(%d, %d) = %q, want %q",
					tc.totalPaid, tc.totalFee, got, tc.expected)
			}
		})
	}
}
