package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSplit(t *testing.T) {
	cases := []struct {
		price    string
		protocol string
		creator  string
	}{
		{"5.00", "0.50", "4.50"},
		{"10", "1.00", "9.00"},
		{"0.99", "0.10", "0.89"},
		{"0.01", "0.00", "0.01"},
		{"123.45", "12.35", "111.10"},
		{"0", "0", "0"},
	}
	for _, tc := range cases {
		b := Split(dec(tc.price))
		if !b.ProtocolFee.Equal(dec(tc.protocol)) {
			t.Errorf("Split(%s) protocol=%s want %s", tc.price, b.ProtocolFee, tc.protocol)
		}
		if !b.CreatorFee.Equal(dec(tc.creator)) {
			t.Errorf("Split(%s) creator=%s want %s", tc.price, b.CreatorFee, tc.creator)
		}
		if !b.ProtocolFee.Add(b.CreatorFee).Equal(b.Total) {
			t.Errorf("Split(%s) parts %s+%s do not sum to total %s",
				tc.price, b.ProtocolFee, b.CreatorFee, b.Total)
		}
		if !b.Total.Equal(dec(tc.price)) {
			t.Errorf("Split(%s) total=%s", tc.price, b.Total)
		}
	}
}

func TestEstimateUnlockPrice(t *testing.T) {
	cases := []struct {
		stake string
		want  string
	}{
		{"100", "10.00"},
		{"50", "5.00"},
		{"0.05", "0.01"},
		{"33.33", "3.33"},
	}
	for _, tc := range cases {
		if got := EstimateUnlockPrice(dec(tc.stake)); !got.Equal(dec(tc.want)) {
			t.Errorf("EstimateUnlockPrice(%s)=%s want %s", tc.stake, got, tc.want)
		}
	}
}
