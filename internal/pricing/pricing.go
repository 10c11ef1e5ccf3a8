package pricing

import "github.com/shopspring/decimal"

// Fee split applied to every unlock. Display-side computation only; the
// authoritative split is settled by the payment backend.
var (
	protocolFeeRate = decimal.NewFromFloat(0.10)
	unlockPriceRate = decimal.NewFromFloat(0.10)
)

// Breakdown is the confirmation-surface pricing of one unlock.
type Breakdown struct {
	UnlockPrice decimal.Decimal `json:"unlock_price"`
	ProtocolFee decimal.Decimal `json:"protocol_fee"`
	CreatorFee  decimal.Decimal `json:"creator_fee"`
	Total       decimal.Decimal `json:"total"`
}

// Split computes the 10% protocol / 90% creator fee breakdown. The creator
// fee is derived by subtraction so the parts always sum to the total.
func Split(unlockPrice decimal.Decimal) Breakdown {
	protocol := unlockPrice.Mul(protocolFeeRate).Round(2)
	return Breakdown{
		UnlockPrice: unlockPrice,
		ProtocolFee: protocol,
		CreatorFee:  unlockPrice.Sub(protocol),
		Total:       unlockPrice,
	}
}

// EstimateUnlockPrice suggests an unlock price of 10% of the stake,
// rounded to cents. Used for the create-signal preview.
func EstimateUnlockPrice(stake decimal.Decimal) decimal.Decimal {
	return stake.Mul(unlockPriceRate).Round(2)
}
