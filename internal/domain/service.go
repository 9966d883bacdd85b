package domain

// ServiceTier is a bookable catering tier. Amounts are in minor currency
// units (cents). DepositAmount is charged at checkout; the remainder up to
// FullAmount is billed later by invoice.
type ServiceTier struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DepositAmount int64  `json:"price"`
	FullAmount    int64  `json:"full"`
	Image         string `json:"image"`
	Blurb         string `json:"blurb"`
	Slots         int    `json:"slots"`
}

// RemainingBalance is the amount still owed after the deposit. Never
// negative: FullAmount below the deposit means nothing left to bill.
func (s ServiceTier) RemainingBalance() int64 {
	if s.FullAmount <= s.DepositAmount {
		return 0
	}
	return s.FullAmount - s.DepositAmount
}
