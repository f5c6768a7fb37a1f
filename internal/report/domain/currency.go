package domain

// Currencies handled by the report.
const (
	CurrencyUSD = "USD"
	CurrencyAED = "AED"
	CurrencyEUR = "EUR"
)

// Fixed cross rates, expressed as AED units per one unit of the other
// currency. EUR/USD conversions pivot through AED.
const (
	AEDPerUSD = 3.6735
	AEDPerEUR = 4.3119
)

// Convert converts an amount between USD, AED and EUR using the fixed
// cross rates. Zero or empty inputs yield 0. Unsupported currency
// combinations fall through and return the amount unconverted; individual
// odd rows must not abort a whole report.
func Convert(amount float64, from, to string) float64 {
	if amount == 0 || from == "" || to == "" {
		return 0
	}
	if from == to {
		return amount
	}
	switch {
	case from == CurrencyEUR:
		aed := amount * AEDPerEUR
		switch to {
		case CurrencyUSD:
			return aed / AEDPerUSD
		case CurrencyAED:
			return aed
		}
		return amount
	case to == CurrencyEUR:
		var aed float64
		switch from {
		case CurrencyUSD:
			aed = amount * AEDPerUSD
		case CurrencyAED:
			aed = amount
		default:
			return amount
		}
		return aed / AEDPerEUR
	case from == CurrencyUSD && to == CurrencyAED:
		return amount * AEDPerUSD
	case from == CurrencyAED && to == CurrencyUSD:
		return amount / AEDPerUSD
	}
	return amount
}
