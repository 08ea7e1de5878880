package utils

const ShortDashDateLayout = "2006-01-02"
const CompactDateLayout = "20060102"

// SupportedCurrencies is the allowlist applied to every rate source.
var SupportedCurrencies = []string{"USD", "EUR", "JPY", "CNY", "GBP"}

// DefaultRates is the last-resort rate table, returned only when both live
// sources and the database are unavailable. Values are illustrative KRW
// per-unit prices, not live quotes.
var DefaultRates = map[string]float64{
	"USD": 1350,
	"EUR": 1465,
	"JPY": 9.0,
	"CNY": 185,
	"GBP": 1710,
}

func IsSupportedCurrency(currency string) bool {
	for _, c := range SupportedCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}
