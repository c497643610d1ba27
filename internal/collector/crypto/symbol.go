package crypto

import (
	"fmt"
	"regexp"
	"strings"
)

// Common quote currencies in order of priority for detection
var quoteCurrencies = []string{"USDT", "BUSD", "USDC", "BTC", "ETH", "BNB"}

// fiatQuote is the quote used by Yahoo-style tickers such as BTC-USD
const fiatQuote = "USD"

// validSymbol matches crypto trading pairs
var validCryptoSymbol = regexp.MustCompile(`^[A-Za-z0-9]{2,20}$`)

// NormalizeSymbol converts various input formats to standard format (e.g., BTCUSDT)
// Input formats: "BTC", "btc", "BTC-USDT", "BTC/USDT", "btcusdt", "BTC-USD"
// Output: "BTCUSDT"
func NormalizeSymbol(input string, defaultQuote string) string {
	if input == "" {
		return ""
	}

	// Uppercase and remove common separators
	s := strings.ToUpper(input)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, "_", "")

	// Check if already contains a quote currency
	// Ensure there's a base currency left (symbol must be longer than quote)
	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s
		}
	}

	// Fiat USD trades against the default stablecoin
	if strings.HasSuffix(s, fiatQuote) && len(s) > len(fiatQuote) {
		s = strings.TrimSuffix(s, fiatQuote)
	}

	// No quote currency found, append default
	return s + strings.ToUpper(defaultQuote)
}

// IsPair reports whether input names a trading pair, i.e. it carries a known
// quote currency or the fiat USD quote. A bare base like "BTC" is not a pair.
func IsPair(input string) bool {
	if ValidateCryptoSymbol(input) != nil {
		return false
	}
	s := strings.ToUpper(input)
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "_", "-")

	if base, quote, ok := strings.Cut(s, "-"); ok {
		if base == "" {
			return false
		}
		if quote == fiatQuote {
			return true
		}
		for _, q := range quoteCurrencies {
			if quote == q {
				return true
			}
		}
		return false
	}

	for _, q := range quoteCurrencies {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return true
		}
	}
	return false
}

// ParseSymbol extracts base and quote from a normalized symbol
// "BTCUSDT" -> ("BTC", "USDT")
func ParseSymbol(symbol string) (base, quote string) {
	s := strings.ToUpper(symbol)

	// Try to find known quote currency
	// Ensure there's a base currency left (symbol must be longer than quote)
	for _, q := range quoteCurrencies {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return strings.TrimSuffix(s, q), q
		}
	}

	// Fallback: assume last 4 chars are quote (USDT, BUSD, etc.)
	if len(s) > 4 {
		return s[:len(s)-4], s[len(s)-4:]
	}

	return s, ""
}

// ValidateCryptoSymbol checks if a symbol has valid format
func ValidateCryptoSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 30 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}

	// Remove separators for validation
	s := strings.ReplaceAll(symbol, "-", "")
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, "_", "")

	if !validCryptoSymbol.MatchString(s) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}
