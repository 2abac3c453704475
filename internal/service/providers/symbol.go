package providers

import "regexp"

var krxNumeric = regexp.MustCompile(`^\d{6}$`)

// YahooSymbol maps a symbol to Yahoo's convention. Korean listings are
// plain 6-digit numbers and need the .KS suffix; everything else passes
// through unchanged. Alpha Vantage indexes the same suffixed form; FMP uses
// the original symbol.
func YahooSymbol(symbol string) string {
	if krxNumeric.MatchString(symbol) {
		return symbol + ".KS"
	}
	return symbol
}
