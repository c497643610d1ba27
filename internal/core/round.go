package core

import "github.com/shopspring/decimal"

// Decimal places used when recording fills and reports
const (
	MoneyPlaces  = 2
	SharesPlaces = 8
)

// Round rounds v to places decimals, half away from zero, on the shortest
// decimal representation of v rather than its binary expansion.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// RoundMoney rounds a price, amount or percentage to cents
func RoundMoney(v float64) float64 {
	return Round(v, MoneyPlaces)
}

// RoundShares rounds a share quantity
func RoundShares(v float64) float64 {
	return Round(v, SharesPlaces)
}
