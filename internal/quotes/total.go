package quotes

import "github.com/shopspring/decimal"

// Total sums price*quantity over products in decimal arithmetic so that
// 0.1*3 comes out as 0.3 rather than 0.30000000000000004.
func Total(products []Product) float64 {
	sum := decimal.Zero
	for _, p := range products {
		line := decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Quantity)))
		sum = sum.Add(line)
	}
	return sum.InexactFloat64()
}
