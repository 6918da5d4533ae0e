// SPDX-License-Identifier: Apache-2.0

package record

import "github.com/shopspring/decimal"

// Places is the number of decimals kept for every reading and prediction.
const Places = 3

// Round rounds v to Places decimals using banker's rounding (half to even)
// applied to the shortest decimal representation of v, so 0.0625 becomes
// 0.062 and 0.0635 becomes 0.064. v must be finite.
func Round(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).RoundBank(Places).Float64()
	return f
}

// Format renders v rounded with Round in its shortest decimal form.
// The result parses back to Round(v).
func Format(v float64) string {
	return decimal.NewFromFloat(v).RoundBank(Places).String()
}
