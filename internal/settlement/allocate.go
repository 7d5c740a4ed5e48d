package settlement

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// Allocate divides total across weights with the largest-remainder method.
// The result always sums to total; ties on the remainder go to the earlier weight.
func Allocate(total int64, weights []decimal.Decimal) ([]int64, error) {
	if len(weights) == 0 {
		return nil, errors.New("allocate: no weights")
	}
	if total < 0 {
		return nil, errors.New("allocate: negative total")
	}
	sum := decimal.Zero
	for _, w := range weights {
		if w.IsNegative() {
			return nil, errors.New("allocate: negative weight")
		}
		sum = sum.Add(w)
	}
	if !sum.IsPositive() {
		return nil, errors.New("allocate: weights sum to zero")
	}

	t := decimal.NewFromInt(total)
	out := make([]int64, len(weights))
	rems := make([]decimal.Decimal, len(weights))
	var given int64
	for i, w := range weights {
		exact := t.Mul(w).Div(sum)
		floor := exact.Floor()
		out[i] = floor.IntPart()
		rems[i] = exact.Sub(floor)
		given += out[i]
	}

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rems[order[a]].GreaterThan(rems[order[b]])
	})
	for k := 0; given < total; k++ {
		out[order[k%len(order)]]++
		given++
	}
	return out, nil
}
