package storage

import (
	"fmt"
	"math/big"
)

const zeroMoney = "0.00"

func parseMoney(s string) (*big.Rat, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}
	return r, nil
}

// lineTotal returns unitPrice * quantity as a two-decimal string
func lineTotal(unitPrice string, quantity int) (string, error) {
	r, err := parseMoney(unitPrice)
	if err != nil {
		return "", err
	}
	r.Mul(r, new(big.Rat).SetInt64(int64(quantity)))
	return r.FloatString(2), nil
}

// sumMoney adds amounts, skipping nil ones
func sumMoney(amounts ...*string) (string, error) {
	total := new(big.Rat)
	for _, a := range amounts {
		if a == nil {
			continue
		}
		r, err := parseMoney(*a)
		if err != nil {
			return "", err
		}
		total.Add(total, r)
	}
	return total.FloatString(2), nil
}
