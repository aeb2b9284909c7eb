package marketplace

import (
	"fmt"
	"math/big"
	"strings"
)

// OverpaymentPolicy decides what happens to payment above the total price.
type OverpaymentPolicy string

const (
	// OverpaymentToFee sends everything above the item price to the fee account.
	OverpaymentToFee OverpaymentPolicy = "fee"
	// OverpaymentRetain pays the fee account the computed fee and keeps the
	// surplus in the marketplace balance.
	OverpaymentRetain OverpaymentPolicy = "retain"
	// OverpaymentRefund pays the computed fee and returns the surplus to the buyer.
	OverpaymentRefund OverpaymentPolicy = "refund"
	// OverpaymentReject only accepts the exact total price.
	OverpaymentReject OverpaymentPolicy = "reject"
)

func ParseOverpaymentPolicy(policy string) (OverpaymentPolicy, error) {
	switch p := OverpaymentPolicy(strings.ToLower(strings.TrimSpace(policy))); p {
	case OverpaymentToFee, OverpaymentRetain, OverpaymentRefund, OverpaymentReject:
		return p, nil
	case "":
		return OverpaymentToFee, nil
	default:
		return "", fmt.Errorf("unknown overpayment policy %q", policy)
	}
}

// settlement is how a purchase payment is split.
type settlement struct {
	seller *big.Int
	fee    *big.Int
	refund *big.Int
}

func (p OverpaymentPolicy) settle(payment, price, fee *big.Int) settlement {
	s := settlement{
		seller: new(big.Int).Set(price),
		fee:    new(big.Int).Set(fee),
		refund: new(big.Int),
	}

	switch p {
	case OverpaymentRetain, OverpaymentReject:
	case OverpaymentRefund:
		s.refund.Sub(payment, price).Sub(s.refund, fee)
	default:
		s.fee.Sub(payment, price)
	}

	return s
}
