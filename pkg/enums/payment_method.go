package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod describes how a buyer intends to settle an order.
type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodEFT  PaymentMethod = "eft"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCard,
	PaymentMethodEFT,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// InitialStatus is the payment status recorded when the order is placed.
// Card payments settle immediately; bank transfers wait for reconciliation.
func (p PaymentMethod) InitialStatus() PaymentStatus {
	if p == PaymentMethodEFT {
		return PaymentStatusPending
	}
	return PaymentStatusPaid
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPaymentMethods {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
