package models

import (
	"strings"
	"time"
)

// PaymentMethod enumerates the supported payment methods.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

// IsValidPaymentMethod checks if a payment method is supported.
func IsValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentCard || m == PaymentUPI
}

// PaymentRequest is the input schema for paying a booking. Card fields are
// only read for card payments, the UPI id only for UPI payments.
type PaymentRequest struct {
	Method     PaymentMethod `json:"method"`
	Amount     float64       `json:"amount"`
	CardNumber string        `json:"cardNumber,omitempty"`
	Expiry     string        `json:"expiry,omitempty"`
	CVC        string        `json:"cvc,omitempty"`
	UpiID      string        `json:"upiId,omitempty"`
}

// PaymentReceipt is the redacted record persisted after a successful payment.
// The full card number and CVC never reach storage.
type PaymentReceipt struct {
	ReceiptID  string        `bson:"receipt_id" json:"receipt_id"`
	Method     PaymentMethod `bson:"method" json:"method"`
	Amount     float64       `bson:"amount" json:"amount"`
	CardNumber string        `bson:"card_number,omitempty" json:"cardNumber,omitempty"`
	Expiry     string        `bson:"expiry,omitempty" json:"expiry,omitempty"`
	UpiID      string        `bson:"upi_id,omitempty" json:"upiId,omitempty"`
	PaidAt     time.Time     `bson:"paid_at" json:"paidAt"`
}

// MaskCardNumber redacts a card number to its last four digits, rendered as
// "**** **** **** 1111".
func MaskCardNumber(number string) string {
	digits := strings.ReplaceAll(strings.TrimSpace(number), " ", "")
	if len(digits) < 4 {
		return "****"
	}
	return "**** **** **** " + digits[len(digits)-4:]
}
