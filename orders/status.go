// Package orders holds the order lifecycle rules and the OrderCenter tabs.
package orders

import (
	"strings"

	"bakeryapi/apperr"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus tracks the manual payment verification flow.
type PaymentStatus string

const (
	PaymentUnpaid    PaymentStatus = "unpaid"
	PaymentSubmitted PaymentStatus = "submitted"
	PaymentVerified  PaymentStatus = "verified"
	PaymentRejected  PaymentStatus = "rejected"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
}

// ParseStatus accepts any casing and rejects unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", apperr.E(apperr.Invalid, "invalid status")
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns a Conflict error when the move is not allowed.
func CheckTransition(from, to Status) error {
	if from == to {
		return apperr.E(apperr.Conflict, "order is already "+string(to))
	}
	if !CanTransition(from, to) {
		return apperr.E(apperr.Conflict, "cannot move a "+string(from)+" order to "+string(to))
	}
	return nil
}

// CheckCustomerCancel applies the rule that customers may only cancel
// orders the bakery has not started on.
func CheckCustomerCancel(current Status) error {
	if current != StatusPending {
		return apperr.E(apperr.Conflict, "only pending orders can be cancelled")
	}
	return nil
}

// ParsePaymentDecision maps an owner's verify/reject decision to a status.
func ParsePaymentDecision(s string) (PaymentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verify", "verified", "approve":
		return PaymentVerified, nil
	case "reject", "rejected":
		return PaymentRejected, nil
	}
	return "", apperr.E(apperr.Invalid, "decision must be verify or reject")
}

// CheckPaymentSubmission allows a payment proof while the order is live and
// not yet verified. A rejected proof may be resubmitted.
func CheckPaymentSubmission(st Status, ps PaymentStatus) error {
	if st.Terminal() {
		return apperr.E(apperr.Conflict, "order is "+string(st))
	}
	if ps == PaymentVerified {
		return apperr.E(apperr.Conflict, "payment already verified")
	}
	return nil
}

// CheckPaymentDecision requires a submitted proof before verify/reject.
func CheckPaymentDecision(ps PaymentStatus) error {
	if ps != PaymentSubmitted {
		return apperr.E(apperr.Conflict, "no payment awaiting verification")
	}
	return nil
}

// FromGateway maps a payment gateway status (SUCCESS, FAILED, ...) to the
// payment status stored on the order. ok is false for statuses that carry
// no decision, such as PENDING.
func FromGateway(s string) (ps PaymentStatus, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESS", "PAID":
		return PaymentVerified, true
	case "CANCELLED", "FAILED", "REJECTED":
		return PaymentRejected, true
	}
	return "", false
}
