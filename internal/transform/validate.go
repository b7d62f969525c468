package transform

import (
	"salesetl/internal/domain"
)

// DQ failure reasons, reported in check order.
const (
	ReasonMissingTransactionID = "Missing transaction_id"
	ReasonMissingCustomerID    = "Missing customer_id"
	ReasonMissingPrice         = "Missing price"
	ReasonInvalidQuantity      = "Invalid quantity"
	ReasonInvalidDiscount      = "Invalid discount"
)

// Validate runs every data-quality check against a sanitized record and
// returns all applicable failure reasons in check order. An empty result
// means the record may be promoted. A missing quantity is not flagged; only
// a present, non-positive quantity fails the check.
func Validate(record domain.SanitizedSalesRecord) []string {
	var reasons []string

	if record.TransactionID == nil {
		reasons = append(reasons, ReasonMissingTransactionID)
	}
	if record.CustomerID == nil {
		reasons = append(reasons, ReasonMissingCustomerID)
	}
	if record.Price == nil {
		reasons = append(reasons, ReasonMissingPrice)
	}
	if record.Quantity != nil && *record.Quantity <= 0 {
		reasons = append(reasons, ReasonInvalidQuantity)
	}
	if record.Discount < 0 || record.Discount > 1 {
		reasons = append(reasons, ReasonInvalidDiscount)
	}

	return reasons
}
