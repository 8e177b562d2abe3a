// Package pricing derives order totals from the fixed delivery-option fee
// table. Pure functions, all amounts in minor units.
package pricing

const (
	OptionStandard        = "Standard"
	OptionHomeDelivery    = "Home Delivery"
	OptionExpressDelivery = "Express Delivery"
)

// deliveryFees is the fixed surcharge table; options without an entry
// (Standard) cost nothing.
var deliveryFees = map[string]int64{
	OptionHomeDelivery:    20000,
	OptionExpressDelivery: 50000,
}

// ValidOption reports whether the option is one the shop offers.
func ValidOption(option string) bool {
	if option == OptionStandard {
		return true
	}
	_, ok := deliveryFees[option]
	return ok
}

// DeliveryFee returns the surcharge for an option, zero for anything
// without a fee entry.
func DeliveryFee(option string) int64 {
	return deliveryFees[option]
}

// Total computes unitPrice*quantity + deliveryFee. The result is persisted
// on the order at creation and never recomputed.
func Total(unitPrice int64, quantity int, deliveryFee int64) int64 {
	return unitPrice*int64(quantity) + deliveryFee
}
