package enums

// CheckoutStage tracks a checkout hand-off.
type CheckoutStage string

const (
	CheckoutStageIdle              CheckoutStage = "idle"
	CheckoutStageValidating        CheckoutStage = "validating"
	CheckoutStageSubmittingOrder   CheckoutStage = "submitting_order"
	CheckoutStageSubmittingPayment CheckoutStage = "submitting_payment"
	CheckoutStageCompleted         CheckoutStage = "completed"
)

// String implements fmt.Stringer.
func (c CheckoutStage) String() string {
	return string(c)
}

// IsSubmitting reports whether a remote call is in flight for this stage.
func (c CheckoutStage) IsSubmitting() bool {
	return c == CheckoutStageSubmittingOrder || c == CheckoutStageSubmittingPayment
}
