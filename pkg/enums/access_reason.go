package enums

// AccessReason explains a confidential-data gate decision.
type AccessReason string

const (
	AccessReasonGranted              AccessReason = "granted"
	AccessReasonLoginRequired        AccessReason = "login_required"
	AccessReasonNdaRequired          AccessReason = "nda_required"
	AccessReasonVerificationRequired AccessReason = "verification_required"
)

// String implements fmt.Stringer.
func (r AccessReason) String() string {
	return string(r)
}

// Grants reports whether the reason unlocks confidential fields.
func (r AccessReason) Grants() bool {
	return r == AccessReasonGranted
}
