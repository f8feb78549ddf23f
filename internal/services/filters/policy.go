package filters

import "SignalGate/internal/domain/models"

// Policy decides what a provider error means for the check that needed the
// data: fail-open admits, fail-closed rejects.
type Policy int

const (
	FailClosed Policy = iota
	FailOpen
)

// ProviderPolicy returns the error policy for a provider-backed check.
// Checks computable from the signal's own fields are strict; advisory
// lookups against third-party services degrade to "allow" so a provider
// outage does not silently halt all trading. The sniper checks are the
// exception: missing honeypot data is itself a red flag.
func ProviderPolicy(check models.Reason) Policy {
	switch check {
	case models.ReasonHolderConcentration,
		models.ReasonWashTrading,
		models.ReasonUnlockedLiquidity,
		models.ReasonTokenAge:
		return FailOpen
	default:
		return FailClosed
	}
}
