package authorizer

// DecisionEngine derives an allow/deny decision from a verified token's group
// memberships. The current policy is a single gate: membership in the
// administrative group. A richer per-route policy should replace this type
// only; the groups-in, decision-out contract stays fixed so the policy issuer
// and the orchestrator need no change.
type DecisionEngine struct {
	AdminGroup string
}

func NewDecisionEngine(adminGroup string) DecisionEngine {
	return DecisionEngine{AdminGroup: adminGroup}
}

// Decide is pure: no I/O, no failure mode. An empty or absent group list
// denies.
func (e DecisionEngine) Decide(groups []string) AccessDecision {
	decision := AccessDecision{Groups: groups}
	for _, g := range groups {
		if g == e.AdminGroup {
			decision.Allow = true
			break
		}
	}
	return decision
}
