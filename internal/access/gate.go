package access

import (
	"context"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"nestling-health/audit/internal/audit/domain"
)

const policyQuery = "data.nestling.audit_access.allow"

// Default Rego policy: admins and the record's guardians may view audit
// history. Deployment-supplied policies must keep the nestling.audit_access
// package and define allow.
const defaultRegoPolicy = `package nestling.audit_access

default allow = false

allow if {
	input.subject.role == "admin"
}

allow if {
	input.subject.guardian
}
`

// Gate decides whether a caller may view the audit history of a record,
// using an in-process OPA Rego policy.
type Gate struct {
	policy string
}

// NewGate returns a gate evaluating the given Rego policy text. An empty
// policy selects the built-in default.
func NewGate(policy string) *Gate {
	if policy == "" {
		policy = defaultRegoPolicy
	}
	return &Gate{policy: policy}
}

// CanView reports whether subject may view the audit history of the given
// record. Evaluation errors deny access (fail closed) and are logged.
func (g *Gate) CanView(ctx context.Context, subject *Subject, entityType domain.EntityType, entityID string) bool {
	if subject == nil {
		return false
	}
	allowed, err := g.evaluate(ctx, subject, entityType, entityID)
	if err != nil {
		log.Printf("access: policy evaluation failed for user %s on %s/%s: %v", subject.UserID, entityType, entityID, err)
		return false
	}
	return allowed
}

// HealthCheck verifies that the in-process OPA Rego engine can compile and
// evaluate the configured policy. Returns nil on success.
func (g *Gate) HealthCheck(ctx context.Context) error {
	_, err := g.evaluate(ctx, &Subject{UserID: "healthcheck", Role: "member"}, domain.EntityTypeVisit, "healthcheck")
	return err
}

func (g *Gate) evaluate(ctx context.Context, subject *Subject, entityType domain.EntityType, entityID string) (bool, error) {
	modules := map[string]string{"policy_0.rego": g.policy}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return false, fmt.Errorf("compile policy: %w", err)
	}
	input := map[string]interface{}{
		"subject": map[string]interface{}{
			"user_id":  subject.UserID,
			"role":     subject.Role,
			"guardian": subject.Guardian,
		},
		"record": map[string]interface{}{
			"entity_type": string(entityType),
			"entity_id":   entityID,
		},
	}
	q := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("policy query returned no result")
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("policy allow is not a boolean")
	}
	return allowed, nil
}
