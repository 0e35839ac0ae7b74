package auth

import (
	"github.com/spec-kit/staffing-service/internal/config"
	"github.com/spec-kit/staffing-service/internal/validation"
)

// SecretPolicy describes the minimum complexity of a secret.
type SecretPolicy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
	Symbols       string
}

// DefaultSecretPolicy requires 8 characters with upper, lower, digit and symbol classes.
func DefaultSecretPolicy() SecretPolicy {
	return SecretPolicy{
		MinLength:     8,
		RequireUpper:  true,
		RequireLower:  true,
		RequireDigit:  true,
		RequireSymbol: true,
		Symbols:       "@$!%*?&",
	}
}

// PolicyFromConfig converts the configured policy.
func PolicyFromConfig(cfg config.SecretPolicyConfig) SecretPolicy {
	p := SecretPolicy{
		MinLength:     cfg.MinLength,
		RequireUpper:  cfg.RequireUpper,
		RequireLower:  cfg.RequireLower,
		RequireDigit:  cfg.RequireDigit,
		RequireSymbol: cfg.RequireSymbol,
		Symbols:       cfg.Symbols,
	}
	if p.MinLength <= 0 {
		p.MinLength = 8
	}
	if p.Symbols == "" {
		p.Symbols = DefaultSecretPolicy().Symbols
	}
	return p
}

// Rules expands the policy into validation rules, one per enabled constraint.
func (p SecretPolicy) Rules() []validation.Rule {
	rules := []validation.Rule{validation.Required(), validation.MinLength(p.MinLength)}
	if p.RequireUpper {
		rules = append(rules, validation.Contains("ABCDEFGHIJKLMNOPQRSTUVWXYZ", "uppercase letter"))
	}
	if p.RequireLower {
		rules = append(rules, validation.Contains("abcdefghijklmnopqrstuvwxyz", "lowercase letter"))
	}
	if p.RequireDigit {
		rules = append(rules, validation.Contains("0123456789", "digit"))
	}
	if p.RequireSymbol {
		rules = append(rules, validation.Contains(p.Symbols, "symbol ("+p.Symbols+")"))
	}
	return rules
}

// Check returns the unmet constraints for secret, keyed under field.
func (p SecretPolicy) Check(field, secret string) validation.Errors {
	return validation.Check(validation.Field{Name: field, Value: secret, Rules: p.Rules()})
}
