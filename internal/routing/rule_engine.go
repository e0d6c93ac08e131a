package routing

import (
	"fmt"

	"pokeproxy/internal/common/logging"
	"pokeproxy/internal/models"
)

// RuleEngine evaluates records against an ordered rule list. It holds no
// mutable state and is safe for concurrent use.
type RuleEngine struct {
	logger logging.Logger
}

// NewRuleEngine creates a rule engine that logs evaluation problems to logger
func NewRuleEngine(logger logging.Logger) *RuleEngine {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &RuleEngine{logger: logger}
}

// Match returns the first rule whose conditions all hold for record
func (re *RuleEngine) Match(record Record, rules []models.Rule) (*models.Rule, bool) {
	for i := range rules {
		rule := &rules[i]

		matched, err := re.EvaluateRule(record, rule)
		if err != nil {
			re.logger.Warn("Rule evaluation failed, treating as no match",
				logging.Int("rule_index", i),
				logging.String("rule_reason", rule.Reason),
				logging.Err(err),
			)
			continue
		}
		if matched {
			re.logger.Debug("Rule matched",
				logging.Int("rule_index", i),
				logging.String("rule_reason", rule.Reason),
			)
			return rule, true
		}
	}
	return nil, false
}

// EvaluateRule reports whether every condition of rule holds. It stops at
// the first condition that is false or cannot be evaluated.
func (re *RuleEngine) EvaluateRule(record Record, rule *models.Rule) (bool, error) {
	if len(rule.Match) == 0 {
		return false, ErrEmptyRule
	}

	for _, raw := range rule.Match {
		cond, err := ParseCondition(raw)
		if err != nil {
			return false, err
		}

		ok, err := cond.Evaluate(record)
		if err != nil {
			return false, fmt.Errorf("condition %q: %w", raw, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Lint reports rules that can never match: no conditions, conditions that do
// not parse, or conditions naming a field the record does not have. It is
// meant for startup warnings; Match does not depend on it.
func Lint(rules []models.Rule) []error {
	known := make(map[string]bool, len(models.FieldNames))
	for _, name := range models.FieldNames {
		known[name] = true
	}

	var problems []error
	for i, rule := range rules {
		if len(rule.Match) == 0 {
			problems = append(problems, fmt.Errorf("rule %d (%s): %w", i, rule.Reason, ErrEmptyRule))
			continue
		}
		for _, raw := range rule.Match {
			cond, err := ParseCondition(raw)
			if err != nil {
				problems = append(problems, fmt.Errorf("rule %d (%s): %w", i, rule.Reason, err))
				continue
			}
			if !known[cond.FieldName()] {
				problems = append(problems, fmt.Errorf("rule %d (%s): %w: %s", i, rule.Reason, ErrUnknownField, cond.FieldName()))
			}
		}
	}
	return problems
}

