// pkg/validate/rules.go

package validate

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/mayursurani/datapipe/pkg/model"
)

// DefaultRules returns the rule set applied to sales records when no
// custom rules are configured.
func DefaultRules() map[string]interface{} {
	return map[string]interface{}{
		"product":     "required,min=2",
		"price":       "required,gte=0,lte=1000000",
		"quantity":    "required,gte=1",
		"customer_id": "required,customer_id",
		"region":      "required,oneof=North South East West",
	}
}

// RuleValidator applies declarative per-field rules to records.
type RuleValidator struct {
	validate *validator.Validate
	rules    map[string]interface{}
}

// NewRuleValidator builds a RuleValidator with the custom tags the sales
// rule set relies on registered.
func NewRuleValidator(rules map[string]interface{}) (*RuleValidator, error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	v := validator.New()
	if err := v.RegisterValidation("customer_id", func(fl validator.FieldLevel) bool {
		return CustomerID(fl.Field().String()) == nil
	}); err != nil {
		return nil, fmt.Errorf("registering customer_id rule: %w", err)
	}
	if err := v.RegisterValidation("indian_phone", func(fl validator.FieldLevel) bool {
		return Phone(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("registering indian_phone rule: %w", err)
	}

	return &RuleValidator{validate: v, rules: rules}, nil
}

// Check runs the rule set against a record and returns one message per
// failing field, sorted by field name.
func (rv *RuleValidator) Check(record model.Record) []string {
	failures := rv.validate.ValidateMap(record, rv.rules)
	if len(failures) == 0 {
		return nil
	}

	fields := make([]string, 0, len(failures))
	for field := range failures {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, fmt.Sprintf("field %s failed rule %q", field, rv.rules[field]))
	}
	return messages
}
