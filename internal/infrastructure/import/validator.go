package csvimport

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// FieldType represents the expected type of a field
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
)

// FieldRule defines validation rules for a field
type FieldRule struct {
	Column   string
	Type     FieldType
	Required bool
	// MinValue bounds numeric fields from below when set
	MinValue *decimal.Decimal
}

// FieldRuleBuilder helps build field rules fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field creates a new field rule builder
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{
		rule: FieldRule{
			Column: column,
			Type:   TypeString,
		},
	}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// Int sets the field type to integer
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

// Decimal sets the field type to decimal
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// MinValue sets the minimum numeric value
func (b *FieldRuleBuilder) MinValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

// Build returns the built field rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator validates rows against an ordered rule list
type FieldValidator struct {
	rules  []FieldRule
	errors *ErrorCollection
}

// NewFieldValidator creates a new field validator
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{
		rules:  rules,
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateRow validates all fields in a row, recording every failure
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true

	for _, rule := range v.rules {
		value := row.Get(rule.Column)

		if value == "" {
			if rule.Required {
				v.errors.AddRequiredError(row.LineNumber, rule.Column)
				ok = false
			}
			continue
		}

		switch rule.Type {
		case TypeInt:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				v.errors.AddTypeError(row.LineNumber, rule.Column, string(rule.Type), value)
				ok = false
				continue
			}
			if rule.MinValue != nil && decimal.NewFromInt(n).LessThan(*rule.MinValue) {
				v.errors.AddRangeError(row.LineNumber, rule.Column, value, "at least "+rule.MinValue.String())
				ok = false
			}
		case TypeDecimal:
			d, err := decimal.NewFromString(value)
			if err != nil {
				v.errors.AddTypeError(row.LineNumber, rule.Column, string(rule.Type), value)
				ok = false
				continue
			}
			if rule.MinValue != nil && d.LessThan(*rule.MinValue) {
				v.errors.AddRangeError(row.LineNumber, rule.Column, value, "at least "+rule.MinValue.String())
				ok = false
			}
		}
	}

	return ok
}

// Errors returns the error collection
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}
