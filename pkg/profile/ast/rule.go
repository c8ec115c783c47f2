package ast

import "strings"

// RuleType discriminates the kind of a mapping rule.
// The set is closed: the evaluator switches exhaustively over these values
// and the parser rejects anything else.
type RuleType string

const (
	RuleTypeString        RuleType = "string"        // Element/attribute text, as-is
	RuleTypeNumber        RuleType = "number"        // Locale-invariant float parse
	RuleTypeInteger       RuleType = "integer"       // Locale-invariant integer parse
	RuleTypeBoolean       RuleType = "boolean"       // "true"/"1" => true
	RuleTypeDate          RuleType = "date"          // Truncate to leading YYYY-MM-DD
	RuleTypeArray         RuleType = "array"         // Repeating container with nested fields
	RuleTypeAsFoundAsLeft RuleType = "asFoundAsLeft" // isAsFound/isAsLeft attribute pair
	RuleTypeConformity    RuleType = "conformity"    // isConform attribute => pass/fail
	RuleTypeConcat        RuleType = "concat"        // Join of several resolved paths
	RuleTypeStatic        RuleType = "static"        // Literal value, no source
	RuleTypeTemplate      RuleType = "template"      // Placeholder substitution
	RuleTypeLookup        RuleType = "lookup"        // Value translation table
	RuleTypeFirstOf       RuleType = "firstOf"       // First non-empty of several paths
)

// RuleTypes lists every known rule kind in a stable order.
var RuleTypes = []RuleType{
	RuleTypeString,
	RuleTypeNumber,
	RuleTypeInteger,
	RuleTypeBoolean,
	RuleTypeDate,
	RuleTypeArray,
	RuleTypeAsFoundAsLeft,
	RuleTypeConformity,
	RuleTypeConcat,
	RuleTypeStatic,
	RuleTypeTemplate,
	RuleTypeLookup,
	RuleTypeFirstOf,
}

// IsKnownRuleType returns true if t names one of the twelve rule kinds.
func IsKnownRuleType(t RuleType) bool {
	for _, known := range RuleTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Rule represents a single mapping rule in a profile.
//
// Which fields are meaningful depends on Type:
//
//   - string/number/integer/boolean/date: Source
//   - array: Source and Fields (evaluated relative to each container element)
//   - asFoundAsLeft: no source (reads attributes on the context element)
//   - conformity: optional Source (defaults to the context element)
//   - concat: Sources and optional Separator (default single space)
//   - static: Value
//   - template: Template and Sources (index-aligned with {0}, {1}, ...)
//   - lookup: Source and Map
//   - firstOf: Sources
type Rule struct {
	Target    string            // Dotted path into DCC-JSON; "[]" suffix marks an array target
	Type      RuleType          // Rule kind discriminator
	Source    string            // Path expression relative to the context node
	Sources   []string          // Ordered path expressions (concat, template, firstOf)
	Separator string            // Join separator for concat (default " ")
	Value     any               // Literal for static rules
	Template  string            // Template string with {i} placeholders
	Map       map[string]string // Translation table for lookup rules
	Fields    []*Rule           // Nested rules for array rules
	Index     int               // Position within the parent rule list, for error reporting
}

// IsArray returns true if this rule produces an array of objects.
func (r *Rule) IsArray() bool {
	return r.Type == RuleTypeArray
}

// TargetKey returns the assembly key for the rule: the Target with a
// trailing "[]" marker stripped.
func (r *Rule) TargetKey() string {
	return strings.TrimSuffix(r.Target, "[]")
}

// HasArrayTarget returns true if the target carries the "[]" marker.
func (r *Rule) HasArrayTarget() bool {
	return strings.HasSuffix(r.Target, "[]")
}

// SeparatorOrDefault returns the concat separator, defaulting to a single
// space when unset.
func (r *Rule) SeparatorOrDefault() string {
	if r.Separator == "" {
		return " "
	}
	return r.Separator
}
