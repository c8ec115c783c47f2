package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"caliper-hq/dccbridge/pkg/profile/ast"
	profileErrors "caliper-hq/dccbridge/pkg/profile/errors"
)

// placeholderPattern matches {0}, {1}, ... placeholders in template rules.
var placeholderPattern = regexp.MustCompile(`\{(\d+)\}`)

// builder constructs AST rules from intermediate JSON structures.
// It validates kind-specific requirements and accumulates every problem
// it finds; a profile with any error is rejected as a whole.
type builder struct {
	sourcePath string
	maxDepth   int
	errors     *profileErrors.ErrorList
}

// newBuilder creates a new AST builder for the given source file.
func newBuilder(sourcePath string, maxDepth int) *builder {
	return &builder{
		sourcePath: sourcePath,
		maxDepth:   maxDepth,
		errors:     profileErrors.NewErrorList(),
	}
}

// buildProfile transforms a jsonProfile into an ast.Profile.
func (b *builder) buildProfile(jp *jsonProfile) (*ast.Profile, error) {
	profile := &ast.Profile{
		Name:            jp.Name,
		SchemaNamespace: jp.SchemaNamespace,
		RootElement:     jp.RootElement,
		Description:     jp.Description,
		Mappings:        make([]*ast.Rule, 0, len(jp.Mappings)),
		SourceFile:      b.sourcePath,
	}

	if profile.Name == "" {
		b.errors.AddErrorWithSuggestion(profileErrors.ErrorTypeStructural,
			"profile has no name", "name",
			`add a "name" field identifying the source schema`)
	}

	if len(jp.Mappings) == 0 {
		b.errors.AddError(profileErrors.ErrorTypeStructural,
			"profile has no mapping rules", "mappings")
	}

	for i := range jp.Mappings {
		path := fmt.Sprintf("mappings[%d]", i)
		rule := b.buildRule(&jp.Mappings[i], i, path, 0)
		if rule != nil {
			profile.Mappings = append(profile.Mappings, rule)
		}
	}

	if b.errors.HasErrors() {
		for _, err := range b.errors.Errors {
			err.File = b.sourcePath
		}
		return nil, b.errors
	}

	return profile, nil
}

// buildRule transforms a jsonRule into an ast.Rule, recursing into the
// fields of array rules. It returns nil when the rule is unusable; the
// reason is recorded on the error list.
func (b *builder) buildRule(jr *jsonRule, index int, path string, depth int) *ast.Rule {
	if depth > b.maxDepth {
		b.errors.AddError(profileErrors.ErrorTypeStructural,
			fmt.Sprintf("array nesting exceeds maximum depth %d", b.maxDepth), path)
		return nil
	}

	rule := &ast.Rule{
		Target:    jr.Target,
		Type:      ast.RuleType(jr.Type),
		Source:    jr.Source,
		Sources:   jr.Sources,
		Separator: jr.Separator,
		Value:     jr.Value,
		Template:  jr.Template,
		Map:       jr.Map,
		Index:     index,
	}

	if rule.Target == "" {
		b.errors.AddError(profileErrors.ErrorTypeStructural,
			"rule has no target", path)
		return nil
	}

	if jr.Type == "" {
		b.errors.AddErrorWithSuggestion(profileErrors.ErrorTypeStructural,
			fmt.Sprintf("rule %q has no type", rule.Target), path,
			"set \"type\" to one of the twelve rule kinds")
		return nil
	}

	if !ast.IsKnownRuleType(rule.Type) {
		b.errors.AddErrorWithSuggestion(profileErrors.ErrorTypeStructural,
			fmt.Sprintf("rule %q has unknown type %q", rule.Target, jr.Type), path,
			"known types: "+joinRuleTypes())
		return nil
	}

	// A "[]" target marker and the array type imply each other.
	if rule.HasArrayTarget() && !rule.IsArray() {
		b.errors.AddError(profileErrors.ErrorTypeSemantic,
			fmt.Sprintf("target %q ends in [] but rule type is %q, not array", rule.Target, rule.Type), path)
		return nil
	}

	b.checkKindRequirements(rule, path)

	if rule.IsArray() {
		if len(jr.Fields) == 0 {
			b.errors.AddErrorWithSuggestion(profileErrors.ErrorTypeStructural,
				fmt.Sprintf("array rule %q has no fields", rule.Target), path,
				`add a "fields" array of rules evaluated against each container element`)
		}
		rule.Fields = make([]*ast.Rule, 0, len(jr.Fields))
		for i := range jr.Fields {
			fieldPath := fmt.Sprintf("%s.fields[%d]", path, i)
			field := b.buildRule(&jr.Fields[i], i, fieldPath, depth+1)
			if field != nil {
				rule.Fields = append(rule.Fields, field)
			}
		}
	}

	return rule
}

// checkKindRequirements validates the kind-specific required fields.
// Problems are accumulated; the rule itself is still returned to the
// caller so that sibling errors inside array fields also surface.
func (b *builder) checkKindRequirements(rule *ast.Rule, path string) {
	switch rule.Type {
	case ast.RuleTypeString, ast.RuleTypeNumber, ast.RuleTypeInteger,
		ast.RuleTypeBoolean, ast.RuleTypeDate, ast.RuleTypeLookup:
		if rule.Source == "" {
			b.errors.AddError(profileErrors.ErrorTypeStructural,
				fmt.Sprintf("%s rule %q requires a source path", rule.Type, rule.Target), path)
		}
		if rule.Type == ast.RuleTypeLookup && len(rule.Map) == 0 {
			b.errors.AddErrorWithSuggestion(profileErrors.ErrorTypeStructural,
				fmt.Sprintf("lookup rule %q requires a map", rule.Target), path,
				`add a "map" object; use "*" as the wildcard default key`)
		}

	case ast.RuleTypeArray:
		if rule.Source == "" {
			b.errors.AddError(profileErrors.ErrorTypeStructural,
				fmt.Sprintf("array rule %q requires a source path", rule.Target), path)
		}

	case ast.RuleTypeConcat, ast.RuleTypeFirstOf:
		if len(rule.Sources) == 0 {
			b.errors.AddError(profileErrors.ErrorTypeStructural,
				fmt.Sprintf("%s rule %q requires sources", rule.Type, rule.Target), path)
		}

	case ast.RuleTypeStatic:
		if rule.Value == nil {
			b.errors.AddError(profileErrors.ErrorTypeStructural,
				fmt.Sprintf("static rule %q requires a value", rule.Target), path)
		}

	case ast.RuleTypeTemplate:
		if rule.Template == "" {
			b.errors.AddError(profileErrors.ErrorTypeStructural,
				fmt.Sprintf("template rule %q requires a template", rule.Target), path)
		}
		if len(rule.Sources) == 0 {
			b.errors.AddError(profileErrors.ErrorTypeStructural,
				fmt.Sprintf("template rule %q requires sources", rule.Target), path)
		}
		b.checkPlaceholders(rule, path)

	case ast.RuleTypeAsFoundAsLeft, ast.RuleTypeConformity:
		// No required fields: both read attributes on the context
		// element, conformity optionally via source.
	}
}

// checkPlaceholders verifies that every {i} placeholder in a template
// has a matching entry in sources.
func (b *builder) checkPlaceholders(rule *ast.Rule, path string) {
	for _, match := range placeholderPattern.FindAllStringSubmatch(rule.Template, -1) {
		idx, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if idx >= len(rule.Sources) {
			b.errors.AddError(profileErrors.ErrorTypeSemantic,
				fmt.Sprintf("template rule %q references {%d} but only %d source(s) are given",
					rule.Target, idx, len(rule.Sources)), path)
		}
	}
}

func joinRuleTypes() string {
	names := make([]string, len(ast.RuleTypes))
	for i, t := range ast.RuleTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
