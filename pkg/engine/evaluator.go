package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/antchfx/xmlquery"

	"caliper-hq/dccbridge/pkg/profile/ast"
)

// Evaluator extracts values from a source document according to typed
// mapping rules. It is stateless apart from its logger and safe for
// concurrent use.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates a new rule evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger}
}

// Evaluate evaluates a single rule against a context node and returns
// the extracted value, or nil when the rule produces no value. An
// absent or empty-string source always yields nil, never an empty
// string; omission is the contract with downstream consumers.
func (e *Evaluator) Evaluate(ctx *xmlquery.Node, rule *ast.Rule) (any, error) {
	if rule == nil {
		return nil, fmt.Errorf("rule cannot be nil")
	}

	switch rule.Type {
	case ast.RuleTypeString:
		if raw := resolveString(ctx, rule.Source); raw != "" {
			return raw, nil
		}
		return nil, nil

	case ast.RuleTypeNumber:
		raw := resolveString(ctx, rule.Source)
		if raw == "" {
			return nil, nil
		}
		if f, ok := convertNumber(raw); ok {
			return f, nil
		}
		return nil, nil

	case ast.RuleTypeInteger:
		raw := resolveString(ctx, rule.Source)
		if raw == "" {
			return nil, nil
		}
		if i, ok := convertInteger(raw); ok {
			return i, nil
		}
		return nil, nil

	case ast.RuleTypeBoolean:
		raw := resolveString(ctx, rule.Source)
		if raw == "" {
			return nil, nil
		}
		return convertBoolean(raw), nil

	case ast.RuleTypeDate:
		raw := resolveString(ctx, rule.Source)
		if raw == "" {
			return nil, nil
		}
		return convertDate(raw), nil

	case ast.RuleTypeArray:
		items, err := e.EvaluateArray(ctx, rule)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, nil
		}
		return items, nil

	case ast.RuleTypeAsFoundAsLeft:
		return e.evaluateAsFoundAsLeft(ctx), nil

	case ast.RuleTypeConformity:
		return e.evaluateConformity(ctx, rule), nil

	case ast.RuleTypeConcat:
		return e.evaluateConcat(ctx, rule), nil

	case ast.RuleTypeStatic:
		return rule.Value, nil

	case ast.RuleTypeTemplate:
		return e.evaluateTemplate(ctx, rule), nil

	case ast.RuleTypeLookup:
		return e.evaluateLookup(ctx, rule), nil

	case ast.RuleTypeFirstOf:
		return e.evaluateFirstOf(ctx, rule), nil

	default:
		return nil, fmt.Errorf("unknown rule type: %q", rule.Type)
	}
}

// EvaluateArray resolves the rule's source to an ordered sequence of
// container elements and builds one output object per container by
// evaluating every field rule against it. The output order exactly
// matches source document order; downstream consumers rely on it for
// positional labeling. Nested array fields recurse without depth limit.
func (e *Evaluator) EvaluateArray(ctx *xmlquery.Node, rule *ast.Rule) ([]map[string]any, error) {
	containers := resolveNodes(ctx, rule.Source)
	items := make([]map[string]any, 0, len(containers))

	for _, container := range containers {
		obj := make(map[string]any)
		for _, field := range rule.Fields {
			if field.IsArray() {
				nested, err := e.EvaluateArray(container, field)
				if err != nil {
					return nil, err
				}
				if len(nested) > 0 {
					Assign(obj, field.TargetKey(), nested)
				}
				continue
			}

			value, err := e.Evaluate(container, field)
			if err != nil {
				return nil, err
			}
			if value != nil {
				Assign(obj, field.TargetKey(), value)
			}
		}
		// The object is kept even when every field came up empty so
		// the array stays aligned with the source elements.
		items = append(items, obj)
	}

	return items, nil
}

// evaluateAsFoundAsLeft reads the isAsFound/isAsLeft attribute pair on
// the context element. The flags are mutually exclusive in well-formed
// documents; when both are absent the category is unknown and the field
// is omitted, never guessed.
func (e *Evaluator) evaluateAsFoundAsLeft(ctx *xmlquery.Node) any {
	if attrValue(ctx, "isAsFound") == "true" {
		return "asFound"
	}
	if attrValue(ctx, "isAsLeft") == "true" {
		return "asLeft"
	}
	return nil
}

// evaluateConformity reads the isConform attribute from the element the
// rule's source resolves to, defaulting to the context element itself.
func (e *Evaluator) evaluateConformity(ctx *xmlquery.Node, rule *ast.Rule) any {
	target := ctx
	if rule.Source != "" && rule.Source != "." {
		target = resolveFirst(ctx, rule.Source)
	}
	if target == nil {
		return nil
	}

	switch attrValue(target, "isConform") {
	case "true":
		return "pass"
	case "false":
		return "fail"
	default:
		return nil
	}
}

// evaluateConcat resolves each source independently, drops empty
// results, and joins the remainder. All-empty yields nil, not "".
func (e *Evaluator) evaluateConcat(ctx *xmlquery.Node, rule *ast.Rule) any {
	var parts []string
	for _, source := range rule.Sources {
		if raw := resolveString(ctx, source); raw != "" {
			parts = append(parts, raw)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return strings.Join(parts, rule.SeparatorOrDefault())
}

// evaluateTemplate substitutes each resolved source into its
// index-aligned {i} placeholder. Missing values substitute as the empty
// string so later indices stay aligned; if no index yielded a value the
// result is nil.
func (e *Evaluator) evaluateTemplate(ctx *xmlquery.Node, rule *ast.Rule) any {
	result := rule.Template
	anyValue := false
	for i, source := range rule.Sources {
		raw := resolveString(ctx, source)
		if raw != "" {
			anyValue = true
		}
		result = strings.ReplaceAll(result, fmt.Sprintf("{%d}", i), raw)
	}
	if !anyValue {
		return nil
	}
	return strings.TrimSpace(result)
}

// evaluateLookup translates the resolved raw value through the rule's
// map: exact match first, then the lowercased raw value, then the "*"
// wildcard default, and finally the raw value unchanged. The
// pass-through is the designed fallback, not an error.
func (e *Evaluator) evaluateLookup(ctx *xmlquery.Node, rule *ast.Rule) any {
	raw := resolveString(ctx, rule.Source)
	if raw == "" {
		return nil
	}

	if mapped, ok := rule.Map[raw]; ok {
		return mapped
	}
	if mapped, ok := rule.Map[strings.ToLower(raw)]; ok {
		return mapped
	}
	if mapped, ok := rule.Map["*"]; ok {
		return mapped
	}
	return raw
}

// evaluateFirstOf returns the first source that resolves to a non-empty
// value, in rule order.
func (e *Evaluator) evaluateFirstOf(ctx *xmlquery.Node, rule *ast.Rule) any {
	for _, source := range rule.Sources {
		if raw := resolveString(ctx, source); raw != "" {
			return raw
		}
	}
	return nil
}
