package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/google/uuid"

	"caliper-hq/dccbridge/pkg/profile/ast"
)

// Engine is the main interface for XML-to-DCC-JSON conversion.
type Engine interface {
	// Convert applies a mapping profile to a source XML document and
	// returns the assembled DCC-JSON object. Only a source parse
	// failure yields an error; individual rule failures are isolated
	// and reported on the Conversion.
	Convert(ctx context.Context, source []byte, profile *ast.Profile) (*Conversion, error)
}

// Recorder receives conversion telemetry. Implementations must be safe
// for concurrent use; a nil Recorder disables recording.
type Recorder interface {
	RecordConversion(profile, status string, duration time.Duration)
	RecordRuleFailure(ruleType string)
}

// Conversion is the result of one full conversion pass.
type Conversion struct {
	// ID uniquely identifies this conversion.
	ID string

	// Profile is the name of the mapping profile that was applied.
	Profile string

	// DCC is the assembled DCC-JSON object. Fields whose rules
	// produced no value are absent, not null.
	DCC map[string]any

	// RuleErrors lists the top-level rules that failed. A non-empty
	// list does not invalidate DCC; the remaining rules' output is
	// intact.
	RuleErrors []RuleError

	// Duration is the wall time of the conversion pass.
	Duration time.Duration
}

// RuleError describes the failure of a single top-level rule.
type RuleError struct {
	Target string       // Rule target path
	Type   ast.RuleType // Rule kind
	Index  int          // Position in the profile's rule list
	Err    error        // Underlying cause
}

// Error implements the error interface.
func (re RuleError) Error() string {
	return fmt.Sprintf("rule %d (%s -> %s): %v", re.Index, re.Type, re.Target, re.Err)
}

// MappingEngine is the default Engine implementation.
type MappingEngine struct {
	evaluator *Evaluator
	logger    *slog.Logger
	recorder  Recorder
}

// NewMappingEngine creates a new mapping engine. Both logger and
// recorder may be nil.
func NewMappingEngine(logger *slog.Logger, recorder Recorder) *MappingEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &MappingEngine{
		evaluator: NewEvaluator(logger),
		logger:    logger,
		recorder:  recorder,
	}
}

// Convert applies the profile to the source document.
//
// The source is parsed once; the parsed tree is owned by this call and
// never mutated. Every top-level rule is evaluated independently: a
// failure in one rule is caught, logged, recorded on the result, and
// treated as "no value produced", leaving the rest of the profile's
// output intact. Profiles may be auto-generated and imperfect; a single
// bad rule must not abort data recovery for an entire certificate.
func (m *MappingEngine) Convert(ctx context.Context, source []byte, profile *ast.Profile) (*Conversion, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	doc, err := xmlquery.Parse(bytes.NewReader(source))
	if err != nil {
		m.record(profile.Name, "parse_error", time.Since(start))
		return nil, fmt.Errorf("failed to parse source XML: %w", err)
	}

	conversion := &Conversion{
		ID:      uuid.NewString(),
		Profile: profile.Name,
		DCC:     make(map[string]any),
	}

	for _, rule := range profile.Mappings {
		value, ruleErr := m.evaluateIsolated(doc, rule)
		if ruleErr != nil {
			conversion.RuleErrors = append(conversion.RuleErrors, *ruleErr)
			if m.recorder != nil {
				m.recorder.RecordRuleFailure(string(rule.Type))
			}
			m.logger.Warn("mapping rule failed, skipping",
				"conversion_id", conversion.ID,
				"profile", profile.Name,
				"target", rule.Target,
				"rule_type", rule.Type,
				"error", ruleErr.Err,
			)
			continue
		}
		if value != nil {
			Assign(conversion.DCC, rule.TargetKey(), value)
		}
	}

	conversion.Duration = time.Since(start)
	m.record(profile.Name, "ok", conversion.Duration)

	m.logger.Debug("conversion completed",
		"conversion_id", conversion.ID,
		"profile", profile.Name,
		"rule_count", len(profile.Mappings),
		"rule_failures", len(conversion.RuleErrors),
		"duration_ms", conversion.Duration.Milliseconds(),
	)

	return conversion, nil
}

// evaluateIsolated evaluates one top-level rule, converting errors and
// panics into a RuleError so the caller can continue with the next
// rule.
func (m *MappingEngine) evaluateIsolated(doc *xmlquery.Node, rule *ast.Rule) (value any, ruleErr *RuleError) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			ruleErr = &RuleError{
				Target: rule.Target,
				Type:   rule.Type,
				Index:  rule.Index,
				Err:    fmt.Errorf("panic during evaluation: %v", r),
			}
		}
	}()

	v, err := m.evaluator.Evaluate(doc, rule)
	if err != nil {
		return nil, &RuleError{
			Target: rule.Target,
			Type:   rule.Type,
			Index:  rule.Index,
			Err:    err,
		}
	}
	return v, nil
}

func (m *MappingEngine) record(profile, status string, d time.Duration) {
	if m.recorder != nil {
		m.recorder.RecordConversion(profile, status, d)
	}
}
