package ast

// Profile represents a parsed mapping profile.
// It carries identity metadata and the ordered rule list that the mapping
// engine evaluates against a source document. Rule order matters only for
// firstOf resolution and array iteration, both of which follow document
// order; everything else is order-independent.
type Profile struct {
	// Metadata
	Name            string // Profile name (usually instrument or vendor)
	SchemaNamespace string // Source schema namespace, informational only
	RootElement     string // Expected root element local name, informational only
	Description     string // Human-readable description

	// Content
	Mappings []*Rule // Mapping rules, evaluated independently in order

	// Source tracking
	SourceFile string // Path the profile was loaded from, if any
}

// RuleCount returns the number of top-level rules in the profile.
func (p *Profile) RuleCount() int {
	return len(p.Mappings)
}

// FindByTarget returns the first rule whose target matches the given
// dotted path, or nil if none does. Only top-level rules are searched.
func (p *Profile) FindByTarget(target string) *Rule {
	for _, rule := range p.Mappings {
		if rule.Target == target {
			return rule
		}
	}
	return nil
}
