package ast

import "testing"

func TestTargetKey(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"coreData.uniqueIdentifier", "coreData.uniqueIdentifier"},
		{"items[]", "items"},
		{"measurementResults[]", "measurementResults"},
	}
	for _, tt := range tests {
		r := &Rule{Target: tt.target}
		if got := r.TargetKey(); got != tt.want {
			t.Errorf("TargetKey(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestHasArrayTarget(t *testing.T) {
	if !(&Rule{Target: "items[]"}).HasArrayTarget() {
		t.Error("items[] should report an array target")
	}
	if (&Rule{Target: "items"}).HasArrayTarget() {
		t.Error("items should not report an array target")
	}
}

func TestSeparatorOrDefault(t *testing.T) {
	if got := (&Rule{}).SeparatorOrDefault(); got != " " {
		t.Errorf("default separator = %q, want single space", got)
	}
	if got := (&Rule{Separator: ", "}).SeparatorOrDefault(); got != ", " {
		t.Errorf("explicit separator = %q, want %q", got, ", ")
	}
}

func TestIsKnownRuleType(t *testing.T) {
	for _, rt := range RuleTypes {
		if !IsKnownRuleType(rt) {
			t.Errorf("IsKnownRuleType(%q) = false", rt)
		}
	}
	if IsKnownRuleType("regex") {
		t.Error(`IsKnownRuleType("regex") = true, want false`)
	}
}
