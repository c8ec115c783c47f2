package engine

import (
	"testing"

	"caliper-hq/dccbridge/pkg/profile/ast"
)

func TestEvaluateStringRule(t *testing.T) {
	doc := mustParse(t, `<Cal><Cert>ABC-123</Cert><Empty></Empty></Cal>`)
	e := NewEvaluator(nil)

	got, err := e.Evaluate(doc, &ast.Rule{Type: ast.RuleTypeString, Source: "Cert"})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got != "ABC-123" {
		t.Errorf("string rule = %v, want %q", got, "ABC-123")
	}

	// Empty element and missing element both yield nil, never "".
	for _, source := range []string{"Empty", "Missing"} {
		got, err := e.Evaluate(doc, &ast.Rule{Type: ast.RuleTypeString, Source: source})
		if err != nil {
			t.Fatalf("Evaluate(%s) error = %v", source, err)
		}
		if got != nil {
			t.Errorf("string rule on %s = %v, want nil", source, got)
		}
	}
}

func TestEvaluateNumberRule(t *testing.T) {
	doc := mustParse(t, `<Cal><V>10.5</V><Bad>n/a</Bad></Cal>`)
	e := NewEvaluator(nil)

	got, _ := e.Evaluate(doc, &ast.Rule{Type: ast.RuleTypeNumber, Source: "V"})
	if got != 10.5 {
		t.Errorf("number rule = %v, want 10.5", got)
	}

	// Unparseable input is omission, never NaN.
	got, err := e.Evaluate(doc, &ast.Rule{Type: ast.RuleTypeNumber, Source: "Bad"})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got != nil {
		t.Errorf("number rule on non-numeric = %v, want nil", got)
	}
}

func TestEvaluateIntegerRule(t *testing.T) {
	doc := mustParse(t, `<Cal><A>42</A><B>10.0</B><C>text</C></Cal>`)
	e := NewEvaluator(nil)

	got, _ := e.Evaluate(doc, &ast.Rule{Type: ast.RuleTypeInteger, Source: "A"})
	if got != int64(42) {
		t.Errorf("integer rule = %v, want 42", got)
	}
	// Decimal-point integers are a common certificate quirk.
	got, _ = e.Evaluate(doc, &ast.Rule{Type: ast.RuleTypeInteger, Source: "B"})
	if got != int64(10) {
		t.Errorf("integer rule on 10.0 = %v, want 10", got)
	}
	got, _ = e.Evaluate(doc, &ast.Rule{Type: ast.RuleTypeInteger, Source: "C"})
	if got != nil {
		t.Errorf("integer rule on text = %v, want nil", got)
	}
}

func TestEvaluateBooleanRule(t *testing.T) {
	doc := mustParse(t, `<Cal><A>true</A><B>1</B><C>false</C><D>yes</D></Cal>`)
	e := NewEvaluator(nil)

	tests := []struct {
		source string
		want   any
	}{
		{"A", true},
		{"B", true},
		{"C", false},
		{"D", false},
		{"Missing", nil},
	}
	for _, tt := range tests {
		got, _ := e.Evaluate(doc, &ast.Rule{Type: ast.RuleTypeBoolean, Source: tt.source})
		if got != tt.want {
			t.Errorf("boolean rule on %s = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestEvaluateDateRule(t *testing.T) {
	doc := mustParse(t, `<Cal>
		<Plain>2024-08-09</Plain>
		<Stamp>2024-08-09T14:35:13.094+02:00</Stamp>
		<Odd>next Tuesday</Odd>
	</Cal>`)
	e := NewEvaluator(nil)

	tests := []struct {
		source string
		want   string
	}{
		{"Plain", "2024-08-09"},
		{"Stamp", "2024-08-09"},
		{"Odd", "next Tuesday"},
	}
	for _, tt := range tests {
		got, _ := e.Evaluate(doc, &ast.Rule{Type: ast.RuleTypeDate, Source: tt.source})
		if got != tt.want {
			t.Errorf("date rule on %s = %v, want %q", tt.source, got, tt.want)
		}
	}
}

func TestEvaluateAsFoundAsLeft(t *testing.T) {
	tests := []struct {
		source string
		want   any
	}{
		{`<Point isAsFound="true"/>`, "asFound"},
		{`<Point isAsLeft="true"/>`, "asLeft"},
		{`<Point isAsFound="false" isAsLeft="false"/>`, nil},
		{`<Point/>`, nil},
	}
	e := NewEvaluator(nil)

	for _, tt := range tests {
		doc := mustParse(t, tt.source)
		ctx := resolveFirst(doc, "Point")
		got, _ := e.Evaluate(ctx, &ast.Rule{Type: ast.RuleTypeAsFoundAsLeft})
		if got != tt.want {
			t.Errorf("asFoundAsLeft on %s = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestEvaluateConformity(t *testing.T) {
	tests := []struct {
		source string
		want   any
	}{
		{`<Point isConform="true"/>`, "pass"},
		{`<Point isConform="false"/>`, "fail"},
		{`<Point isConform="maybe"/>`, nil},
		{`<Point/>`, nil},
	}
	e := NewEvaluator(nil)

	for _, tt := range tests {
		doc := mustParse(t, tt.source)
		ctx := resolveFirst(doc, "Point")
		got, _ := e.Evaluate(ctx, &ast.Rule{Type: ast.RuleTypeConformity})
		if got != tt.want {
			t.Errorf("conformity on %s = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestEvaluateConformityWithSource(t *testing.T) {
	doc := mustParse(t, `<Group><Verdict isConform="true"/></Group>`)
	e := NewEvaluator(nil)

	got, _ := e.Evaluate(doc, &ast.Rule{Type: ast.RuleTypeConformity, Source: "Verdict"})
	if got != "pass" {
		t.Errorf("conformity with source = %v, want %q", got, "pass")
	}

	got, _ = e.Evaluate(doc, &ast.Rule{Type: ast.RuleTypeConformity, Source: "Missing"})
	if got != nil {
		t.Errorf("conformity with missing source = %v, want nil", got)
	}
}

func TestEvaluateConcat(t *testing.T) {
	doc := mustParse(t, `<Addr><Street>Main St</Street><No>7</No><Empty></Empty></Addr>`)
	e := NewEvaluator(nil)

	got, _ := e.Evaluate(doc, &ast.Rule{
		Type:    ast.RuleTypeConcat,
		Sources: []string{"Street", "No"},
	})
	if got != "Main St 7" {
		t.Errorf("concat = %v, want %q", got, "Main St 7")
	}

	// Empty parts are dropped, custom separator applies.
	got, _ = e.Evaluate(doc, &ast.Rule{
		Type:      ast.RuleTypeConcat,
		Sources:   []string{"Street", "Empty", "No"},
		Separator: ", ",
	})
	if got != "Main St, 7" {
		t.Errorf("concat with separator = %v, want %q", got, "Main St, 7")
	}

	// All empty yields nil, not "".
	got, _ = e.Evaluate(doc, &ast.Rule{
		Type:    ast.RuleTypeConcat,
		Sources: []string{"Empty", "Missing"},
	})
	if got != nil {
		t.Errorf("concat all-empty = %v, want nil", got)
	}
}

func TestEvaluateStatic(t *testing.T) {
	doc := mustParse(t, `<Cal/>`)
	e := NewEvaluator(nil)

	got, _ := e.Evaluate(doc, &ast.Rule{Type: ast.RuleTypeStatic, Value: "DE"})
	if got != "DE" {
		t.Errorf("static rule = %v, want %q", got, "DE")
	}
}

func TestEvaluateTemplate(t *testing.T) {
	doc := mustParse(t, `<Item><Make>Fluke</Make><Model>87V</Model></Item>`)
	e := NewEvaluator(nil)

	got, _ := e.Evaluate(doc, &ast.Rule{
		Type:     ast.RuleTypeTemplate,
		Template: "{0} {1}",
		Sources:  []string{"Make", "Model"},
	})
	if got != "Fluke 87V" {
		t.Errorf("template = %v, want %q", got, "Fluke 87V")
	}

	// A missing index substitutes as empty so later indices stay
	// aligned; the result is trimmed.
	got, _ = e.Evaluate(doc, &ast.Rule{
		Type:     ast.RuleTypeTemplate,
		Template: "{0} {1}",
		Sources:  []string{"Missing", "Model"},
	})
	if got != "87V" {
		t.Errorf("template with gap = %v, want %q", got, "87V")
	}

	// No index produced a value: nil.
	got, _ = e.Evaluate(doc, &ast.Rule{
		Type:     ast.RuleTypeTemplate,
		Template: "{0}",
		Sources:  []string{"Missing"},
	})
	if got != nil {
		t.Errorf("template all-empty = %v, want nil", got)
	}
}

func TestEvaluateLookup(t *testing.T) {
	doc := mustParse(t, `<Cal><Lang>GERMAN</Lang></Cal>`)
	e := NewEvaluator(nil)

	tests := []struct {
		name string
		m    map[string]string
		want any
	}{
		{"exact", map[string]string{"GERMAN": "de"}, "de"},
		{"lowercased raw", map[string]string{"german": "de"}, "de"},
		{"wildcard", map[string]string{"ENGLISH": "en", "*": "xx"}, "xx"},
		{"pass-through", map[string]string{"ENGLISH": "en"}, "GERMAN"},
		// The fallback looks up the lowercased raw value as a key; it
		// never scans the map, so keys that differ only in case cannot
		// resolve nondeterministically.
		{"deterministic fallback", map[string]string{"German": "x", "gErMaN": "y", "german": "de"}, "de"},
	}
	for _, tt := range tests {
		got, _ := e.Evaluate(doc, &ast.Rule{Type: ast.RuleTypeLookup, Source: "Lang", Map: tt.m})
		if got != tt.want {
			t.Errorf("lookup %s = %v, want %v", tt.name, got, tt.want)
		}
	}

	// Exact match wins over wildcard.
	got, _ := e.Evaluate(doc, &ast.Rule{
		Type:   ast.RuleTypeLookup,
		Source: "Lang",
		Map:    map[string]string{"GERMAN": "de", "*": "xx"},
	})
	if got != "de" {
		t.Errorf("lookup precedence = %v, want %q", got, "de")
	}

	// Empty source yields nil before any lookup happens.
	got, _ = e.Evaluate(doc, &ast.Rule{
		Type:   ast.RuleTypeLookup,
		Source: "Missing",
		Map:    map[string]string{"*": "xx"},
	})
	if got != nil {
		t.Errorf("lookup on missing source = %v, want nil", got)
	}
}

func TestEvaluateFirstOf(t *testing.T) {
	doc := mustParse(t, `<Cal><Second>two</Second><Third>three</Third></Cal>`)
	e := NewEvaluator(nil)

	got, _ := e.Evaluate(doc, &ast.Rule{
		Type:    ast.RuleTypeFirstOf,
		Sources: []string{"First", "Second", "Third"},
	})
	if got != "two" {
		t.Errorf("firstOf = %v, want %q", got, "two")
	}

	got, _ = e.Evaluate(doc, &ast.Rule{
		Type:    ast.RuleTypeFirstOf,
		Sources: []string{"Nope", "Nada"},
	})
	if got != nil {
		t.Errorf("firstOf all-empty = %v, want nil", got)
	}
}

func TestEvaluateArrayOrder(t *testing.T) {
	doc := mustParse(t, `<Results>
		<TestPoint><SetPoint>10</SetPoint></TestPoint>
		<TestPoint><SetPoint>20</SetPoint></TestPoint>
		<TestPoint><SetPoint>30</SetPoint></TestPoint>
	</Results>`)
	e := NewEvaluator(nil)

	rule := &ast.Rule{
		Target: "results[]",
		Type:   ast.RuleTypeArray,
		Source: "TestPoint",
		Fields: []*ast.Rule{
			{Target: "setPoint", Type: ast.RuleTypeNumber, Source: "SetPoint"},
		},
	}

	items, err := e.EvaluateArray(doc, rule)
	if err != nil {
		t.Fatalf("EvaluateArray() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("EvaluateArray() = %d items, want 3", len(items))
	}
	for i, want := range []float64{10, 20, 30} {
		if got := items[i]["setPoint"]; got != want {
			t.Errorf("items[%d].setPoint = %v, want %v", i, got, want)
		}
	}
}

func TestEvaluateArrayNested(t *testing.T) {
	doc := mustParse(t, `<Cert>
		<Group>
			<Name>Pressure</Name>
			<Point><V>1</V></Point>
			<Point><V>2</V></Point>
		</Group>
		<Group>
			<Name>Temperature</Name>
			<Point><V>3</V></Point>
		</Group>
	</Cert>`)
	e := NewEvaluator(nil)

	rule := &ast.Rule{
		Target: "measurementResults[]",
		Type:   ast.RuleTypeArray,
		Source: "Group",
		Fields: []*ast.Rule{
			{Target: "name", Type: ast.RuleTypeString, Source: "Name"},
			{
				Target: "results[]",
				Type:   ast.RuleTypeArray,
				Source: "Point",
				Fields: []*ast.Rule{
					{Target: "measuredValue", Type: ast.RuleTypeNumber, Source: "V"},
				},
			},
		},
	}

	groups, err := e.EvaluateArray(doc, rule)
	if err != nil {
		t.Fatalf("EvaluateArray() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("EvaluateArray() = %d groups, want 2", len(groups))
	}

	if got := groups[0]["name"]; got != "Pressure" {
		t.Errorf("groups[0].name = %v, want %q", got, "Pressure")
	}
	points, ok := groups[0]["results"].([]map[string]any)
	if !ok {
		t.Fatalf("groups[0].results = %T, want []map[string]any", groups[0]["results"])
	}
	if len(points) != 2 {
		t.Fatalf("groups[0].results = %d points, want 2", len(points))
	}
	if got := points[1]["measuredValue"]; got != float64(2) {
		t.Errorf("points[1].measuredValue = %v, want 2", got)
	}

	points, _ = groups[1]["results"].([]map[string]any)
	if len(points) != 1 {
		t.Fatalf("groups[1].results = %d points, want 1", len(points))
	}
}

func TestEvaluateArrayKeepsEmptyObjects(t *testing.T) {
	// Objects with no extracted fields stay in the array so output
	// positions match source positions.
	doc := mustParse(t, `<Results>
		<TestPoint><SetPoint>10</SetPoint></TestPoint>
		<TestPoint/>
		<TestPoint><SetPoint>30</SetPoint></TestPoint>
	</Results>`)
	e := NewEvaluator(nil)

	rule := &ast.Rule{
		Target: "results[]",
		Type:   ast.RuleTypeArray,
		Source: "TestPoint",
		Fields: []*ast.Rule{
			{Target: "setPoint", Type: ast.RuleTypeNumber, Source: "SetPoint"},
		},
	}

	items, err := e.EvaluateArray(doc, rule)
	if err != nil {
		t.Fatalf("EvaluateArray() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("EvaluateArray() = %d items, want 3", len(items))
	}
	if len(items[1]) != 0 {
		t.Errorf("items[1] = %v, want empty object", items[1])
	}
	if got := items[2]["setPoint"]; got != float64(30) {
		t.Errorf("items[2].setPoint = %v, want 30", got)
	}
}

func TestEvaluateEmptyArrayIsNil(t *testing.T) {
	doc := mustParse(t, `<Results/>`)
	e := NewEvaluator(nil)

	got, err := e.Evaluate(doc, &ast.Rule{
		Target: "results[]",
		Type:   ast.RuleTypeArray,
		Source: "TestPoint",
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got != nil {
		t.Errorf("empty array rule = %v, want nil", got)
	}
}

func TestEvaluateUnknownRuleType(t *testing.T) {
	doc := mustParse(t, `<Cal/>`)
	e := NewEvaluator(nil)

	if _, err := e.Evaluate(doc, &ast.Rule{Type: "regex", Source: "X"}); err == nil {
		t.Error("Evaluate() with unknown rule type, want error")
	}
	if _, err := e.Evaluate(doc, nil); err == nil {
		t.Error("Evaluate() with nil rule, want error")
	}
}

func TestConvertDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2024-08-09", "2024-08-09"},
		{"2024-08-09T14:35:13.094+02:00", "2024-08-09"},
		{"2024-08-09 14:35", "2024-08-09"},
		{"09.08.2024", "09.08.2024"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		if got := convertDate(tt.raw); got != tt.want {
			t.Errorf("convertDate(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestConvertInteger(t *testing.T) {
	tests := []struct {
		raw    string
		want   int64
		wantOK bool
	}{
		{"42", 42, true},
		{"-7", -7, true},
		{"10.0", 10, true},
		{"10.9", 10, true},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		got, ok := convertInteger(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("convertInteger(%q) = (%d, %v), want (%d, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}
