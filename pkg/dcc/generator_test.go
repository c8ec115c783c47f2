package dcc

import (
	"strings"
	"testing"
)

func completeDCCJSON() map[string]any {
	return map[string]any{
		"coreData": map[string]any{
			"countryCodeISO3166_1":      "DE",
			"usedLangCodeISO639_1":      "en",
			"mandatoryLangCodeISO639_1": "de",
			"uniqueIdentifier":          "CERT-2024-0042",
			"receiptDate":               "2024-03-01",
			"beginPerformanceDate":      "2024-03-04",
			"endPerformanceDate":        "2024-03-05",
			"performanceLocation":       "laboratory",
		},
		"items": []map[string]any{
			{
				"name":         "Digital pressure gauge",
				"manufacturer": "WIKA",
				"model":        "CPG1500",
				"serialNumber": "55001",
			},
		},
		"calibrationLaboratory": map[string]any{
			"name":        "Pressure Cal Lab GmbH",
			"email":       "lab@example.com",
			"street":      "Messweg",
			"streetNo":    "7",
			"postCode":    "38116",
			"city":        "Braunschweig",
			"countryCode": "DE",
		},
		"respPersons": []map[string]any{
			{"name": "A. Techniker", "mainSigner": true},
		},
		"customer": map[string]any{
			"name": "Kunde AG",
			"city": "Hamburg",
		},
		"statements": []map[string]any{
			{"declaration": "Calibrated according to DKD-R 6-1."},
		},
		"measuringEquipments": []map[string]any{
			{"name": "Pressure balance", "serialNumber": "PB-9"},
		},
		"measurementResults": []map[string]any{
			{
				"name": "Pressure ascending",
				"unit": `\pascal`,
				"usedMethods": []map[string]any{
					{"name": "Comparison method", "norm": "DKD-R 6-1"},
				},
				"influenceConditions": []map[string]any{
					{"name": "Ambient temperature", "value": 21.3, "unit": `\degreecelsius`, "uncertainty": 0.5},
				},
				"results": []map[string]any{
					{
						"setPoint":            100.0,
						"referenceValue":      100.002,
						"measuredValue":       100.01,
						"deviation":           0.008,
						"uncertainty":         0.02,
						"coverageFactor":      2.0,
						"coverageProbability": 0.95,
						"allowedDeviation":    0.05,
						"conformity":          "pass",
						"asFoundAsLeft":       "asLeft",
					},
				},
			},
		},
		"calibrationSOPs": []map[string]any{
			{"name": "SOP-P-01", "value": "rev 3"},
		},
	}
}

func TestGenerateCompleteDocument(t *testing.T) {
	gen := NewGenerator()
	xml, warnings := gen.Generate(completeDCCJSON())

	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`xmlns:dcc="https://ptb.de/dcc"`,
		`xmlns:si="https://ptb.de/si"`,
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"`,
		`schemaVersion="3.3.0"`,
		"<dcc:uniqueIdentifier>CERT-2024-0042</dcc:uniqueIdentifier>",
		"<dcc:beginPerformanceDate>2024-03-04</dcc:beginPerformanceDate>",
		"<dcc:content>Digital pressure gauge</dcc:content>",
		"<dcc:value>55001</dcc:value>",
		"<dcc:content>Pressure Cal Lab GmbH</dcc:content>",
		"<dcc:mainSigner>true</dcc:mainSigner>",
		"<dcc:content>Kunde AG</dcc:content>",
		"<dcc:content>Calibrated according to DKD-R 6-1.</dcc:content>",
		"<dcc:content>Pressure balance</dcc:content>",
		"<dcc:content>Comparison method</dcc:content>",
		"<dcc:norm>DKD-R 6-1</dcc:norm>",
		"<si:value>21.3</si:value>",
		"<dcc:content>Measured value</dcc:content>",
		"<si:uncertainty>0.02</si:uncertainty>",
		"<si:coverageFactor>2</si:coverageFactor>",
		"<si:coverageProbability>0.95</si:coverageProbability>",
		"<dcc:noQuantity>pass</dcc:noQuantity>",
		"<dcc:noQuantity>asLeft</dcc:noQuantity>",
		"Calibration location: laboratory",
		"SOP: SOP-P-01 rev 3",
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateEmptyInput(t *testing.T) {
	gen := NewGenerator()
	xml, warnings := gen.Generate(map[string]any{})

	if xml == "" {
		t.Fatal("Generate returned empty document")
	}

	// Placeholders keep the document schema-shaped.
	for _, want := range []string{
		"<dcc:uniqueIdentifier>UNKNOWN</dcc:uniqueIdentifier>",
		"<dcc:countryCodeISO3166_1>XX</dcc:countryCodeISO3166_1>",
		"<dcc:usedLangCodeISO639_1>en</dcc:usedLangCodeISO639_1>",
		"<dcc:beginPerformanceDate>1900-01-01</dcc:beginPerformanceDate>",
		"<dcc:content>Calibration item</dcc:content>",
		"<dcc:content>NN</dcc:content>",
		"<dcc:noQuantity>No value available</dcc:noQuantity>",
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("output missing %q", want)
		}
	}

	for _, want := range []string{
		"missing certificate ID",
		"missing begin-date",
		"missing laboratory name",
		"missing customer name",
		"no items",
		"no measurement results",
	} {
		if !containsWarning(warnings, want) {
			t.Errorf("warnings missing %q, got %v", want, warnings)
		}
	}
}

func TestGenerateNilInput(t *testing.T) {
	gen := NewGenerator()
	xml, warnings := gen.Generate(nil)
	if xml == "" {
		t.Error("Generate(nil) returned empty document")
	}
	if len(warnings) == 0 {
		t.Error("Generate(nil) returned no warnings")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	gen := NewGenerator()
	input := completeDCCJSON()
	first, _ := gen.Generate(input)
	second, _ := gen.Generate(input)
	if first != second {
		t.Error("repeated generation produced different documents")
	}
}

func TestGenerateAcceptanceLimits(t *testing.T) {
	gen := NewGenerator()
	xml, _ := gen.Generate(map[string]any{
		"measurementResults": []map[string]any{
			{
				"results": []map[string]any{
					{"measuredValue": 10.0, "allowedDeviation": -0.5},
				},
			},
		},
	})

	if !strings.Contains(xml, "<dcc:content>Lower acceptance limit</dcc:content>") {
		t.Error("output missing lower acceptance limit quantity")
	}
	if !strings.Contains(xml, "<dcc:content>Upper acceptance limit</dcc:content>") {
		t.Error("output missing upper acceptance limit quantity")
	}
	// Limits derive from the magnitude: negated for the lower bound,
	// the plain literal for the upper bound. No sign decoration.
	if !strings.Contains(xml, "<si:value>-0.5</si:value>") {
		t.Error("lower limit not rendered as -0.5")
	}
	if !strings.Contains(xml, "<si:value>0.5</si:value>") {
		t.Error("upper limit not rendered as 0.5")
	}
}

func TestGenerateNestedLocationObject(t *testing.T) {
	gen := NewGenerator()
	xml, _ := gen.Generate(map[string]any{
		"calibrationLaboratory": map[string]any{
			"name": "Example Calibration Lab",
			"location": map[string]any{
				"street": "Messweg 12",
				"city":   "Braunschweig",
			},
		},
	})

	if !strings.Contains(xml, "<dcc:street>Messweg 12</dcc:street>") {
		t.Error("street from nested location object not rendered")
	}
	if !strings.Contains(xml, "<dcc:city>Braunschweig</dcc:city>") {
		t.Error("city from nested location object not rendered")
	}
}

func TestGenerateMPEFallback(t *testing.T) {
	gen := NewGenerator()
	xml, _ := gen.Generate(map[string]any{
		"measurementResults": []map[string]any{
			{
				"results": []map[string]any{
					{"measuredValue": 10.0, "mpe": 0.25},
				},
			},
		},
	})

	if !strings.Contains(xml, "<si:value>0.25</si:value>") {
		t.Error("mpe not used as acceptance limit fallback")
	}
	if !strings.Contains(xml, "<si:value>-0.25</si:value>") {
		t.Error("mpe magnitude not negated for the lower limit")
	}
}

func TestGenerateInfluenceConditionRange(t *testing.T) {
	gen := NewGenerator()
	xml, _ := gen.Generate(map[string]any{
		"measurementResults": []map[string]any{
			{
				"influenceConditions": []map[string]any{
					{"name": "Humidity", "min": 30.0, "max": 60.0, "unit": `\percent`},
				},
				"results": []map[string]any{
					{"measuredValue": 1.0},
				},
			},
		},
	})

	if !strings.Contains(xml, "<dcc:content>Minimum</dcc:content>") {
		t.Error("output missing Minimum quantity for range condition")
	}
	if !strings.Contains(xml, "<dcc:content>Maximum</dcc:content>") {
		t.Error("output missing Maximum quantity for range condition")
	}
	if !strings.Contains(xml, "<si:value>30</si:value>") {
		t.Error("output missing range minimum value")
	}
}

func TestGenerateZeroPoints(t *testing.T) {
	gen := NewGenerator()
	xml, warnings := gen.Generate(map[string]any{
		"coreData": map[string]any{
			"uniqueIdentifier":     "C-1",
			"beginPerformanceDate": "2024-01-01",
		},
		"measurementResults": []map[string]any{
			{"name": "Empty group"},
		},
	})

	if !strings.Contains(xml, "<dcc:noQuantity>No value available</dcc:noQuantity>") {
		t.Error("zero-point group missing no-quantity placeholder")
	}
	if !containsWarning(warnings, "has no individual results") {
		t.Errorf("warnings missing zero-point notice, got %v", warnings)
	}
}

func TestGenerateRemarksFoldedIntoStatements(t *testing.T) {
	gen := NewGenerator()
	xml, _ := gen.Generate(map[string]any{
		"remarks": "Handle with care.",
	})

	if !strings.Contains(xml, "<dcc:content>Handle with care.</dcc:content>") {
		t.Error("remarks not folded into statements")
	}
}

func TestGenerateAccessoriesFoldedIntoItems(t *testing.T) {
	gen := NewGenerator()
	xml, _ := gen.Generate(map[string]any{
		"items": []map[string]any{
			{"name": "Gauge", "serialNumber": "G-1"},
		},
		"accessories": []map[string]any{
			{"name": "Adapter", "serialNumber": "A-1"},
		},
	})

	if !strings.Contains(xml, "<dcc:content>Adapter</dcc:content>") {
		t.Error("accessory not folded into items")
	}
	if !strings.Contains(xml, "<dcc:value>A-1</dcc:value>") {
		t.Error("accessory serial number not emitted as identification")
	}
}

func TestGenerateDefaultUnit(t *testing.T) {
	gen := NewGenerator()
	xml, _ := gen.Generate(map[string]any{
		"measurementResults": []map[string]any{
			{
				"results": []map[string]any{
					{"measuredValue": 3.0},
				},
			},
		},
	})

	if !strings.Contains(xml, `<si:unit>\one</si:unit>`) {
		t.Errorf("missing default unit, output:\n%s", xml)
	}
}

func containsWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
