// Package ast provides the data model for mapping profiles.
//
// A mapping profile is the declarative rule set that drives the conversion
// of a vendor-specific calibration certificate (XML) into the intermediate
// DCC-JSON representation. Profiles are authored (or generated) as JSON
// documents and parsed by the parser package into the typed structures
// defined here.
//
// # Core Types
//
// Profile: Root node containing identity metadata and an ordered rule list
//
// Rule: A single typed extraction/transformation instruction. The Type
// field is a closed discriminator over twelve rule kinds; array rules nest
// further rules through the Fields slice to unbounded depth.
//
// # Basic Usage
//
// Parse a profile and walk its rules:
//
//	profile, err := parser.NewParser().Parse("fluke-5522a.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, rule := range profile.Mappings {
//	    fmt.Println(rule.Target, rule.Type)
//	}
package ast
