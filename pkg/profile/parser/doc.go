// Package parser parses mapping profile JSON documents into the typed
// structures of the ast package.
//
// Parsing happens in two stages: the raw JSON is decoded into an
// intermediate structure, then a builder walks that structure and
// produces validated ast.Rule values, accumulating every structural
// problem instead of stopping at the first.
//
// Profiles are frequently produced by an AI-assisted workflow and arrive
// with the usual LLM JSON defects (single quotes, trailing commas,
// markdown fences). When strict decoding fails the parser runs the input
// through json-repair before giving up; this can be disabled with
// WithRepair(false).
//
// # Basic Usage
//
//	p := parser.NewParser()
//	profile, err := p.Parse("profiles/fluke-5522a.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
package parser
