// Package engine implements the mapping engine: a namespace-agnostic
// path-resolution and rule-evaluation engine that applies a mapping
// profile to a source XML document and produces the intermediate
// DCC-JSON object.
//
// # Components
//
// Resolver: translates the simplified slash-separated path syntax into
// traversals over the parsed document, matching elements by local name
// only so the source document's namespace prefixes never matter.
//
// Evaluator: extracts and converts a single value (or a nested array of
// objects) for one typed mapping rule, switching exhaustively over the
// twelve rule kinds.
//
// Assembler: writes extracted values into the accumulating DCC-JSON
// object at dotted target paths.
//
// MappingEngine: drives one full conversion pass. Each top-level rule is
// evaluated in isolation; a bad rule is logged and skipped, never
// aborting the conversion. Only a source-document parse failure is
// fatal.
//
// Source documents are parsed with github.com/antchfx/xmlquery and are
// never mutated. A conversion is a pure function of (source XML,
// profile); concurrent conversions need no coordination.
package engine
