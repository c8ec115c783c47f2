// Package dcc generates Digital Calibration Certificate XML from the
// intermediate DCC-JSON object produced by the mapping engine.
//
// The generator is a pure function: no I/O, deterministic output for
// identical input, and total. Any DCC-JSON object, including an empty
// one, yields a well-formed document plus an advisory warning list. It
// never fails. Missing mandatory data is replaced with synthesized
// placeholders and reported through the warnings, because the driving
// use case is best-effort conversion with human review, not hard
// validation gating.
//
// The emitted skeleton is fixed: a root element carrying the DCC and SI
// namespaces, an administrative-data subtree (core data, laboratory,
// responsible persons, customer, items, statements), a
// measurement-results subtree, and an optional trailing comment. The
// document is built with github.com/beevik/etree and serialized with a
// fixed two-space indent.
//
// # DCC-JSON field inventory
//
// The generator reads the following top-level keys, all optional:
// coreData, calibrationLaboratory, customer, respPersons, items,
// accessories, measurementResults (with nested results,
// influenceConditions, usedMethods, measuringEquipments),
// measuringEquipments, calibrationSOPs, statements, remarks. This
// inventory is the contract with external profile producers.
package dcc
