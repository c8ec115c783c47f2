package dcc

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

const (
	dccNamespace   = "https://ptb.de/dcc"
	siNamespace    = "https://ptb.de/si"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocation = "https://ptb.de/dcc https://ptb.de/dcc/v3.3.0/dcc.xsd"
	schemaVersion  = "3.3.0"

	placeholderText = "UNKNOWN"
	placeholderDate = "1900-01-01"
	defaultCountry  = "XX"
	defaultLanguage = "en"
	defaultUnit     = `\one`
	noValueText     = "No value available"
)

// Generator produces DCC XML documents from DCC-JSON objects.
// The zero value is usable; Generate is safe for concurrent use.
type Generator struct{}

// NewGenerator creates a new DCC XML generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate walks the DCC-JSON object and emits the fixed-structure DCC
// XML document plus a list of human-readable validation warnings.
// Warnings never block generation: missing mandatory data is replaced
// with synthesized placeholders so the output is always schema-shaped,
// if semantically incomplete.
func (g *Generator) Generate(dccJSON map[string]any) (string, []string) {
	if dccJSON == nil {
		dccJSON = map[string]any{}
	}

	b := &builder{doc: etree.NewDocument(), warnings: []string{}}
	b.doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := b.doc.CreateElement("dcc:digitalCalibrationCertificate")
	root.CreateAttr("xmlns:dcc", dccNamespace)
	root.CreateAttr("xmlns:si", siNamespace)
	root.CreateAttr("xmlns:xsi", xsiNamespace)
	root.CreateAttr("xsi:schemaLocation", schemaLocation)
	root.CreateAttr("schemaVersion", schemaVersion)

	admin := root.CreateElement("dcc:administrativeData")
	b.writeCoreData(admin, getMap(dccJSON, "coreData"))
	b.writeItems(admin, dccJSON)
	b.writeLaboratory(admin, getMap(dccJSON, "calibrationLaboratory"))
	b.writeRespPersons(admin, getObjects(dccJSON, "respPersons"))
	b.writeCustomer(admin, getMap(dccJSON, "customer"))
	b.writeStatements(admin, dccJSON)

	b.writeMeasurementResults(root, dccJSON)
	b.writeComment(root, dccJSON)

	b.doc.Indent(2)
	xml, err := b.doc.WriteToString()
	if err != nil {
		// WriteToString writes to an in-memory buffer and cannot fail;
		// keep the total-function contract regardless.
		xml = ""
	}
	return xml, b.warnings
}

// builder accumulates the output document and its warnings during one
// generation pass.
type builder struct {
	doc      *etree.Document
	warnings []string
}

func (b *builder) warnf(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

// textEl creates a child element with text content.
func textEl(parent *etree.Element, tag, text string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(text)
	return el
}

// nameContent creates the dcc:name/dcc:content pair used for localized
// display names throughout the DCC schema.
func nameContent(parent *etree.Element, text string) {
	textEl(parent.CreateElement("dcc:name"), "dcc:content", text)
}

// writeCoreData emits dcc:coreData, defaulting every mandatory field to
// a sentinel placeholder with a warning when the source data is absent.
func (b *builder) writeCoreData(parent *etree.Element, core map[string]any) {
	cd := parent.CreateElement("dcc:coreData")

	country := getString(core, "countryCodeISO3166_1")
	if country == "" {
		b.warnf("missing country code, using placeholder %q", defaultCountry)
		country = defaultCountry
	}
	textEl(cd, "dcc:countryCodeISO3166_1", country)

	used := getString(core, "usedLangCodeISO639_1")
	mandatory := getString(core, "mandatoryLangCodeISO639_1")
	if used == "" && mandatory == "" {
		b.warnf("missing language code, using placeholder %q", defaultLanguage)
		used, mandatory = defaultLanguage, defaultLanguage
	} else if used == "" {
		used = mandatory
	} else if mandatory == "" {
		mandatory = used
	}
	textEl(cd, "dcc:usedLangCodeISO639_1", used)
	textEl(cd, "dcc:mandatoryLangCodeISO639_1", mandatory)

	id := getString(core, "uniqueIdentifier")
	if id == "" {
		b.warnf("missing certificate ID, using placeholder")
		id = placeholderText
	}
	textEl(cd, "dcc:uniqueIdentifier", id)

	if receipt := getString(core, "receiptDate"); receipt != "" {
		textEl(cd, "dcc:receiptDate", receipt)
	}

	begin := getString(core, "beginPerformanceDate")
	if begin == "" {
		b.warnf("missing begin-date, using placeholder %s", placeholderDate)
		begin = placeholderDate
	}
	textEl(cd, "dcc:beginPerformanceDate", begin)

	end := getString(core, "endPerformanceDate")
	if end == "" {
		b.warnf("missing end-date, using begin-date")
		end = begin
	}
	textEl(cd, "dcc:endPerformanceDate", end)

	if loc := getString(core, "performanceLocation"); loc != "" {
		textEl(cd, "dcc:performanceLocation", loc)
	}
}

// writeItems emits dcc:items. Accessories are folded in as additional
// items. Every item gets at least one identification record; an empty
// item list produces a placeholder item.
func (b *builder) writeItems(parent *etree.Element, dccJSON map[string]any) {
	items := getObjects(dccJSON, "items")
	items = append(items, getObjects(dccJSON, "accessories")...)

	if len(items) == 0 {
		b.warnf("no items, emitting placeholder item")
		items = []map[string]any{{"name": "Calibration item"}}
	}

	itemsEl := parent.CreateElement("dcc:items")
	for i, item := range items {
		b.writeItem(itemsEl, item, i)
	}
}

func (b *builder) writeItem(parent *etree.Element, item map[string]any, index int) {
	itemEl := parent.CreateElement("dcc:item")

	name := getString(item, "name")
	if name == "" {
		name = fmt.Sprintf("Item %d", index+1)
	}
	nameContent(itemEl, name)

	if manufacturer := getString(item, "manufacturer"); manufacturer != "" {
		nameContent(itemEl.CreateElement("dcc:manufacturer"), manufacturer)
	}
	if model := getString(item, "model"); model != "" {
		textEl(itemEl, "dcc:model", model)
	}

	idents := getObjects(item, "identifications")
	if serial := getString(item, "serialNumber"); serial != "" {
		idents = append(idents, map[string]any{
			"issuer": "manufacturer",
			"value":  serial,
			"name":   "Serial number",
		})
	}
	if len(idents) == 0 {
		b.warnf("item %d missing identifications, emitting placeholder", index+1)
		idents = []map[string]any{{"issuer": "other", "value": placeholderText}}
	}

	identsEl := itemEl.CreateElement("dcc:identifications")
	for _, ident := range idents {
		identEl := identsEl.CreateElement("dcc:identification")
		issuer := getString(ident, "issuer")
		if issuer == "" {
			issuer = "other"
		}
		textEl(identEl, "dcc:issuer", issuer)
		textEl(identEl, "dcc:value", getString(ident, "value"))
		if idName := getString(ident, "name"); idName != "" {
			nameContent(identEl, idName)
		}
	}
}

// writeLaboratory emits the calibration laboratory contact block.
func (b *builder) writeLaboratory(parent *etree.Element, lab map[string]any) {
	labEl := parent.CreateElement("dcc:calibrationLaboratory")
	contact := labEl.CreateElement("dcc:contact")

	name := getString(lab, "name")
	if name == "" {
		b.warnf("missing laboratory name")
		name = placeholderText
	}
	nameContent(contact, name)

	if email := getString(lab, "email"); email != "" {
		textEl(contact, "dcc:eMail", email)
	}
	if phone := getString(lab, "phone"); phone != "" {
		textEl(contact, "dcc:phone", phone)
	}
	b.writeLocation(contact, lab)
}

// writeLocation emits a dcc:location block when any address field is
// present on the given object.
func (b *builder) writeLocation(parent *etree.Element, obj map[string]any) {
	// Address fields may sit flat on the contact object or grouped
	// under a nested "location" object; profiles use both shapes.
	nested := getMap(obj, "location")
	pick := func(key string) string {
		if v := getString(obj, key); v != "" {
			return v
		}
		return getString(nested, key)
	}

	street := pick("street")
	streetNo := pick("streetNo")
	postCode := pick("postCode")
	city := pick("city")
	country := pick("countryCode")

	if street == "" && streetNo == "" && postCode == "" && city == "" && country == "" {
		return
	}

	loc := parent.CreateElement("dcc:location")
	if street != "" {
		textEl(loc, "dcc:street", street)
	}
	if streetNo != "" {
		textEl(loc, "dcc:streetNo", streetNo)
	}
	if postCode != "" {
		textEl(loc, "dcc:postCode", postCode)
	}
	if city != "" {
		textEl(loc, "dcc:city", city)
	}
	if country != "" {
		textEl(loc, "dcc:countryCode", country)
	}
}

// writeRespPersons emits the responsible persons list, substituting a
// single placeholder person when the source supplied none.
func (b *builder) writeRespPersons(parent *etree.Element, persons []map[string]any) {
	if len(persons) == 0 {
		b.warnf("no responsible persons, emitting placeholder")
		persons = []map[string]any{{"name": "NN"}}
	}

	personsEl := parent.CreateElement("dcc:respPersons")
	for _, person := range persons {
		personEl := personsEl.CreateElement("dcc:respPerson")
		name := getString(person, "name")
		if name == "" {
			name = "NN"
		}
		nameContent(personEl.CreateElement("dcc:person"), name)
		if role := getString(person, "role"); role != "" {
			textEl(personEl, "dcc:role", role)
		}
		if getBool(person, "mainSigner") {
			textEl(personEl, "dcc:mainSigner", "true")
		}
	}
}

// writeCustomer emits the customer block.
func (b *builder) writeCustomer(parent *etree.Element, customer map[string]any) {
	customerEl := parent.CreateElement("dcc:customer")

	name := getString(customer, "name")
	if name == "" {
		b.warnf("missing customer name")
		name = placeholderText
	}
	nameContent(customerEl, name)

	if email := getString(customer, "email"); email != "" {
		textEl(customerEl, "dcc:eMail", email)
	}
	b.writeLocation(customerEl, customer)
}

// writeStatements emits dcc:statements from the statement list plus the
// free-text remarks folded in as a synthetic statement. An empty list
// produces a warning and no block.
func (b *builder) writeStatements(parent *etree.Element, dccJSON map[string]any) {
	var texts []string

	switch v := dccJSON["statements"].(type) {
	case []map[string]any:
		for _, s := range v {
			texts = appendStatementText(texts, s)
		}
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				texts = appendStatementText(texts, m)
			} else if s := anyText(item); s != "" {
				texts = append(texts, s)
			}
		}
	}

	if remarks := getString(dccJSON, "remarks"); remarks != "" {
		texts = append(texts, remarks)
	}

	if len(texts) == 0 {
		b.warnf("no statements")
		return
	}

	statementsEl := parent.CreateElement("dcc:statements")
	for _, text := range texts {
		declEl := statementsEl.CreateElement("dcc:statement").CreateElement("dcc:declaration")
		textEl(declEl, "dcc:content", text)
	}
}

func appendStatementText(texts []string, s map[string]any) []string {
	text := getString(s, "declaration")
	if text == "" {
		text = getString(s, "text")
	}
	if text != "" {
		return append(texts, text)
	}
	return texts
}

// writeMeasurementResults emits one dcc:measurementResult per source
// result group. An empty group list produces a placeholder result.
func (b *builder) writeMeasurementResults(parent *etree.Element, dccJSON map[string]any) {
	groups := getObjects(dccJSON, "measurementResults")
	globalEquip := getObjects(dccJSON, "measuringEquipments")

	if len(groups) == 0 {
		b.warnf("no measurement results, emitting placeholder")
		groups = []map[string]any{{}}
	}
	if len(globalEquip) == 0 {
		allEmpty := true
		for _, group := range groups {
			if len(getObjects(group, "measuringEquipments")) > 0 {
				allEmpty = false
				break
			}
		}
		if allEmpty {
			b.warnf("no measuring equipment listed")
		}
	}

	resultsEl := parent.CreateElement("dcc:measurementResults")
	for i, group := range groups {
		b.writeMeasurementResult(resultsEl, group, i, globalEquip)
	}
}

func (b *builder) writeMeasurementResult(parent *etree.Element, group map[string]any, index int, globalEquip []map[string]any) {
	groupEl := parent.CreateElement("dcc:measurementResult")

	name := getString(group, "name")
	if name == "" {
		name = fmt.Sprintf("Measurement result %d", index+1)
	}
	nameContent(groupEl, name)

	b.writeUsedMethods(groupEl, group)

	// The profile-level equipment list belongs to the certificate as a
	// whole; it is attached to the first result group.
	equip := getObjects(group, "measuringEquipments")
	if index == 0 {
		equip = append(globalEquip, equip...)
	}
	b.writeMeasuringEquipments(groupEl, equip)

	b.writeInfluenceConditions(groupEl, group)
	b.writeResults(groupEl, group, index)
}

func (b *builder) writeUsedMethods(parent *etree.Element, group map[string]any) {
	methods := getObjects(group, "usedMethods")
	if len(methods) == 0 {
		return
	}

	methodsEl := parent.CreateElement("dcc:usedMethods")
	for i, method := range methods {
		methodEl := methodsEl.CreateElement("dcc:usedMethod")
		name := getString(method, "name")
		if name == "" {
			name = fmt.Sprintf("Method %d", i+1)
		}
		nameContent(methodEl, name)
		if desc := getString(method, "description"); desc != "" {
			textEl(methodEl.CreateElement("dcc:description"), "dcc:content", desc)
		}
		if norm := getString(method, "norm"); norm != "" {
			textEl(methodEl, "dcc:norm", norm)
		}
	}
}

func (b *builder) writeMeasuringEquipments(parent *etree.Element, equipments []map[string]any) {
	if len(equipments) == 0 {
		return
	}

	equipsEl := parent.CreateElement("dcc:measuringEquipments")
	for i, equip := range equipments {
		equipEl := equipsEl.CreateElement("dcc:measuringEquipment")
		name := getString(equip, "name")
		if name == "" {
			name = fmt.Sprintf("Equipment %d", i+1)
		}
		nameContent(equipEl, name)
		if manufacturer := getString(equip, "manufacturer"); manufacturer != "" {
			nameContent(equipEl.CreateElement("dcc:manufacturer"), manufacturer)
		}

		idents := getObjects(equip, "identifications")
		if serial := getString(equip, "serialNumber"); serial != "" {
			idents = append(idents, map[string]any{
				"issuer": "manufacturer",
				"value":  serial,
				"name":   "Serial number",
			})
		}
		if len(idents) == 0 {
			continue
		}
		identsEl := equipEl.CreateElement("dcc:identifications")
		for _, ident := range idents {
			identEl := identsEl.CreateElement("dcc:identification")
			issuer := getString(ident, "issuer")
			if issuer == "" {
				issuer = "other"
			}
			textEl(identEl, "dcc:issuer", issuer)
			textEl(identEl, "dcc:value", getString(ident, "value"))
			if idName := getString(ident, "name"); idName != "" {
				nameContent(identEl, idName)
			}
		}
	}
}

// writeInfluenceConditions renders each condition either as a single
// value (with optional uncertainty), as an explicit min/max pair when a
// range is present, or as a no-quantity marker.
func (b *builder) writeInfluenceConditions(parent *etree.Element, group map[string]any) {
	conditions := getObjects(group, "influenceConditions")
	if len(conditions) == 0 {
		return
	}

	conditionsEl := parent.CreateElement("dcc:influenceConditions")
	for i, cond := range conditions {
		condEl := conditionsEl.CreateElement("dcc:influenceCondition")
		name := getString(cond, "name")
		if name == "" {
			name = fmt.Sprintf("Influence condition %d", i+1)
		}
		nameContent(condEl, name)

		data := condEl.CreateElement("dcc:data")
		unit := getString(cond, "unit")
		if unit == "" {
			unit = defaultUnit
		}

		minText, hasMin := fieldNumber(cond, "min")
		maxText, hasMax := fieldNumber(cond, "max")
		valueText, hasValue := fieldNumber(cond, "value")

		switch {
		case hasMin && hasMax:
			b.realQuantity(data, "Minimum", minText, unit, "")
			b.realQuantity(data, "Maximum", maxText, unit, "")
		case hasValue:
			unc, _ := fieldNumber(cond, "uncertainty")
			b.realQuantity(data, "", valueText, unit, unc)
		default:
			b.noQuantity(data, "", noValueText)
		}
	}
}

// writeResults renders the point-wise result list of one measurement
// group as one quantity entry per populated field. A group with zero
// points gets a no-quantity placeholder result and a warning.
func (b *builder) writeResults(parent *etree.Element, group map[string]any, groupIndex int) {
	points := getObjects(group, "results")
	resultsEl := parent.CreateElement("dcc:results")

	if len(points) == 0 {
		b.warnf("measurement result %d has no individual results, emitting no-quantity placeholder", groupIndex+1)
		resultEl := resultsEl.CreateElement("dcc:result")
		nameContent(resultEl, "No results")
		b.noQuantity(resultEl.CreateElement("dcc:data"), "", noValueText)
		return
	}

	groupUnit := getString(group, "unit")
	for i, point := range points {
		b.writeResult(resultsEl, point, i, groupUnit)
	}
}

func (b *builder) writeResult(parent *etree.Element, point map[string]any, index int, groupUnit string) {
	resultEl := parent.CreateElement("dcc:result")

	name := getString(point, "name")
	if name == "" {
		// Positional labeling: array order matches source document
		// order, so the fallback label is stable.
		name = fmt.Sprintf("Point %d", index+1)
	}
	nameContent(resultEl, name)

	data := resultEl.CreateElement("dcc:data")
	unit := getString(point, "unit")
	if unit == "" {
		unit = groupUnit
	}
	if unit == "" {
		unit = defaultUnit
	}

	if setPoint, ok := fieldNumber(point, "setPoint"); ok {
		b.realQuantity(data, "Set point", setPoint, unit, "")
	}

	reference, hasReference := fieldNumber(point, "referenceValue")
	if !hasReference {
		reference, hasReference = fieldNumber(point, "nominalValue")
	}
	if hasReference {
		b.realQuantity(data, "Reference value", reference, unit, "")
	}

	if measured, ok := fieldNumber(point, "measuredValue"); ok {
		b.measuredQuantity(data, measured, unit, point)
	}

	if deviation, ok := fieldNumber(point, "deviation"); ok {
		b.realQuantity(data, "Deviation", deviation, unit, "")
	}

	limit, hasLimit := point["allowedDeviation"]
	if !hasLimit {
		limit, hasLimit = point["mpe"]
	}
	if hasLimit {
		if lower, upper, ok := absNumberText(limit); ok {
			b.realQuantity(data, "Lower acceptance limit", lower, unit, "")
			b.realQuantity(data, "Upper acceptance limit", upper, unit, "")
		}
	}

	if conformity := getString(point, "conformity"); conformity != "" {
		b.noQuantity(data, "Conformity", conformity)
	}
	if category := getString(point, "asFoundAsLeft"); category != "" {
		b.noQuantity(data, "As found / as left", category)
	}
}

// measuredQuantity emits the measured value with its optional expanded
// uncertainty, coverage factor, and coverage probability.
func (b *builder) measuredQuantity(parent *etree.Element, value, unit string, point map[string]any) {
	quantityEl := parent.CreateElement("dcc:quantity")
	nameContent(quantityEl, "Measured value")

	realEl := quantityEl.CreateElement("si:real")
	textEl(realEl, "si:value", value)
	textEl(realEl, "si:unit", unit)

	unc, hasUnc := fieldNumber(point, "uncertainty")
	if !hasUnc {
		return
	}
	uncEl := realEl.CreateElement("si:expandedUnc")
	textEl(uncEl, "si:uncertainty", unc)
	if factor, ok := fieldNumber(point, "coverageFactor"); ok {
		textEl(uncEl, "si:coverageFactor", factor)
	}
	if probability, ok := fieldNumber(point, "coverageProbability"); ok {
		textEl(uncEl, "si:coverageProbability", probability)
	}
}

// realQuantity emits a labeled si:real quantity. An empty label omits
// the name block; an empty uncertainty omits the expandedUnc block.
func (b *builder) realQuantity(parent *etree.Element, label, value, unit, uncertainty string) {
	quantityEl := parent.CreateElement("dcc:quantity")
	if label != "" {
		nameContent(quantityEl, label)
	}
	realEl := quantityEl.CreateElement("si:real")
	textEl(realEl, "si:value", value)
	textEl(realEl, "si:unit", unit)
	if uncertainty != "" {
		uncEl := realEl.CreateElement("si:expandedUnc")
		textEl(uncEl, "si:uncertainty", uncertainty)
	}
}

// noQuantity emits a non-quantity marker entry.
func (b *builder) noQuantity(parent *etree.Element, label, text string) {
	quantityEl := parent.CreateElement("dcc:quantity")
	if label != "" {
		nameContent(quantityEl, label)
	}
	textEl(quantityEl, "dcc:noQuantity", text)
}

// writeComment emits the trailing free-text comment aggregating
// calibration-location and procedure-SOP information, only when such
// data exists.
func (b *builder) writeComment(parent *etree.Element, dccJSON map[string]any) {
	var lines []string

	if loc := getString(getMap(dccJSON, "coreData"), "performanceLocation"); loc != "" {
		lines = append(lines, "Calibration location: "+loc)
	}

	switch v := dccJSON["calibrationSOPs"].(type) {
	case []map[string]any:
		for _, sop := range v {
			lines = appendSOPLine(lines, sop)
		}
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				lines = appendSOPLine(lines, m)
			} else if s := anyText(item); s != "" {
				lines = append(lines, "SOP: "+s)
			}
		}
	}

	if len(lines) == 0 {
		return
	}
	textEl(parent, "dcc:comment", strings.Join(lines, "\n"))
}

func appendSOPLine(lines []string, sop map[string]any) []string {
	name := getString(sop, "name")
	value := getString(sop, "value")
	switch {
	case name != "" && value != "":
		return append(lines, fmt.Sprintf("SOP: %s %s", name, value))
	case name != "":
		return append(lines, "SOP: "+name)
	case value != "":
		return append(lines, "SOP: "+value)
	default:
		return lines
	}
}
