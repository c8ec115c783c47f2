package parser

import (
	"encoding/json"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

// jsonProfile is the intermediate structure for decoding profile JSON.
// It matches the on-disk document before transformation into the AST.
type jsonProfile struct {
	Name            string     `json:"name"`
	SchemaNamespace string     `json:"schemaNamespace"`
	RootElement     string     `json:"rootElement"`
	Description     string     `json:"description"`
	Mappings        []jsonRule `json:"mappings"`
}

// jsonRule is the intermediate rule structure. All kind-specific fields
// are optional at this stage; the builder enforces which are required
// for each rule type.
type jsonRule struct {
	Target    string            `json:"target"`
	Type      string            `json:"type"`
	Source    string            `json:"source"`
	Sources   []string          `json:"sources"`
	Separator string            `json:"separator"`
	Value     any               `json:"value"`
	Template  string            `json:"template"`
	Map       map[string]string `json:"map"`
	Fields    []jsonRule        `json:"fields"`
}

// decodeProfile decodes profile JSON bytes into the intermediate
// structure. When strict decoding fails and repair is enabled, the input
// is run through json-repair and decoded again; the original syntax
// error is returned if the repaired form still does not decode.
func decodeProfile(data []byte, repair bool) (*jsonProfile, error) {
	var jp jsonProfile
	strictErr := json.Unmarshal(data, &jp)
	if strictErr == nil {
		return &jp, nil
	}

	if !repair {
		return nil, strictErr
	}

	repaired, err := jsonrepair.RepairJSON(string(data))
	if err != nil {
		return nil, strictErr
	}

	jp = jsonProfile{}
	if err := json.Unmarshal([]byte(repaired), &jp); err != nil {
		return nil, strictErr
	}

	return &jp, nil
}
