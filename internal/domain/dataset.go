package domain

// DatasetRef identifies one curated OECD dataflow. The short ID is what
// callers use; Agency/FlowID/Version are the canonical identifiers the
// remote SDMX endpoint expects in the request path.
type DatasetRef struct {
	ID          string `json:"id"`
	Agency      string `json:"agency"`
	FlowID      string `json:"flowId"`
	Version     string `json:"version"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CodedValue is one permitted value of a dimension.
type CodedValue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Dimension is a named classification axis with its ordered value list.
// The order matters: series keys reference values by position.
type Dimension struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Values []CodedValue `json:"values"`
}

// DatasetStructure describes the dimensions of one dataflow.
// Fallback is true when the structure could not be derived from the remote
// response and the generic placeholder structure is being used instead.
type DatasetStructure struct {
	Dataset    DatasetRef  `json:"dataset"`
	SeriesDims []Dimension `json:"seriesDimensions"`
	ObsDims    []Dimension `json:"observationDimensions"`
	Fallback   bool        `json:"fallback"`
}

// Observation is one decoded data point: a value plus its full set of
// resolved dimension coordinates.
type Observation struct {
	Dimensions map[string]string `json:"dimensions"`
	Value      any               `json:"value"`
	Attributes map[string]any    `json:"attributes,omitempty"`
}

// QueryOptions narrows a data query.
type QueryOptions struct {
	StartPeriod string `json:"startPeriod,omitempty"`
	EndPeriod   string `json:"endPeriod,omitempty"`
	LastN       int    `json:"lastNObservations,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}
