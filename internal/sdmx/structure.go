package sdmx

import (
	"fmt"
	"strconv"
	"strings"

	"oecdmcp/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Structure extraction
//
// Data responses embed the dataflow structure in one of two shapes
// depending on the endpoint vintage:
//   current: data.structures[0].dimensions.{series,observation}
//   legacy:  data.structure.dimensions.{series,observation}
// The extractors are tried in order; the first match wins. When neither
// matches, callers fall back to the generic placeholder structure.
// ─────────────────────────────────────────────────────────────

type structureExtractor func(payload map[string]any) (series, obs []domain.Dimension, ok bool)

var structureExtractors = []structureExtractor{
	extractCurrentStructure,
	extractLegacyStructure,
}

// ExtractStructure pulls dimension definitions out of a raw data payload,
// trying each known embedding shape in order.
func ExtractStructure(payload map[string]any) (series, obs []domain.Dimension, ok bool) {
	for _, extract := range structureExtractors {
		if s, o, ok := extract(payload); ok {
			return s, o, true
		}
	}
	return nil, nil, false
}

func extractCurrentStructure(payload map[string]any) ([]domain.Dimension, []domain.Dimension, bool) {
	data := asMap(payload["data"])
	structures := asSlice(data["structures"])
	if len(structures) == 0 {
		return nil, nil, false
	}
	return parseDimensionGroups(asMap(asMap(structures[0])["dimensions"]))
}

func extractLegacyStructure(payload map[string]any) ([]domain.Dimension, []domain.Dimension, bool) {
	data := asMap(payload["data"])
	structure := asMap(data["structure"])
	return parseDimensionGroups(asMap(structure["dimensions"]))
}

func parseDimensionGroups(dims map[string]any) ([]domain.Dimension, []domain.Dimension, bool) {
	if dims == nil {
		return nil, nil, false
	}
	series := parseDimensionList(asSlice(dims["series"]))
	obs := parseDimensionList(asSlice(dims["observation"]))
	if len(series) == 0 && len(obs) == 0 {
		return nil, nil, false
	}
	return series, obs, true
}

func parseDimensionList(raw []any) []domain.Dimension {
	out := make([]domain.Dimension, 0, len(raw))
	for _, entry := range raw {
		m := asMap(entry)
		if m == nil {
			continue
		}
		dim := domain.Dimension{
			ID:   asString(m["id"]),
			Name: asString(m["name"]),
		}
		for _, v := range asSlice(m["values"]) {
			vm := asMap(v)
			if vm == nil {
				continue
			}
			dim.Values = append(dim.Values, domain.CodedValue{
				ID:   asString(vm["id"]),
				Name: asString(vm["name"]),
			})
		}
		if dim.ID != "" {
			out = append(out, dim)
		}
	}
	return out
}

// FallbackStructure is the generic placeholder used when a dataset's real
// structure cannot be derived. The value lists are illustrative, not
// exhaustive; key decoding degrades to raw indices for anything beyond them.
func FallbackStructure() (series, obs []domain.Dimension) {
	series = []domain.Dimension{
		{
			ID:   "REF_AREA",
			Name: "Reference area",
			Values: []domain.CodedValue{
				{ID: "USA", Name: "United States"},
				{ID: "GBR", Name: "United Kingdom"},
				{ID: "FRA", Name: "France"},
				{ID: "DEU", Name: "Germany"},
				{ID: "JPN", Name: "Japan"},
			},
		},
		{
			ID:   "MEASURE",
			Name: "Measure",
			Values: []domain.CodedValue{
				{ID: "GDP", Name: "Gross domestic product"},
				{ID: "CPI", Name: "Consumer price index"},
			},
		},
	}
	obs = []domain.Dimension{
		{
			ID:   "TIME_PERIOD",
			Name: "Time period",
			Values: []domain.CodedValue{
				{ID: "2020", Name: "2020"},
				{ID: "2021", Name: "2021"},
				{ID: "2022", Name: "2022"},
				{ID: "2023", Name: "2023"},
				{ID: "2024", Name: "2024"},
			},
		},
	}
	return series, obs
}

// ─────────────────────────────────────────────────────────────
// Key decoding
// ─────────────────────────────────────────────────────────────

// DecodeSeriesKey resolves a colon-separated positional series key against
// the declared dimensions. Unknown positions or out-of-range indices degrade
// to a synthetic DIM_i identifier or the raw index string; decoding never
// fails outright.
func DecodeSeriesKey(key string, dims []domain.Dimension) map[string]string {
	return decodeKey(key, dims)
}

// DecodeObservationKey resolves an observation-level key (usually the single
// time axis) the same way as a series key.
func DecodeObservationKey(key string, dims []domain.Dimension) map[string]string {
	return decodeKey(key, dims)
}

func decodeKey(key string, dims []domain.Dimension) map[string]string {
	parts := strings.Split(key, ":")
	out := make(map[string]string, len(parts))
	for pos, raw := range parts {
		id, value := resolveIndex(pos, raw, dims)
		out[id] = value
	}
	return out
}

func resolveIndex(pos int, raw string, dims []domain.Dimension) (id, value string) {
	if pos >= len(dims) {
		return fmt.Sprintf("DIM_%d", pos), raw
	}
	dim := dims[pos]
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 || idx >= len(dim.Values) {
		return dim.ID, raw
	}
	return dim.ID, dim.Values[idx].ID
}

// ─────────────────────────────────────────────────────────────
// Loose JSON helpers
// ─────────────────────────────────────────────────────────────

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
