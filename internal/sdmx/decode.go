package sdmx

import (
	"sort"

	"oecdmcp/internal/domain"
)

// DecodeObservations flattens a raw SDMX-JSON data payload into observation
// records. Series keys resolve against seriesDims, observation keys against
// obsDims. Malformed shapes never raise; they contribute nothing.
//
// limit is a hard client-side cap: the walk stops the moment the record
// count reaches it, without materializing the rest of the payload. The
// remote service silently ignores its own limiting parameter for some
// datasets, so an unbounded decode would risk unbounded memory.
func DecodeObservations(payload map[string]any, seriesDims, obsDims []domain.Dimension, limit int) []domain.Observation {
	out := []domain.Observation{}

	data := asMap(payload["data"])
	for _, rawSet := range asSlice(data["dataSets"]) {
		series := asMap(asMap(rawSet)["series"])
		for _, seriesKey := range sortedKeys(series) {
			entry := asMap(series[seriesKey])
			if entry == nil {
				continue
			}
			seriesCoords := DecodeSeriesKey(seriesKey, seriesDims)

			observations := asMap(entry["observations"])
			for _, obsKey := range sortedKeys(observations) {
				if limit > 0 && len(out) >= limit {
					return out
				}

				coords := make(map[string]string, len(seriesCoords)+1)
				for k, v := range seriesCoords {
					coords[k] = v
				}
				for k, v := range DecodeObservationKey(obsKey, obsDims) {
					coords[k] = v
				}

				value, flags := unwrapValue(observations[obsKey])
				obs := domain.Observation{Dimensions: coords, Value: value}
				if len(flags) > 0 {
					obs.Attributes = map[string]any{"flags": flags}
				}
				out = append(out, obs)
			}
		}
	}
	return out
}

// unwrapValue accepts both wire encodings of an observation value: a bare
// scalar, or an array whose first element is the value and whose remainder
// are attribute flag indices.
func unwrapValue(v any) (value any, flags []any) {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil, nil
		}
		return list[0], list[1:]
	}
	return v, nil
}

// sortedKeys keeps decode output deterministic across runs; JSON object
// order is not preserved by map iteration.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
