package config

// Merge deep-merges an override document into a base document and returns a
// new map. Neither input is mutated.
//
// Rules:
//   - if both sides hold a map at the same key, merge recursively
//   - otherwise the override value wins
//   - base keys absent from the override are preserved unchanged
//
// Repeated application of the same override is idempotent, and overrides
// touching disjoint keys compose in any order.
func Merge(base, override map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(override))
	for key, value := range base {
		merged[key] = value
	}

	for key, overrideValue := range override {
		baseValue, exists := merged[key]
		if !exists {
			merged[key] = overrideValue
			continue
		}

		baseMap, baseIsMap := baseValue.(map[string]interface{})
		overrideMap, overrideIsMap := overrideValue.(map[string]interface{})
		if baseIsMap && overrideIsMap {
			merged[key] = Merge(baseMap, overrideMap)
		} else {
			merged[key] = overrideValue
		}
	}

	return merged
}
