package multimock

import (
	"encoding/json"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/sjson"
)

// mergeJSON lays the overlay keys over a copy of the default body. Overlay
// keys win, untouched default keys are preserved. Plain map defaults are
// merged directly; anything else (structs, json.RawMessage) is merged
// through its encoded form.
func mergeJSON(def interface{}, overlay map[string]interface{}) interface{} {
	if def == nil {
		merged := make(map[string]interface{}, len(overlay))
		for k, v := range overlay {
			merged[k] = v
		}
		return merged
	}

	if m, ok := def.(map[string]interface{}); ok {
		merged := make(map[string]interface{}, len(m)+len(overlay))
		for k, v := range m {
			merged[k] = v
		}
		for k, v := range overlay {
			merged[k] = v
		}
		return merged
	}

	data, err := json.Marshal(def)
	if err != nil {
		log.Warnf("cannot encode default body for merge: %s", err)
		return copyJSON(def)
	}

	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		data, err = sjson.SetBytes(data, escapePath(k), overlay[k])
		if err != nil {
			log.Warnf("cannot overlay %q onto default body: %s", k, err)
		}
	}

	var merged interface{}
	if err := json.Unmarshal(data, &merged); err != nil {
		log.Warnf("cannot decode merged body: %s", err)
		return copyJSON(def)
	}
	return merged
}

// copyJSON shields the kind's shared default from mutation by callers.
// Maps and slices are copied one level deep, scalar values pass through.
func copyJSON(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		if val == nil {
			return nil
		}
		c := make(map[string]interface{}, len(val))
		for k, item := range val {
			c[k] = item
		}
		return c
	case []interface{}:
		if val == nil {
			return nil
		}
		c := make([]interface{}, len(val))
		copy(c, val)
		return c
	default:
		return v
	}
}

// overlay keys are literal field names, not sjson paths
func escapePath(key string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`)
	return r.Replace(key)
}
