package kvstore

// Keys is the fixed, compile-time-known vocabulary of valid data keys.
// Order matches the example deployment's seed order; it has no runtime
// significance beyond the order in which Bootstrap seeds rows.
var Keys = []string{
	"activities",
	"activity_metric_insights",
	"meal_plans",
	"custom_foods",
	"workouts",
	"events",
	"profile",
	"lactate_history_records",
}

var validKeys = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Keys))
	for _, k := range Keys {
		m[k] = struct{}{}
	}
	return m
}()

// IsValidKey reports whether key is in the fixed vocabulary.
func IsValidKey(key string) bool {
	_, ok := validKeys[key]
	return ok
}

// DefaultValue returns the default JSON document for a key: "{}" for
// "profile", "[]" for every other valid key.
func DefaultValue(key string) string {
	if key == "profile" {
		return "{}"
	}
	return "[]"
}
