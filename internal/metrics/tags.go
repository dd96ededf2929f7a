package metrics

import "fmt"

// Tag creates a formatted DataDog tag string in "key:value" format.
func Tag(key, value string) string {
	return fmt.Sprintf("%s:%s", key, value)
}

// OperationTag creates an operation tag (get/create/update).
func OperationTag(op string) string {
	return Tag("operation", op)
}

// OutcomeTag creates a request outcome tag.
func OutcomeTag(outcome string) string {
	return Tag("outcome", outcome)
}

// TargetTag creates a store target tag (primary/replica).
func TargetTag(target string) string {
	return Tag("target", target)
}

// LayerTag creates a cache layer tag (redis/memory/disabled).
func LayerTag(layer string) string {
	return Tag("layer", layer)
}

// CircuitStateTag creates a circuit breaker state tag.
func CircuitStateTag(state string) string {
	return Tag("circuit_state", state)
}

func mergeTags(base, tags []string) []string {
	if len(tags) == 0 {
		return base
	}
	if len(base) == 0 {
		return tags
	}
	out := make([]string, 0, len(base)+len(tags))
	out = append(out, base...)
	return append(out, tags...)
}
