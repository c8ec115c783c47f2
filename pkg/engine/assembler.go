package engine

import "strings"

// Assign writes a value into the accumulating DCC-JSON object at the
// given dotted target path, creating intermediate nesting objects as
// needed. A trailing "[]" marker on the path is stripped. When two
// rules write the same path the last writer wins; profiles are expected
// not to collide.
func Assign(obj map[string]any, target string, value any) {
	target = strings.TrimSuffix(target, "[]")
	if target == "" {
		return
	}

	segments := strings.Split(target, ".")
	current := obj
	for _, key := range segments[:len(segments)-1] {
		next, ok := current[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[key] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}
