package formdata

// Prune drops nil values, empty strings, empty objects and objects that
// become empty once pruned. Lists are kept, but nil entries and object
// entries that prune to nothing are removed from them. false and 0 are
// values and survive.
func Prune(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			pruned := Prune(item)
			if isEmpty(pruned) {
				continue
			}
			out[key] = pruned
		}
		return out
	case []any:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			if item == nil {
				continue
			}
			pruned := Prune(item)
			if obj, ok := pruned.(map[string]any); ok && len(obj) == 0 {
				continue
			}
			out = append(out, pruned)
		}
		return out
	default:
		return value
	}
}

func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case map[string]any:
		return len(typed) == 0
	}
	return false
}
