package utils

// ToBool coerces a claim value that may arrive as a bool or as the strings
// "true"/"false". Returns nil when the value is absent or not coercible.
func ToBool(v any) *bool {
	switch b := v.(type) {
	case bool:
		return Ptr(b)
	case string:
		switch b {
		case "true":
			return Ptr(true)
		case "false":
			return Ptr(false)
		}
	}
	return nil
}

func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}
