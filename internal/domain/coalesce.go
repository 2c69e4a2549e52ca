package domain

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// CoalesceFloatPtr returns the first non-nil *float64, or nil.
func CoalesceFloatPtr(ptrs ...*float64) *float64 {
	for _, p := range ptrs {
		if p != nil {
			return p
		}
	}
	return nil
}
