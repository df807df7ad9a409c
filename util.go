package anthropic

// Float64Ptr is a convenience helper for optional float fields such as Temperature.
func Float64Ptr(v float64) *float64 { return &v }

// Int64Ptr is a convenience helper for optional int64 fields such as TopK.
func Int64Ptr(v int64) *int64 { return &v }

// StringPtr is a convenience helper for optional string fields.
func StringPtr(s string) *string { return &s }
