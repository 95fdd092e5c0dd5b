package util

func StringPtr(v string) *string { return &v }

func Int64Ptr(v int64) *int64 { return &v }
