package types

// StringPtr 返回字符串指针，便于构造用户配置
func StringPtr(v string) *string { return &v }

// IntPtr 返回 int 指针
func IntPtr(v int) *int { return &v }

// Int64Ptr 返回 int64 指针
func Int64Ptr(v int64) *int64 { return &v }

// BoolPtr 返回 bool 指针
func BoolPtr(v bool) *bool { return &v }
