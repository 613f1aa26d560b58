package xrefdb

import "errors"

// 参考范围文件加载相关错误。
var (
	// ErrEmptyPath 表示文件路径为空。
	ErrEmptyPath = errors.New("xrefdb: empty file path")

	// ErrUnsupportedFormat 表示不支持的文件格式。
	ErrUnsupportedFormat = errors.New("xrefdb: unsupported file format")

	// ErrLoadFailed 表示文件读取失败。
	ErrLoadFailed = errors.New("xrefdb: failed to load ranges file")

	// ErrParseFailed 表示文件内容解析失败。
	ErrParseFailed = errors.New("xrefdb: failed to parse ranges file")

	// ErrInvalidEntry 表示某条参考范围定义无效。
	ErrInvalidEntry = errors.New("xrefdb: invalid range entry")

	// ErrInvalidSize 表示缓存容量无效。
	ErrInvalidSize = errors.New("xrefdb: cache size must be positive")

	// ErrInvalidTTL 表示缓存过期时间为负。
	ErrInvalidTTL = errors.New("xrefdb: cache TTL must not be negative")
)
