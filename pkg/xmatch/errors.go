package xmatch

import "errors"

// ErrInvalidRefRange 表示调用方提供的参考范围违反契约
// （地址无效、混用地址族或 end 先于 start）。
var ErrInvalidRefRange = errors.New("xmatch: invalid reference range")
