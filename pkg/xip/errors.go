package xip

import "errors"

var (
	// ErrInvalidAddress 表示无效的 IP 地址字符串。
	ErrInvalidAddress = errors.New("xip: invalid IP address")

	// ErrInvalidMask 表示格式错误或非连续的 IPv4 掩码。
	ErrInvalidMask = errors.New("xip: invalid IPv4 mask")

	// ErrInvalidPrefix 表示前缀长度超出 0–32（IPv4）或 0–128（IPv6）。
	ErrInvalidPrefix = errors.New("xip: prefix length out of bounds")

	// ErrInvalidVersion 表示无效的 IP 版本。
	ErrInvalidVersion = errors.New("xip: invalid IP version")

	// ErrInvalidBigInt 表示 big.Int 值超出目标地址族的范围。
	ErrInvalidBigInt = errors.New("xip: big.Int value out of range for IP address")

	// ErrRangeOrder 表示范围的结束地址先于起始地址。
	ErrRangeOrder = errors.New("xip: range end precedes start")

	// ErrVersionMismatch 表示混用了不同地址族的地址。
	ErrVersionMismatch = errors.New("xip: mixed address families")

	// ErrOverflow 表示地址加减运算越界。
	ErrOverflow = errors.New("xip: address arithmetic overflow")
)
