package xsubnet

import "errors"

var (
	// ErrInvalidNetwork 表示无法构成合法网络的地址/掩码组合。
	ErrInvalidNetwork = errors.New("xsubnet: invalid network")

	// ErrVersionMismatch 表示地址族与网络类型不符
	// （如向 Network4 传入 IPv6 地址）。
	ErrVersionMismatch = errors.New("xsubnet: address family mismatch")

	// ErrSplitTooLarge 表示细分会产生超出安全上限的子网数量。
	ErrSplitTooLarge = errors.New("xsubnet: split produces excessive subnet count")
)
