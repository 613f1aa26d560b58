package xparse

import "errors"

var (
	// ErrInvalidFormat 表示输入不匹配任何可接受的形式
	// （单地址 / CIDR / 点分掩码 / 短横线范围）。
	ErrInvalidFormat = errors.New("xparse: input matches no accepted form (ADDR, ADDR/LEN, ADDR/MASK, ADDR-ADDR)")

	// ErrPolicyConflict 表示策略标志相互冲突
	// （MandatoryMask 与 MaskForbidden 同时为真）。
	ErrPolicyConflict = errors.New("xparse: conflicting policy flags")

	// ErrMaskRequired 表示策略要求掩码但输入没有。
	ErrMaskRequired = errors.New("xparse: policy requires a mask but input has none")

	// ErrMaskForbidden 表示策略禁止掩码但输入携带了。
	ErrMaskForbidden = errors.New("xparse: policy forbids a mask but input has one")

	// ErrRangeForbidden 表示策略禁止范围形式但输入是短横线范围。
	ErrRangeForbidden = errors.New("xparse: policy forbids range form")
)
