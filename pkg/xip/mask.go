package xip

import (
	"fmt"
	"net/netip"
)

// maskBits 是点分掩码字符串到前缀长度的反查表。
// 33 个合法连续掩码在包初始化时生成，其余任何点分值都是非法掩码。
var maskBits = make(map[uint32]int, 33)

func init() {
	for bits := 0; bits <= 32; bits++ {
		maskBits[maskUint32(bits)] = bits
	}
}

// maskUint32 返回前缀长度对应的掩码值。
// bits 必须在 0–32 之间，由调用方保证。
func maskUint32(bits int) uint32 {
	if bits == 0 {
		// 0xFFFFFFFF << 32 在 Go 中未定义为 0，需特判
		return 0
	}
	return ^uint32(0) << (32 - bits)
}

// Mask 是 IPv4 子网掩码值类型。
// 仅前缀全 1、后缀全 0 的连续掩码是合法的；
// 点分形式与前缀长度可双向无损转换。
//
// 零值无效，必须通过 [MaskFromBits] 或 [MaskFromString] 创建。
//
// 设计决策: 内部存储 bits+1 而非 bits，使零值 Mask{} 可与合法的 /0
// 区分开（与 netip 值类型的零值约定一致），无需额外的 valid 字段。
type Mask struct {
	bits1 uint8
}

// MaskFromBits 从前缀长度创建掩码。
// bits 超出 0–32 返回 [ErrInvalidPrefix]。
func MaskFromBits(bits int) (Mask, error) {
	if bits < 0 || bits > 32 {
		return Mask{}, fmt.Errorf("%w: IPv4 prefix length must be 0-32, got %d", ErrInvalidPrefix, bits)
	}
	return Mask{bits1: uint8(bits) + 1}, nil
}

// MaskFromString 从点分字符串创建掩码（如 "255.255.255.0"）。
// 无法解析为 IPv4 地址、或不在 33 个连续掩码之列的值，
// 返回 [ErrInvalidMask]。
func MaskFromString(s string) (Mask, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return Mask{}, fmt.Errorf("%w: %q is not a dotted-quad mask", ErrInvalidMask, s)
	}
	if addr.Is4In6() {
		addr = addr.Unmap()
	}
	if !addr.Is4() {
		return Mask{}, fmt.Errorf("%w: %q is not IPv4", ErrInvalidMask, s)
	}
	v, _ := AddrToUint32(addr)
	bits, ok := maskBits[v]
	if !ok {
		return Mask{}, fmt.Errorf("%w: %q is not a contiguous mask", ErrInvalidMask, s)
	}
	return Mask{bits1: uint8(bits) + 1}, nil
}

// IsValid 报告掩码是否通过构造函数创建。
func (m Mask) IsValid() bool {
	return m.bits1 != 0
}

// Bits 返回前缀长度（0–32）。
// 无效掩码返回 -1。
func (m Mask) Bits() int {
	if !m.IsValid() {
		return -1
	}
	return int(m.bits1) - 1
}

// Uint32 返回掩码的 uint32 值（网络字节序）。
// 无效掩码返回 0。
func (m Mask) Uint32() uint32 {
	if !m.IsValid() {
		return 0
	}
	return maskUint32(m.Bits())
}

// Addr 返回掩码的 [netip.Addr] 表示。
// 无效掩码返回零值。
func (m Mask) Addr() netip.Addr {
	if !m.IsValid() {
		return netip.Addr{}
	}
	return AddrFromUint32(m.Uint32())
}

// String 返回掩码的点分字符串表示（如 "255.255.255.0"）。
// 无效掩码返回空字符串。
func (m Mask) String() string {
	if !m.IsValid() {
		return ""
	}
	return m.Addr().String()
}
