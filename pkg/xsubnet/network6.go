package xsubnet

import (
	"fmt"
	"math/big"
	"net/netip"
	"strconv"
	"strings"

	"go4.org/netipx"

	"github.com/omeyang/ipkit/pkg/xip"
)

// mask6Table 是按前缀长度预计算的 IPv6 字节掩码表（/0 到 /128）。
var mask6Table [129][16]byte

func init() {
	for bits := 0; bits <= 128; bits++ {
		for i := 0; i < 16; i++ {
			left := bits - i*8
			switch {
			case left >= 8:
				mask6Table[bits][i] = 0xFF
			case left > 0:
				mask6Table[bits][i] = 0xFF << (8 - left)
			}
		}
	}
}

// Network6 是 IPv6 CIDR 块值类型：(网络地址, 前缀长度 0–128)。
//
// 与 [Network4] 相同的对齐不变量：构造时地址按掩码归一化。
// IPv6 没有广播保留语义，块内全部地址可用。
//
// 零值无效，必须通过 [New6] 或 [Parse6] 创建。
type Network6 struct {
	prefix netip.Prefix
}

// New6 从地址和前缀长度创建 IPv6 网络。
// 地址中的主机位会被清除。
// IPv4 地址（含 IPv4-mapped）返回 [ErrVersionMismatch]，
// bits 超出 0–128 返回 [xip.ErrInvalidPrefix]。
func New6(addr netip.Addr, bits int) (Network6, error) {
	if !addr.IsValid() || addr.Is4() || addr.Is4In6() {
		return Network6{}, fmt.Errorf("%w: %s is not IPv6", ErrVersionMismatch, addr)
	}
	if bits < 0 || bits > 128 {
		return Network6{}, fmt.Errorf("%w: IPv6 prefix length must be 0-128, got %d", xip.ErrInvalidPrefix, bits)
	}
	b := addr.As16()
	for i := range b {
		b[i] &= mask6Table[bits][i]
	}
	return Network6{prefix: netip.PrefixFrom(netip.AddrFrom16(b), bits)}, nil
}

// Parse6 解析 "地址/前缀长度" 形式的 IPv6 网络。
// IPv6 不接受点分掩码形式。主机位同样会被清除。
func Parse6(s string) (Network6, error) {
	idx := strings.IndexByte(s, '/')
	if idx < 0 {
		return Network6{}, fmt.Errorf("%w: %q has no /LEN part", ErrInvalidNetwork, s)
	}
	addr, err := netip.ParseAddr(s[:idx])
	if err != nil {
		return Network6{}, fmt.Errorf("%w: %v", ErrInvalidNetwork, err)
	}
	bits, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return Network6{}, fmt.Errorf("%w: prefix length %q", ErrInvalidNetwork, s[idx+1:])
	}
	return New6(addr, bits)
}

// IsValid 报告网络是否通过构造函数创建。
func (n Network6) IsValid() bool {
	return n.prefix.IsValid()
}

// Addr 返回掩码对齐的网络地址（区间下界 First）。
func (n Network6) Addr() netip.Addr {
	return n.prefix.Addr()
}

// Bits 返回前缀长度（0–128）。无效网络返回 -1。
func (n Network6) Bits() int {
	return n.prefix.Bits()
}

// Prefix 返回底层的 [netip.Prefix]。
func (n Network6) Prefix() netip.Prefix {
	return n.prefix
}

// String 返回 CIDR 表示（如 "2001:db8::/64"）。
func (n Network6) String() string {
	return n.prefix.String()
}

// Last 返回块内最高地址：网络地址 OR NOT(掩码)。
// 无效网络返回零值。
func (n Network6) Last() netip.Addr {
	if !n.IsValid() {
		return netip.Addr{}
	}
	b := n.prefix.Addr().As16()
	for i := range b {
		b[i] |= ^mask6Table[n.prefix.Bits()][i]
	}
	return netip.AddrFrom16(b)
}

// TotalHosts 返回块内地址总数 2^(128−前缀长度)。
// 2^128 超出任何原生整型位宽，必须使用任意精度整数。
// 无效网络返回 nil。
func (n Network6) TotalHosts() *big.Int {
	if !n.IsValid() {
		return nil
	}
	return new(big.Int).Lsh(big.NewInt(1), uint(128-n.prefix.Bits()))
}

// Contains 报告 addr 是否落在本网络内：
// (addr AND 掩码) 的每个字节与网络地址逐字节相等即包含。
// IPv4 地址（含 IPv4-mapped）返回 false。
func (n Network6) Contains(addr netip.Addr) bool {
	if !n.IsValid() || !addr.IsValid() || addr.Is4() || addr.Is4In6() {
		return false
	}
	b := addr.As16()
	netB := n.prefix.Addr().As16()
	mask := &mask6Table[n.prefix.Bits()]
	for i := range b {
		if b[i]&mask[i] != netB[i] {
			return false
		}
	}
	return true
}

// Range 返回 [网络地址, 最高地址] 闭区间。
func (n Network6) Range() netipx.IPRange {
	if !n.IsValid() {
		return netipx.IPRange{}
	}
	return netipx.IPRangeFrom(n.prefix.Addr(), n.Last())
}

// ChangePrefix 按新前缀长度重构网络，返回结果块列表。
// 语义与 [Network4.ChangeMask] 一致：等长恒等、变短按字面值重新
// 归一化、变长枚举兄弟块（从低到高）。
//
// 细分的步进为 2^(128−new)，远超原生整型范围（如 /8 → /16 时
// 步进 2^112），因此使用 big.Int 计算各兄弟块的基地址。
//
// newBits 超出 0–128 返回 [xip.ErrInvalidPrefix]；
// 细分数量超过上限返回 [ErrSplitTooLarge]。
func (n Network6) ChangePrefix(newBits int) ([]Network6, error) {
	if !n.IsValid() {
		return nil, ErrInvalidNetwork
	}
	if newBits < 0 || newBits > 128 {
		return nil, fmt.Errorf("%w: IPv6 prefix length must be 0-128, got %d", xip.ErrInvalidPrefix, newBits)
	}

	oldBits := n.prefix.Bits()
	switch {
	case newBits == oldBits:
		return []Network6{n}, nil

	case newBits < oldBits:
		widened, err := New6(n.prefix.Addr(), newBits)
		if err != nil {
			return nil, err
		}
		return []Network6{widened}, nil

	default:
		delta := newBits - oldBits
		if delta > 20 { // 2^20 = maxSplitParts
			return nil, fmt.Errorf("%w: %s -> /%d yields 2^%d subnets", ErrSplitTooLarge, n, newBits, delta)
		}
		count := 1 << delta
		step := new(big.Int).Lsh(big.NewInt(1), uint(128-newBits))
		cursor := xip.AddrToBigInt(n.prefix.Addr())
		subnets := make([]Network6, 0, count)
		for i := 0; i < count; i++ {
			addr, err := xip.AddrFromBigInt(cursor, xip.V6)
			if err != nil {
				return nil, err
			}
			subnets = append(subnets, Network6{prefix: netip.PrefixFrom(addr, newBits)})
			cursor = new(big.Int).Add(cursor, step)
		}
		return subnets, nil
	}
}
