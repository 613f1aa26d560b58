package xsubnet

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"go4.org/netipx"

	"github.com/omeyang/ipkit/pkg/xip"
)

// maxSplitParts 是单次细分允许产生的子网数量上限。
// /0 细分到 /32 理论上产生 2^32 个块，直接物化会耗尽内存；
// 超出上限返回 [ErrSplitTooLarge]。
const maxSplitParts = 1 << 20

// Network4 是 IPv4 CIDR 块值类型：(网络地址, 掩码)。
//
// 构造时地址按掩码归一化（addr AND mask），因此存储的地址
// 恒为掩码对齐的网络地址。所有方法都不修改接收者，
// ChangeMask 等操作返回新值。
//
// 零值无效，必须通过 [New4] 或 [Parse4] 创建。
type Network4 struct {
	prefix netip.Prefix // Masked 后的纯 IPv4 前缀
}

// New4 从地址和掩码创建 IPv4 网络。
// 地址中的主机位会被清除（对齐不变量）。
// 非 IPv4 地址返回 [ErrVersionMismatch]，无效掩码返回 [ErrInvalidNetwork]。
func New4(addr netip.Addr, mask xip.Mask) (Network4, error) {
	if addr.Is4In6() {
		addr = addr.Unmap()
	}
	if !addr.Is4() {
		return Network4{}, fmt.Errorf("%w: %s is not IPv4", ErrVersionMismatch, addr)
	}
	if !mask.IsValid() {
		return Network4{}, fmt.Errorf("%w: invalid mask", ErrInvalidNetwork)
	}
	v, _ := xip.AddrToUint32(addr)
	network := xip.AddrFromUint32(v & mask.Uint32())
	return Network4{prefix: netip.PrefixFrom(network, mask.Bits())}, nil
}

// Parse4 解析 "地址/前缀长度" 或 "地址/点分掩码" 形式的 IPv4 网络。
// 主机位同样会被清除。完整的策略化解析请使用 xparse 包。
func Parse4(s string) (Network4, error) {
	idx := strings.IndexByte(s, '/')
	if idx < 0 {
		return Network4{}, fmt.Errorf("%w: %q has no /LEN or /MASK part", ErrInvalidNetwork, s)
	}
	addr, err := netip.ParseAddr(s[:idx])
	if err != nil {
		return Network4{}, fmt.Errorf("%w: %v", ErrInvalidNetwork, err)
	}

	maskStr := s[idx+1:]
	var mask xip.Mask
	if strings.Contains(maskStr, ".") {
		mask, err = xip.MaskFromString(maskStr)
	} else {
		var bits int
		bits, err = strconv.Atoi(maskStr)
		if err != nil {
			return Network4{}, fmt.Errorf("%w: prefix length %q", ErrInvalidNetwork, maskStr)
		}
		mask, err = xip.MaskFromBits(bits)
	}
	if err != nil {
		return Network4{}, err
	}
	return New4(addr, mask)
}

// IsValid 报告网络是否通过构造函数创建。
func (n Network4) IsValid() bool {
	return n.prefix.IsValid()
}

// Addr 返回掩码对齐的网络地址。
func (n Network4) Addr() netip.Addr {
	return n.prefix.Addr()
}

// Bits 返回前缀长度（0–32）。无效网络返回 -1。
func (n Network4) Bits() int {
	return n.prefix.Bits()
}

// Mask 返回网络的掩码。
func (n Network4) Mask() xip.Mask {
	if !n.IsValid() {
		return xip.Mask{}
	}
	m, _ := xip.MaskFromBits(n.prefix.Bits())
	return m
}

// Prefix 返回底层的 [netip.Prefix]。
func (n Network4) Prefix() netip.Prefix {
	return n.prefix
}

// String 返回 CIDR 表示（如 "192.168.1.0/24"）。
// 无效网络返回 "invalid Prefix"（与 netip.Prefix 一致）。
func (n Network4) String() string {
	return n.prefix.String()
}

// Broadcast 返回广播地址：网络地址 OR NOT(掩码)。
// /31 与 /32 没有广播保留语义，但最高地址仍按同一公式给出。
// 无效网络返回零值。
func (n Network4) Broadcast() netip.Addr {
	if !n.IsValid() {
		return netip.Addr{}
	}
	v, _ := xip.AddrToUint32(n.prefix.Addr())
	return xip.AddrFromUint32(v | ^n.Mask().Uint32())
}

// FirstUsable 返回第一个可用主机地址。
//
//   - 前缀 ≤ 30: 网络地址 + 1
//   - /31: 两个地址都可用（RFC 3021，无广播保留），返回网络地址
//   - /32: 不存在可用区间，返回 (零值, false)
func (n Network4) FirstUsable() (netip.Addr, bool) {
	switch {
	case !n.IsValid() || n.prefix.Bits() == 32:
		return netip.Addr{}, false
	case n.prefix.Bits() == 31:
		return n.prefix.Addr(), true
	default:
		first, _ := xip.AddrAdd(n.prefix.Addr(), 1)
		return first, true
	}
}

// LastUsable 返回最后一个可用主机地址。
//
//   - 前缀 ≤ 30: 广播地址 − 1
//   - /31: 返回最高地址
//   - /32: 返回 (零值, false)
func (n Network4) LastUsable() (netip.Addr, bool) {
	switch {
	case !n.IsValid() || n.prefix.Bits() == 32:
		return netip.Addr{}, false
	case n.prefix.Bits() == 31:
		return n.Broadcast(), true
	default:
		last, _ := xip.AddrAdd(n.Broadcast(), -1)
		return last, true
	}
}

// TotalHosts 返回块内地址总数 2^(32−前缀长度)。
// /0 的总数为 2^32，因此使用 64 位计数器。无效网络返回 0。
func (n Network4) TotalHosts() uint64 {
	if !n.IsValid() {
		return 0
	}
	return uint64(1) << (32 - n.prefix.Bits())
}

// UsableHosts 返回可用主机数。
//
//   - /32: 恰好 1 个地址
//   - /31: 2 个地址均可用
//   - 其余: 总数减去网络地址与广播地址
func (n Network4) UsableHosts() uint64 {
	switch {
	case !n.IsValid():
		return 0
	case n.prefix.Bits() >= 31:
		return n.TotalHosts()
	default:
		return n.TotalHosts() - 2
	}
}

// Contains 报告 addr 是否落在本网络内：
// 将查询地址与网络地址对齐到同一掩码下，相等即包含。
// 非 IPv4 地址返回 false。
func (n Network4) Contains(addr netip.Addr) bool {
	if !n.IsValid() {
		return false
	}
	v, ok := xip.AddrToUint32(addr)
	if !ok {
		return false
	}
	netV, _ := xip.AddrToUint32(n.prefix.Addr())
	return v&n.Mask().Uint32() == netV
}

// Range 返回 [网络地址, 广播地址] 闭区间。
func (n Network4) Range() netipx.IPRange {
	if !n.IsValid() {
		return netipx.IPRange{}
	}
	return netipx.IPRangeFrom(n.prefix.Addr(), n.Broadcast())
}

// ChangeMask 按新前缀长度重构网络，返回结果块列表。
//
//   - 等长: 恒等，返回仅含接收者自身的切片
//   - 变短（扩大）: 以当前网络地址为字面值在新长度下重新归一化，
//     返回单个块。注意这不是"寻找超网"——结果可能与原始输入
//     所属的上级块不同
//   - 变长（细分）: 枚举 2^(new−old) 个兄弟块，相邻块相差
//     2^(32−new) 个地址，按地址从低到高排列
//
// newBits 超出 0–32 返回 [xip.ErrInvalidPrefix]；
// 细分数量超过上限返回 [ErrSplitTooLarge]。
func (n Network4) ChangeMask(newBits int) ([]Network4, error) {
	if !n.IsValid() {
		return nil, ErrInvalidNetwork
	}
	newMask, err := xip.MaskFromBits(newBits)
	if err != nil {
		return nil, err
	}

	oldBits := n.prefix.Bits()
	switch {
	case newBits == oldBits:
		return []Network4{n}, nil

	case newBits < oldBits:
		widened, err := New4(n.prefix.Addr(), newMask)
		if err != nil {
			return nil, err
		}
		return []Network4{widened}, nil

	default:
		count := uint64(1) << (newBits - oldBits)
		if count > maxSplitParts {
			return nil, fmt.Errorf("%w: %s -> /%d yields %d subnets", ErrSplitTooLarge, n, newBits, count)
		}
		step := uint64(1) << (32 - newBits)
		base, _ := xip.AddrToUint32(n.prefix.Addr())
		subnets := make([]Network4, 0, count)
		for i := uint64(0); i < count; i++ {
			addr := xip.AddrFromUint32(base + uint32(i*step))
			subnets = append(subnets, Network4{prefix: netip.PrefixFrom(addr, newBits)})
		}
		return subnets, nil
	}
}
