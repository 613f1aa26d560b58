package xparse

import (
	"net/netip"

	"go4.org/netipx"

	"github.com/omeyang/ipkit/pkg/xip"
)

// Kind 表示解析结果的类别标签。
type Kind uint8

const (
	// KindInvalid 表示无效结果（零值）。
	KindInvalid Kind = iota
	// KindAddress 表示单个 IP 地址。
	KindAddress
	// KindNetwork 表示 CIDR 网络块。
	KindNetwork
	// KindRange 表示短横线区间。
	KindRange
)

// String 返回类别的字符串表示。
func (k Kind) String() string {
	switch k {
	case KindAddress:
		return "address"
	case KindNetwork:
		return "network"
	case KindRange:
		return "range"
	default:
		return "invalid"
	}
}

// Result 是解析产物的带标签联合体。
// Kind 决定哪个载荷字段有效，其余字段保持零值；
// 所有字段在解析时一次性填充，之后不再变化。
//
//   - KindAddress: Addr
//   - KindNetwork: Prefix（已按掩码归一化）
//   - KindRange: Range
//
// 设计决策: 用单一结构体加 Kind 标签而非接口/泛型表达联合体。
// 值类型可直接比较与复制，调用方按 Kind 分流即可，
// 不存在"部分填充"的中间状态（解析失败时不返回 Result）。
type Result struct {
	// Kind 是结果类别。
	Kind Kind

	// Version 是结果的 IP 版本（V4 或 V6）。
	Version xip.Version

	// Canonical 是结果的规范字符串表示。
	Canonical string

	// Addr 在 Kind == KindAddress 时有效。
	Addr netip.Addr

	// Prefix 在 Kind == KindNetwork 时有效，已按掩码归一化。
	Prefix netip.Prefix

	// Range 在 Kind == KindRange 时有效。
	Range netipx.IPRange
}

// IPRange 返回结果覆盖的闭区间，三种类别统一视角：
// 地址为单点区间，网络为 [网络地址, 最高地址]，范围为其自身。
// 无效结果返回零值。
func (r Result) IPRange() netipx.IPRange {
	switch r.Kind {
	case KindAddress:
		return netipx.IPRangeFrom(r.Addr, r.Addr)
	case KindNetwork:
		return netipx.RangeOfPrefix(r.Prefix)
	case KindRange:
		return r.Range
	default:
		return netipx.IPRange{}
	}
}
