package xparse

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/omeyang/ipkit/pkg/xip"
	"github.com/omeyang/ipkit/pkg/xsubnet"
)

// Policy 控制解析器接受哪些输入形式。
// 零值策略接受全部四种形式（单地址 / CIDR / 点分掩码 / 范围）。
type Policy struct {
	// MandatoryMask 要求输入必须携带掩码（即必须是网络形式）。
	MandatoryMask bool

	// MaskForbidden 禁止输入携带掩码。
	// 与 MandatoryMask 同时为真是配置错误，解析前即失败。
	MaskForbidden bool

	// RangeForbidden 禁止短横线范围形式。
	RangeForbidden bool

	// TreatSlash32AsHost 将 /32（IPv4）或 /128（IPv6）的网络结果
	// 在解析后改写为地址结果，底层值不变。
	TreatSlash32AsHost bool
}

// validate 检查策略标志自身的一致性。
func (p Policy) validate() error {
	if p.MandatoryMask && p.MaskForbidden {
		return fmt.Errorf("%w: MandatoryMask and MaskForbidden are both set", ErrPolicyConflict)
	}
	return nil
}

// Parse 在策略约束下将文本分类为地址、网络或范围。
//
// 判定优先级：含 '/' 按网络解析，否则含 '-' 按范围解析，
// 否则按单地址解析；均不匹配返回 [ErrInvalidFormat]。
//
// IPv4 掩码接受点分形式或前缀长度，IPv6 仅接受前缀长度。
// 范围的结束地址先于起始地址返回 [xip.ErrRangeOrder]。
//
// 设计决策: 拒绝包含 IPv6 zone ID 的输入（如 fe80::1%eth0）。
// 范围与集合运算会静默丢弃 zone 信息，导致下游匹配误判，
// 在解析入口统一拒绝。
func Parse(s string, policy Policy) (Result, error) {
	if err := policy.validate(); err != nil {
		return Result{}, err
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return Result{}, fmt.Errorf("%w: empty input", ErrInvalidFormat)
	}
	if strings.Contains(s, "%") {
		return Result{}, fmt.Errorf("%w: IPv6 zone ID is not supported: %s", ErrInvalidFormat, s)
	}

	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		if policy.MaskForbidden {
			return Result{}, fmt.Errorf("%w: %q", ErrMaskForbidden, s)
		}
		return parseNetwork(s, idx, policy)
	}

	if policy.MandatoryMask {
		return Result{}, fmt.Errorf("%w: %q", ErrMaskRequired, s)
	}

	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		if policy.RangeForbidden {
			return Result{}, fmt.Errorf("%w: %q", ErrRangeForbidden, s)
		}
		return parseRange(s, idx)
	}

	return parseAddress(s)
}

// parseNetwork 解析 "ADDR/LEN" 或 "ADDR/MASK"（点分掩码仅 IPv4）。
func parseNetwork(s string, idx int, policy Policy) (Result, error) {
	addrStr := strings.TrimSpace(s[:idx])
	maskStr := strings.TrimSpace(s[idx+1:])

	addr, err := netip.ParseAddr(addrStr)
	if err != nil {
		return Result{}, fmt.Errorf("%w: network address %q: %v", ErrInvalidFormat, addrStr, err)
	}

	switch xip.AddrVersion(addr) {
	case xip.V4:
		return parseNetwork4(addr, maskStr, policy)
	default:
		return parseNetwork6(addr, maskStr, policy)
	}
}

func parseNetwork4(addr netip.Addr, maskStr string, policy Policy) (Result, error) {
	var mask xip.Mask
	var err error
	if strings.Contains(maskStr, ".") {
		mask, err = xip.MaskFromString(maskStr)
	} else {
		bits, convErr := strconv.Atoi(maskStr)
		if convErr != nil {
			return Result{}, fmt.Errorf("%w: %q is neither dotted form nor prefix length", xip.ErrInvalidMask, maskStr)
		}
		mask, err = xip.MaskFromBits(bits)
	}
	if err != nil {
		return Result{}, err
	}

	network, err := xsubnet.New4(addr, mask)
	if err != nil {
		return Result{}, err
	}

	if policy.TreatSlash32AsHost && mask.Bits() == 32 {
		return addressResult(network.Addr()), nil
	}
	return Result{
		Kind:      KindNetwork,
		Version:   xip.V4,
		Canonical: network.String(),
		Prefix:    network.Prefix(),
	}, nil
}

func parseNetwork6(addr netip.Addr, maskStr string, policy Policy) (Result, error) {
	if strings.Contains(maskStr, ".") {
		return Result{}, fmt.Errorf("%w: dotted mask %q is IPv4-only, IPv6 accepts prefix length", xip.ErrInvalidMask, maskStr)
	}
	bits, err := strconv.Atoi(maskStr)
	if err != nil {
		return Result{}, fmt.Errorf("%w: prefix length %q", xip.ErrInvalidMask, maskStr)
	}

	network, err := xsubnet.New6(addr, bits)
	if err != nil {
		return Result{}, err
	}

	if policy.TreatSlash32AsHost && bits == 128 {
		return addressResult(network.Addr()), nil
	}
	return Result{
		Kind:      KindNetwork,
		Version:   xip.V6,
		Canonical: network.String(),
		Prefix:    network.Prefix(),
	}, nil
}

// parseRange 解析 "ADDR-ADDR"。
// 起止地址必须同族，且结束地址不得先于起始地址。
func parseRange(s string, idx int) (Result, error) {
	startStr := strings.TrimSpace(s[:idx])
	endStr := strings.TrimSpace(s[idx+1:])

	start, err := netip.ParseAddr(startStr)
	if err != nil {
		return Result{}, fmt.Errorf("%w: range start %q: %v", ErrInvalidFormat, startStr, err)
	}
	end, err := netip.ParseAddr(endStr)
	if err != nil {
		return Result{}, fmt.Errorf("%w: range end %q: %v", ErrInvalidFormat, endStr, err)
	}

	r, err := xip.RangeFromAddrs(start, end)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Kind:      KindRange,
		Version:   xip.AddrVersion(start),
		Canonical: r.From().String() + "-" + r.To().String(),
		Range:     r,
	}, nil
}

func parseAddress(s string) (Result, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, s, err)
	}
	return addressResult(addr.Unmap()), nil
}

func addressResult(addr netip.Addr) Result {
	return Result{
		Kind:      KindAddress,
		Version:   xip.AddrVersion(addr),
		Canonical: addr.String(),
		Addr:      addr,
	}
}
