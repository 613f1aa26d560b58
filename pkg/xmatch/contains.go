package xmatch

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"go4.org/netipx"

	"github.com/omeyang/ipkit/pkg/xip"
	"github.com/omeyang/ipkit/pkg/xsubnet"
)

// AddrInNetwork4 报告 addr 是否落在 (network, mask) 确定的 IPv4 块内：
// 查询地址与网络地址对齐到同一掩码下，相等即包含。
// 任一参数非 IPv4 或掩码无效时返回 false。
func AddrInNetwork4(network netip.Addr, mask xip.Mask, addr netip.Addr) bool {
	n, err := xsubnet.New4(network, mask)
	if err != nil {
		return false
	}
	return n.Contains(addr)
}

// AddrInNetwork4String 是 [AddrInNetwork4] 的字符串形式。
// mask 接受点分形式（"255.255.255.0"）或前缀长度（"24"）。
func AddrInNetwork4String(network, mask, addr string) (bool, error) {
	netAddr, err := netip.ParseAddr(network)
	if err != nil {
		return false, fmt.Errorf("%w: network %q: %v", xip.ErrInvalidAddress, network, err)
	}
	queryAddr, err := netip.ParseAddr(addr)
	if err != nil {
		return false, fmt.Errorf("%w: query %q: %v", xip.ErrInvalidAddress, addr, err)
	}

	var m xip.Mask
	if strings.Contains(mask, ".") {
		m, err = xip.MaskFromString(mask)
	} else {
		bits, convErr := strconv.Atoi(mask)
		if convErr != nil {
			return false, fmt.Errorf("%w: %q is neither dotted form nor prefix length", xip.ErrInvalidMask, mask)
		}
		m, err = xip.MaskFromBits(bits)
	}
	if err != nil {
		return false, err
	}
	return AddrInNetwork4(netAddr, m, queryAddr), nil
}

// AddrInRange 报告 addr 是否落在 [start, end] 闭区间内。
//
// 比较基于 [netip.Addr.Compare] 的全宽度无符号序
// （IPv4 按 32 位、IPv6 按 128 位整体比较），不做逐字节
// 提前判定。查询地址与区间地址族不同返回 false。
func AddrInRange(start, end, addr netip.Addr) bool {
	if !start.IsValid() || !end.IsValid() || !addr.IsValid() {
		return false
	}
	start, end, addr = start.Unmap(), end.Unmap(), addr.Unmap()
	if xip.AddrVersion(addr) != xip.AddrVersion(start) {
		return false
	}
	return addr.Compare(start) >= 0 && addr.Compare(end) <= 0
}

// AddrInRangeString 是 [AddrInRange] 的字符串形式。
func AddrInRangeString(start, end, addr string) (bool, error) {
	startAddr, err := netip.ParseAddr(start)
	if err != nil {
		return false, fmt.Errorf("%w: range start %q: %v", xip.ErrInvalidAddress, start, err)
	}
	endAddr, err := netip.ParseAddr(end)
	if err != nil {
		return false, fmt.Errorf("%w: range end %q: %v", xip.ErrInvalidAddress, end, err)
	}
	queryAddr, err := netip.ParseAddr(addr)
	if err != nil {
		return false, fmt.Errorf("%w: query %q: %v", xip.ErrInvalidAddress, addr, err)
	}
	return AddrInRange(startAddr, endAddr, queryAddr), nil
}

// Overlaps 报告两个闭区间是否相交：
// [a,b] 与 [c,d] 相交当且仅当 a≤d 且 c≤b。
// 任一范围无效返回 false。
func Overlaps(a, b netipx.IPRange) bool {
	if !a.IsValid() || !b.IsValid() {
		return false
	}
	return a.From().Compare(b.To()) <= 0 && b.From().Compare(a.To()) <= 0
}

// Covers 报告 outer 是否完整覆盖 inner：
// [c,d] ⊇ [a,b] 当且仅当 c≤a 且 b≤d。
// 任一范围无效返回 false。
func Covers(outer, inner netipx.IPRange) bool {
	if !outer.IsValid() || !inner.IsValid() {
		return false
	}
	return outer.From().Compare(inner.From()) <= 0 && inner.To().Compare(outer.To()) <= 0
}
