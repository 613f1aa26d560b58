package xip

import (
	"fmt"
	"math/big"
	"net/netip"

	"go4.org/netipx"
)

// RangeFromAddrs 从起止地址创建 [netipx.IPRange]，带完整校验。
// 地址无效返回 [ErrInvalidAddress]，混用地址族返回 [ErrVersionMismatch]，
// end 先于 start 返回 [ErrRangeOrder]。
//
// 设计决策: 不依赖 netipx.IPRange.IsValid 的单一布尔结果，而是拆分为
// 三个可 errors.Is 区分的错误，调用方（解析器、分类器）需要据此给出
// 指明出错字段的诊断信息。
func RangeFromAddrs(start, end netip.Addr) (netipx.IPRange, error) {
	if !start.IsValid() {
		return netipx.IPRange{}, fmt.Errorf("%w: range start", ErrInvalidAddress)
	}
	if !end.IsValid() {
		return netipx.IPRange{}, fmt.Errorf("%w: range end", ErrInvalidAddress)
	}
	if AddrVersion(start) != AddrVersion(end) {
		return netipx.IPRange{}, fmt.Errorf("%w: %s and %s", ErrVersionMismatch, start, end)
	}
	// 统一去映射，避免 netipx 将纯 IPv4 与 IPv4-mapped 视为不同族
	start, end = start.Unmap(), end.Unmap()
	if end.Compare(start) < 0 {
		return netipx.IPRange{}, fmt.Errorf("%w: %s < %s", ErrRangeOrder, end, start)
	}
	return netipx.IPRangeFrom(start, end), nil
}

// RangeSize 计算 IP 范围包含的地址数量（To - From + 1）。
// IPv6 全地址空间为 2^128，必须使用任意精度整数。
// 无效范围返回 nil。
func RangeSize(r netipx.IPRange) *big.Int {
	if !r.IsValid() {
		return nil
	}
	size := new(big.Int).Sub(AddrToBigInt(r.To()), AddrToBigInt(r.From()))
	return size.Add(size, big.NewInt(1))
}

// RangeSizeUint64 计算 IPv4 范围包含的地址数量。
// 全 IPv4 空间（/0 范围）为 2^32，恰好需要 64 位计数器。
// 非 IPv4 范围或无效范围返回 (0, false)。
func RangeSizeUint64(r netipx.IPRange) (uint64, bool) {
	if !r.IsValid() {
		return 0, false
	}
	fromU, ok1 := AddrToUint32(r.From())
	toU, ok2 := AddrToUint32(r.To())
	if !ok1 || !ok2 {
		return 0, false
	}
	return uint64(toU-fromU) + 1, true
}

// MergeRanges 合并重叠和相邻的 IP 范围。
// 返回的范围已排序且互不重叠。内部使用 [netipx.IPSetBuilder] 实现。
// 输入包含无效范围时返回错误；空切片或 nil 返回 (nil, nil)。
func MergeRanges(ranges []netipx.IPRange) ([]netipx.IPRange, error) {
	if len(ranges) == 0 {
		return nil, nil
	}
	var b netipx.IPSetBuilder
	for i, r := range ranges {
		if !r.IsValid() {
			return nil, fmt.Errorf("%w: range [%d] %s-%s", ErrRangeOrder, i, r.From(), r.To())
		}
		b.AddRange(r)
	}
	set, err := b.IPSet()
	if err != nil {
		return nil, fmt.Errorf("merge ranges: %w", err)
	}
	return set.Ranges(), nil
}
