package xip

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"net/netip"
)

// AddrFromUint32 从 IPv4 的 uint32 表示创建 [netip.Addr]。
// 使用网络字节序（大端）。
func AddrFromUint32(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}

// AddrToUint32 将 IPv4 地址转换为 uint32（网络字节序）。
// IPv4-mapped IPv6 地址先去映射再转换。
// 非 IPv4 地址返回 (0, false)。
func AddrToUint32(addr netip.Addr) (uint32, bool) {
	if !addr.Is4() && !addr.Is4In6() {
		return 0, false
	}
	b := addr.Unmap().As4()
	return binary.BigEndian.Uint32(b[:]), true
}

// AddrFromBigInt 从 [*big.Int] 创建指定版本的 [netip.Addr]。
// 值为负或超出目标地址族位宽时返回 [ErrInvalidBigInt]。
func AddrFromBigInt(v *big.Int, ver Version) (netip.Addr, error) {
	if v == nil {
		return netip.Addr{}, ErrInvalidBigInt
	}
	switch ver {
	case V4:
		if v.Sign() < 0 || v.BitLen() > 32 {
			return netip.Addr{}, fmt.Errorf("%w: %s does not fit in 32 bits", ErrInvalidBigInt, v)
		}
		var b [4]byte
		v.FillBytes(b[:])
		return netip.AddrFrom4(b), nil
	case V6:
		if v.Sign() < 0 || v.BitLen() > 128 {
			return netip.Addr{}, fmt.Errorf("%w: %s does not fit in 128 bits", ErrInvalidBigInt, v)
		}
		var b [16]byte
		v.FillBytes(b[:])
		return netip.AddrFrom16(b), nil
	default:
		return netip.Addr{}, ErrInvalidVersion
	}
}

// AddrToBigInt 将地址转换为 [*big.Int]。
// IPv4（含 IPv4-mapped IPv6）按 32 位值转换，IPv6 按 128 位值转换。
// 无效地址返回零值 big.Int。
func AddrToBigInt(addr netip.Addr) *big.Int {
	if !addr.IsValid() {
		return new(big.Int)
	}
	if addr.Is4() || addr.Is4In6() {
		v, _ := AddrToUint32(addr)
		return new(big.Int).SetUint64(uint64(v))
	}
	b := addr.As16()
	return new(big.Int).SetBytes(b[:])
}

// AddrAdd 对 IP 地址做加法运算，delta 为负表示减法。
// 越过地址族边界时返回 [ErrOverflow]。
//
// IPv4（含 IPv4-mapped IPv6）走 uint64 快速路径，结果为纯 IPv4 地址；
// IPv6 使用 big.Int 运算。
func AddrAdd(addr netip.Addr, delta int64) (netip.Addr, error) {
	if !addr.IsValid() {
		return netip.Addr{}, ErrInvalidAddress
	}

	if addr.Is4() || addr.Is4In6() {
		v, _ := AddrToUint32(addr)
		v64 := uint64(v)
		if delta >= 0 {
			d64 := uint64(delta)
			if d64 > uint64(^uint32(0))-v64 {
				return netip.Addr{}, fmt.Errorf("%w: IPv4 %s + %d", ErrOverflow, addr, delta)
			}
			v64 += d64
		} else {
			d64 := uint64(-delta)
			if d64 > v64 {
				return netip.Addr{}, fmt.Errorf("%w: IPv4 %s %d", ErrOverflow, addr, delta)
			}
			v64 -= d64
		}
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(v64&0xFFFFFFFF))
		return netip.AddrFrom4(b), nil
	}

	bi := AddrToBigInt(addr)
	bi.Add(bi, big.NewInt(delta))
	result, err := AddrFromBigInt(bi, V6)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: IPv6 %s %+d", ErrOverflow, addr, delta)
	}
	return result, nil
}
