package xip

import (
	"fmt"
	"net/netip"
)

// Normalize 将 IP 地址字符串规范化为标准格式。
//
// IPv4 输出四段十进制、无前导零；IPv6 输出小写十六进制组，
// 最长的零段序列压缩为一个 "::"（并列时取最左侧），
// 即 [netip.Addr.String] 的 RFC 5952 规范形式。
// 规范形式满足往返律：Normalize(Normalize(s)) == Normalize(s)。
func Normalize(s string) (string, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return addr.String(), nil
}

// IsValidIP 报告 s 是否为有效的 IP 地址字符串。
func IsValidIP(s string) bool {
	_, err := netip.ParseAddr(s)
	return err == nil
}
