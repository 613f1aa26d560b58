// Package xip 提供 IP 地址、掩码与范围的基础值类型。
//
// xip 基于 Go 标准库 [net/netip] 和社区库 [go4.org/netipx] 构建，
// 是 ipkit 其余各包（xsubnet、xparse、xmatch）的底层原语层：
//
//   - version.go: IP 版本类型 [Version] 及 [AddrVersion] 判断函数
//   - convert.go: uint32/big.Int 与 [netip.Addr] 互转、地址加减运算
//   - mask.go: IPv4 掩码值类型 [Mask]，点分形式与前缀长度双向转换
//   - format.go: 规范化渲染（[Normalize]）与有效性判断
//   - range.go: [netipx.IPRange] 的校验构造、基数计算与合并
//
// # 掩码
//
// 仅前缀全 1 的连续掩码是合法的，共 33 个（/0 到 /32）。
// [MaskFromString] 通过包初始化时生成的反查表校验点分形式，
// "255.0.255.0" 之类的非连续值返回 [ErrInvalidMask]：
//
//	m, _ := xip.MaskFromBits(24)
//	fmt.Println(m.String())  // 255.255.255.0
//	m2, _ := xip.MaskFromString("255.255.255.0")
//	fmt.Println(m2.Bits())   // 24
//
// # 范围基数
//
// [RangeSize] 返回 *big.Int：IPv6 全空间为 2^128，超出原生整型位宽。
// IPv4 场景可用 [RangeSizeUint64]，/0 全范围的 2^32 恰好需要 64 位。
//
// # 规范化渲染
//
// [Normalize] 输出 RFC 5952 规范形式：IPv4 无前导零；IPv6 小写，
// 最长零段序列压缩为一个 "::"，并列时取最左侧。对每个合法输入，
// 渲染与解析构成无损往返。
//
// # 错误处理
//
// 所有可失败函数返回预定义错误变量，支持 errors.Is 判断，
// 错误消息指明出错字段与可接受的形式。
package xip
