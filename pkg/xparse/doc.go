// Package xparse 在可配置策略下把文本分类为地址、网络或范围。
//
// [Parse] 是唯一入口：输入一条去除首尾空白的字符串和一组
// [Policy] 标志，输出带类别标签的 [Result] 联合体或错误，
// 绝不返回部分填充的结果。
//
// # 接受的形式与判定优先级
//
//  1. 含 '/' → 网络："192.168.1.0/24"、"192.168.1.0/255.255.255.0"
//     （点分掩码仅 IPv4）、"2001:db8::/64"
//  2. 否则含 '-' → 范围："10.0.0.1-10.0.0.100"
//  3. 否则 → 单地址："192.168.1.1"、"2001:db8::1"
//
// 均不匹配返回 [ErrInvalidFormat]，错误消息列出可接受的形式。
//
// # 策略标志
//
//   - MandatoryMask: 输入必须是网络形式
//   - MaskForbidden: 输入不得携带掩码
//   - RangeForbidden: 不接受短横线范围
//   - TreatSlash32AsHost: /32 与 /128 的网络结果改写为地址结果
//
// MandatoryMask 与 MaskForbidden 同时为真属于配置冲突，
// 在解析任何输入之前即返回 [ErrPolicyConflict]。
//
// # 错误分类
//
// 掩码问题返回 [xip.ErrInvalidMask] 或 [xip.ErrInvalidPrefix]，
// 范围顺序问题返回 [xip.ErrRangeOrder]，混用地址族返回
// [xip.ErrVersionMismatch]，策略违反返回本包的对应错误变量，
// 全部支持 errors.Is 判断。
package xparse
