// Package xmatch 提供点包含判定与三态范围归属分类。
//
// # 包含判定
//
//   - [AddrInNetwork4]: 点是否落在 IPv4 (网络, 掩码) 块内，
//     掩码接受点分形式或前缀长度（字符串版本）
//   - [AddrInRange]: 点是否落在 [start, end] 闭区间内，IPv4/IPv6 通用
//   - [Overlaps] / [Covers]: 闭区间相交与覆盖判定
//
// 所有区间比较基于 [net/netip.Addr.Compare] 的全宽度无符号序
// （32 位或 128 位整体比较），不做逐字节提前判定——逐字节短路
// 在某些模式下会给出歧义结论。
//
// # 三态分类
//
// [Classifier] 对照一组带标签的参考范围（[RefRange]）判定任意
// 输入的归属，输出 {yes, partial, no} 三态：
//
//	refs := []xmatch.RefRange{{
//	    Label: "corp-10",
//	    Start: netip.MustParseAddr("10.0.0.0"),
//	    End:   netip.MustParseAddr("10.255.255.255"),
//	}}
//	c, _ := xmatch.NewClassifier(refs)
//	out := c.Classify(ctx, "10.1.0.0/16")   // yes
//	out = c.Classify(ctx, "9.255.255.0/23") // partial（横跨边界）
//	out = c.Classify(ctx, "192.0.2.1")      // no
//
// 接受单地址、CIDR、短横线范围与 DNS 域名四种输入。
//
// # 行为契约
//
//   - 分类器永远给出三态判定：无法识别的输入形式与 DNS 解析失败
//     都降级为 no 并附带 Diagnostic，绝不抛出错误
//   - 但参考范围本身违反契约（end 先于 start 等）属于调用方错误，
//     [NewClassifier] 立刻失败
//   - 覆盖只针对单个参考范围检查：恰好横跨两个相邻参考范围的块
//     判定为 partial，即使二者的并集能完整覆盖它，也不做跨范围合并
//   - CIDR 输入（前缀长度与点分掩码两种写法等价）的判定区间
//     从字面起始地址铺满整个块大小，
//     未对齐的输入可以横跨对齐边界（这正是 9.255.255.0/23 对
//     10.0.0.0/8 判定 partial 的原因）；需要严格对齐语义时
//     先经 xparse/xsubnet 归一化再输入
//   - 域名路径有显式超时（[WithTimeout]）与有限次重试，
//     默认解析器基于 [github.com/miekg/dns]，可用 [WithResolver] 替换
package xmatch
