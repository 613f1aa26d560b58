// Package xsubnet 提供 IPv4/IPv6 CIDR 块的建模与运算。
//
// 两个核心值类型：
//
//   - [Network4]: (网络地址, 掩码)，派生广播地址、首/末可用主机、
//     主机计数，支持前缀变更与点包含判断
//   - [Network6]: (网络地址, 前缀长度 0–128)，无广播保留语义，
//     主机计数使用任意精度整数
//
// # 对齐不变量
//
// 构造函数对输入地址执行 addr AND mask 归一化，存储的地址恒为
// 掩码对齐的网络地址。对任意 (地址, 掩码) 输入，
// network.Addr() == addr AND mask 恒成立。
//
// # 可用主机规则（IPv4）
//
//   - 前缀 ≤ 30: 网络地址与广播地址保留，可用区间 [net+1, bcast−1]
//   - /31: RFC 3021 点对点链路，两个地址均可用，无广播保留
//   - /32: 单一地址，UsableHosts()==1，不存在首/末可用区间
//
// # 前缀变更
//
// ChangeMask / ChangePrefix 是不可变操作，返回新值切片：
//
//	n, _ := xsubnet.Parse4("10.0.0.0/24")
//	subnets, _ := n.ChangeMask(26)   // 4 个 /26，从低到高
//	wider, _ := n.ChangeMask(16)     // 1 个块: 10.0.0.0/16
//
// 变短时以当前网络地址为字面值在新长度下重新归一化，不做
// "超网搜索"；变长时枚举 2^Δ 个兄弟块，IPv6 路径使用 big.Int
// 步进以避免 2^(128−new) 溢出。对最低地址的兄弟块执行反向
// 变更可还原原网络地址（细分/合并互逆）。
package xsubnet
