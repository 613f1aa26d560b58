package xmatch

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"net/netip"
	"strings"
	"time"

	"go4.org/netipx"

	"github.com/omeyang/ipkit/pkg/xip"
	"github.com/omeyang/ipkit/pkg/xparse"
)

// Verdict 是三态归属判定结果。
type Verdict uint8

const (
	// VerdictNo 表示输入完全不在任何参考范围内。
	VerdictNo Verdict = iota
	// VerdictPartial 表示输入与参考范围相交但未被任何单个范围完整覆盖。
	VerdictPartial
	// VerdictYes 表示输入被某个单一参考范围完整覆盖。
	VerdictYes
)

// String 返回判定的字符串表示。
func (v Verdict) String() string {
	switch v {
	case VerdictYes:
		return "yes"
	case VerdictPartial:
		return "partial"
	default:
		return "no"
	}
}

// RefRange 是带标签的参考范围：[Start, End] 闭区间。
type RefRange struct {
	Label string
	Start netip.Addr
	End   netip.Addr
}

// NewRefRange 创建并校验参考范围。
// 参考范围由调用方提供，违反契约（地址无效、混用地址族、
// end 先于 start）必须立刻失败，返回 [ErrInvalidRefRange]。
func NewRefRange(label string, start, end netip.Addr) (RefRange, error) {
	if _, err := xip.RangeFromAddrs(start, end); err != nil {
		return RefRange{}, fmt.Errorf("%w: %q: %w", ErrInvalidRefRange, label, err)
	}
	return RefRange{Label: label, Start: start.Unmap(), End: end.Unmap()}, nil
}

func (r RefRange) ipRange() netipx.IPRange {
	return netipx.IPRangeFrom(r.Start, r.End)
}

// Outcome 是一次分类的完整结果。
// 契约是"永远给出三态判定"：无法识别的输入形式与 DNS 解析失败
// 都降级为 VerdictNo 并在 Diagnostic 中说明，不抛出错误。
type Outcome struct {
	// Verdict 是三态判定。
	Verdict Verdict

	// Input 是原始输入。
	Input string

	// MatchedLabel 是判定为 Yes 时命中的参考范围标签。
	MatchedLabel string

	// Diagnostic 在 No/降级路径携带说明（无法识别的形式、
	// DNS 失败原因等），正常 No 判定时为空。
	Diagnostic string

	// Resolved 是域名路径解析出的地址集合。
	Resolved []netip.Addr
}

// Option 配置分类器。
type Option func(*Classifier)

// WithResolver 注入自定义 DNS 解析器。
func WithResolver(r Resolver) Option {
	return func(c *Classifier) { c.resolver = r }
}

// WithTimeout 设置域名解析的整体超时，非正值使用默认 5s。
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger 注入日志器，用于 DNS 降级等路径的警告输出。
// 默认丢弃日志。
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// Classifier 对照一组带标签的参考范围对任意输入做三态归属判定。
// 创建后不可变，可被多 goroutine 并发使用。
type Classifier struct {
	refs     []RefRange
	resolver Resolver
	timeout  time.Duration
	logger   *slog.Logger
}

// NewClassifier 创建分类器。
// refs 中任何一条违反契约都立刻返回 [ErrInvalidRefRange]——
// 这是调用方契约错误，与输入无法识别的静默降级不同。
func NewClassifier(refs []RefRange, opts ...Option) (*Classifier, error) {
	c := &Classifier{
		refs:    make([]RefRange, 0, len(refs)),
		timeout: 5 * time.Second,
		logger:  slog.New(slog.DiscardHandler),
	}
	for i, ref := range refs {
		validated, err := NewRefRange(ref.Label, ref.Start, ref.End)
		if err != nil {
			return nil, fmt.Errorf("reference range [%d]: %w", i, err)
		}
		c.refs = append(c.refs, validated)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.resolver == nil {
		c.resolver = NewDNSResolver(c.timeout)
	}
	return c, nil
}

// Classify 判定 input 相对参考范围集合的归属。
//
// 输入依次尝试：CIDR → 短横线范围 → 单地址 → DNS 域名。
// 区间形式（CIDR/范围）：被某个单一参考范围完整覆盖为 Yes；
// 仅相交为 Partial——恰好横跨两个相邻参考范围的块也是 Partial，
// 不做跨范围合并。单地址：落在任一参考范围内为 Yes，否则 No。
// 域名：解析出的地址全部被覆盖为 Yes、部分为 Partial、全不为 No；
// 解析失败或结果为空降级为 No 并附带诊断信息。
func (c *Classifier) Classify(ctx context.Context, input string) Outcome {
	trimmed := strings.TrimSpace(input)
	out := Outcome{Input: trimmed, Verdict: VerdictNo}

	// CIDR 路径不经过归一化解析：判定区间从字面起始地址铺满整个
	// 块大小，未对齐的输入（如 9.255.255.0/23）覆盖的是
	// [字面地址, 字面地址+2^(位宽−前缀)−1]，可以横跨对齐边界。
	// 前缀长度与点分掩码两种写法等价，走同一条字面区间路径。
	if prefix, ok := parseCIDR(trimmed); ok {
		if prefix.Addr().Is4In6() && prefix.Bits() < 96 {
			// 短于 /96 的 IPv4-mapped 前缀覆盖超出映射空间，
			// 没有 IPv4 解释
			out.Diagnostic = fmt.Sprintf("IPv4-mapped prefix %s is shorter than /96", trimmed)
			return out
		}
		out.Verdict, out.MatchedLabel = c.classifyInterval(literalInterval(prefix))
		return out
	}

	// 短横线范围与单地址走策略化解析器
	result, err := xparse.Parse(trimmed, xparse.Policy{})
	if err == nil {
		out.Verdict, out.MatchedLabel = c.classifyInterval(result.IPRange())
		return out
	}

	if looksLikeHostname(trimmed) {
		return c.classifyHostname(ctx, trimmed)
	}

	out.Diagnostic = fmt.Sprintf("unrecognized input shape: %v", err)
	return out
}

// parseCIDR 识别 CIDR 输入的两种等价写法：
// "ADDR/LEN"（netip 原生）与 "ADDR/MASK"（点分掩码，仅 IPv4）。
// 都保留字面起始地址不做掩码归一化。非 CIDR 形式返回 false。
func parseCIDR(s string) (netip.Prefix, bool) {
	if prefix, err := netip.ParsePrefix(s); err == nil {
		return prefix, true
	}

	idx := strings.IndexByte(s, '/')
	if idx < 0 || !strings.Contains(s[idx+1:], ".") {
		return netip.Prefix{}, false
	}
	addr, err := netip.ParseAddr(s[:idx])
	if err != nil {
		return netip.Prefix{}, false
	}
	mask, err := xip.MaskFromString(s[idx+1:])
	if err != nil {
		return netip.Prefix{}, false
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return netip.Prefix{}, false
	}
	return netip.PrefixFrom(addr, mask.Bits()), true
}

// literalInterval 计算 CIDR 输入的判定区间：
// 起点为字面地址，终点为字面地址加块大小减一。
// 对齐输入下这正是 [网络地址, 广播地址]；未对齐输入向高地址
// 延伸，越过地址族上界时截断到族最大地址。
//
// IPv4-mapped 前缀（/96 及更长）等价于 IPv4 前缀：去映射后
// 按 32 位空间处理，前缀长度相应减去 96。短于 /96 的 mapped
// 前缀由调用方提前拒绝，这里不会收到。
func literalInterval(p netip.Prefix) netipx.IPRange {
	start := p.Addr()
	bits := p.Bits()
	if start.Is4In6() {
		start = start.Unmap()
		bits -= 96
	}
	if start.Is4() {
		v, _ := xip.AddrToUint32(start)
		span := uint64(1)<<(32-bits) - 1
		endV := uint64(v) + span
		if endV > uint64(^uint32(0)) {
			endV = uint64(^uint32(0))
		}
		return netipx.IPRangeFrom(start, xip.AddrFromUint32(uint32(endV)))
	}
	span := new(big.Int).Lsh(big.NewInt(1), uint(128-bits))
	endBig := new(big.Int).Add(xip.AddrToBigInt(start), span.Sub(span, big.NewInt(1)))
	end, err := xip.AddrFromBigInt(endBig, xip.V6)
	if err != nil {
		end = netip.MustParseAddr("ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff")
	}
	return netipx.IPRangeFrom(start, end)
}

// classifyInterval 对闭区间执行三态判定。
// 覆盖只针对单个参考范围检查，不合并相邻范围。
func (c *Classifier) classifyInterval(r netipx.IPRange) (Verdict, string) {
	if !r.IsValid() {
		return VerdictNo, ""
	}
	overlapped := false
	for _, ref := range c.refs {
		refRange := ref.ipRange()
		if Covers(refRange, r) {
			return VerdictYes, ref.Label
		}
		if Overlaps(refRange, r) {
			overlapped = true
		}
	}
	if overlapped {
		return VerdictPartial, ""
	}
	return VerdictNo, ""
}

// classifyHostname 解析域名并按覆盖比例给出判定。
// 解析失败映射为 No 加诊断信息，不向调用方透出网络错误。
func (c *Classifier) classifyHostname(ctx context.Context, host string) Outcome {
	out := Outcome{Input: host, Verdict: VerdictNo}

	resolveCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	addrs, err := c.resolver.LookupIP(resolveCtx, host)
	if err != nil {
		out.Diagnostic = fmt.Sprintf("DNS resolution failed: %v", err)
		c.logger.Warn("classify: DNS resolution failed, degrading to verdict no",
			slog.String("host", host), slog.Any("error", err))
		return out
	}
	if len(addrs) == 0 {
		out.Diagnostic = "DNS resolution returned no addresses"
		c.logger.Warn("classify: empty DNS answer, degrading to verdict no",
			slog.String("host", host))
		return out
	}

	out.Resolved = addrs
	covered := 0
	label := ""
	for _, addr := range addrs {
		if l, ok := c.addrLabel(addr); ok {
			covered++
			label = l
		}
	}
	switch {
	case covered == len(addrs):
		out.Verdict = VerdictYes
		out.MatchedLabel = label
	case covered > 0:
		out.Verdict = VerdictPartial
	}
	return out
}

// addrLabel 返回覆盖 addr 的第一个参考范围标签。
func (c *Classifier) addrLabel(addr netip.Addr) (string, bool) {
	for _, ref := range c.refs {
		if AddrInRange(ref.Start, ref.End, addr) {
			return ref.Label, true
		}
	}
	return "", false
}

// looksLikeHostname 粗判 s 是否可能是 DNS 域名。
// 只需排除明显的非域名形状，真正的有效性由解析结果决定。
func looksLikeHostname(s string) bool {
	if s == "" || len(s) > 253 {
		return false
	}
	if strings.ContainsAny(s, "/:%") {
		return false
	}
	hasAlpha := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasAlpha = true
		case r >= '0' && r <= '9', r == '.', r == '-', r == '_':
		default:
			return false
		}
	}
	return hasAlpha
}
