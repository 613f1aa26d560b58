package xmatch

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRef(t *testing.T, label, start, end string) RefRange {
	t.Helper()
	ref, err := NewRefRange(label, netip.MustParseAddr(start), netip.MustParseAddr(end))
	require.NoError(t, err)
	return ref
}

// fakeResolver 是测试用解析器：按域名返回固定地址或错误。
type fakeResolver struct {
	addrs map[string][]netip.Addr
	err   error
}

func (f *fakeResolver) LookupIP(_ context.Context, host string) ([]netip.Addr, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.addrs[host], nil
}

func newTestClassifier(t *testing.T, refs []RefRange, resolver Resolver) *Classifier {
	t.Helper()
	opts := []Option{}
	if resolver != nil {
		opts = append(opts, WithResolver(resolver))
	}
	c, err := NewClassifier(refs, opts...)
	require.NoError(t, err)
	return c
}

func TestNewClassifier_RefValidation(t *testing.T) {
	// end 先于 start 是调用方契约错误，必须立刻失败
	_, err := NewClassifier([]RefRange{{
		Label: "backwards",
		Start: netip.MustParseAddr("10.0.0.100"),
		End:   netip.MustParseAddr("10.0.0.1"),
	}})
	assert.ErrorIs(t, err, ErrInvalidRefRange)

	_, err = NewClassifier([]RefRange{{
		Label: "mixed",
		Start: netip.MustParseAddr("10.0.0.1"),
		End:   netip.MustParseAddr("2001:db8::1"),
	}})
	assert.ErrorIs(t, err, ErrInvalidRefRange)

	_, err = NewClassifier([]RefRange{{Label: "zero"}})
	assert.ErrorIs(t, err, ErrInvalidRefRange)
}

func TestClassify_TenSlashEight(t *testing.T) {
	refs := []RefRange{mustRef(t, "corp-10", "10.0.0.0", "10.255.255.255")}
	c := newTestClassifier(t, refs, &fakeResolver{})
	ctx := context.Background()

	tests := []struct {
		input string
		want  Verdict
	}{
		{input: "10.0.0.0/8", want: VerdictYes},
		{input: "10.1.0.0/16", want: VerdictYes},
		{input: "9.255.255.0/24", want: VerdictNo},
		// 字面起点 9.255.255.0 铺满 512 个地址，终点 10.0.0.255，横跨边界
		{input: "9.255.255.0/23", want: VerdictPartial},
		{input: "10.255.255.0/23", want: VerdictPartial},
		{input: "10.0.0.1", want: VerdictYes},
		{input: "9.255.255.255", want: VerdictNo},
		{input: "11.0.0.0", want: VerdictNo},
		{input: "10.0.0.1-10.0.0.100", want: VerdictYes},
		{input: "9.0.0.1-10.0.0.100", want: VerdictPartial},
		{input: "8.0.0.1-9.0.0.100", want: VerdictNo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			out := c.Classify(ctx, tt.input)
			assert.Equal(t, tt.want, out.Verdict, "diagnostic: %s", out.Diagnostic)
		})
	}
}

// 前缀长度与点分掩码是同一 CIDR 的两种写法，判定必须一致：
// 点分掩码形式同样保留字面起始地址，不做掩码归一化。
func TestClassify_NotationEquivalence(t *testing.T) {
	refs := []RefRange{mustRef(t, "corp-10", "10.0.0.0", "10.255.255.255")}
	c := newTestClassifier(t, refs, &fakeResolver{})
	ctx := context.Background()

	pairs := []struct {
		prefixForm string
		maskForm   string
	}{
		{prefixForm: "10.1.0.0/16", maskForm: "10.1.0.0/255.255.0.0"},
		{prefixForm: "9.255.255.0/24", maskForm: "9.255.255.0/255.255.255.0"},
		{prefixForm: "9.255.255.0/23", maskForm: "9.255.255.0/255.255.254.0"},
		{prefixForm: "10.255.255.0/23", maskForm: "10.255.255.0/255.255.254.0"},
	}

	for _, tt := range pairs {
		t.Run(tt.prefixForm, func(t *testing.T) {
			prefixVerdict := c.Classify(ctx, tt.prefixForm).Verdict
			maskVerdict := c.Classify(ctx, tt.maskForm).Verdict
			assert.Equal(t, prefixVerdict, maskVerdict)
		})
	}

	// 横跨边界的字面区间在两种写法下都是 partial
	assert.Equal(t, VerdictPartial, c.Classify(ctx, "9.255.255.0/255.255.254.0").Verdict)
}

// IPv4-mapped 前缀：/96 及更长等价于 IPv4 前缀，更短的没有
// IPv4 解释，降级为 no 加诊断信息，绝不 panic。
func TestClassify_MappedPrefix(t *testing.T) {
	refs := []RefRange{mustRef(t, "corp-10", "10.0.0.0", "10.255.255.255")}
	c := newTestClassifier(t, refs, &fakeResolver{})
	ctx := context.Background()

	// ::ffff:10.0.0.1/120 等价于 10.0.0.1/24 的字面区间
	out := c.Classify(ctx, "::ffff:10.0.0.1/120")
	assert.Equal(t, VerdictYes, out.Verdict)

	// 字面区间终点 10.0.0.255，横跨 10.0.0.0 边界
	assert.Equal(t, VerdictPartial, c.Classify(ctx, "::ffff:9.255.255.0/119").Verdict)

	// /96 等价于 /0：字面区间从 10.0.0.0 铺满到 IPv4 空间上界
	assert.Equal(t, VerdictPartial, c.Classify(ctx, "::ffff:10.0.0.0/96").Verdict)
	assert.Equal(t, VerdictNo, c.Classify(ctx, "::ffff:192.0.2.1/128").Verdict)

	out = c.Classify(ctx, "::ffff:10.0.0.1/64")
	assert.Equal(t, VerdictNo, out.Verdict)
	assert.Contains(t, out.Diagnostic, "shorter than /96")
}

// 三态一致性：x 判定 yes 时 x 的任意子块都是 yes；
// x 判定 no 时任何子块都不是 yes。
func TestClassify_TriStateConsistency(t *testing.T) {
	refs := []RefRange{mustRef(t, "corp-10", "10.0.0.0", "10.255.255.255")}
	c := newTestClassifier(t, refs, &fakeResolver{})
	ctx := context.Background()

	for _, sub := range []string{"10.0.0.0/9", "10.128.0.0/9", "10.37.0.0/16", "10.255.255.254/31"} {
		assert.Equal(t, VerdictYes, c.Classify(ctx, sub).Verdict, "sub-block %s of a yes block", sub)
	}
	for _, sub := range []string{"9.0.0.0/9", "9.128.0.0/16", "9.0.0.1/32"} {
		assert.Equal(t, VerdictNo, c.Classify(ctx, sub).Verdict, "sub-block %s of a no block", sub)
	}
}

func TestClassify_MatchedLabel(t *testing.T) {
	refs := []RefRange{
		mustRef(t, "corp-10", "10.0.0.0", "10.255.255.255"),
		mustRef(t, "lan-192", "192.168.0.0", "192.168.255.255"),
	}
	c := newTestClassifier(t, refs, &fakeResolver{})

	out := c.Classify(context.Background(), "192.168.1.1")
	assert.Equal(t, VerdictYes, out.Verdict)
	assert.Equal(t, "lan-192", out.MatchedLabel)
}

// 恰好横跨两个相邻参考范围的块判定 partial：
// 覆盖只针对单个参考范围检查，不做跨范围合并。
func TestClassify_AdjacentRangesNoMerging(t *testing.T) {
	refs := []RefRange{
		mustRef(t, "low", "10.0.0.0", "10.0.0.255"),
		mustRef(t, "high", "10.0.1.0", "10.0.1.255"),
	}
	c := newTestClassifier(t, refs, &fakeResolver{})
	ctx := context.Background()

	// 两个相邻范围的并集恰好等于 10.0.0.0/23，但没有单一范围覆盖它
	out := c.Classify(ctx, "10.0.0.0/23")
	assert.Equal(t, VerdictPartial, out.Verdict)

	out = c.Classify(ctx, "10.0.0.128-10.0.1.127")
	assert.Equal(t, VerdictPartial, out.Verdict)

	// 单独落在任一范围内仍是 yes
	assert.Equal(t, VerdictYes, c.Classify(ctx, "10.0.0.0/24").Verdict)
	assert.Equal(t, VerdictYes, c.Classify(ctx, "10.0.1.0/24").Verdict)
}

func TestClassify_IPv6(t *testing.T) {
	refs := []RefRange{mustRef(t, "doc-v6", "2001:db8::", "2001:db8:ffff:ffff:ffff:ffff:ffff:ffff")}
	c := newTestClassifier(t, refs, &fakeResolver{})
	ctx := context.Background()

	assert.Equal(t, VerdictYes, c.Classify(ctx, "2001:db8::/64").Verdict)
	assert.Equal(t, VerdictYes, c.Classify(ctx, "2001:db8::1").Verdict)
	assert.Equal(t, VerdictNo, c.Classify(ctx, "2001:db9::1").Verdict)
	assert.Equal(t, VerdictPartial, c.Classify(ctx, "2001:db8::-2001:db9::").Verdict)
	// v4 输入对 v6 参考范围不相交
	assert.Equal(t, VerdictNo, c.Classify(ctx, "10.0.0.1").Verdict)
}

func TestClassify_Hostname(t *testing.T) {
	refs := []RefRange{mustRef(t, "corp-10", "10.0.0.0", "10.255.255.255")}
	ctx := context.Background()

	t.Run("all covered", func(t *testing.T) {
		c := newTestClassifier(t, refs, &fakeResolver{addrs: map[string][]netip.Addr{
			"internal.example.com": {netip.MustParseAddr("10.0.0.5"), netip.MustParseAddr("10.9.9.9")},
		}})
		out := c.Classify(ctx, "internal.example.com")
		assert.Equal(t, VerdictYes, out.Verdict)
		assert.Len(t, out.Resolved, 2)
		assert.Equal(t, "corp-10", out.MatchedLabel)
	})

	t.Run("some covered", func(t *testing.T) {
		c := newTestClassifier(t, refs, &fakeResolver{addrs: map[string][]netip.Addr{
			"split.example.com": {netip.MustParseAddr("10.0.0.5"), netip.MustParseAddr("93.184.216.34")},
		}})
		out := c.Classify(ctx, "split.example.com")
		assert.Equal(t, VerdictPartial, out.Verdict)
	})

	t.Run("none covered", func(t *testing.T) {
		c := newTestClassifier(t, refs, &fakeResolver{addrs: map[string][]netip.Addr{
			"public.example.com": {netip.MustParseAddr("93.184.216.34")},
		}})
		out := c.Classify(ctx, "public.example.com")
		assert.Equal(t, VerdictNo, out.Verdict)
		assert.Empty(t, out.Diagnostic)
	})

	t.Run("resolution failure degrades to no", func(t *testing.T) {
		c := newTestClassifier(t, refs, &fakeResolver{err: errors.New("SERVFAIL")})
		out := c.Classify(ctx, "broken.example.com")
		assert.Equal(t, VerdictNo, out.Verdict)
		assert.Contains(t, out.Diagnostic, "DNS resolution failed")
	})

	t.Run("empty answer degrades to no", func(t *testing.T) {
		c := newTestClassifier(t, refs, &fakeResolver{})
		out := c.Classify(ctx, "nxdomain.example.com")
		assert.Equal(t, VerdictNo, out.Verdict)
		assert.Contains(t, out.Diagnostic, "no addresses")
	})
}

// 无法识别的输入形式降级为 no 加诊断信息，绝不 panic 或报错。
func TestClassify_UnrecognizedShapes(t *testing.T) {
	refs := []RefRange{mustRef(t, "corp-10", "10.0.0.0", "10.255.255.255")}
	c := newTestClassifier(t, refs, &fakeResolver{})
	ctx := context.Background()

	for _, input := range []string{"", "   ", "!!!", "10.0.0.0/99", "300.1.2.3", "a b c", "fe80::1%eth0"} {
		out := c.Classify(ctx, input)
		assert.Equal(t, VerdictNo, out.Verdict, "input %q", input)
		assert.NotEmpty(t, out.Diagnostic, "input %q", input)
	}
}

func TestClassify_EmptyRefs(t *testing.T) {
	c := newTestClassifier(t, nil, &fakeResolver{})
	out := c.Classify(context.Background(), "10.0.0.1")
	assert.Equal(t, VerdictNo, out.Verdict)
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "yes", VerdictYes.String())
	assert.Equal(t, "partial", VerdictPartial.String())
	assert.Equal(t, "no", VerdictNo.String())
}
