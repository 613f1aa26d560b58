package xmatch

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/miekg/dns"
)

// Resolver 将域名解析为 IP 地址集合。
// 分类器的域名路径通过该接口调用外部解析，测试中可注入假实现。
type Resolver interface {
	// LookupIP 解析 host 的 A 与 AAAA 记录。
	// 无记录时返回空切片和 nil 错误；解析失败返回错误。
	LookupIP(ctx context.Context, host string) ([]netip.Addr, error)
}

// dnsResolverAttempts 是单条 DNS 查询的重试上限。
const dnsResolverAttempts = 3

// DNSResolver 是基于 [github.com/miekg/dns] 的默认解析器实现。
// 每条查询带显式超时与有限次重试，从不无限阻塞。
type DNSResolver struct {
	client  *dns.Client
	servers []string
}

// NewDNSResolver 创建默认解析器。
// 服务器列表取自 /etc/resolv.conf，读取失败时退回公共 DNS。
// timeout 是单次查询的超时时间，非正值使用 5s。
func NewDNSResolver(timeout time.Duration) *DNSResolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	servers := []string{"8.8.8.8:53"}
	if cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil && len(cfg.Servers) > 0 {
		servers = servers[:0]
		for _, s := range cfg.Servers {
			servers = append(servers, net.JoinHostPort(s, cfg.Port))
		}
	}
	return &DNSResolver{
		client:  &dns.Client{Timeout: timeout},
		servers: servers,
	}
}

// LookupIP 实现 [Resolver]：依次查询 A 与 AAAA 记录并合并结果。
// 单条查询失败会在 [dnsResolverAttempts] 次内按指数退避重试；
// A 与 AAAA 只要有一类成功即返回已解析到的地址。
func (r *DNSResolver) LookupIP(ctx context.Context, host string) ([]netip.Addr, error) {
	var addrs []netip.Addr
	var lastErr error
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		got, err := r.query(ctx, host, qtype)
		if err != nil {
			lastErr = err
			continue
		}
		addrs = append(addrs, got...)
	}
	if len(addrs) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return addrs, nil
}

func (r *DNSResolver) query(ctx context.Context, host string, qtype uint16) ([]netip.Addr, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)
	msg.RecursionDesired = true

	return retry.NewWithData[[]netip.Addr](
		retry.Context(ctx),
		retry.Attempts(dnsResolverAttempts),
		retry.Delay(100*time.Millisecond),
		retry.LastErrorOnly(true),
	).Do(func() ([]netip.Addr, error) {
		return r.exchange(ctx, msg, host, qtype)
	})
}

func (r *DNSResolver) exchange(ctx context.Context, msg *dns.Msg, host string, qtype uint16) ([]netip.Addr, error) {
	var lastErr error
	for _, server := range r.servers {
		resp, _, err := r.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = fmt.Errorf("query %s %s via %s: %w", host, dns.TypeToString[qtype], server, err)
			continue
		}
		if resp.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("query %s %s via %s: rcode %s", host, dns.TypeToString[qtype], server, dns.RcodeToString[resp.Rcode])
			continue
		}
		return answersToAddrs(resp), nil
	}
	return nil, lastErr
}

// answersToAddrs 提取应答中的 A/AAAA 记录地址。
func answersToAddrs(resp *dns.Msg) []netip.Addr {
	var addrs []netip.Addr
	for _, rr := range resp.Answer {
		var ip net.IP
		switch record := rr.(type) {
		case *dns.A:
			ip = record.A
		case *dns.AAAA:
			ip = record.AAAA
		default:
			continue
		}
		if addr, ok := netip.AddrFromSlice(ip); ok {
			addrs = append(addrs, addr.Unmap())
		}
	}
	return addrs
}
