package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/ipkit/pkg/xmatch"
	"github.com/omeyang/ipkit/pkg/xparse"
	"github.com/omeyang/ipkit/pkg/xrefdb"
	"github.com/omeyang/ipkit/pkg/xsubnet"
)

// defaultClassifyTimeout 域名解析的默认超时。
const defaultClassifyTimeout = 5 * time.Second

// usageError 表示参数错误，run() 将其映射到退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createInfoCommand(),
		createSplitCommand(),
		createParseCommand(),
		createClassifyCommand(),
	}
}

// createInfoCommand 创建 info 子命令。
func createInfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Aliases:   []string{"i"},
		Usage:     "显示网络信息",
		ArgsUsage: "<地址/前缀> | <地址> <点分掩码>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			return cmdInfo(os.Stdout, cmd.Args().Slice())
		},
	}
}

// createSplitCommand 创建 split 子命令。
func createSplitCommand() *cli.Command {
	return &cli.Command{
		Name:      "split",
		Aliases:   []string{"s"},
		Usage:     "按更长前缀细分网络",
		ArgsUsage: "<CIDR> <新前缀长度>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			return cmdSplit(os.Stdout, cmd.Args().Slice())
		},
	}
}

// createParseCommand 创建 parse 子命令。
func createParseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Aliases:   []string{"p"},
		Usage:     "按策略解析输入并报告形式",
		ArgsUsage: "<输入>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "mandatory-mask", Usage: "要求输入必须带掩码"},
			&cli.BoolFlag{Name: "mask-forbidden", Usage: "拒绝带掩码的输入"},
			&cli.BoolFlag{Name: "range-forbidden", Usage: "拒绝范围形式的输入"},
			&cli.BoolFlag{Name: "slash32-as-host", Usage: "把全长掩码视为裸地址"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			policy := xparse.Policy{
				MandatoryMask:      cmd.Bool("mandatory-mask"),
				MaskForbidden:      cmd.Bool("mask-forbidden"),
				RangeForbidden:     cmd.Bool("range-forbidden"),
				TreatSlash32AsHost: cmd.Bool("slash32-as-host"),
			}
			return cmdParse(os.Stdout, cmd.Args().Slice(), policy)
		},
	}
}

// createClassifyCommand 创建 classify 子命令。
func createClassifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Aliases:   []string{"c"},
		Usage:     "对照参考范围文件做三态归属判定",
		ArgsUsage: "<输入>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ranges",
				Aliases:  []string{"r"},
				Usage:    "参考范围文件路径 (.yaml/.yml/.json)",
				Required: true,
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "域名解析超时",
				Value:   defaultClassifyTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cmdClassify(ctx, os.Stdout, cmd.Args().Slice(), cmd.String("ranges"), cmd.Duration("timeout"))
		},
	}
}

// cmdInfo 显示网络信息。
// 一个参数是前缀形式（v4 或 v6），两个参数是 v4 点分掩码形式。
func cmdInfo(w io.Writer, args []string) error {
	var input string
	switch len(args) {
	case 1:
		input = args[0]
	case 2:
		input = args[0] + "/" + args[1]
	default:
		return usageErrorf("info 需要 <地址/前缀> 或 <地址> <掩码>")
	}

	if n4, err := xsubnet.Parse4(input); err == nil {
		printInfo4(w, n4)
		return nil
	}

	n6, err := xsubnet.Parse6(input)
	if err != nil {
		return fmt.Errorf("无法解析网络 %q: %w", input, err)
	}
	printInfo6(w, n6)
	return nil
}

func printInfo4(w io.Writer, n xsubnet.Network4) {
	fmt.Fprintf(w, "Network:      %s\n", n)
	fmt.Fprintf(w, "Netmask:      %s (/%d)\n", n.Mask(), n.Bits())
	fmt.Fprintf(w, "Broadcast:    %s\n", n.Broadcast())
	if first, ok := n.FirstUsable(); ok {
		last, _ := n.LastUsable()
		fmt.Fprintf(w, "First usable: %s\n", first)
		fmt.Fprintf(w, "Last usable:  %s\n", last)
	} else {
		fmt.Fprintln(w, "Usable:       none")
	}
	fmt.Fprintf(w, "Total hosts:  %d\n", n.TotalHosts())
	fmt.Fprintf(w, "Usable hosts: %d\n", n.UsableHosts())
	r := n.Range()
	fmt.Fprintf(w, "Range:        %s-%s\n", r.From(), r.To())
}

func printInfo6(w io.Writer, n xsubnet.Network6) {
	fmt.Fprintf(w, "Network:      %s\n", n)
	fmt.Fprintf(w, "First:        %s\n", n.Addr())
	fmt.Fprintf(w, "Last:         %s\n", n.Last())
	fmt.Fprintf(w, "Total hosts:  %s\n", n.TotalHosts())
}

// cmdSplit 按更长前缀细分网络。
func cmdSplit(w io.Writer, args []string) error {
	if len(args) != 2 {
		return usageErrorf("split 需要 <CIDR> <新前缀长度>")
	}
	newBits, err := strconv.Atoi(args[1])
	if err != nil {
		return usageErrorf("无效的前缀长度 %q", args[1])
	}

	if n4, err := xsubnet.Parse4(args[0]); err == nil {
		subnets, err := n4.ChangeMask(newBits)
		if err != nil {
			return fmt.Errorf("细分 %s 失败: %w", n4, err)
		}
		for _, s := range subnets {
			fmt.Fprintln(w, s)
		}
		return nil
	}

	n6, err := xsubnet.Parse6(args[0])
	if err != nil {
		return fmt.Errorf("无法解析网络 %q: %w", args[0], err)
	}
	subnets, err := n6.ChangePrefix(newBits)
	if err != nil {
		return fmt.Errorf("细分 %s 失败: %w", n6, err)
	}
	for _, s := range subnets {
		fmt.Fprintln(w, s)
	}
	return nil
}

// cmdParse 按策略解析输入并报告形式。
func cmdParse(w io.Writer, args []string, policy xparse.Policy) error {
	if len(args) != 1 {
		return usageErrorf("parse 需要一个输入")
	}

	result, err := xparse.Parse(args[0], policy)
	if err != nil {
		return fmt.Errorf("解析 %q 失败: %w", args[0], err)
	}

	fmt.Fprintf(w, "Kind:      %s\n", result.Kind)
	fmt.Fprintf(w, "Version:   %s\n", result.Version)
	fmt.Fprintf(w, "Canonical: %s\n", result.Canonical)
	r := result.IPRange()
	fmt.Fprintf(w, "Range:     %s-%s\n", r.From(), r.To())
	return nil
}

// cmdClassify 对照参考范围文件对每个输入做三态判定。
// 每行输出 "<verdict>\t<input>"，命中时追加标签，降级时追加诊断。
// DNS 降级等警告经 slog 输出到 stderr。
func cmdClassify(ctx context.Context, w io.Writer, args []string, rangesPath string, timeout time.Duration) error {
	if len(args) == 0 {
		return usageErrorf("classify 需要至少一个输入")
	}

	store, err := xrefdb.NewStore(1, 0)
	if err != nil {
		return err
	}
	refs, err := store.Get(rangesPath)
	if err != nil {
		return fmt.Errorf("加载参考范围失败: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	classifier, err := xmatch.NewClassifier(refs,
		xmatch.WithTimeout(timeout),
		xmatch.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	for _, input := range args {
		out := classifier.Classify(ctx, input)
		line := fmt.Sprintf("%s\t%s", out.Verdict, out.Input)
		if out.MatchedLabel != "" {
			line += "\t" + out.MatchedLabel
		}
		if out.Diagnostic != "" {
			line += "\t(" + out.Diagnostic + ")"
		}
		if len(out.Resolved) > 0 {
			addrs := make([]string, len(out.Resolved))
			for i, a := range out.Resolved {
				addrs[i] = a.String()
			}
			line += "\t[" + strings.Join(addrs, " ") + "]"
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
