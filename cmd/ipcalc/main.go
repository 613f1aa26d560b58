// ipcalc 是 IP 地址与网络算术的命令行工具。
//
// 用法:
//
//	ipcalc <命令> [命令参数]
//
// 命令:
//
//	info <地址/前缀 | 地址 掩码>   显示网络信息（网络地址、广播、可用区间、主机数）
//	split <CIDR> <新前缀长度>      按更长前缀细分网络
//	parse <输入>                   按策略解析输入并报告形式
//	classify <输入...>             对照参考范围文件做三态归属判定
//	help                           显示帮助信息
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败（输入无效、文件不可读等）
//	2: 参数错误（缺少必需参数、未知命令等）
//
// 示例:
//
//	ipcalc info 192.168.1.0/24                    # 前缀形式
//	ipcalc info 192.168.1.0 255.255.255.0         # 点分掩码形式
//	ipcalc info 2001:db8::/64                     # IPv6
//	ipcalc split 10.0.0.0/20 24                   # 细分为 16 个 /24
//	ipcalc parse --mandatory-mask 10.0.0.1        # 策略校验
//	ipcalc classify --ranges ranges.yaml 10.1.2.3 # 三态判定
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:           "ipcalc",
		Usage:          "IP 地址与网络算术工具",
		Version:        fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 退出码由 run() 统一处理，禁止 urfave/cli 直接调用 os.Exit。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run(args []string) int {
	app := createApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandler(cancel)

	if err := app.Run(ctx, args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		// CLI 框架产生的参数错误（未知 flag、未知命令）同样映射到退出码 2
		var exitCoder cli.ExitCoder
		if errors.As(err, &exitCoder) {
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}

// setupSignalHandler 设置信号处理。
// 第一次信号优雅取消，第二次信号强制退出（退出码 130 = 128 + SIGINT）。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130)
	}()
}
