package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/ipkit/pkg/xparse"
)

func TestCmdInfo_V4(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cmdInfo(&buf, []string{"192.168.1.0/24"}))

	out := buf.String()
	assert.Contains(t, out, "Network:      192.168.1.0/24")
	assert.Contains(t, out, "Netmask:      255.255.255.0 (/24)")
	assert.Contains(t, out, "Broadcast:    192.168.1.255")
	assert.Contains(t, out, "First usable: 192.168.1.1")
	assert.Contains(t, out, "Last usable:  192.168.1.254")
	assert.Contains(t, out, "Total hosts:  256")
	assert.Contains(t, out, "Usable hosts: 254")
}

func TestCmdInfo_DottedMaskForm(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cmdInfo(&buf, []string{"192.168.1.57", "255.255.255.0"}))
	// 未对齐的地址先归一化到网络地址
	assert.Contains(t, buf.String(), "Network:      192.168.1.0/24")
}

func TestCmdInfo_Slash32(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cmdInfo(&buf, []string{"10.0.0.1/32"}))

	out := buf.String()
	assert.Contains(t, out, "Usable:       none")
	assert.Contains(t, out, "Total hosts:  1")
}

func TestCmdInfo_V6(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cmdInfo(&buf, []string{"2001:db8::/64"}))

	out := buf.String()
	assert.Contains(t, out, "Network:      2001:db8::/64")
	assert.Contains(t, out, "Last:         2001:db8::ffff:ffff:ffff:ffff")
	assert.Contains(t, out, "Total hosts:  18446744073709551616")
}

func TestCmdInfo_Errors(t *testing.T) {
	var buf bytes.Buffer
	err := cmdInfo(&buf, nil)
	var usageErr *usageError
	assert.ErrorAs(t, err, &usageErr)

	assert.Error(t, cmdInfo(&buf, []string{"not-a-network"}))
}

func TestCmdSplit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cmdSplit(&buf, []string{"10.0.0.0/22", "24"}))

	out := buf.String()
	assert.Equal(t, "10.0.0.0/24\n10.0.1.0/24\n10.0.2.0/24\n10.0.3.0/24\n", out)
}

func TestCmdSplit_V6(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cmdSplit(&buf, []string{"2001:db8::/32", "34"}))

	out := buf.String()
	assert.Equal(t, "2001:db8::/34\n2001:db8:4000::/34\n2001:db8:8000::/34\n2001:db8:c000::/34\n", out)
}

func TestCmdSplit_Errors(t *testing.T) {
	var buf bytes.Buffer
	var usageErr *usageError
	assert.ErrorAs(t, cmdSplit(&buf, []string{"10.0.0.0/24"}), &usageErr)
	assert.ErrorAs(t, cmdSplit(&buf, []string{"10.0.0.0/24", "abc"}), &usageErr)
	// 变宽属于合法操作，返回父网络自身不报错
	require.NoError(t, cmdSplit(&buf, []string{"10.0.0.0/24", "16"}))
	assert.Error(t, cmdSplit(&buf, []string{"10.0.0.0/24", "99"}))
}

func TestCmdParse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cmdParse(&buf, []string{"192.168.1.0/24"}, xparse.Policy{}))

	out := buf.String()
	assert.Contains(t, out, "Kind:      network")
	assert.Contains(t, out, "Version:   IPv4")
	assert.Contains(t, out, "Canonical: 192.168.1.0/24")
	assert.Contains(t, out, "Range:     192.168.1.0-192.168.1.255")

	err := cmdParse(&buf, []string{"10.0.0.1"}, xparse.Policy{MandatoryMask: true})
	assert.ErrorIs(t, err, xparse.ErrMaskRequired)
}

func TestCmdClassify(t *testing.T) {
	dir := t.TempDir()
	rangesPath := filepath.Join(dir, "ranges.yaml")
	require.NoError(t, os.WriteFile(rangesPath, []byte(`
ranges:
  - label: corp-10
    cidr: 10.0.0.0/8
`), 0o600))

	var buf bytes.Buffer
	err := cmdClassify(context.Background(), &buf, []string{"10.1.2.3", "9.255.255.0/23", "192.0.2.1"}, rangesPath, time.Second)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "yes\t10.1.2.3\tcorp-10")
	assert.Contains(t, out, "partial\t9.255.255.0/23")
	assert.Contains(t, out, "no\t192.0.2.1")
}

func TestCmdClassify_Errors(t *testing.T) {
	var buf bytes.Buffer
	var usageErr *usageError
	assert.ErrorAs(t, cmdClassify(context.Background(), &buf, nil, "x.yaml", time.Second), &usageErr)

	err := cmdClassify(context.Background(), &buf, []string{"10.0.0.1"}, filepath.Join(t.TempDir(), "absent.yaml"), time.Second)
	assert.Error(t, err)
}

func TestRun_ExitCodes(t *testing.T) {
	// 参数错误 → 2
	assert.Equal(t, 2, run([]string{"ipcalc", "info"}))
	assert.Equal(t, 2, run([]string{"ipcalc", "split", "10.0.0.0/24"}))

	// 执行失败 → 1
	assert.Equal(t, 1, run([]string{"ipcalc", "info", "not-a-network"}))

	// 成功 → 0
	assert.Equal(t, 0, run([]string{"ipcalc", "info", "10.0.0.0/8"}))
	assert.Equal(t, 0, run([]string{"ipcalc", "parse", "10.0.0.1"}))
}
