package xrefdb

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/ipkit/pkg/xmatch"
	"github.com/omeyang/ipkit/pkg/xparse"
)

// Format 定义参考范围文件格式。
type Format string

// 支持的文件格式。
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Entry 是文件中的一条参考范围定义。
// 三种互斥写法，必须恰好使用一种：
//   - Cidr: CIDR 块（如 10.0.0.0/8）
//   - Start + End: 闭区间的两端
//   - Addr: 单个地址
type Entry struct {
	Label string `koanf:"label"`
	Cidr  string `koanf:"cidr"`
	Start string `koanf:"start"`
	End   string `koanf:"end"`
	Addr  string `koanf:"addr"`
}

// rangesFile 是文件的顶层结构。
type rangesFile struct {
	Ranges []Entry `koanf:"ranges"`
}

// Load 从文件加载参考范围集合。
// 根据文件扩展名自动检测格式（.yaml/.yml 或 .json）。
// 任何一条定义无效都整体失败，返回 [ErrInvalidEntry]。
func Load(path string) ([]xmatch.RefRange, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	return LoadBytes(data, format)
}

// LoadBytes 从字节数据加载参考范围集合。
// 需要显式指定格式，适用于嵌入数据或网络下发的场景。
func LoadBytes(data []byte, format Format) ([]xmatch.RefRange, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	var file rangesFile
	if err := k.Unmarshal("", &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	refs := make([]xmatch.RefRange, 0, len(file.Ranges))
	for i, entry := range file.Ranges {
		ref, err := entry.toRefRange()
		if err != nil {
			return nil, fmt.Errorf("entry [%d] (label %q): %w", i, entry.Label, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// toRefRange 将文件条目转换为校验过的参考范围。
func (e Entry) toRefRange() (xmatch.RefRange, error) {
	if e.Label == "" {
		return xmatch.RefRange{}, fmt.Errorf("%w: missing label", ErrInvalidEntry)
	}

	switch {
	case e.Cidr != "":
		if e.Start != "" || e.End != "" || e.Addr != "" {
			return xmatch.RefRange{}, fmt.Errorf("%w: cidr is exclusive with start/end/addr", ErrInvalidEntry)
		}
		result, err := xparse.Parse(e.Cidr, xparse.Policy{MandatoryMask: true})
		if err != nil {
			return xmatch.RefRange{}, fmt.Errorf("%w: %w", ErrInvalidEntry, err)
		}
		r := result.IPRange()
		return xmatch.NewRefRange(e.Label, r.From(), r.To())

	case e.Start != "" || e.End != "":
		if e.Addr != "" {
			return xmatch.RefRange{}, fmt.Errorf("%w: start/end is exclusive with addr", ErrInvalidEntry)
		}
		if e.Start == "" || e.End == "" {
			return xmatch.RefRange{}, fmt.Errorf("%w: start and end must both be set", ErrInvalidEntry)
		}
		start, err := netip.ParseAddr(e.Start)
		if err != nil {
			return xmatch.RefRange{}, fmt.Errorf("%w: start %q: %w", ErrInvalidEntry, e.Start, err)
		}
		end, err := netip.ParseAddr(e.End)
		if err != nil {
			return xmatch.RefRange{}, fmt.Errorf("%w: end %q: %w", ErrInvalidEntry, e.End, err)
		}
		return xmatch.NewRefRange(e.Label, start, end)

	case e.Addr != "":
		addr, err := netip.ParseAddr(e.Addr)
		if err != nil {
			return xmatch.RefRange{}, fmt.Errorf("%w: addr %q: %w", ErrInvalidEntry, e.Addr, err)
		}
		return xmatch.NewRefRange(e.Label, addr, addr)

	default:
		return xmatch.RefRange{}, fmt.Errorf("%w: one of cidr, start/end or addr is required", ErrInvalidEntry)
	}
}

// detectFormat 根据文件扩展名检测文件格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}
