// Package xrefdb 提供参考范围文件的加载与缓存。
//
// 参考范围以 YAML 或 JSON 文件描述，每条携带标签与三种互斥写法
// 之一（CIDR、闭区间两端、单个地址）：
//
//	ranges:
//	  - label: corp-10
//	    cidr: 10.0.0.0/8
//	  - label: dmz
//	    start: 192.0.2.10
//	    end: 192.0.2.99
//	  - label: bastion
//	    addr: 203.0.113.7
//
// [Load] 一次性读取并校验；[Store] 在此之上提供调用方持有的
// LRU 缓存（键为绝对路径），命中要求文件修改时间未变且装入后
// 未超过显式 TTL，时钟可注入。[Watch] 可选地监控文件变更并
// 自动失效对应记录。
//
// 典型用法：
//
//	store, _ := xrefdb.NewStore(16, time.Minute)
//	refs, err := store.Get("/etc/ipkit/ranges.yaml")
//	if err != nil { ... }
//	c, _ := xmatch.NewClassifier(refs)
package xrefdb
