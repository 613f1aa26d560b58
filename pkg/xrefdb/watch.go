package xrefdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchCallback 文件变更回调函数。
// path 是发生变更并已被失效的文件路径。
type WatchCallback func(path string)

// WatchOption 监视器配置选项。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
}

func defaultWatchOptions() *watchOptions {
	return &watchOptions{
		debounce: 100 * time.Millisecond,
	}
}

// WithDebounce 设置防抖时间。
// 在指定时间内同一文件的多次变更只触发一次失效。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// Watcher 监控参考范围文件的变更并自动使对应的缓存记录失效。
// 下一次 [Store.Get] 会重新从磁盘加载。
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration
	paths    map[string]struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	running  bool
	timers   map[string]*time.Timer
}

// Watch 创建监视器，监控 paths 中每个文件所在的目录。
//
// 监视目录而非文件本身：编辑器保存文件时可能先删除再创建，
// 直接监视文件会丢失事件。callback 可以为 nil。
// 返回的 Watcher 需要调用 StartAsync 开始监视，Stop 停止。
func Watch(store *Store, paths []string, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if store == nil {
		return nil, errors.New("xrefdb: nil store")
	}
	if len(paths) == 0 {
		return nil, ErrEmptyPath
	}

	options := defaultWatchOptions()
	for _, opt := range opts {
		opt(options)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xrefdb: failed to create watcher: %w", err)
	}

	watched := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		if p == "" {
			closeErr := fsWatcher.Close()
			return nil, errors.Join(ErrEmptyPath, closeErr)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			closeErr := fsWatcher.Close()
			return nil, errors.Join(fmt.Errorf("xrefdb: resolve path %s: %w", p, err), closeErr)
		}
		watched[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsWatcher.Add(dir); err != nil {
			closeErr := fsWatcher.Close()
			return nil, errors.Join(
				fmt.Errorf("xrefdb: failed to watch directory %s: %w", dir, err),
				closeErr,
			)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		store:    store,
		watcher:  fsWatcher,
		callback: callback,
		debounce: options.debounce,
		paths:    watched,
		ctx:      ctx,
		cancel:   cancel,
		timers:   make(map[string]*time.Timer),
	}, nil
}

// StartAsync 异步启动监视，在后台 goroutine 中运行，立即返回。
func (w *Watcher) StartAsync() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run()
}

// Stop 停止监视。幂等，可安全多次调用。
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}

	w.cancel()
	w.running = false
	return w.watcher.Close()
}

// run 运行监视循环。
func (w *Watcher) run() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// handleEvent 处理文件系统事件。
// 只关心注册路径上可能表示内容更新的事件：Write（直接修改）、
// Create（部分编辑器新建）、Rename（原子写入模式）。
func (w *Watcher) handleEvent(event fsnotify.Event) {
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if _, ok := w.paths[abs]; !ok {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	// 防抖：按路径重置计时器
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[abs]; ok {
		timer.Stop()
	}

	w.timers[abs] = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		w.store.Invalidate(abs)
		if w.callback != nil {
			w.callback(abs)
		}
	})
}
