package configwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"eduverse_backend/internal/config"
	"eduverse_backend/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader 接收重新加载后的完整配置
type Reloader func(cfg *config.Config)

const debounce = time.Second

// Watch 监听配置目录中 config.yaml 的变更，防抖后重新加载并回调，直到 ctx 结束
func Watch(ctx context.Context, configDir string, reload Reloader) error {
	return watch(ctx, configDir, debounce, reload)
}

func watch(ctx context.Context, configDir string, wait time.Duration, reload Reloader) error {
	absDir, err := filepath.Abs(configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	// 监听目录而不是文件，编辑器替换文件时也能收到事件
	if err := watcher.Add(absDir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", absDir, err)
	}
	target := filepath.Join(absDir, "config.yaml")

	go func() {
		defer watcher.Close()

		timer := time.NewTimer(wait)
		if !timer.Stop() {
			<-timer.C
		}

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(wait)
			case <-timer.C:
				cfg, err := config.LoadConfig(absDir)
				if err != nil {
					logger.Log.Error("Failed to reload config", zap.Error(err))
					continue
				}
				logger.Log.Info("Config reloaded", zap.String("path", target))
				reload(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Log.Error("Config watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
