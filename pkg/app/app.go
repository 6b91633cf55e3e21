// pkg/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"groot/pkg/logging"
	"groot/pkg/meta"
	"groot/pkg/repo"
	"groot/pkg/storage"
	"groot/pkg/storage/badgerdb"
	"groot/pkg/storage/cache"
	"groot/pkg/storage/disk"
	"groot/pkg/storage/s3"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// App 是整个应用程序的依赖容器 (Dependency Container)
// 它持有所有“单例”服务
type App struct {
	Repo   *repo.Repository
	Store  storage.Store
	Meta   *meta.Repository // 未配置 meta.driver 时为 nil
	Logger *zap.Logger

	RepoPath string // 工作区根目录

	closers []io.Closer
}

// NewApp 是工厂函数，负责组装这一台机器
// 它遵循 Viper 的配置，但不知道具体的 CLI 命令
func NewApp(ctx context.Context) (*App, error) {
	// 0. 日志
	logger, err := logging.NewLogger(viper.GetString("log.level"))
	if err != nil {
		return nil, err
	}
	a := &App{Logger: logger}

	// 1. 获取仓库根路径 (Single Source of Truth)
	root, err := filepath.Abs(viper.GetString("repo.path"))
	if err != nil {
		return nil, fmt.Errorf("invalid repo path: %w", err)
	}
	a.RepoPath = root
	if err := repo.Exists(root); err != nil {
		return nil, err
	}
	dotDir := repo.Layout(root)

	// 2. 初始化存储层 (Dependency Injection)
	store, err := initStore(ctx, dotDir, logger)
	if err != nil {
		return nil, err
	}
	a.track(store)

	// 3. 可选：Redis 存在性缓存
	if url := viper.GetString("cache.redis_url"); url != "" {
		cached, err := cache.NewCachedStore(store, cache.Config{
			RedisURL: url,
			TTL:      viper.GetDuration("cache.ttl"),
		}, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to init cache: %w", err)
		}
		a.track(cached)
		store = cached
	}
	a.Store = store

	// 4. 可选：元数据索引
	opts := repo.Options{
		Store:     store,
		CacheSize: viper.GetInt("cache.lru_size"),
		Logger:    logger,
	}
	metaDB, err := initMeta(ctx, dotDir)
	if err != nil {
		a.Close()
		return nil, err
	}
	if metaDB != nil {
		a.closers = append(a.closers, metaDB)
		a.Meta = meta.NewRepository(metaDB)
		opts.Indexer = a.Meta
	}

	// 5. 打开仓库 (顺带完成被中断的提交)
	r, err := repo.Open(ctx, root, opts)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Repo = r

	logger.Debug("app ready",
		zap.String("repo", root),
		zap.String("storage", viper.GetString("storage.type")),
		zap.Bool("meta", a.Meta != nil),
	)
	return a, nil
}

// Close 释放所有持有的连接，按打开的逆序关闭
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}

func (a *App) track(v any) {
	if c, ok := v.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
}

// initStore 根据 storage.type 选择后端
func initStore(ctx context.Context, dotDir string, logger *zap.Logger) (storage.Store, error) {
	storeType := viper.GetString("storage.type")

	switch storeType {
	case "", "disk":
		store, err := disk.NewAdapter(filepath.Join(dotDir, "objects"))
		if err != nil {
			return nil, fmt.Errorf("failed to init disk storage: %w", err)
		}
		return store, nil

	case "badger":
		store, err := badgerdb.NewAdapter(filepath.Join(dotDir, "badger"), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to init badger storage: %w", err)
		}
		return store, nil

	case "s3":
		store, err := s3.NewAdapter(ctx, s3.Config{
			Endpoint:        viper.GetString("storage.s3.endpoint"),
			Region:          viper.GetString("storage.s3.region"),
			Bucket:          viper.GetString("storage.s3.bucket"),
			AccessKeyID:     viper.GetString("storage.s3.access_key"),
			SecretAccessKey: viper.GetString("storage.s3.secret_key"),
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to init s3 storage: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storeType)
	}
}

// initMeta 打开元数据库；meta.driver 为空时返回 (nil, nil)
func initMeta(ctx context.Context, dotDir string) (*meta.DB, error) {
	driver := viper.GetString("meta.driver")
	if driver == "" {
		return nil, nil
	}

	dsn := viper.GetString("meta.dsn")
	if dsn == "" && driver == "sqlite" {
		dsn = filepath.Join(dotDir, "meta.db")
	}

	db, err := meta.NewDB(ctx, meta.Config{
		Driver: driver,
		DSN:    dsn,
		Debug:  viper.GetString("log.level") == "debug",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init meta db: %w", err)
	}
	return db, nil
}
