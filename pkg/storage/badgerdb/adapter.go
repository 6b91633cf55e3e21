package badgerdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"groot/pkg/core"
	"groot/pkg/storage"
	"groot/pkg/types"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const keyPrefix = "obj:"

// Adapter 把对象存进嵌入式 KV (Badger)
// 适合对象数量很多、不希望在一个目录里堆满小文件的场景
type Adapter struct {
	db *badger.DB
}

// NewAdapter 打开 (或创建) dir 下的 Badger 数据库
func NewAdapter(dir string, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := badger.DefaultOptions(dir).WithLogger(zapLogger{logger.Sugar()})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &Adapter{db: db}, nil
}

func (s *Adapter) makeKey(hash types.Hash) []byte {
	return []byte(keyPrefix + string(hash))
}

// Put 在同一个事务里完成存在性检查和写入
func (s *Adapter) Put(ctx context.Context, obj core.Object) error {
	if !obj.ID().IsValid() {
		return fmt.Errorf("refusing to store object with invalid hash %q", obj.ID())
	}
	key := s.makeKey(obj.ID())
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil // 已存在，幂等
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, obj.Bytes())
	})
}

func (s *Adapter) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.makeKey(hash))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger get failed: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Adapter) Has(ctx context.Context, hash types.Hash) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(s.makeKey(hash))
		return err
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return false, err
}

// ExpandHash 用前缀迭代器扩展短哈希，最多只看两个 Key
func (s *Adapter) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	input := strings.ToLower(short.String())
	if len(input) < types.MinPrefixLen {
		return "", storage.ErrPrefixTooShort
	}
	prefix := []byte(keyPrefix + input)

	var matches []types.Hash
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(matches) < 2; it.Next() {
			key := string(it.Item().KeyCopy(nil))
			matches = append(matches, types.Hash(strings.TrimPrefix(key, keyPrefix)))
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("badger scan failed: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s", storage.ErrAmbiguousHash, input)
	}
}

// Close 释放数据库
func (s *Adapter) Close() error {
	return s.db.Close()
}

// zapLogger 把 Badger 的日志接口桥接到 zap
type zapLogger struct {
	*zap.SugaredLogger
}

func (l zapLogger) Warningf(format string, args ...any) {
	l.Warnf(format, args...)
}
