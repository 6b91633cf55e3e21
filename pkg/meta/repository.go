package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"groot/pkg/core"
	"groot/pkg/types"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCommitNotFound = errors.New("commit not found in metadata")

// Repository 封装所有对 SQL 数据库的操作
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// IndexCommit 将 core.Commit 对象“投影”到 SQL 数据库中
// 幂等：同一个 Hash 写多次只保留一条
func (r *Repository) IndexCommit(ctx context.Context, c *core.Commit) error {
	// 1. 文件列表转 JSON
	files := make([]FileRef, len(c.Files))
	for i, f := range c.Files {
		files[i] = FileRef{Path: f.Path, Hash: f.Hash.Hash.String()}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("failed to marshal files: %w", err)
	}

	// 2. 构造模型
	model := CommitModel{
		Hash:      c.ID().String(),
		Parent:    c.ParentHash().String(),
		Message:   c.Message,
		Date:      c.Time(),
		Files:     datatypes.JSON(filesJSON),
		FileCount: len(files),
	}

	// 3. 写入数据库 (冲突时什么都不做)
	err = r.db.GetConn().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hash"}},
			DoNothing: true,
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to index commit: %w", err)
	}
	return nil
}

func (r *Repository) GetCommit(ctx context.Context, hash types.Hash) (*CommitModel, error) {
	var commit CommitModel
	err := r.db.GetConn().WithContext(ctx).
		Where("hash = ?", hash.String()).
		First(&commit).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &commit, nil
}

// SearchMessages 按提交信息模糊搜索，最新的在前
func (r *Repository) SearchMessages(ctx context.Context, needle string, limit int) ([]CommitModel, error) {
	var commits []CommitModel
	q := r.db.GetConn().WithContext(ctx).Order("date DESC")
	if needle != "" {
		q = q.Where("message LIKE ? ESCAPE '\\'", "%"+escapeLike(needle)+"%")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&commits).Error
	return commits, err
}

// Count 已索引的提交数量
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetConn().WithContext(ctx).Model(&CommitModel{}).Count(&n).Error
	return n, err
}

func escapeLike(s string) string {
	return strings.NewReplacer("%", `\%`, "_", `\_`).Replace(s)
}
