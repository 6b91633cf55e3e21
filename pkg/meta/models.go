package meta

import (
	"time"

	"gorm.io/datatypes"
)

// CommitModel 是 core.Commit 在关系型数据库中的投影 (索引)
// 对象库才是唯一的事实来源，这张表随时可以从历史重建
type CommitModel struct {
	// Hash 是主键
	Hash string `gorm:"primaryKey;type:char(64)"`

	// Parent 为空表示根提交
	Parent string `gorm:"index;type:varchar(64)"`

	Message string    `gorm:"type:text"`
	Date    time.Time `gorm:"index"`

	// Files: 有序的 [{"path":..,"hash":..}] 列表
	Files     datatypes.JSON
	FileCount int

	CreatedAt time.Time
}

// TableName 强制指定表名
func (CommitModel) TableName() string {
	return "commits"
}

// FileRef 是 Files 列中的一条记录
type FileRef struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}
