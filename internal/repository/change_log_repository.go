// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"grouphub-go/internal/model"

	"gorm.io/gorm"
)

// ChangeLogRepository 定义了对 group_change_log 表的数据操作接口。
type ChangeLogRepository interface {
	Create(entry *model.GroupChangeLog) error
	FindByEventID(eventID string) (*model.GroupChangeLog, error)
	FindRecent(limit int) ([]model.GroupChangeLog, error)
}

type changeLogRepository struct {
	db *gorm.DB
}

// NewChangeLogRepository 创建一个新的 ChangeLogRepository 实例。
func NewChangeLogRepository(db *gorm.DB) ChangeLogRepository {
	return &changeLogRepository{db: db}
}

// Create 追加一条审计记录。
func (r *changeLogRepository) Create(entry *model.GroupChangeLog) error {
	return r.db.Create(entry).Error
}

// FindByEventID 按事件 UUID 查找审计记录，用于消费端幂等判断。
func (r *changeLogRepository) FindByEventID(eventID string) (*model.GroupChangeLog, error) {
	var entry model.GroupChangeLog
	err := r.db.Where("event_id = ?", eventID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindRecent 按入库时间倒序返回最近的 limit 条审计记录。
func (r *changeLogRepository) FindRecent(limit int) ([]model.GroupChangeLog, error) {
	var entries []model.GroupChangeLog
	err := r.db.Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
