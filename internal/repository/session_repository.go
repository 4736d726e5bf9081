// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"grouphub-go/internal/model"

	"gorm.io/gorm"
)

// SessionRepository 是会议子系统暴露给本引擎的窄接口，契约与 BallotRepository 相同。
type SessionRepository interface {
	ReferencedGroupIDs(groupIDs []string) ([]string, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建一个新的 SessionRepository 实例。
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// ReferencedGroupIDs 返回给定组集合中仍被会议记录引用的组 ID（去重）。
func (r *sessionRepository) ReferencedGroupIDs(groupIDs []string) ([]string, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.Model(&model.Session{}).
		Distinct("group_id").
		Where("group_id IN ?", groupIDs).
		Pluck("group_id", &ids).Error
	return ids, err
}
