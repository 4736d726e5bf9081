// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"grouphub-go/internal/model"

	"gorm.io/gorm"
)

// BallotRepository 是投票子系统暴露给本引擎的窄接口。
// 删除组前只需要知道"哪些组仍被投票引用"，因此只提供引用组集合的查询，
// 错误信息可以据此点名阻塞删除的组。
type BallotRepository interface {
	ReferencedGroupIDs(groupIDs []string) ([]string, error)
}

type ballotRepository struct {
	db *gorm.DB
}

// NewBallotRepository 创建一个新的 BallotRepository 实例。
func NewBallotRepository(db *gorm.DB) BallotRepository {
	return &ballotRepository{db: db}
}

// ReferencedGroupIDs 返回给定组集合中仍被投票记录引用的组 ID（去重）。
func (r *ballotRepository) ReferencedGroupIDs(groupIDs []string) ([]string, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.Model(&model.Ballot{}).
		Distinct("group_id").
		Where("group_id IN ?", groupIDs).
		Pluck("group_id", &ids).Error
	return ids, err
}
