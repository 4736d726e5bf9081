// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"grouphub-go/internal/model"

	"gorm.io/gorm"
)

// GroupRepository 接口定义了组（树节点）的数据操作方法。
type GroupRepository interface {
	Create(group *model.Group) error
	FindByID(id string) (*model.Group, error)
	FindByName(name string) (*model.Group, error)
	FindRoot() (*model.Group, error)
	FindAll() ([]model.Group, error)
	FindBatchByIDs(ids []string) ([]model.Group, error)
	Update(group *model.Group) error
	// DeleteBatchWithOfficers 在同一个事务中删除 ids 对应的官员绑定与组记录。
	// 任一删除失败时整体回滚，保证批量删除的原子性。
	DeleteBatchWithOfficers(ids []string) (int64, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository 创建一个新的 GroupRepository 实例。
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// Create 在数据库中插入一个新的组记录。
func (r *groupRepository) Create(group *model.Group) error {
	return r.db.Create(group).Error
}

// FindByID 根据给定的 id 从数据库中查找一个组。
func (r *groupRepository) FindByID(id string) (*model.Group, error) {
	var group model.Group
	err := r.db.Where("id = ?", id).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// FindByName 根据组名查找一个组。
func (r *groupRepository) FindByName(name string) (*model.Group, error) {
	var group model.Group
	err := r.db.Where("name = ?", name).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// FindRoot 查找唯一的根组（parent_id 为 NULL 的组）。
func (r *groupRepository) FindRoot() (*model.Group, error) {
	var group model.Group
	err := r.db.Where("parent_id IS NULL").First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// FindAll 从数据库中检索所有的组记录。
// 组织树是委员会量级（几十到几百个节点），一次性整表读取用于内存中的树遍历。
func (r *groupRepository) FindAll() ([]model.Group, error) {
	var groups []model.Group
	err := r.db.Find(&groups).Error
	return groups, err
}

// FindBatchByIDs finds groups by a slice of IDs.
func (r *groupRepository) FindBatchByIDs(ids []string) ([]model.Group, error) {
	var groups []model.Group
	if len(ids) == 0 {
		return groups, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&groups).Error
	return groups, err
}

// Update 更新数据库中一个已存在的组记录。
func (r *groupRepository) Update(group *model.Group) error {
	return r.db.Save(group).Error
}

// DeleteBatchWithOfficers 在一个事务中删除官员绑定和组本身。
func (r *groupRepository) DeleteBatchWithOfficers(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id IN ?", ids).Delete(&model.Officer{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&model.Group{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}
