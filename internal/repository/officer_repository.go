// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"grouphub-go/internal/model"

	"gorm.io/gorm"
)

// OfficerRepository 接口定义了官员职位绑定的数据操作方法。
type OfficerRepository interface {
	Create(officer *model.Officer) error
	BatchCreate(officers []*model.Officer) error
	FindByID(id string) (*model.Officer, error)
	FindBatchByIDs(ids []string) ([]model.Officer, error)
	FindByGroupID(groupID string) ([]model.Officer, error)
	FindByGroupIDs(groupIDs []string) ([]model.Officer, error)
	FindBySAPIN(sapin uint64) ([]model.Officer, error)
	Update(officer *model.Officer) error
	// DeleteScoped 删除 id 在 ids 内且所属组位于 workingGroupID 子树内的官员绑定。
	// 子树在删除事务内部重新推导，范围判定与删除看到同一个快照，
	// 并发的组移挂不会让删除越出授权范围。
	DeleteScoped(ids []string, workingGroupID string) (int64, error)
}

type officerRepository struct {
	db *gorm.DB
}

// NewOfficerRepository 创建一个新的 OfficerRepository 实例。
func NewOfficerRepository(db *gorm.DB) OfficerRepository {
	return &officerRepository{db: db}
}

// Create 在数据库中插入一条新的官员绑定记录。
func (r *officerRepository) Create(officer *model.Officer) error {
	return r.db.Create(officer).Error
}

// BatchCreate 批量创建官员绑定记录。
func (r *officerRepository) BatchCreate(officers []*model.Officer) error {
	if len(officers) == 0 {
		return nil
	}
	return r.db.CreateInBatches(officers, 100).Error
}

// FindByID 根据给定的 id 查找一条官员绑定。
func (r *officerRepository) FindByID(id string) (*model.Officer, error) {
	var officer model.Officer
	err := r.db.Where("id = ?", id).First(&officer).Error
	if err != nil {
		return nil, err
	}
	return &officer, nil
}

// FindBatchByIDs finds officers by a slice of IDs.
func (r *officerRepository) FindBatchByIDs(ids []string) ([]model.Officer, error) {
	var officers []model.Officer
	if len(ids) == 0 {
		return officers, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&officers).Error
	return officers, err
}

// FindByGroupID 查找直接绑定在指定组上的全部官员。
func (r *officerRepository) FindByGroupID(groupID string) ([]model.Officer, error) {
	var officers []model.Officer
	err := r.db.Where("group_id = ?", groupID).Find(&officers).Error
	return officers, err
}

// FindByGroupIDs 批量查找绑定在一组组上的全部官员。
func (r *officerRepository) FindByGroupIDs(groupIDs []string) ([]model.Officer, error) {
	var officers []model.Officer
	if len(groupIDs) == 0 {
		return officers, nil
	}
	err := r.db.Where("group_id IN ?", groupIDs).Find(&officers).Error
	return officers, err
}

// FindBySAPIN 查找某成员持有的全部官员绑定。
func (r *officerRepository) FindBySAPIN(sapin uint64) ([]model.Officer, error) {
	var officers []model.Officer
	err := r.db.Where("sapin = ?", sapin).Find(&officers).Error
	return officers, err
}

// Update 更新数据库中一条已存在的官员绑定记录。
func (r *officerRepository) Update(officer *model.Officer) error {
	return r.db.Save(officer).Error
}

// DeleteScoped 在一个事务内重新推导授权子树，并删除范围内的官员绑定。
func (r *officerRepository) DeleteScoped(ids []string, workingGroupID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		groupIDs, err := subtreeGroupIDs(tx, workingGroupID)
		if err != nil {
			return err
		}
		res := tx.Where("id IN ? AND group_id IN ?", ids, groupIDs).Delete(&model.Officer{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

// subtreeGroupIDs 在给定事务内计算 workingGroupID 及其全部后代的 ID 集合。
// 与业务层的后代遍历同样以不动点方式收敛；workingGroupID 不存在时返回
// gorm.ErrRecordNotFound，由调用方映射为业务错误。
func subtreeGroupIDs(tx *gorm.DB, workingGroupID string) ([]string, error) {
	var groups []model.Group
	if err := tx.Select("id", "parent_id").Find(&groups).Error; err != nil {
		return nil, err
	}

	found := false
	for _, g := range groups {
		if g.ID == workingGroupID {
			found = true
			break
		}
	}
	if !found {
		return nil, gorm.ErrRecordNotFound
	}

	set := map[string]struct{}{workingGroupID: {}}
	for {
		added := false
		for _, g := range groups {
			if g.ParentID == nil {
				continue
			}
			if _, ok := set[*g.ParentID]; !ok {
				continue
			}
			if _, ok := set[g.ID]; !ok {
				set[g.ID] = struct{}{}
				added = true
			}
		}
		if !added {
			break
		}
	}

	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out, nil
}
