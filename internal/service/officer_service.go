// Package service 包含了应用的业务逻辑层。
package service

import (
	"errors"
	"fmt"

	"grouphub-go/internal/model"
	"grouphub-go/internal/repository"
	"grouphub-go/pkg/tasks"

	"github.com/google/uuid"
)

// OfficerQuery 定义了官员列表查询的过滤条件，三种形式互斥，按声明顺序取第一个非空者：
// IDs 按显式 ID 集合过滤；GroupID 取恰好绑定在该组上的官员；
// ParentGroupID 取该组、其直接子组与孙组（两跳）上的官员。
//
// ParentGroupID 沿用历史上的两跳匹配而不是完整子树，与 DescendantIDs 存在
// 已知的不对称，保留现状以避免悄悄改变语义。
type OfficerQuery struct {
	IDs           []string
	GroupID       string
	ParentGroupID string
}

// OfficerChanges 是官员绑定的部分字段更新，nil 字段表示不变更。
type OfficerChanges struct {
	GroupID  *string `json:"groupId"`
	SAPIN    *uint64 `json:"sapin"`
	Position *string `json:"position"`
}

// OfficerUpdate 将一次部分更新绑定到目标官员记录 ID。
type OfficerUpdate struct {
	ID      string         `json:"id"`
	Changes OfficerChanges `json:"changes"`
}

// OfficerService 接口定义了官员职位绑定的全部业务操作。
// 所有写操作都被约束在调用方授权的工作组子树之内。
type OfficerService interface {
	List(query *OfficerQuery) ([]model.Officer, error)
	Add(user *UserContext, workingGroupID string, officers []model.Officer) ([]model.Officer, error)
	Update(user *UserContext, workingGroupID string, updates []OfficerUpdate) ([]model.Officer, error)
	Remove(user *UserContext, workingGroupID string, ids []string) (int64, error)
}

// officerService 是 OfficerService 接口的实现。
type officerService struct {
	officerRepo repository.OfficerRepository
	groupRepo   repository.GroupRepository
	tree        TreeQuery
	publisher   ChangePublisher
}

// NewOfficerService 创建一个新的 OfficerService 实例。
func NewOfficerService(
	officerRepo repository.OfficerRepository,
	groupRepo repository.GroupRepository,
	tree TreeQuery,
	publisher ChangePublisher,
) OfficerService {
	return &officerService{
		officerRepo: officerRepo,
		groupRepo:   groupRepo,
		tree:        tree,
		publisher:   publisher,
	}
}

// List 按查询条件返回官员绑定列表。
func (s *officerService) List(query *OfficerQuery) ([]model.Officer, error) {
	if query == nil {
		return nil, fmt.Errorf("%w: 缺少查询条件", ErrInvalid)
	}

	switch {
	case len(query.IDs) > 0:
		return s.officerRepo.FindBatchByIDs(query.IDs)
	case query.GroupID != "":
		if _, err := s.groupRepo.FindByID(query.GroupID); err != nil {
			if IsRecordNotFound(err) {
				return nil, fmt.Errorf("%w: 组 %s", ErrNotFound, query.GroupID)
			}
			return nil, err
		}
		return s.officerRepo.FindByGroupID(query.GroupID)
	case query.ParentGroupID != "":
		groupIDs, err := s.twoHopGroupIDs(query.ParentGroupID)
		if err != nil {
			return nil, err
		}
		return s.officerRepo.FindByGroupIDs(groupIDs)
	}
	return nil, fmt.Errorf("%w: 缺少查询条件", ErrInvalid)
}

// twoHopGroupIDs 返回组本身、直接子组与孙组的 ID 集合（历史上的两跳匹配）。
func (s *officerService) twoHopGroupIDs(groupID string) ([]string, error) {
	all, err := s.groupRepo.FindAll()
	if err != nil {
		return nil, err
	}
	found := false
	for _, g := range all {
		if g.ID == groupID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: 组 %s", ErrNotFound, groupID)
	}

	ids := []string{groupID}
	children := make(map[string]struct{})
	for _, g := range all {
		if g.ParentID != nil && *g.ParentID == groupID {
			ids = append(ids, g.ID)
			children[g.ID] = struct{}{}
		}
	}
	for _, g := range all {
		if g.ParentID == nil {
			continue
		}
		if _, ok := children[*g.ParentID]; ok {
			ids = append(ids, g.ID)
		}
	}
	return ids, nil
}

// Add 批量创建官员绑定。任一目标组不在 workingGroupID 的子树内则整批拒绝。
func (s *officerService) Add(user *UserContext, workingGroupID string, officers []model.Officer) ([]model.Officer, error) {
	subtree, err := s.tree.DescendantIDs(workingGroupID)
	if err != nil {
		return nil, err
	}

	var itemErrs []error
	records := make([]*model.Officer, 0, len(officers))
	for i := range officers {
		o := officers[i]
		if _, inScope := subtree[o.GroupID]; !inScope {
			itemErrs = append(itemErrs, fmt.Errorf("第 %d 项: %w: 组 %s 不在工作组 %s 的子树内", i+1, ErrForbidden, o.GroupID, workingGroupID))
			continue
		}
		if err := s.validatePosition(o.GroupID, o.Position); err != nil {
			itemErrs = append(itemErrs, fmt.Errorf("第 %d 项: %w", i+1, err))
			continue
		}
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		records = append(records, &o)
	}
	// 子树约束校验是整批前置条件：存在越界条目时全批拒绝，不做部分写入
	if len(itemErrs) > 0 {
		return nil, errors.Join(itemErrs...)
	}

	if err := s.officerRepo.BatchCreate(records); err != nil {
		return nil, err
	}

	created := make([]model.Officer, 0, len(records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		created = append(created, *r)
		ids = append(ids, r.ID)
	}
	s.publishChange(user, tasks.ActionCreate, ids, "创建官员绑定")
	return created, nil
}

// validatePosition 校验职位在目标组类别允许的职位集合内。
func (s *officerService) validatePosition(groupID, position string) error {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if IsRecordNotFound(err) {
			return fmt.Errorf("%w: 组 %s", ErrNotFound, groupID)
		}
		return err
	}
	if !group.Type.AllowsPosition(position) {
		return fmt.Errorf("%w: 职位 %q 不适用于类别 %s 的组", ErrConflict, position, group.Type)
	}
	return nil
}

// Update 批量执行部分字段更新。仅当某次变更修改 groupId 时才重新做子树
// 归属校验；只改其他字段不触发组校验。
func (s *officerService) Update(user *UserContext, workingGroupID string, updates []OfficerUpdate) ([]model.Officer, error) {
	subtree, err := s.tree.DescendantIDs(workingGroupID)
	if err != nil {
		return nil, err
	}

	var itemErrs []error
	updated := make([]model.Officer, 0, len(updates))
	for _, u := range updates {
		officer, err := s.applyOfficerUpdate(subtree, workingGroupID, u)
		if err != nil {
			itemErrs = append(itemErrs, fmt.Errorf("官员 %s: %w", u.ID, err))
			continue
		}
		updated = append(updated, *officer)
	}

	if len(updated) > 0 {
		ids := make([]string, 0, len(updated))
		for _, o := range updated {
			ids = append(ids, o.ID)
		}
		s.publishChange(user, tasks.ActionUpdate, ids, "更新官员绑定")
	}
	return updated, errors.Join(itemErrs...)
}

// applyOfficerUpdate 对单条官员绑定应用部分更新。
func (s *officerService) applyOfficerUpdate(subtree map[string]struct{}, workingGroupID string, u OfficerUpdate) (*model.Officer, error) {
	officer, err := s.officerRepo.FindByID(u.ID)
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	changes := u.Changes
	if changes.GroupID != nil && *changes.GroupID != officer.GroupID {
		if _, inScope := subtree[*changes.GroupID]; !inScope {
			return nil, fmt.Errorf("%w: 组 %s 不在工作组 %s 的子树内", ErrForbidden, *changes.GroupID, workingGroupID)
		}
		officer.GroupID = *changes.GroupID
	}
	if changes.SAPIN != nil {
		officer.SAPIN = *changes.SAPIN
	}
	if changes.Position != nil {
		officer.Position = *changes.Position
	}
	if changes.Position != nil || changes.GroupID != nil {
		if err := s.validatePosition(officer.GroupID, officer.Position); err != nil {
			return nil, err
		}
	}

	if err := s.officerRepo.Update(officer); err != nil {
		return nil, err
	}
	return officer, nil
}

// Remove 删除 workingGroupID 子树范围内的官员绑定。
// 子树在仓储层的删除事务内部重新推导，而不是先在这里查好再传入：
// 范围判定与删除看到同一个快照，避免两步之间的组移挂导致越界删除。
func (s *officerService) Remove(user *UserContext, workingGroupID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	deleted, err := s.officerRepo.DeleteScoped(ids, workingGroupID)
	if err != nil {
		if IsRecordNotFound(err) {
			return 0, fmt.Errorf("%w: 组 %s", ErrNotFound, workingGroupID)
		}
		return 0, err
	}
	if deleted > 0 {
		s.publishChange(user, tasks.ActionDelete, ids, "删除官员绑定")
	}
	return deleted, nil
}

// publishChange 以尽力而为的方式投递官员变更事件。
func (s *officerService) publishChange(user *UserContext, action string, ids []string, detail string) {
	publishEntityChange(s.publisher, user, tasks.EntityOfficer, action, ids, detail)
}
