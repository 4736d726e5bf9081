// Package service 包含了应用的业务逻辑层。
package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"grouphub-go/internal/model"
	"grouphub-go/internal/repository"
	"grouphub-go/pkg/log"
	"grouphub-go/pkg/tasks"

	"github.com/google/uuid"
)

// UserContext 是 HTTP 层解析身份后传入的调用者上下文。
// 本引擎不做认证，只消费已解析出的成员身份。
type UserContext struct {
	SAPIN  uint64
	Member *model.Member
}

// ChangePublisher 把变更事件投递到消息队列，由 pkg/kafka 提供实现。
type ChangePublisher interface {
	Publish(task tasks.GroupChangeTask) error
}

// GroupQuery 定义了组列表查询的过滤条件。
// Parent 按组名解析为"该组及其全部后代"；其余字段是等值过滤。
type GroupQuery struct {
	Parent  string
	Type    string
	Status  string
	Symbol  string
	Project string
}

// GroupChanges 是组的部分字段更新，nil 字段表示不变更。
type GroupChanges struct {
	ParentID *string          `json:"parentId"`
	Name     *string          `json:"name"`
	Type     *model.GroupType `json:"type"`
	Status   *string          `json:"status"`
	Color    *string          `json:"color"`
	Symbol   *string          `json:"symbol"`
	Project  *string          `json:"project"`
}

// GroupUpdate 将一次部分更新绑定到目标组 ID。
type GroupUpdate struct {
	ID      string       `json:"id"`
	Changes GroupChanges `json:"changes"`
}

// GroupWithPermissions 是附带了权限信息的组视图。
// Permissions 是完整上卷结果；PermissionsRaw 只反映调用者在本节点的直接职位。
type GroupWithPermissions struct {
	model.Group
	OfficerSAPINs  []uint64            `json:"officerSAPINs"`
	Permissions    model.PermissionSet `json:"permissions"`
	PermissionsRaw model.PermissionSet `json:"permissionsRaw"`
}

// GroupService 接口定义了组树的全部业务操作。
type GroupService interface {
	List(user *UserContext, query *GroupQuery) ([]GroupWithPermissions, error)
	Tree(user *UserContext) ([]*model.GroupNode, error)
	Add(user *UserContext, creates []model.Group) ([]GroupWithPermissions, error)
	Update(user *UserContext, updates []GroupUpdate) ([]GroupWithPermissions, error)
	Remove(user *UserContext, ids []string) (int64, error)
	Changelog(limit int) ([]model.GroupChangeLog, error)
	EnsureRoot(name, symbol string) error
}

// groupService 是 GroupService 接口的实现。
type groupService struct {
	groupRepo     repository.GroupRepository
	officerRepo   repository.OfficerRepository
	ballotRepo    repository.BallotRepository
	sessionRepo   repository.SessionRepository
	changeLogRepo repository.ChangeLogRepository
	tree          TreeQuery
	rollup        *PermissionRollup
	publisher     ChangePublisher
}

// NewGroupService 创建一个新的 GroupService 实例。
func NewGroupService(
	groupRepo repository.GroupRepository,
	officerRepo repository.OfficerRepository,
	ballotRepo repository.BallotRepository,
	sessionRepo repository.SessionRepository,
	changeLogRepo repository.ChangeLogRepository,
	tree TreeQuery,
	rollup *PermissionRollup,
	publisher ChangePublisher,
) GroupService {
	return &groupService{
		groupRepo:     groupRepo,
		officerRepo:   officerRepo,
		ballotRepo:    ballotRepo,
		sessionRepo:   sessionRepo,
		changeLogRepo: changeLogRepo,
		tree:          tree,
		rollup:        rollup,
		publisher:     publisher,
	}
}

// List 返回调用者可见的组列表，并为每个组附加上卷后的权限。
func (s *groupService) List(user *UserContext, query *GroupQuery) ([]GroupWithPermissions, error) {
	var groups []model.Group
	var err error

	if query != nil && query.Parent != "" {
		// parent 过滤解析为"该组及其全部后代"
		parent, ferr := s.groupRepo.FindByName(query.Parent)
		if ferr != nil {
			if IsRecordNotFound(ferr) {
				return nil, fmt.Errorf("%w: 组名 %s", ErrNotFound, query.Parent)
			}
			return nil, ferr
		}
		descIDs, derr := s.tree.DescendantIDs(parent.ID)
		if derr != nil {
			return nil, derr
		}
		ids := make([]string, 0, len(descIDs))
		for id := range descIDs {
			ids = append(ids, id)
		}
		groups, err = s.groupRepo.FindBatchByIDs(ids)
	} else {
		groups, err = s.groupRepo.FindAll()
	}
	if err != nil {
		return nil, err
	}

	groups = filterGroups(groups, query)

	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	// 结果集之外的祖先仅为上卷计算而解析，不返回给调用方
	resolved, err := s.tree.GroupsAndAncestors(ids)
	if err != nil {
		return nil, err
	}
	return s.attachPermissions(user, groups, resolved)
}

// filterGroups 对组列表应用等值过滤条件。
func filterGroups(groups []model.Group, query *GroupQuery) []model.Group {
	if query == nil {
		return groups
	}
	out := groups[:0]
	for _, g := range groups {
		if query.Type != "" && string(g.Type) != query.Type {
			continue
		}
		if query.Status != "" && g.Status != query.Status {
			continue
		}
		if query.Symbol != "" && g.Symbol != query.Symbol {
			continue
		}
		if query.Project != "" && g.Project != query.Project {
			continue
		}
		out = append(out, g)
	}
	return out
}

// attachPermissions 为每个组计算 permissions/permissionsRaw 并附加直属官员列表。
func (s *groupService) attachPermissions(user *UserContext, groups []model.Group, resolved map[string]model.Group) ([]GroupWithPermissions, error) {
	bindings, err := s.officerRepo.FindBySAPIN(user.SAPIN)
	if err != nil {
		return nil, err
	}
	held := make(map[string]struct{}, len(bindings))
	for _, o := range bindings {
		held[o.GroupID] = struct{}{}
	}

	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	officers, err := s.officerRepo.FindByGroupIDs(ids)
	if err != nil {
		return nil, err
	}
	sapinsByGroup := make(map[string][]uint64, len(groups))
	for _, o := range officers {
		sapinsByGroup[o.GroupID] = append(sapinsByGroup[o.GroupID], o.SAPIN)
	}

	result := make([]GroupWithPermissions, 0, len(groups))
	for _, g := range groups {
		chain, err := chainFrom(resolved, g.ID)
		if err != nil {
			return nil, err
		}
		permissions, raw := s.rollup.Rollup(held, chain)
		sapins := sapinsByGroup[g.ID]
		if sapins == nil {
			sapins = []uint64{}
		}
		result = append(result, GroupWithPermissions{
			Group:          g,
			OfficerSAPINs:  sapins,
			Permissions:    permissions,
			PermissionsRaw: raw,
		})
	}
	return result, nil
}

// Tree 返回按 parent/children 嵌套渲染的组织树。
func (s *groupService) Tree(user *UserContext) ([]*model.GroupNode, error) {
	groups, err := s.groupRepo.FindAll()
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*model.GroupNode, len(groups))
	for _, g := range groups {
		nodes[g.ID] = &model.GroupNode{
			ID:       g.ID,
			ParentID: g.ParentID,
			Name:     g.Name,
			Type:     g.Type,
			Symbol:   g.Symbol,
			Children: []*model.GroupNode{},
		}
	}

	var tree []*model.GroupNode
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		tree = append(tree, node)
	}
	return tree, nil
}

// Add 批量创建组。每个条目独立校验与持久化，失败条目的错误会携带其序号
// 一并返回，成功条目正常入库并出现在返回值中。未提供 ID 时分配新的 UUID；
// 调用方可以预先指定 ID 以获得幂等的重试语义。
func (s *groupService) Add(user *UserContext, creates []model.Group) ([]GroupWithPermissions, error) {
	var itemErrs []error
	created := make([]model.Group, 0, len(creates))

	for i, create := range creates {
		if err := s.validateCreate(&create); err != nil {
			itemErrs = append(itemErrs, fmt.Errorf("第 %d 项: %w", i+1, err))
			continue
		}
		if create.ID == "" {
			create.ID = uuid.NewString()
		}
		if create.Status == "" {
			create.Status = "Active"
		}
		if err := s.groupRepo.Create(&create); err != nil {
			itemErrs = append(itemErrs, fmt.Errorf("第 %d 项: %w", i+1, err))
			continue
		}
		created = append(created, create)
	}

	if len(created) > 0 {
		s.publishChange(user, tasks.EntityGroup, tasks.ActionCreate, groupIDs(created), "创建组")
	}

	ids := groupIDs(created)
	resolved, err := s.tree.GroupsAndAncestors(ids)
	if err != nil {
		return nil, err
	}
	result, err := s.attachPermissions(user, created, resolved)
	if err != nil {
		return nil, err
	}
	return result, errors.Join(itemErrs...)
}

// validateCreate 校验新组的父引用与类别格约束。
func (s *groupService) validateCreate(create *model.Group) error {
	if create.Name == "" {
		return fmt.Errorf("%w: 组名不能为空", ErrConflict)
	}
	if !create.Type.Valid() {
		return fmt.Errorf("%w: 未知的组类别 %q", ErrConflict, create.Type)
	}
	if create.ParentID == nil || *create.ParentID == "" {
		// 根组只能由启动期的 EnsureRoot 创建，树中有且仅有一个根
		return fmt.Errorf("%w: parentId 不能为空，根组不可通过本接口创建", ErrConflict)
	}
	parent, err := s.groupRepo.FindByID(*create.ParentID)
	if err != nil {
		if IsRecordNotFound(err) {
			return fmt.Errorf("%w: 父组 %s 不存在", ErrNotFound, *create.ParentID)
		}
		return err
	}
	if !parent.Type.AllowsChild(create.Type) {
		return fmt.Errorf("%w: 类别 %s 不允许挂在类别 %s 之下", ErrConflict, create.Type, parent.Type)
	}
	return nil
}

// Update 批量执行部分字段更新。条目彼此独立，失败条目的错误携带其 ID 返回。
// 根组在身份/父引用/类别上不可变，任何针对根组的更新都会被整体拒绝。
func (s *groupService) Update(user *UserContext, updates []GroupUpdate) ([]GroupWithPermissions, error) {
	root, err := s.groupRepo.FindRoot()
	if err != nil && !IsRecordNotFound(err) {
		return nil, err
	}

	var itemErrs []error
	updated := make([]model.Group, 0, len(updates))

	for _, u := range updates {
		if root != nil && u.ID == root.ID {
			itemErrs = append(itemErrs, fmt.Errorf("组 %s: %w: 根组不可变更", u.ID, ErrForbidden))
			continue
		}
		group, err := s.applyUpdate(u)
		if err != nil {
			itemErrs = append(itemErrs, fmt.Errorf("组 %s: %w", u.ID, err))
			continue
		}
		updated = append(updated, *group)
	}

	if len(updated) > 0 {
		s.publishChange(user, tasks.EntityGroup, tasks.ActionUpdate, groupIDs(updated), "更新组")
	}

	resolved, err := s.tree.GroupsAndAncestors(groupIDs(updated))
	if err != nil {
		return nil, err
	}
	result, err := s.attachPermissions(user, updated, resolved)
	if err != nil {
		return nil, err
	}
	return result, errors.Join(itemErrs...)
}

// applyUpdate 对单个组应用部分更新并执行结构校验。
func (s *groupService) applyUpdate(u GroupUpdate) (*model.Group, error) {
	group, err := s.groupRepo.FindByID(u.ID)
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	changes := u.Changes
	newType := group.Type
	if changes.Type != nil {
		newType = *changes.Type
		if !newType.Valid() {
			return nil, fmt.Errorf("%w: 未知的组类别 %q", ErrConflict, newType)
		}
	}

	newParentID := group.ParentID
	if changes.ParentID != nil {
		newParentID = changes.ParentID
	}
	if newParentID == nil || *newParentID == "" {
		return nil, fmt.Errorf("%w: 非根组必须有父组", ErrConflict)
	}

	// 父引用或类别变化时重新校验结构约束
	if changes.ParentID != nil || changes.Type != nil {
		parent, err := s.groupRepo.FindByID(*newParentID)
		if err != nil {
			if IsRecordNotFound(err) {
				return nil, fmt.Errorf("%w: 父组 %s 不存在", ErrNotFound, *newParentID)
			}
			return nil, err
		}
		if !parent.Type.AllowsChild(newType) {
			return nil, fmt.Errorf("%w: 类别 %s 不允许挂在类别 %s 之下", ErrConflict, newType, parent.Type)
		}

		if changes.ParentID != nil {
			// 不允许把组挂到自己的子树内，否则会形成环
			descIDs, derr := s.tree.DescendantIDs(group.ID)
			if derr != nil {
				return nil, derr
			}
			if _, inSubtree := descIDs[*newParentID]; inSubtree {
				return nil, fmt.Errorf("%w: 不能将组挂到其自身子树内的 %s 之下", ErrConflict, *newParentID)
			}
		}

		if changes.Type != nil {
			// 类别变化后现有子组必须仍然合法
			all, aerr := s.groupRepo.FindAll()
			if aerr != nil {
				return nil, aerr
			}
			for _, child := range all {
				if child.ParentID != nil && *child.ParentID == group.ID && !newType.AllowsChild(child.Type) {
					return nil, fmt.Errorf("%w: 子组 %s 的类别 %s 不允许挂在类别 %s 之下", ErrConflict, child.ID, child.Type, newType)
				}
			}
		}
	}

	group.ParentID = newParentID
	group.Type = newType
	if changes.Name != nil {
		group.Name = *changes.Name
	}
	if changes.Status != nil {
		group.Status = *changes.Status
	}
	if changes.Color != nil {
		group.Color = *changes.Color
	}
	if changes.Symbol != nil {
		group.Symbol = *changes.Symbol
	}
	if changes.Project != nil {
		group.Project = *changes.Project
	}

	if err := s.groupRepo.Update(group); err != nil {
		return nil, err
	}
	return group, nil
}

// Remove 执行三阶段守护删除，整个批次全有或全无：
//  1. 批次中包含根组则直接拒绝；
//  2. 对每个 id 计算后代集合，存在不在批次内的后代（会被孤立的子组）则拒绝，
//     并在错误中指出阻塞的子组；
//  3. 投票/会议子系统仍有记录引用批次内的组则拒绝。
//
// 三项检查全部通过后，官员绑定与组记录在同一个事务中删除。
func (s *groupService) Remove(user *UserContext, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	root, err := s.groupRepo.FindRoot()
	if err != nil && !IsRecordNotFound(err) {
		return 0, err
	}
	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if root != nil && id == root.ID {
			return 0, fmt.Errorf("%w: 根组 %s 不可删除", ErrForbidden, id)
		}
		requested[id] = struct{}{}
	}

	var blocking []string
	for _, id := range ids {
		descIDs, err := s.tree.DescendantIDs(id)
		if err != nil {
			return 0, err
		}
		for desc := range descIDs {
			if _, ok := requested[desc]; !ok {
				blocking = append(blocking, desc)
			}
		}
	}
	if len(blocking) > 0 {
		sort.Strings(blocking)
		return 0, fmt.Errorf("%w: 删除会孤立以下子组，须一并删除: %s", ErrConflict, strings.Join(blocking, ", "))
	}

	ballotRefs, err := s.ballotRepo.ReferencedGroupIDs(ids)
	if err != nil {
		return 0, err
	}
	if len(ballotRefs) > 0 {
		sort.Strings(ballotRefs)
		return 0, fmt.Errorf("%w: 以下组仍被投票记录引用，须先删除投票: %s", ErrConflict, strings.Join(ballotRefs, ", "))
	}
	sessionRefs, err := s.sessionRepo.ReferencedGroupIDs(ids)
	if err != nil {
		return 0, err
	}
	if len(sessionRefs) > 0 {
		sort.Strings(sessionRefs)
		return 0, fmt.Errorf("%w: 以下组仍被会议记录引用，须先删除会议: %s", ErrConflict, strings.Join(sessionRefs, ", "))
	}

	deleted, err := s.groupRepo.DeleteBatchWithOfficers(ids)
	if err != nil {
		return 0, err
	}
	s.publishChange(user, tasks.EntityGroup, tasks.ActionDelete, ids, "删除组")
	return deleted, nil
}

// Changelog 返回最近的变更审计记录。
func (s *groupService) Changelog(limit int) ([]model.GroupChangeLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.changeLogRepo.FindRecent(limit)
}

// EnsureRoot 在启动期保证根组存在：数据库为空时按配置创建唯一的根组，
// 已存在则跳过（幂等）。
func (s *groupService) EnsureRoot(name, symbol string) error {
	_, err := s.groupRepo.FindRoot()
	if err == nil {
		return nil
	}
	if !IsRecordNotFound(err) {
		return err
	}

	root := &model.Group{
		ID:     uuid.NewString(),
		Name:   name,
		Type:   model.GroupTypeRoot,
		Status: "Active",
		Symbol: symbol,
	}
	if err := s.groupRepo.Create(root); err != nil {
		return err
	}
	log.Infof("[GroupService] 根组不存在，已创建: %s (%s)", name, root.ID)
	return nil
}

// publishChange 以尽力而为的方式投递变更事件。
func (s *groupService) publishChange(user *UserContext, entity, action string, ids []string, detail string) {
	publishEntityChange(s.publisher, user, entity, action, ids, detail)
}

// publishEntityChange 构造变更事件并投递；投递失败只记日志，不影响主流程。
func publishEntityChange(publisher ChangePublisher, user *UserContext, entity, action string, ids []string, detail string) {
	task := tasks.GroupChangeTask{
		EventID:    uuid.NewString(),
		Entity:     entity,
		Action:     action,
		EntityIDs:  ids,
		ActorSAPIN: user.SAPIN,
		Detail:     detail,
		OccurredAt: time.Now(),
	}
	if err := publisher.Publish(task); err != nil {
		log.Warnf("[Service] 变更事件投递失败: entity=%s action=%s err=%v", entity, action, err)
	}
}

// groupIDs 提取组列表的 ID 切片。
func groupIDs(groups []model.Group) []string {
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	return ids
}
