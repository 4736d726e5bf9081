// Package service 包含了应用的业务逻辑层。
package service

import (
	"errors"
	"fmt"

	"grouphub-go/internal/model"
	"grouphub-go/internal/repository"
	"grouphub-go/pkg/log"

	"gorm.io/gorm"
)

// TreeQuery 提供组织树的读侧查询：后代集合、祖先链与批量祖先解析。
// 树是委员会量级（几十到几百个节点），实现方式是一次整表读取后在内存中做
// 不动点遍历；复杂度 O(n·depth)，对这个规模远优于逐层 SQL 往返。
type TreeQuery interface {
	// DescendantIDs 返回 groupID 本身加上沿 parent_id 边向下可达的全部节点 ID。
	DescendantIDs(groupID string) (map[string]struct{}, error)
	// AncestorChain 返回从 groupID 出发（含自身）到根的祖先链，最近的在前，
	// 最后一个元素恒为根组。
	AncestorChain(groupID string) ([]model.Group, error)
	// GroupsAndAncestors 一次性解析多个种子及它们的全部祖先，
	// 避免逐节点查询造成的 N+1 读取。
	GroupsAndAncestors(seedIDs []string) (map[string]model.Group, error)
}

type treeQuery struct {
	groupRepo repository.GroupRepository
}

// NewTreeQuery 创建一个新的 TreeQuery 实例。
func NewTreeQuery(groupRepo repository.GroupRepository) TreeQuery {
	return &treeQuery{groupRepo: groupRepo}
}

// loadIndex 一次性加载整棵树并建立 ID 索引。
func (t *treeQuery) loadIndex() ([]model.Group, map[string]model.Group, error) {
	all, err := t.groupRepo.FindAll()
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]model.Group, len(all))
	for _, g := range all {
		byID[g.ID] = g
	}
	return all, byID, nil
}

// DescendantIDs 以不动点方式收集后代：从种子出发，反复并入所有
// parent_id 已在集合内的组，直到不再新增。树是有限无环的，因此必然终止；
// 为防御存储损坏产生的环，迭代轮数封顶为节点总数，超出即判定数据完整性错误。
func (t *treeQuery) DescendantIDs(groupID string) (map[string]struct{}, error) {
	all, byID, err := t.loadIndex()
	if err != nil {
		return nil, err
	}
	if _, ok := byID[groupID]; !ok {
		return nil, fmt.Errorf("%w: 组 %s", ErrNotFound, groupID)
	}

	set := map[string]struct{}{groupID: {}}
	for iter := 0; ; iter++ {
		if iter > len(all) {
			log.Errorf("[TreeQuery] 后代遍历超过节点总数上限，组织树疑似存在环, seed=%s", groupID)
			return nil, fmt.Errorf("%w: 后代遍历未收敛 (seed=%s)", ErrDataIntegrity, groupID)
		}
		added := false
		for _, g := range all {
			if g.ParentID == nil {
				continue
			}
			if _, inSet := set[*g.ParentID]; !inSet {
				continue
			}
			if _, inSet := set[g.ID]; !inSet {
				set[g.ID] = struct{}{}
				added = true
			}
		}
		if !added {
			break
		}
	}
	return set, nil
}

// AncestorChain 沿 parent_id 逐级上溯直到根。步数封顶为节点总数，
// 超出（环）或父节点缺失（根不可达）都判定为数据完整性错误。
func (t *treeQuery) AncestorChain(groupID string) ([]model.Group, error) {
	_, byID, err := t.loadIndex()
	if err != nil {
		return nil, err
	}
	return chainFrom(byID, groupID)
}

// GroupsAndAncestors 解析多个种子及其全部祖先，返回 ID 到组的映射。
func (t *treeQuery) GroupsAndAncestors(seedIDs []string) (map[string]model.Group, error) {
	_, byID, err := t.loadIndex()
	if err != nil {
		return nil, err
	}
	resolved := make(map[string]model.Group, len(seedIDs))
	for _, id := range seedIDs {
		if _, done := resolved[id]; done {
			continue
		}
		chain, err := chainFrom(byID, id)
		if err != nil {
			return nil, err
		}
		for _, g := range chain {
			resolved[g.ID] = g
		}
	}
	return resolved, nil
}

// chainFrom 在给定的 ID 索引（或已解析的缓存）内构建祖先链，最近的在前。
func chainFrom(byID map[string]model.Group, groupID string) ([]model.Group, error) {
	current, ok := byID[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: 组 %s", ErrNotFound, groupID)
	}

	chain := make([]model.Group, 0, 4)
	for steps := 0; ; steps++ {
		if steps > len(byID) {
			log.Errorf("[TreeQuery] 祖先链超过节点总数上限，组织树疑似存在环, seed=%s", groupID)
			return nil, fmt.Errorf("%w: 祖先链未终止 (seed=%s)", ErrDataIntegrity, groupID)
		}
		chain = append(chain, current)
		if current.ParentID == nil {
			return chain, nil
		}
		parent, ok := byID[*current.ParentID]
		if !ok {
			log.Errorf("[TreeQuery] 组 %s 的父节点 %s 不存在，根不可达", current.ID, *current.ParentID)
			return nil, fmt.Errorf("%w: 组 %s 的父节点 %s 不存在", ErrDataIntegrity, current.ID, *current.ParentID)
		}
		current = parent
	}
}

// IsRecordNotFound 判断底层存储返回的错误是否为"记录不存在"。
func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
