// Package service 包含了应用的业务逻辑层。
package service

import "grouphub-go/internal/model"

// RollupPolicy 定义了四类角色各自的权限集合。
// 策略在构造时注入而不是写死在遍历逻辑里，便于替换与单测。
type RollupPolicy struct {
	// RootOfficer 是根组官员的权限集合（全域 admin）。
	RootOfficer model.PermissionSet
	// WGOfficer 是工作组/委员会官员的权限集合（全域 admin）。
	WGOfficer model.PermissionSet
	// SubgroupOfficer 是技术组/常设委员会/临时组官员的权限集合。
	SubgroupOfficer model.PermissionSet
	// Member 是不持有任何职位时的默认权限集合。
	Member model.PermissionSet
}

// DefaultRollupPolicy 返回产品默认的权限策略。
func DefaultRollupPolicy() RollupPolicy {
	return RollupPolicy{
		RootOfficer: model.UniformPermissions(model.AccessAdmin),
		WGOfficer:   model.UniformPermissions(model.AccessAdmin),
		SubgroupOfficer: model.PermissionSet{
			Meetings: model.AccessRO,
			Ballots:  model.AccessRO,
			Members:  model.AccessRO,
			Results:  model.AccessRW,
			Comments: model.AccessRW,
			Polling:  model.AccessRW,
		},
		Member: model.PermissionSet{
			Meetings: model.AccessRO,
			Ballots:  model.AccessRO,
		},
	}
}

// classify 返回在类别为 t 的组上持有职位时适用的权限集合。
func (p RollupPolicy) classify(t model.GroupType) model.PermissionSet {
	switch t {
	case model.GroupTypeRoot:
		return p.RootOfficer
	case model.GroupTypeWorkingGroup, model.GroupTypeCommittee:
		return p.WGOfficer
	case model.GroupTypeTechnical, model.GroupTypeStanding, model.GroupTypeAdHoc:
		return p.SubgroupOfficer
	}
	return p.Member
}

// PermissionRollup 是纯计算组件：给定用户的职位绑定与目标组的祖先链，
// 推导用户在目标组上每个功能域的有效访问级别。没有任何 I/O。
type PermissionRollup struct {
	policy RollupPolicy
}

// NewPermissionRollup 用给定策略创建一个 PermissionRollup。
func NewPermissionRollup(policy RollupPolicy) *PermissionRollup {
	return &PermissionRollup{policy: policy}
}

// Rollup 计算目标组上的有效权限。
//
// officerGroupIDs 是用户持有任意职位的组 ID 集合；chain 是目标组的祖先链
// （最近的在前，最后一个元素是根，由 TreeQuery 提供）。
//
// 算法：从目标组向根方向逐节点检查用户是否在该节点直接持有职位，持有则
// 按该节点的类别收集对应的权限集合——权限沿树向下继承（上级工作组官员
// 对其下一切拥有完整权限），絶不会被更低层的弱角色遮蔽。最终结果是成员
// 默认集合与所有收集到的集合的逐功能域最大值，即单调合并。
//
// 返回值 permissions 是完整上卷结果；raw 只反映用户在目标组本节点直接
// 持有的职位（未持有时为成员默认集合），调用方用它区分"在此被授权"与
// "从上级继承授权"。
func (r *PermissionRollup) Rollup(officerGroupIDs map[string]struct{}, chain []model.Group) (permissions, raw model.PermissionSet) {
	permissions = r.policy.Member
	raw = r.policy.Member

	for i, node := range chain {
		if _, holds := officerGroupIDs[node.ID]; !holds {
			continue
		}
		set := r.policy.classify(node.Type)
		permissions = permissions.Merge(set)
		if i == 0 {
			raw = set
		}
	}
	return permissions, raw
}
