package service

import (
	"testing"

	"grouphub-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainTo 返回测试树中目标组的祖先链（最近的在前）。
func chainTo(t *testing.T, tree TreeQuery, groupID string) []model.Group {
	t.Helper()
	chain, err := tree.AncestorChain(groupID)
	require.NoError(t, err)
	return chain
}

func TestRollupBareMember(t *testing.T) {
	tree, _ := newTestTree(t)
	rollup := NewPermissionRollup(DefaultRollupPolicy())

	// 不持有任何职位的成员只拿到默认集合，且 raw 与完整结果一致
	permissions, raw := rollup.Rollup(map[string]struct{}{}, chainTo(t, tree, "tg1"))
	want := model.PermissionSet{Meetings: model.AccessRO, Ballots: model.AccessRO}
	assert.Equal(t, want, permissions)
	assert.Equal(t, want, raw)
}

func TestRollupWGOfficerInheritsDown(t *testing.T) {
	tree, _ := newTestTree(t)
	rollup := NewPermissionRollup(DefaultRollupPolicy())
	held := map[string]struct{}{"wg": {}}

	// 工作组官员对子树内任意组都有完整权限
	permissions, raw := rollup.Rollup(held, chainTo(t, tree, "tg1"))
	assert.Equal(t, model.UniformPermissions(model.AccessAdmin), permissions)
	// 但 raw 只看目标组本节点：tg1 上没有直接职位，仍是成员默认
	assert.Equal(t, model.PermissionSet{Meetings: model.AccessRO, Ballots: model.AccessRO}, raw)

	// 在 wg 自身上，raw 与完整结果都是 admin
	permissions, raw = rollup.Rollup(held, chainTo(t, tree, "wg"))
	assert.Equal(t, model.UniformPermissions(model.AccessAdmin), permissions)
	assert.Equal(t, model.UniformPermissions(model.AccessAdmin), raw)
}

func TestRollupSubgroupOfficer(t *testing.T) {
	tree, _ := newTestTree(t)
	rollup := NewPermissionRollup(DefaultRollupPolicy())
	held := map[string]struct{}{"tg1": {}}

	// 技术组官员在本组内：results/comments/polling 可写，其余只读
	permissions, raw := rollup.Rollup(held, chainTo(t, tree, "tg1"))
	want := model.PermissionSet{
		Meetings: model.AccessRO,
		Ballots:  model.AccessRO,
		Members:  model.AccessRO,
		Results:  model.AccessRW,
		Comments: model.AccessRW,
		Polling:  model.AccessRW,
	}
	assert.Equal(t, want, permissions)
	assert.Equal(t, want, raw)

	// 职位不向上生效：在上级 wg 上仍是成员默认
	permissions, _ = rollup.Rollup(held, chainTo(t, tree, "wg"))
	assert.Equal(t, model.PermissionSet{Meetings: model.AccessRO, Ballots: model.AccessRO}, permissions)

	// 但向下生效：adhoc 在 tg1 子树内，继承技术组官员的集合
	permissions, raw = rollup.Rollup(held, chainTo(t, tree, "adhoc"))
	assert.Equal(t, want, permissions)
	assert.Equal(t, model.PermissionSet{Meetings: model.AccessRO, Ballots: model.AccessRO}, raw)
}

func TestRollupRootOfficerSupremacy(t *testing.T) {
	tree, _ := newTestTree(t)
	rollup := NewPermissionRollup(DefaultRollupPolicy())
	held := map[string]struct{}{"root": {}}

	// 根组官员在全树任意组上都是 admin
	for _, target := range []string{"root", "com", "wg", "tg1", "tg2", "adhoc"} {
		permissions, _ := rollup.Rollup(held, chainTo(t, tree, target))
		assert.Equal(t, model.UniformPermissions(model.AccessAdmin), permissions, "target=%s", target)
	}
}

func TestRollupIsMonotonic(t *testing.T) {
	tree, _ := newTestTree(t)
	rollup := NewPermissionRollup(DefaultRollupPolicy())
	chain := chainTo(t, tree, "adhoc")

	// 同时持有 tg1 与 wg 的职位：合并结果逐功能域不低于只持有 tg1 时
	weaker, _ := rollup.Rollup(map[string]struct{}{"tg1": {}}, chain)
	both, _ := rollup.Rollup(map[string]struct{}{"tg1": {}, "wg": {}}, chain)
	assert.Equal(t, both, weaker.Merge(both), "引入更多职位不得降低任何功能域的级别")
	assert.Equal(t, model.UniformPermissions(model.AccessAdmin), both)
}

func TestPermissionSetMerge(t *testing.T) {
	a := model.PermissionSet{Meetings: model.AccessRW, Ballots: model.AccessRO}
	b := model.PermissionSet{Meetings: model.AccessRO, Ballots: model.AccessAdmin, Polling: model.AccessRW}

	merged := a.Merge(b)
	assert.Equal(t, model.PermissionSet{
		Meetings: model.AccessRW,
		Ballots:  model.AccessAdmin,
		Polling:  model.AccessRW,
	}, merged)
	// 合并满足交换律
	assert.Equal(t, merged, b.Merge(a))
}
