package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupTypeValid(t *testing.T) {
	for _, valid := range []GroupType{
		GroupTypeRoot, GroupTypeCommittee, GroupTypeWorkingGroup,
		GroupTypeTechnical, GroupTypeStanding, GroupTypeAdHoc,
	} {
		assert.True(t, valid.Valid(), "type=%s", valid)
	}
	assert.False(t, GroupType("mystery").Valid())
	assert.False(t, GroupType("").Valid())
}

func TestGroupTypeAllowsChild(t *testing.T) {
	// 根下只允许委员会与工作组
	assert.True(t, GroupTypeRoot.AllowsChild(GroupTypeCommittee))
	assert.True(t, GroupTypeRoot.AllowsChild(GroupTypeWorkingGroup))
	assert.False(t, GroupTypeRoot.AllowsChild(GroupTypeTechnical))
	assert.False(t, GroupTypeRoot.AllowsChild(GroupTypeRoot), "根不可嵌套")

	// 工作组下允许技术组，不允许委员会
	assert.True(t, GroupTypeWorkingGroup.AllowsChild(GroupTypeTechnical))
	assert.False(t, GroupTypeWorkingGroup.AllowsChild(GroupTypeCommittee))

	// 叶子类别不允许任何子节点
	assert.False(t, GroupTypeStanding.AllowsChild(GroupTypeAdHoc))
	assert.False(t, GroupTypeAdHoc.AllowsChild(GroupTypeAdHoc))
}

func TestGroupTypeAllowsPosition(t *testing.T) {
	assert.True(t, GroupTypeWorkingGroup.AllowsPosition(PositionEditor))
	assert.True(t, GroupTypeRoot.AllowsPosition(PositionTreasurer))
	// 技术组没有司库，临时组只有主席与秘书
	assert.False(t, GroupTypeTechnical.AllowsPosition(PositionTreasurer))
	assert.False(t, GroupTypeAdHoc.AllowsPosition(PositionViceChair))
	assert.False(t, GroupTypeWorkingGroup.AllowsPosition("Janitor"))
}

func TestAccessLevelJSON(t *testing.T) {
	set := PermissionSet{Meetings: AccessAdmin, Ballots: AccessRW, Members: AccessRO}
	data, err := json.Marshal(set)
	assert.NoError(t, err)
	// 访问级别序列化为字符串，便于前端直接消费
	assert.JSONEq(t, `{"meetings":"admin","ballots":"rw","members":"ro","results":"none","comments":"none","polling":"none"}`, string(data))
}
