package service

import (
	"testing"

	"grouphub-go/internal/model"
	"grouphub-go/pkg/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type officerTestEnv struct {
	groupRepo   *fakeGroupRepo
	officerRepo *fakeOfficerRepo
	publisher   *fakePublisher
	svc         OfficerService
}

func newOfficerTestEnv(t *testing.T) *officerTestEnv {
	t.Helper()
	officerRepo := newFakeOfficerRepo()
	groupRepo := newFakeGroupRepo(officerRepo)
	seedTree(groupRepo)

	env := &officerTestEnv{
		groupRepo:   groupRepo,
		officerRepo: officerRepo,
		publisher:   &fakePublisher{},
	}
	env.svc = NewOfficerService(officerRepo, groupRepo, NewTreeQuery(groupRepo), env.publisher)
	return env
}

func TestOfficerServiceAdd(t *testing.T) {
	env := newOfficerTestEnv(t)

	created, err := env.svc.Add(testUser, "wg", []model.Officer{
		{GroupID: "tg1", SAPIN: 200, Position: model.PositionChair},
		{GroupID: "wg", SAPIN: 201, Position: model.PositionEditor},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, o := range created {
		assert.NotEmpty(t, o.ID, "未指定 ID 时应分配 UUID")
	}

	require.Len(t, env.publisher.published, 1)
	assert.Equal(t, tasks.EntityOfficer, env.publisher.published[0].Entity)
	assert.Equal(t, tasks.ActionCreate, env.publisher.published[0].Action)
}

func TestOfficerServiceAddOutOfSubtree(t *testing.T) {
	env := newOfficerTestEnv(t)

	// com 不在 wg 的子树内：整批拒绝，合法条目也不写入
	created, err := env.svc.Add(testUser, "wg", []model.Officer{
		{GroupID: "tg1", SAPIN: 200, Position: model.PositionChair},
		{GroupID: "com", SAPIN: 201, Position: model.PositionChair},
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, created)
	officers, _ := env.officerRepo.FindByGroupID("tg1")
	assert.Empty(t, officers, "越界批次不得部分写入")
}

func TestOfficerServiceAddInvalidPosition(t *testing.T) {
	env := newOfficerTestEnv(t)

	// 技术组没有 Treasurer 职位
	_, err := env.svc.Add(testUser, "wg", []model.Officer{
		{GroupID: "tg1", SAPIN: 200, Position: model.PositionTreasurer},
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestOfficerServiceListSelectors(t *testing.T) {
	env := newOfficerTestEnv(t)
	// root → wg → tg1 → adhoc 各放一名官员
	_ = env.officerRepo.Create(&model.Officer{ID: "o-root", GroupID: "root", SAPIN: 1, Position: model.PositionChair})
	_ = env.officerRepo.Create(&model.Officer{ID: "o-wg", GroupID: "wg", SAPIN: 2, Position: model.PositionChair})
	_ = env.officerRepo.Create(&model.Officer{ID: "o-tg1", GroupID: "tg1", SAPIN: 3, Position: model.PositionChair})
	_ = env.officerRepo.Create(&model.Officer{ID: "o-adhoc", GroupID: "adhoc", SAPIN: 4, Position: model.PositionChair})

	// groupId 只匹配直接绑定
	officers, err := env.svc.List(&OfficerQuery{GroupID: "wg"})
	require.NoError(t, err)
	require.Len(t, officers, 1)
	assert.Equal(t, "o-wg", officers[0].ID)

	// parentGroupId 是两跳匹配：root 命中 root、wg（子）、tg1（孙），
	// 但不含曾孙 adhoc
	officers, err = env.svc.List(&OfficerQuery{ParentGroupID: "root"})
	require.NoError(t, err)
	ids := make([]string, 0, len(officers))
	for _, o := range officers {
		ids = append(ids, o.ID)
	}
	assert.ElementsMatch(t, []string{"o-root", "o-wg", "o-tg1"}, ids)

	// ids 显式集合优先于其他选择器
	officers, err = env.svc.List(&OfficerQuery{IDs: []string{"o-adhoc"}, GroupID: "wg"})
	require.NoError(t, err)
	require.Len(t, officers, 1)
	assert.Equal(t, "o-adhoc", officers[0].ID)

	// 未知组
	_, err = env.svc.List(&OfficerQuery{GroupID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.svc.List(&OfficerQuery{ParentGroupID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	// 缺少选择器是请求不合法，不是记录不存在
	_, err = env.svc.List(&OfficerQuery{})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = env.svc.List(nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestOfficerServiceUpdate(t *testing.T) {
	env := newOfficerTestEnv(t)
	_ = env.officerRepo.Create(&model.Officer{ID: "o1", GroupID: "tg1", SAPIN: 200, Position: model.PositionChair})

	// 只改职位：不触发子树归属校验
	updated, err := env.svc.Update(testUser, "wg", []OfficerUpdate{
		{ID: "o1", Changes: OfficerChanges{Position: strPtr(model.PositionSecretary)}},
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, model.PositionSecretary, updated[0].Position)

	// 换组：目标组必须在授权子树内
	_, err = env.svc.Update(testUser, "wg", []OfficerUpdate{
		{ID: "o1", Changes: OfficerChanges{GroupID: strPtr("com")}},
	})
	assert.ErrorIs(t, err, ErrForbidden)

	// 换到子树内的组合法，且按新组的类别重新校验职位
	updated, err = env.svc.Update(testUser, "wg", []OfficerUpdate{
		{ID: "o1", Changes: OfficerChanges{GroupID: strPtr("tg2")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "tg2", updated[0].GroupID)

	// 换组后职位在新组类别下非法则拒绝
	_, err = env.svc.Update(testUser, "wg", []OfficerUpdate{
		{ID: "o1", Changes: OfficerChanges{GroupID: strPtr("adhoc"), Position: strPtr(model.PositionEditor)}},
	})
	assert.ErrorIs(t, err, ErrConflict)

	// 改 SA-PIN 不做结构校验
	updated, err = env.svc.Update(testUser, "wg", []OfficerUpdate{
		{ID: "o1", Changes: OfficerChanges{SAPIN: u64Ptr(300)}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 300, updated[0].SAPIN)
}

func TestOfficerServiceRemoveScoped(t *testing.T) {
	env := newOfficerTestEnv(t)
	_ = env.officerRepo.Create(&model.Officer{ID: "o-tg1", GroupID: "tg1", SAPIN: 200, Position: model.PositionChair})
	_ = env.officerRepo.Create(&model.Officer{ID: "o-com", GroupID: "com", SAPIN: 201, Position: model.PositionChair})

	// 请求删除两条，但 o-com 不在 wg 子树内：只删除范围内的一条
	deleted, err := env.svc.Remove(testUser, "wg", []string{"o-tg1", "o-com"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = env.officerRepo.FindByID("o-tg1")
	assert.Error(t, err)
	survivor, err := env.officerRepo.FindByID("o-com")
	require.NoError(t, err)
	assert.Equal(t, "com", survivor.GroupID)

	require.Len(t, env.publisher.published, 1)
	assert.Equal(t, tasks.ActionDelete, env.publisher.published[0].Action)
}

func TestOfficerServiceRemoveScopeDerivedAtDeleteTime(t *testing.T) {
	env := newOfficerTestEnv(t)
	_ = env.officerRepo.Create(&model.Officer{ID: "o-tg1", GroupID: "tg1", SAPIN: 200, Position: model.PositionChair})

	// 在删除前把 tg1 移挂到 com 之下：tg1 已不在 wg 的子树内
	moved, err := env.groupRepo.FindByID("tg1")
	require.NoError(t, err)
	moved.ParentID = strPtr("com")
	require.NoError(t, env.groupRepo.Update(moved))

	// 授权子树按删除时刻的树形推导，越界的绑定不被删除
	deleted, err := env.svc.Remove(testUser, "wg", []string{"o-tg1"})
	require.NoError(t, err)
	assert.Zero(t, deleted)
	_, err = env.officerRepo.FindByID("o-tg1")
	assert.NoError(t, err, "子树之外的官员绑定必须原样保留")
	assert.Empty(t, env.publisher.published)
}

func TestOfficerServiceRemoveUnknownWorkingGroup(t *testing.T) {
	env := newOfficerTestEnv(t)

	_, err := env.svc.Remove(testUser, "ghost", []string{"o1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOfficerServiceRemoveEmpty(t *testing.T) {
	env := newOfficerTestEnv(t)

	deleted, err := env.svc.Remove(testUser, "wg", nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Empty(t, env.publisher.published)
}
