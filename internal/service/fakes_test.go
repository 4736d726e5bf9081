package service

import (
	"sort"

	"grouphub-go/internal/model"
	"grouphub-go/pkg/tasks"

	"gorm.io/gorm"
)

// 本文件提供基于内存的仓储替身，让业务层测试不依赖 MySQL/Redis/Kafka。
// 替身遵守真实仓储的契约：查不到记录时返回 gorm.ErrRecordNotFound。

type fakeGroupRepo struct {
	groups map[string]*model.Group
	// officers 仅用于 DeleteBatchWithOfficers 的级联删除
	officers *fakeOfficerRepo
}

func newFakeGroupRepo(officers *fakeOfficerRepo) *fakeGroupRepo {
	r := &fakeGroupRepo{groups: make(map[string]*model.Group), officers: officers}
	officers.groups = r
	return r
}

func (r *fakeGroupRepo) Create(group *model.Group) error {
	g := *group
	r.groups[g.ID] = &g
	return nil
}

func (r *fakeGroupRepo) FindByID(id string) (*model.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *g
	return &out, nil
}

func (r *fakeGroupRepo) FindByName(name string) (*model.Group, error) {
	for _, g := range r.groups {
		if g.Name == name {
			out := *g
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGroupRepo) FindRoot() (*model.Group, error) {
	for _, g := range r.groups {
		if g.ParentID == nil {
			out := *g
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGroupRepo) FindAll() ([]model.Group, error) {
	ids := make([]string, 0, len(r.groups))
	for id := range r.groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]model.Group, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.groups[id])
	}
	return out, nil
}

func (r *fakeGroupRepo) FindBatchByIDs(ids []string) ([]model.Group, error) {
	var out []model.Group
	for _, id := range ids {
		if g, ok := r.groups[id]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) Update(group *model.Group) error {
	g := *group
	r.groups[g.ID] = &g
	return nil
}

func (r *fakeGroupRepo) DeleteBatchWithOfficers(ids []string) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if _, ok := r.groups[id]; ok {
			delete(r.groups, id)
			deleted++
		}
		for oid, o := range r.officers.officers {
			if o.GroupID == id {
				delete(r.officers.officers, oid)
			}
		}
	}
	return deleted, nil
}

type fakeOfficerRepo struct {
	officers map[string]*model.Officer
	// groups 用于 DeleteScoped 在"删除时刻"推导授权子树，模拟真实仓储的事务内推导
	groups *fakeGroupRepo
}

func newFakeOfficerRepo() *fakeOfficerRepo {
	return &fakeOfficerRepo{officers: make(map[string]*model.Officer)}
}

func (r *fakeOfficerRepo) Create(officer *model.Officer) error {
	o := *officer
	r.officers[o.ID] = &o
	return nil
}

func (r *fakeOfficerRepo) BatchCreate(officers []*model.Officer) error {
	for _, officer := range officers {
		o := *officer
		r.officers[o.ID] = &o
	}
	return nil
}

func (r *fakeOfficerRepo) FindByID(id string) (*model.Officer, error) {
	o, ok := r.officers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *o
	return &out, nil
}

func (r *fakeOfficerRepo) FindBatchByIDs(ids []string) ([]model.Officer, error) {
	var out []model.Officer
	for _, id := range ids {
		if o, ok := r.officers[id]; ok {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOfficerRepo) FindByGroupID(groupID string) ([]model.Officer, error) {
	return r.FindByGroupIDs([]string{groupID})
}

func (r *fakeOfficerRepo) FindByGroupIDs(groupIDs []string) ([]model.Officer, error) {
	inScope := make(map[string]struct{}, len(groupIDs))
	for _, id := range groupIDs {
		inScope[id] = struct{}{}
	}
	var out []model.Officer
	for _, o := range r.sorted() {
		if _, ok := inScope[o.GroupID]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOfficerRepo) FindBySAPIN(sapin uint64) ([]model.Officer, error) {
	var out []model.Officer
	for _, o := range r.sorted() {
		if o.SAPIN == sapin {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOfficerRepo) Update(officer *model.Officer) error {
	o := *officer
	r.officers[o.ID] = &o
	return nil
}

func (r *fakeOfficerRepo) DeleteScoped(ids []string, workingGroupID string) (int64, error) {
	// 与真实仓储一致：子树按当前的组表状态推导
	if _, ok := r.groups.groups[workingGroupID]; !ok {
		return 0, gorm.ErrRecordNotFound
	}
	inScope := map[string]struct{}{workingGroupID: {}}
	for {
		added := false
		for _, g := range r.groups.groups {
			if g.ParentID == nil {
				continue
			}
			if _, ok := inScope[*g.ParentID]; !ok {
				continue
			}
			if _, ok := inScope[g.ID]; !ok {
				inScope[g.ID] = struct{}{}
				added = true
			}
		}
		if !added {
			break
		}
	}
	var deleted int64
	for _, id := range ids {
		o, ok := r.officers[id]
		if !ok {
			continue
		}
		if _, scoped := inScope[o.GroupID]; !scoped {
			continue
		}
		delete(r.officers, id)
		deleted++
	}
	return deleted, nil
}

func (r *fakeOfficerRepo) sorted() []model.Officer {
	ids := make([]string, 0, len(r.officers))
	for id := range r.officers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]model.Officer, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.officers[id])
	}
	return out
}

// fakeRefCountRepo 同时充当 Ballot 与 Session 的引用探针替身。
type fakeRefCountRepo struct {
	counts map[string]int64
}

func newFakeRefCountRepo() *fakeRefCountRepo {
	return &fakeRefCountRepo{counts: make(map[string]int64)}
}

func (r *fakeRefCountRepo) ReferencedGroupIDs(groupIDs []string) ([]string, error) {
	var ids []string
	for _, id := range groupIDs {
		if r.counts[id] > 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeChangeLogRepo struct {
	entries []model.GroupChangeLog
}

func (r *fakeChangeLogRepo) Create(entry *model.GroupChangeLog) error {
	e := *entry
	e.ID = uint(len(r.entries) + 1)
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeChangeLogRepo) FindByEventID(eventID string) (*model.GroupChangeLog, error) {
	for i := range r.entries {
		if r.entries[i].EventID == eventID {
			out := r.entries[i]
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeChangeLogRepo) FindRecent(limit int) ([]model.GroupChangeLog, error) {
	n := len(r.entries)
	if limit > n {
		limit = n
	}
	out := make([]model.GroupChangeLog, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

type fakePublisher struct {
	published []tasks.GroupChangeTask
}

func (p *fakePublisher) Publish(task tasks.GroupChangeTask) error {
	p.published = append(p.published, task)
	return nil
}

// strPtr / typePtr 是构造部分更新时的字面量辅助函数。
func strPtr(s string) *string                  { return &s }
func typePtr(t model.GroupType) *model.GroupType { return &t }
func u64Ptr(v uint64) *uint64                  { return &v }
