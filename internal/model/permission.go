// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "fmt"

// AccessLevel 是功能域上的访问级别，构成有序标尺 none < ro < rw < admin。
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessRO
	AccessRW
	AccessAdmin
)

// String 返回访问级别的字符串表示。
func (l AccessLevel) String() string {
	switch l {
	case AccessNone:
		return "none"
	case AccessRO:
		return "ro"
	case AccessRW:
		return "rw"
	case AccessAdmin:
		return "admin"
	}
	return "none"
}

// MarshalJSON 将访问级别序列化为字符串形式，便于前端直接消费。
func (l AccessLevel) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", l.String())), nil
}

// maxLevel 返回两个访问级别中的较高者。
func maxLevel(a, b AccessLevel) AccessLevel {
	if a > b {
		return a
	}
	return b
}

// PermissionSet 记录一个用户在各功能域上的访问级别。
// 使用固定字段而不是 map，让编译器能够捕获功能域名称的拼写错误。
type PermissionSet struct {
	Meetings AccessLevel `json:"meetings"`
	Ballots  AccessLevel `json:"ballots"`
	Members  AccessLevel `json:"members"`
	Results  AccessLevel `json:"results"`
	Comments AccessLevel `json:"comments"`
	Polling  AccessLevel `json:"polling"`
}

// Merge 返回逐功能域取最大值后的权限集合。
// 合并是单调的：引入更多集合只会提升或维持级别，不会降低。
func (p PermissionSet) Merge(o PermissionSet) PermissionSet {
	return PermissionSet{
		Meetings: maxLevel(p.Meetings, o.Meetings),
		Ballots:  maxLevel(p.Ballots, o.Ballots),
		Members:  maxLevel(p.Members, o.Members),
		Results:  maxLevel(p.Results, o.Results),
		Comments: maxLevel(p.Comments, o.Comments),
		Polling:  maxLevel(p.Polling, o.Polling),
	}
}

// UniformPermissions 构造一个所有功能域均为 level 的权限集合。
func UniformPermissions(level AccessLevel) PermissionSet {
	return PermissionSet{
		Meetings: level,
		Ballots:  level,
		Members:  level,
		Results:  level,
		Comments: level,
		Polling:  level,
	}
}
