// Package service 包含了应用的业务逻辑层。
package service

import "errors"

// 业务错误哨兵。调用方使用 errors.Is 区分错误类别，
// handler 层据此映射 HTTP 状态码（400 / 404 / 403 / 409 / 500）。
var (
	// ErrInvalid 表示请求本身不合法，例如缺少必需的查询选择器。
	ErrInvalid = errors.New("无效的请求")
	// ErrNotFound 表示引用了不存在的组、官员或祖先节点。
	ErrNotFound = errors.New("记录不存在")
	// ErrForbidden 表示试图变更不可变的根组，或在授权子树之外绑定官员。
	ErrForbidden = errors.New("操作被禁止")
	// ErrConflict 表示删除会孤立子组、外部记录仍引用目标组，或违反类别格约束。
	ErrConflict = errors.New("与现有记录冲突")
	// ErrDataIntegrity 表示遍历时检测到环或无法抵达根节点。
	// 这类错误说明存储中的树本身已损坏，永远不可重试，必须中止请求并显著记录。
	ErrDataIntegrity = errors.New("数据完整性损坏")
)
