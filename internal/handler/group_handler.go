// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"grouphub-go/internal/middleware"
	"grouphub-go/internal/model"
	"grouphub-go/internal/service"
	"grouphub-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// GroupHandler 负责处理所有与组树相关的 API 请求。
type GroupHandler struct {
	groupService service.GroupService
}

// NewGroupHandler 创建一个新的 GroupHandler 实例。
func NewGroupHandler(groupService service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// respondError 按业务错误类别映射 HTTP 状态码并写出统一的响应负载。
// DataIntegrity 说明存储的树本身已损坏，按内部错误返回并显著记录，
// 与普通的校验失败区分开。
func respondError(c *gin.Context, action string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrDataIntegrity):
		log.Errorf("[%s] 数据完整性错误: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "组织树数据损坏，请联系管理员", "data": nil})
		return
	case errors.Is(err, service.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	default:
		log.Error(action+": 未分类错误", err)
	}
	c.JSON(status, gin.H{"code": status, "message": err.Error(), "data": nil})
}

// currentUser 取出认证中间件解析的调用者，取不到时直接写 500。
func currentUser(c *gin.Context) (*service.UserContext, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法获取用户信息", "data": nil})
		return nil, false
	}
	return user, true
}

// List 处理组列表查询，支持 parent（组名，解析为其整棵子树）与等值过滤。
func (h *GroupHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	query := &service.GroupQuery{
		Parent:  c.Query("parent"),
		Type:    c.Query("type"),
		Status:  c.Query("status"),
		Symbol:  c.Query("symbol"),
		Project: c.Query("project"),
	}

	groups, err := h.groupService.List(user, query)
	if err != nil {
		respondError(c, "ListGroups", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": groups})
}

// Tree 处理组织树的嵌套渲染请求。
func (h *GroupHandler) Tree(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	tree, err := h.groupService.Tree(user)
	if err != nil {
		respondError(c, "GroupTree", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": tree})
}

// CreateGroupRequest 定义了创建组 API 的单个请求条目。
type CreateGroupRequest struct {
	ID       string  `json:"id"`
	ParentID *string `json:"parentId" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Type     string  `json:"type" binding:"required"`
	Status   string  `json:"status"`
	Color    string  `json:"color"`
	Symbol   string  `json:"symbol"`
	Project  string  `json:"project"`
}

// Create 处理批量创建组的请求。
func (h *GroupHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req []CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("CreateGroups: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载", "data": nil})
		return
	}

	creates := make([]model.Group, 0, len(req))
	for _, r := range req {
		creates = append(creates, model.Group{
			ID:       r.ID,
			ParentID: r.ParentID,
			Name:     r.Name,
			Type:     model.GroupType(r.Type),
			Status:   r.Status,
			Color:    r.Color,
			Symbol:   r.Symbol,
			Project:  r.Project,
		})
	}

	groups, err := h.groupService.Add(user, creates)
	if err != nil {
		respondError(c, "CreateGroups", err)
		return
	}
	log.Infof("成员 %d 创建了 %d 个组", user.SAPIN, len(groups))
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": groups})
}

// Update 处理批量部分更新组的请求。
func (h *GroupHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var updates []service.GroupUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		log.Warnf("UpdateGroups: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载", "data": nil})
		return
	}

	groups, err := h.groupService.Update(user, updates)
	if err != nil {
		respondError(c, "UpdateGroups", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": groups})
}

// RemoveGroupsRequest 定义了批量删除组 API 的请求体结构。
type RemoveGroupsRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// Remove 处理批量删除组的请求（全有或全无）。
func (h *GroupHandler) Remove(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req RemoveGroupsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("RemoveGroups: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载", "data": nil})
		return
	}

	count, err := h.groupService.Remove(user, req.IDs)
	if err != nil {
		respondError(c, "RemoveGroups", err)
		return
	}
	log.Infof("成员 %d 删除了 %d 个组", user.SAPIN, count)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"deleted": count}})
}

// Changelog 处理变更审计记录查询（仅根组官员可访问，由路由中间件把关）。
func (h *GroupHandler) Changelog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := h.groupService.Changelog(limit)
	if err != nil {
		respondError(c, "GroupChangelog", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": entries})
}
