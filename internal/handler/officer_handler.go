package handler

import (
	"net/http"
	"strings"

	"grouphub-go/internal/model"
	"grouphub-go/internal/service"
	"grouphub-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// OfficerHandler 负责处理官员职位绑定相关的 API 请求。
// 所有写操作都挂在 /working-groups/:wgId/officers 之下，
// wgId 即调用方被授权管理的工作组，子树范围校验在服务层完成。
type OfficerHandler struct {
	officerService service.OfficerService
}

// NewOfficerHandler 创建一个新的 OfficerHandler 实例。
func NewOfficerHandler(officerService service.OfficerService) *OfficerHandler {
	return &OfficerHandler{officerService: officerService}
}

// List 处理官员查询，支持 ids（逗号分隔）、groupId、parentGroupId 三种互斥选择器。
func (h *OfficerHandler) List(c *gin.Context) {
	query := &service.OfficerQuery{
		GroupID:       c.Query("groupId"),
		ParentGroupID: c.Query("parentGroupId"),
	}
	if raw := c.Query("ids"); raw != "" {
		query.IDs = strings.Split(raw, ",")
	}

	officers, err := h.officerService.List(query)
	if err != nil {
		respondError(c, "ListOfficers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": officers})
}

// CreateOfficerRequest 定义了创建官员绑定 API 的单个请求条目。
type CreateOfficerRequest struct {
	ID       string `json:"id"`
	GroupID  string `json:"groupId" binding:"required"`
	SAPIN    uint64 `json:"sapin" binding:"required"`
	Position string `json:"position" binding:"required"`
}

// Create 处理批量创建官员绑定的请求。
func (h *OfficerHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req []CreateOfficerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("CreateOfficers: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载", "data": nil})
		return
	}

	creates := make([]model.Officer, 0, len(req))
	for _, r := range req {
		creates = append(creates, model.Officer{
			ID:       r.ID,
			GroupID:  r.GroupID,
			SAPIN:    r.SAPIN,
			Position: r.Position,
		})
	}

	officers, err := h.officerService.Add(user, c.Param("wgId"), creates)
	if err != nil {
		respondError(c, "CreateOfficers", err)
		return
	}
	log.Infof("成员 %d 在工作组 %s 下创建了 %d 条官员绑定", user.SAPIN, c.Param("wgId"), len(officers))
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": officers})
}

// Update 处理批量部分更新官员绑定的请求。
func (h *OfficerHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var updates []service.OfficerUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		log.Warnf("UpdateOfficers: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载", "data": nil})
		return
	}

	officers, err := h.officerService.Update(user, c.Param("wgId"), updates)
	if err != nil {
		respondError(c, "UpdateOfficers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": officers})
}

// RemoveOfficersRequest 定义了批量删除官员绑定 API 的请求体结构。
type RemoveOfficersRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// Remove 处理批量删除官员绑定的请求，删除范围被限定在授权子树内。
func (h *OfficerHandler) Remove(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req RemoveOfficersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("RemoveOfficers: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载", "data": nil})
		return
	}

	count, err := h.officerService.Remove(user, c.Param("wgId"), req.IDs)
	if err != nil {
		respondError(c, "RemoveOfficers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"deleted": count}})
}
