package controller

import (
	"eduverse_backend/internal/model"
	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/service"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"
	"eduverse_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResourceController 模块内资源的增删、排序与元数据
type ResourceController struct {
	Sequencer               *service.ResourceSequencer
	CatalogService          *service.CatalogService
	ResourceProgressService *service.ResourceProgressService
}

func NewResourceController(sequencer *service.ResourceSequencer, catalog *service.CatalogService, tracker *service.ResourceProgressService) *ResourceController {
	return &ResourceController{
		Sequencer:               sequencer,
		CatalogService:          catalog,
		ResourceProgressService: tracker,
	}
}

// ListModuleResources godoc
// @Summary 模块内资源
// @Tags 资源
// @Produce json
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response{data=[]model.Resource}
// @Failure 404 {object} util.Response
// @Router /modules/{moduleId}/resources [get]
func (c *ResourceController) ListModuleResources(ctx *gin.Context) {
	list, err := c.Sequencer.List(ctx.Request.Context(), ctx.Param("moduleId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// CreateResource godoc
// @Summary 追加资源
// @Description 追加到模块末尾，order 为当前最大值加一
// @Tags 资源
// @Accept json
// @Produce json
// @Param moduleId path string true "模块ID"
// @Param request body validator.ResourceRequest true "资源信息"
// @Success 201 {object} util.Response{data=model.Resource}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /modules/{moduleId}/resources [post]
func (c *ResourceController) CreateResource(ctx *gin.Context) {
	var req validator.ResourceRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if req.CreatedBy == "" {
		req.CreatedBy = util.ActingUserID(ctx)
	}
	r, err := c.Sequencer.Append(ctx.Request.Context(), ctx.Param("moduleId"), &req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, r)
}

// ReorderResources godoc
// @Summary 资源排序
// @Description 整批提交模块内全部资源的新 order，必须恰好是 1..N
// @Tags 资源
// @Accept json
// @Produce json
// @Param moduleId path string true "模块ID"
// @Param request body validator.ReorderRequest true "新顺序"
// @Success 200 {object} util.Response{data=[]model.Resource}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "顺序冲突"
// @Router /modules/{moduleId}/resources/reorder [put]
func (c *ResourceController) ReorderResources(ctx *gin.Context) {
	var req validator.ReorderRequest
	if !bindJSON(ctx, &req) {
		return
	}
	list, err := c.Sequencer.Reorder(ctx.Request.Context(), ctx.Param("moduleId"), req.ResourceOrders)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// ListResources godoc
// @Summary 资源列表
// @Tags 资源
// @Produce json
// @Param title query string false "标题（模糊匹配）"
// @Param type query string false "资源类型" Enums(pdf, video, link, file, text)
// @Param moduleId query string false "模块ID"
// @Param tags query string false "标签，逗号分隔，命中任意一个"
// @Param published query bool false "是否发布"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param sort query string false "排序字段" default(order)
// @Success 200 {object} util.Response{data=util.PageResponse{list=[]model.Resource}}
// @Router /resources [get]
func (c *ResourceController) ListResources(ctx *gin.Context) {
	page := util.ParsePage(ctx, "order")
	filter := repository.ResourceFilter{
		Title:     ctx.Query("title"),
		ModuleID:  ctx.Query("moduleId"),
		Tags:      splitQuery(ctx, "tags"),
		Published: boolQuery(ctx, "published"),
	}
	if t := ctx.Query("type"); t != "" {
		filter.Type = model.NormalizeResourceType(t)
	}
	list, total, err := c.CatalogService.ListResources(ctx.Request.Context(), filter, page)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPageResponse(list, total, page))
}

// GetResource godoc
// @Summary 资源详情
// @Description 带上用户ID时同时记录一次访问
// @Tags 资源
// @Produce json
// @Param id path string true "资源ID"
// @Param userId query string false "用户ID，也可通过 X-User-ID 传入"
// @Success 200 {object} util.Response{data=model.Resource}
// @Failure 404 {object} util.Response
// @Router /resources/{id} [get]
func (c *ResourceController) GetResource(ctx *gin.Context) {
	r, err := c.CatalogService.GetResource(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if userID := util.ActingUserID(ctx); userID != "" {
		if _, err := c.ResourceProgressService.RecordAccess(ctx.Request.Context(), userID, r.ID); err != nil {
			logger.Log.Warn("Failed to record resource access",
				zap.String("user_id", userID),
				zap.String("resource_id", r.ID),
				zap.Error(err))
		}
	}
	util.Success(ctx, r)
}

// UpdateResource godoc
// @Summary 更新资源元数据
// @Description 不修改 order，排序请使用 reorder 接口
// @Tags 资源
// @Accept json
// @Produce json
// @Param id path string true "资源ID"
// @Param request body validator.ResourceUpdateRequest true "资源信息"
// @Success 200 {object} util.Response{data=model.Resource}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /resources/{id} [put]
func (c *ResourceController) UpdateResource(ctx *gin.Context) {
	var req validator.ResourceUpdateRequest
	if !bindJSON(ctx, &req) {
		return
	}
	r, err := c.CatalogService.UpdateResource(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, r)
}

// DeleteResource godoc
// @Summary 删除资源
// @Description 后续资源的 order 前移一位
// @Tags 资源
// @Produce json
// @Param id path string true "资源ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /resources/{id} [delete]
func (c *ResourceController) DeleteResource(ctx *gin.Context) {
	if err := c.Sequencer.Remove(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id")})
}
