package controller

import (
	"strconv"

	"eduverse_backend/internal/service"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

// ContentController 文件上传、作业与测验
type ContentController struct {
	ContentService *service.ContentService
	CatalogService *service.CatalogService
}

func NewContentController(contentService *service.ContentService, catalogService *service.CatalogService) *ContentController {
	return &ContentController{ContentService: contentService, CatalogService: catalogService}
}

// UploadResourceForm 上传资源的表单字段
// swagger:model UploadResourceForm
type UploadResourceForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Type        string `form:"type"`
	Tags        string `form:"tags"`
	IsPublished string `form:"isPublished"`
	CreatedBy   string `form:"createdBy"`
}

// UploadResource godoc
// @Summary 上传资源文件
// @Description 上传 file、pdf 或 video 资源并追加到模块末尾，视频会读取时长
// @Tags 资源
// @Accept multipart/form-data
// @Produce json
// @Param moduleId path string true "模块ID"
// @Param title formData string false "标题，默认取文件名"
// @Param description formData string false "描述"
// @Param type formData string true "资源类型" Enums(file, pdf, video)
// @Param tags formData string false "标签，逗号分隔"
// @Param isPublished formData bool false "是否发布"
// @Param file formData file true "资源文件"
// @Success 201 {object} util.Response{data=model.Resource}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /modules/{moduleId}/resources/upload [post]
func (c *ContentController) UploadResource(ctx *gin.Context) {
	var form UploadResourceForm
	if err := ctx.ShouldBind(&form); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "File is required")
		return
	}

	req := &validator.ResourceRequest{
		Title:       form.Title,
		Description: form.Description,
		Type:        form.Type,
		CreatedBy:   form.CreatedBy,
	}
	if req.CreatedBy == "" {
		req.CreatedBy = util.ActingUserID(ctx)
	}
	req.Tags = splitCSV(form.Tags)
	if published, err := strconv.ParseBool(form.IsPublished); err == nil {
		req.IsPublished = &published
	}

	r, err := c.ContentService.UploadResource(ctx.Request.Context(), ctx.Param("moduleId"), file, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, r)
}

// CreateAssignment godoc
// @Summary 创建作业
// @Description text 类型需要 prompt，file 类型需要 filePath
// @Tags 作业
// @Accept json
// @Produce json
// @Param moduleId path string true "模块ID"
// @Param request body validator.AssignmentRequest true "作业信息"
// @Success 201 {object} util.Response{data=model.Assignment}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /modules/{moduleId}/assignments [post]
func (c *ContentController) CreateAssignment(ctx *gin.Context) {
	var req validator.AssignmentRequest
	if !bindJSON(ctx, &req) {
		return
	}
	a, err := c.CatalogService.CreateAssignment(ctx.Request.Context(), ctx.Param("moduleId"), &req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// ListAssignments godoc
// @Summary 模块作业列表
// @Tags 作业
// @Produce json
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response{data=[]model.Assignment}
// @Failure 404 {object} util.Response
// @Router /modules/{moduleId}/assignments [get]
func (c *ContentController) ListAssignments(ctx *gin.Context) {
	list, err := c.CatalogService.ListAssignments(ctx.Request.Context(), ctx.Param("moduleId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// DeleteAssignment godoc
// @Summary 删除作业
// @Tags 作业
// @Produce json
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /assignments/{id} [delete]
func (c *ContentController) DeleteAssignment(ctx *gin.Context) {
	if err := c.CatalogService.DeleteAssignment(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id")})
}

// CreateQuiz godoc
// @Summary 创建测验
// @Description 每道题至少两个选项且至少一个正确
// @Tags 测验
// @Accept json
// @Produce json
// @Param moduleId path string true "模块ID"
// @Param request body validator.QuizRequest true "测验信息"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /modules/{moduleId}/quizzes [post]
func (c *ContentController) CreateQuiz(ctx *gin.Context) {
	var req validator.QuizRequest
	if !bindJSON(ctx, &req) {
		return
	}
	q, err := c.CatalogService.CreateQuiz(ctx.Request.Context(), ctx.Param("moduleId"), &req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// ListQuizzes godoc
// @Summary 模块测验列表
// @Tags 测验
// @Produce json
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Failure 404 {object} util.Response
// @Router /modules/{moduleId}/quizzes [get]
func (c *ContentController) ListQuizzes(ctx *gin.Context) {
	list, err := c.CatalogService.ListQuizzes(ctx.Request.Context(), ctx.Param("moduleId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// GetQuiz godoc
// @Summary 测验详情
// @Tags 测验
// @Produce json
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 404 {object} util.Response
// @Router /quizzes/{id} [get]
func (c *ContentController) GetQuiz(ctx *gin.Context) {
	q, err := c.CatalogService.GetQuiz(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuiz godoc
// @Summary 删除测验
// @Tags 测验
// @Produce json
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /quizzes/{id} [delete]
func (c *ContentController) DeleteQuiz(ctx *gin.Context) {
	if err := c.CatalogService.DeleteQuiz(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id")})
}
