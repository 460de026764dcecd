package controller

import (
	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/service"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

// CourseController 课程与模块
type CourseController struct {
	CatalogService *service.CatalogService
}

func NewCourseController(catalogService *service.CatalogService) *CourseController {
	return &CourseController{CatalogService: catalogService}
}

// CreateCourse godoc
// @Summary 创建课程
// @Tags 课程
// @Accept json
// @Produce json
// @Param request body validator.CourseRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response "教师不存在"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req validator.CourseRequest
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.CatalogService.CreateCourse(ctx.Request.Context(), &req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// ListCourses godoc
// @Summary 课程列表
// @Tags 课程
// @Produce json
// @Param instructorId query string false "教师ID"
// @Param title query string false "标题（模糊匹配）"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param sort query string false "排序字段" default(-createdAt)
// @Success 200 {object} util.Response{data=util.PageResponse{list=[]model.Course}}
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page := util.ParsePage(ctx, "-createdAt")
	filter := repository.CourseFilter{
		InstructorID: ctx.Query("instructorId"),
		Title:        ctx.Query("title"),
	}
	courses, total, err := c.CatalogService.ListCourses(ctx.Request.Context(), filter, page)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPageResponse(courses, total, page))
}

// ListInstructorCourses godoc
// @Summary 教师名下的课程
// @Tags 课程
// @Produce json
// @Param id path string true "教师ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse{list=[]model.Course}}
// @Failure 404 {object} util.Response
// @Router /instructors/{id}/courses [get]
func (c *CourseController) ListInstructorCourses(ctx *gin.Context) {
	page := util.ParsePage(ctx, "-createdAt")
	courses, total, err := c.CatalogService.ListInstructorCourses(ctx.Request.Context(), ctx.Param("id"), page)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPageResponse(courses, total, page))
}

// GetCourse godoc
// @Summary 课程详情
// @Description 返回模块树，模块按 position、资源按 order 排序
// @Tags 课程
// @Produce json
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.CatalogService.GetCourse(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 课程
// @Accept json
// @Produce json
// @Param id path string true "课程ID"
// @Param request body validator.CourseRequest true "课程信息"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	var req validator.CourseRequest
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.CatalogService.UpdateCourse(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Description 级联删除模块、资源、作业、测验和选课记录
// @Tags 课程
// @Produce json
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	if err := c.CatalogService.DeleteCourse(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id")})
}

// CreateModule godoc
// @Summary 创建模块
// @Description position 为空时追加到末尾，否则插入到指定位置
// @Tags 模块
// @Accept json
// @Produce json
// @Param id path string true "课程ID"
// @Param request body validator.ModuleRequest true "模块信息"
// @Success 201 {object} util.Response{data=model.Module}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /courses/{id}/modules [post]
func (c *CourseController) CreateModule(ctx *gin.Context) {
	var req validator.ModuleRequest
	if !bindJSON(ctx, &req) {
		return
	}
	module, err := c.CatalogService.CreateModule(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

// UpdateModule godoc
// @Summary 更新模块
// @Tags 模块
// @Accept json
// @Produce json
// @Param id path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param request body validator.ModuleRequest true "模块信息"
// @Success 200 {object} util.Response{data=model.Module}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/{id}/modules/{moduleId} [put]
func (c *CourseController) UpdateModule(ctx *gin.Context) {
	var req validator.ModuleRequest
	if !bindJSON(ctx, &req) {
		return
	}
	module, err := c.CatalogService.UpdateModule(ctx.Request.Context(), ctx.Param("id"), ctx.Param("moduleId"), &req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// DeleteModule godoc
// @Summary 删除模块
// @Description 级联删除资源、作业和测验，后续模块前移
// @Tags 模块
// @Produce json
// @Param id path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/{id}/modules/{moduleId} [delete]
func (c *CourseController) DeleteModule(ctx *gin.Context) {
	if err := c.CatalogService.DeleteModule(ctx.Request.Context(), ctx.Param("id"), ctx.Param("moduleId")); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("moduleId")})
}
