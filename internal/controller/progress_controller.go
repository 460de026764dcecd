package controller

import (
	"fmt"
	"net/http"

	"eduverse_backend/internal/service"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProgressController 选课、模块完成与资源学习进度
type ProgressController struct {
	ProgressService         *service.ProgressService
	ResourceProgressService *service.ResourceProgressService
	ReportService           *service.ReportService
	Validator               *validator.Validator
}

func NewProgressController(progress *service.ProgressService, tracker *service.ResourceProgressService, report *service.ReportService, v *validator.Validator) *ProgressController {
	return &ProgressController{
		ProgressService:         progress,
		ResourceProgressService: tracker,
		ReportService:           report,
		Validator:               v,
	}
}

// Enroll godoc
// @Summary 选课
// @Description 重复选课返回已有记录
// @Tags 进度
// @Accept json
// @Produce json
// @Param id path string true "课程ID"
// @Param request body validator.EnrollRequest true "学生ID"
// @Success 201 {object} util.Response{data=model.Enrollment} "新建"
// @Success 200 {object} util.Response{data=model.Enrollment} "已存在"
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/{id}/enroll [post]
func (c *ProgressController) Enroll(ctx *gin.Context) {
	var req validator.EnrollRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.Validator.Struct(&req).OrNil(); err != nil {
		util.RespondError(ctx, err)
		return
	}
	e, created, err := c.ProgressService.Enroll(ctx.Request.Context(), req.StudentID, ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if created {
		util.Created(ctx, e)
		return
	}
	util.Success(ctx, e)
}

// ListCourseEnrollments godoc
// @Summary 课程下所有学生的进度
// @Tags 进度
// @Produce json
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=[]service.StudentProgressRow}
// @Failure 404 {object} util.Response
// @Router /courses/{id}/enrollments [get]
func (c *ProgressController) ListCourseEnrollments(ctx *gin.Context) {
	rows, err := c.ProgressService.ListCourseProgress(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// ExportCourseProgress godoc
// @Summary 导出课程进度
// @Tags 进度
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "课程ID"
// @Success 200 {file} file
// @Failure 404 {object} util.Response
// @Router /courses/{id}/progress/export [get]
func (c *ProgressController) ExportCourseProgress(ctx *gin.Context) {
	courseID := ctx.Param("id")
	buf, err := c.ReportService.ExportCourseProgress(ctx.Request.Context(), courseID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="course-%s-progress.xlsx"`, courseID))
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetStudentProgress godoc
// @Summary 单个学生在课程中的逐模块进度
// @Tags 进度
// @Produce json
// @Param id path string true "课程ID"
// @Param studentId path string true "学生ID"
// @Success 200 {object} util.Response{data=service.StudentCourseProgress}
// @Failure 404 {object} util.Response
// @Router /courses/{id}/students/{studentId}/progress [get]
func (c *ProgressController) GetStudentProgress(ctx *gin.Context) {
	p, err := c.ProgressService.GetStudentProgress(ctx.Request.Context(), ctx.Param("id"), ctx.Param("studentId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// ToggleModule godoc
// @Summary 切换模块完成状态
// @Description 完成或取消完成模块，重新计算课程进度并授予徽章
// @Tags 进度
// @Accept json
// @Produce json
// @Param id path string true "课程ID"
// @Param moduleId path string true "模块ID"
// @Param request body validator.ToggleRequest true "学生ID"
// @Success 200 {object} util.Response{data=service.TransitionResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "并发修改"
// @Router /courses/{id}/modules/{moduleId}/toggle [post]
func (c *ProgressController) ToggleModule(ctx *gin.Context) {
	var req validator.ToggleRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.Validator.Struct(&req).OrNil(); err != nil {
		util.RespondError(ctx, err)
		return
	}
	res, err := c.ProgressService.ToggleModuleCompletion(ctx.Request.Context(), req.UserID, ctx.Param("id"), ctx.Param("moduleId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// GetModuleProgress godoc
// @Summary 模块资源及当前用户进度
// @Tags 进度
// @Produce json
// @Param moduleId path string true "模块ID"
// @Param userId query string false "用户ID，也可通过 X-User-ID 传入"
// @Success 200 {object} util.Response{data=[]service.ResourceWithProgress}
// @Failure 404 {object} util.Response
// @Router /modules/{moduleId}/progress [get]
func (c *ProgressController) GetModuleProgress(ctx *gin.Context) {
	list, err := c.ResourceProgressService.ListModuleProgress(ctx.Request.Context(), util.ActingUserID(ctx), ctx.Param("moduleId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// UpdateResourceProgress godoc
// @Summary 更新资源学习进度
// @Description timeSpent 累加；首次完成时记录 completedAt
// @Tags 进度
// @Accept json
// @Produce json
// @Param id path string true "资源ID"
// @Param request body validator.ProgressUpdateRequest true "进度"
// @Success 200 {object} util.Response{data=model.ResourceProgress}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /resources/{id}/progress [post]
func (c *ProgressController) UpdateResourceProgress(ctx *gin.Context) {
	var req validator.ProgressUpdateRequest
	if !bindJSON(ctx, &req) {
		return
	}
	p, err := c.ResourceProgressService.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, p)
}
