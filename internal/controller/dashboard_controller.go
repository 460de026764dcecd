package controller

import (
	"eduverse_backend/internal/service"
	"eduverse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// GetStudentDashboard godoc
// @Summary 学生仪表盘
// @Description 已选课程进度、徽章与已完成资源数
// @Tags 仪表盘
// @Produce json
// @Param id path string true "学生ID"
// @Success 200 {object} util.Response{data=service.StudentDashboard}
// @Failure 404 {object} util.Response
// @Router /users/{id}/dashboard [get]
func (c *DashboardController) GetStudentDashboard(ctx *gin.Context) {
	d, err := c.DashboardService.GetStudentDashboard(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, d)
}

// GetInstructorDashboard godoc
// @Summary 教师仪表盘
// @Description 名下课程的模块数、选课人数与平均进度
// @Tags 仪表盘
// @Produce json
// @Param id path string true "教师ID"
// @Success 200 {object} util.Response{data=service.InstructorDashboard}
// @Failure 404 {object} util.Response
// @Router /instructors/{id}/dashboard [get]
func (c *DashboardController) GetInstructorDashboard(ctx *gin.Context) {
	d, err := c.DashboardService.GetInstructorDashboard(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, d)
}
