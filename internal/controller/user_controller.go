package controller

import (
	"eduverse_backend/internal/model"
	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/service"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService     *service.UserService
	BadgeService    *service.BadgeService
	ProgressService *service.ProgressService
}

func NewUserController(userService *service.UserService, badgeService *service.BadgeService, progressService *service.ProgressService) *UserController {
	return &UserController{
		UserService:     userService,
		BadgeService:    badgeService,
		ProgressService: progressService,
	}
}

// CreateUser godoc
// @Summary 创建用户
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body validator.UserRequest true "用户信息"
// @Success 201 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "邮箱已存在"
// @Router /users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req validator.UserRequest
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := c.UserService.Create(ctx.Request.Context(), &req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

// ListUsers godoc
// @Summary 用户列表
// @Tags 用户
// @Produce json
// @Param name query string false "姓名（模糊匹配）"
// @Param email query string false "邮箱（模糊匹配）"
// @Param role query string false "角色" Enums(student, instructor, admin)
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param sort query string false "排序字段，前缀 - 表示倒序" default(-createdAt)
// @Success 200 {object} util.Response{data=util.PageResponse{list=[]model.User}}
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	page := util.ParsePage(ctx, "-createdAt")
	filter := repository.UserFilter{
		Name:  ctx.Query("name"),
		Email: ctx.Query("email"),
		Role:  model.UserRole(ctx.Query("role")),
	}
	users, total, err := c.UserService.List(ctx.Request.Context(), filter, page)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPageResponse(users, total, page))
}

// GetUser godoc
// @Summary 用户详情（含已获得徽章）
// @Tags 用户
// @Produce json
// @Param id path string true "用户ID"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 404 {object} util.Response
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	user, err := c.UserService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// GetUserBadges godoc
// @Summary 徽章目录及用户获得状态
// @Tags 徽章
// @Produce json
// @Param id path string true "用户ID"
// @Success 200 {object} util.Response{data=[]model.BadgeStatus}
// @Failure 404 {object} util.Response
// @Router /users/{id}/badges [get]
func (c *UserController) GetUserBadges(ctx *gin.Context) {
	badges, err := c.BadgeService.ListUserBadges(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// GetUserEnrollments godoc
// @Summary 学生的选课及进度
// @Tags 进度
// @Produce json
// @Param id path string true "学生ID"
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Failure 404 {object} util.Response
// @Router /users/{id}/enrollments [get]
func (c *UserController) GetUserEnrollments(ctx *gin.Context) {
	list, err := c.ProgressService.ListByStudent(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}
