package controller

import (
	"eduverse_backend/internal/service"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

type PuzzleController struct {
	PuzzleService *service.PuzzleService
}

func NewPuzzleController(puzzleService *service.PuzzleService) *PuzzleController {
	return &PuzzleController{PuzzleService: puzzleService}
}

// ListPuzzles godoc
// @Summary 内置填字游戏列表
// @Tags 填字游戏
// @Produce json
// @Success 200 {object} util.Response{data=[]string}
// @Router /puzzles [get]
func (c *PuzzleController) ListPuzzles(ctx *gin.Context) {
	util.Success(ctx, c.PuzzleService.Puzzles.IDs())
}

// GetPuzzle godoc
// @Summary 获取填字游戏
// @Description 返回网格与线索，不含答案
// @Tags 填字游戏
// @Produce json
// @Param id path string true "谜题ID"
// @Success 200 {object} util.Response{data=puzzle.View}
// @Failure 404 {object} util.Response
// @Router /puzzles/{id} [get]
func (c *PuzzleController) GetPuzzle(ctx *gin.Context) {
	v, err := c.PuzzleService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, v)
}

// SubmitPuzzle godoc
// @Summary 提交填字答案
// @Description cells 的 key 形如 "行-列"，全部正确时授予 Puzzle Master 徽章
// @Tags 填字游戏
// @Accept json
// @Produce json
// @Param id path string true "谜题ID"
// @Param request body validator.PuzzleSubmitRequest true "作答"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /puzzles/{id}/submit [post]
func (c *PuzzleController) SubmitPuzzle(ctx *gin.Context) {
	var req validator.PuzzleSubmitRequest
	if !bindJSON(ctx, &req) {
		return
	}
	res, err := c.PuzzleService.Submit(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}
