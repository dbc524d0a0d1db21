package controller

import (
	"studytest_backend/internal/service"
	"studytest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AttemptController 答题会话与答题记录
type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// SelectRequest 选择选项
// swagger:model SelectRequest
type SelectRequest struct {
	Option *int `json:"option" binding:"required"`
}

// NavigateRequest 导航：index 与 direction 二选一
// swagger:model NavigateRequest
type NavigateRequest struct {
	Index     *int              `json:"index"`
	Direction service.Direction `json:"direction"`
}

// StartAttempt godoc
// @Summary 开始答题
// @Tags 答题
// @Produce json
// @Param id path string true "试卷ID"
// @Success 201 {object} util.Response{data=service.LiveAttemptView}
// @Failure 404 {object} util.Response
// @Failure 429 {object} util.Response "会话数已达上限"
// @Router /api/tests/{id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	view, err := c.AttemptService.Start(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// GetLiveAttempt godoc
// @Summary 查询答题会话
// @Description 进行中返回题目和状态；已提交的会话在保留期内返回最终状态和答题记录ID
// @Tags 答题
// @Produce json
// @Param sid path string true "会话ID"
// @Success 200 {object} util.Response{data=service.LiveAttemptView}
// @Failure 404 {object} util.Response
// @Router /api/attempts/live/{sid} [get]
func (c *AttemptController) GetLiveAttempt(ctx *gin.Context) {
	view, err := c.AttemptService.View(ctx.Request.Context(), ctx.Param("sid"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Select godoc
// @Summary 选择当前题的选项
// @Tags 答题
// @Accept json
// @Produce json
// @Param sid path string true "会话ID"
// @Param request body SelectRequest true "选项下标 0-3"
// @Success 200 {object} util.Response{data=service.LiveAttemptView}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "已提交"
// @Router /api/attempts/live/{sid}/select [post]
func (c *AttemptController) Select(ctx *gin.Context) {
	var req SelectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.AttemptService.Select(ctx.Request.Context(), ctx.Param("sid"), *req.Option)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Navigate godoc
// @Summary 跳转题目
// @Description 越界时停留在当前题并在 notice 中提示，不视为错误
// @Tags 答题
// @Accept json
// @Produce json
// @Param sid path string true "会话ID"
// @Param request body NavigateRequest true "index 或 direction(next/previous)"
// @Success 200 {object} util.Response{data=service.LiveAttemptView}
// @Failure 400 {object} util.Response
// @Router /api/attempts/live/{sid}/navigate [post]
func (c *AttemptController) Navigate(ctx *gin.Context) {
	var req NavigateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var (
		view *service.LiveAttemptView
		err  error
	)
	switch {
	case req.Index != nil:
		view, err = c.AttemptService.Navigate(ctx.Request.Context(), ctx.Param("sid"), *req.Index)
	case req.Direction != "":
		view, err = c.AttemptService.Step(ctx.Request.Context(), ctx.Param("sid"), req.Direction)
	default:
		util.BadRequest(ctx, "index or direction is required")
		return
	}
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// ClearAnswer godoc
// @Summary 清除当前题答案
// @Tags 答题
// @Produce json
// @Param sid path string true "会话ID"
// @Success 200 {object} util.Response{data=service.LiveAttemptView}
// @Router /api/attempts/live/{sid}/clear [post]
func (c *AttemptController) ClearAnswer(ctx *gin.Context) {
	view, err := c.AttemptService.ClearAnswer(ctx.Request.Context(), ctx.Param("sid"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// ToggleMark godoc
// @Summary 标记/取消标记待复查并前进到下一题
// @Tags 答题
// @Produce json
// @Param sid path string true "会话ID"
// @Success 200 {object} util.Response{data=service.LiveAttemptView}
// @Router /api/attempts/live/{sid}/mark [post]
func (c *AttemptController) ToggleMark(ctx *gin.Context) {
	view, err := c.AttemptService.ToggleMark(ctx.Request.Context(), ctx.Param("sid"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Submit godoc
// @Summary 提交答题
// @Description 试卷在答题过程中被删除时返回 409，会话被丢弃且不保存记录
// @Tags 答题
// @Produce json
// @Param sid path string true "会话ID"
// @Success 201 {object} util.Response{data=model.TestAttempt}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/attempts/live/{sid}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	record, err := c.AttemptService.Submit(ctx.Request.Context(), ctx.Param("sid"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, record)
}

// Abandon godoc
// @Summary 放弃答题
// @Tags 答题
// @Produce json
// @Param sid path string true "会话ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/attempts/live/{sid} [delete]
func (c *AttemptController) Abandon(ctx *gin.Context) {
	if err := c.AttemptService.Abandon(ctx.Request.Context(), ctx.Param("sid")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"sessionId": ctx.Param("sid")})
}

// ListAttempts godoc
// @Summary 答题记录列表
// @Tags 答题记录
// @Produce json
// @Param testId query string false "按试卷筛选"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/attempts [get]
func (c *AttemptController) ListAttempts(ctx *gin.Context) {
	page, limit := pagination(ctx)
	records, total, err := c.AttemptService.ListAttempts(ctx.Query("testId"), page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPage(records, total, page, limit))
}

// GetAttempt godoc
// @Summary 答题记录详情
// @Tags 答题记录
// @Produce json
// @Param id path string true "记录ID"
// @Success 200 {object} util.Response{data=model.TestAttempt}
// @Failure 404 {object} util.Response
// @Router /api/attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	record, err := c.AttemptService.GetAttempt(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

// DeleteAttempt godoc
// @Summary 删除答题记录
// @Tags 答题记录
// @Produce json
// @Param id path string true "记录ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/attempts/{id} [delete]
func (c *AttemptController) DeleteAttempt(ctx *gin.Context) {
	if err := c.AttemptService.DeleteAttempt(ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id")})
}

// RetryAttempt godoc
// @Summary 重做
// @Description 以记录中内嵌的试卷开始新的答题会话
// @Tags 答题记录
// @Produce json
// @Param id path string true "记录ID"
// @Success 201 {object} util.Response{data=service.LiveAttemptView}
// @Failure 404 {object} util.Response
// @Router /api/attempts/{id}/retry [post]
func (c *AttemptController) RetryAttempt(ctx *gin.Context) {
	view, err := c.AttemptService.Retry(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, view)
}
