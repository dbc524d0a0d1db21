package controller

import (
	"strconv"

	"studytest_backend/internal/model"
	"studytest_backend/internal/service"
	"studytest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// TestController 试卷管理
type TestController struct {
	TestService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{TestService: testService}
}

// CreateTest godoc
// @Summary 创建试卷
// @Description 手动录入题目创建试卷，题目会被规范化为四个选项
// @Tags 试卷
// @Accept json
// @Produce json
// @Param request body service.TestRequest true "试卷"
// @Success 201 {object} util.Response{data=model.Test}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/tests [post]
func (c *TestController) CreateTest(ctx *gin.Context) {
	var req service.TestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.TestService.Create(&req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, test)
}

// ListTests godoc
// @Summary 试卷列表
// @Tags 试卷
// @Produce json
// @Param name query string false "名称关键字"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/tests [get]
func (c *TestController) ListTests(ctx *gin.Context) {
	page, limit := pagination(ctx)
	tests, total, err := c.TestService.List(ctx.Query("name"), page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPage(tests, total, page, limit))
}

// GetTest godoc
// @Summary 试卷详情
// @Tags 试卷
// @Produce json
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response{data=model.Test}
// @Failure 404 {object} util.Response
// @Router /api/tests/{id} [get]
func (c *TestController) GetTest(ctx *gin.Context) {
	test, err := c.TestService.Get(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

// UpdateTest godoc
// @Summary 更新试卷
// @Description 整体替换试卷内容，已有答题记录不受影响
// @Tags 试卷
// @Accept json
// @Produce json
// @Param id path string true "试卷ID"
// @Param request body service.TestRequest true "试卷"
// @Success 200 {object} util.Response{data=model.Test}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/tests/{id} [put]
func (c *TestController) UpdateTest(ctx *gin.Context) {
	var req service.TestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.TestService.Update(ctx.Param("id"), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

// ReplaceQuestion godoc
// @Summary 替换单道题目
// @Tags 试卷
// @Accept json
// @Produce json
// @Param id path string true "试卷ID"
// @Param index path int true "题目下标，从 0 开始"
// @Param request body model.Question true "题目"
// @Success 200 {object} util.Response{data=model.Test}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/tests/{id}/questions/{index} [put]
func (c *TestController) ReplaceQuestion(ctx *gin.Context) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		util.BadRequest(ctx, "question index must be an integer")
		return
	}

	var q model.Question
	if err := ctx.ShouldBindJSON(&q); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.TestService.ReplaceQuestion(ctx.Param("id"), index, q)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

// DeleteTest godoc
// @Summary 删除试卷
// @Tags 试卷
// @Produce json
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/tests/{id} [delete]
func (c *TestController) DeleteTest(ctx *gin.Context) {
	if err := c.TestService.Delete(ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id")})
}
