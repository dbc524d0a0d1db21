package controller

import (
	"fmt"
	"io"
	"strings"

	"studytest_backend/internal/service"
	"studytest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ImportController 纯文本批量导入与 AI 出题
type ImportController struct {
	ImportService *service.ImportService
}

func NewImportController(importService *service.ImportService) *ImportController {
	return &ImportController{ImportService: importService}
}

// PreviewRequest 解析预览请求
// swagger:model PreviewRequest
type PreviewRequest struct {
	Text string `json:"text" form:"text"`
}

// readUpload 读取 multipart 中的 file 字段；没有文件时返回 ok=false
func readUpload(ctx *gin.Context) (string, bool, error) {
	if !strings.HasPrefix(ctx.ContentType(), "multipart/") {
		return "", false, nil
	}
	header, err := ctx.FormFile("file")
	if err != nil {
		return "", false, nil
	}
	if !util.IsImportFile(header.Filename) {
		return "", true, fmt.Errorf("unsupported file extension: %s", header.Filename)
	}
	if header.Size > util.MaxImportBytes {
		return "", true, fmt.Errorf("file exceeds %d bytes", util.MaxImportBytes)
	}

	f, err := header.Open()
	if err != nil {
		return "", true, err
	}
	defer f.Close()

	if _, err := util.ValidateMimeType(f, []string{util.MimeText}); err != nil {
		return "", true, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", true, err
	}

	data, err := io.ReadAll(io.LimitReader(f, util.MaxImportBytes))
	if err != nil {
		return "", true, err
	}
	return string(data), true, nil
}

// PreviewImport godoc
// @Summary 解析预览
// @Description 解析粘贴的文本或上传的 .txt 文件，返回题目和每个分段的处理结果，不保存
// @Tags 导入
// @Accept json,mpfd
// @Produce json
// @Param request body PreviewRequest false "文本"
// @Param file formData file false "文本文件"
// @Success 200 {object} util.Response{data=parser.Result}
// @Failure 400 {object} util.Response
// @Router /api/imports/parse [post]
func (c *ImportController) PreviewImport(ctx *gin.Context) {
	var req PreviewRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	text, uploaded, err := readUpload(ctx)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !uploaded {
		text = req.Text
	}

	res, err := c.ImportService.Preview(ctx.Request.Context(), text)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// Import godoc
// @Summary 批量导入为试卷
// @Description 解析文本并保存为试卷。解析不到任何题目时返回 422 和分段报告；开启 AI 回退时改由 AI 出题。
// @Tags 导入
// @Accept json,mpfd
// @Produce json
// @Param request body service.ImportRequest true "导入请求"
// @Success 201 {object} util.Response{data=service.ImportResult}
// @Failure 400 {object} util.Response
// @Failure 422 {object} util.Response{data=parser.Result}
// @Router /api/imports [post]
func (c *ImportController) Import(ctx *gin.Context) {
	var req service.ImportRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	text, uploaded, err := readUpload(ctx)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if uploaded {
		req.Text = text
	}

	res, err := c.ImportService.Import(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, res)
}

// GetArchivedImport godoc
// @Summary 查看归档的导入原文
// @Tags 导入
// @Produce json
// @Param key query string true "导入结果中的 archiveKey"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/imports/archive [get]
func (c *ImportController) GetArchivedImport(ctx *gin.Context) {
	key := ctx.Query("key")
	if key == "" {
		util.BadRequest(ctx, "key is required")
		return
	}

	text, err := c.ImportService.Archived(ctx.Request.Context(), key)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"key": key, "text": text})
}

// GenerateTest godoc
// @Summary AI 出题
// @Description 根据主题调用 AI 生成题目并保存为试卷
// @Tags 导入
// @Accept json
// @Produce json
// @Param request body service.GenerateTestRequest true "出题请求"
// @Success 201 {object} util.Response{data=model.Test}
// @Failure 503 {object} util.Response "AI 未启用"
// @Router /api/tests/generate [post]
func (c *ImportController) GenerateTest(ctx *gin.Context) {
	var req service.GenerateTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.ImportService.Generate(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, test)
}
