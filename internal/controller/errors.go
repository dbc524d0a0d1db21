package controller

import (
	"errors"
	"net/http"

	"studytest_backend/internal/attempt"
	"studytest_backend/internal/service"
	"studytest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 把服务层错误映射为 HTTP 响应
func respondError(ctx *gin.Context, err error) {
	var importErr *service.ImportError
	switch {
	case errors.As(err, &importErr):
		util.ErrorWithData(ctx, http.StatusUnprocessableEntity, importErr.Error(), importErr.Report)
	case errors.Is(err, util.ErrInvalidInput),
		errors.Is(err, util.ErrQuestionIndexRange),
		errors.Is(err, attempt.ErrInvalidOption):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrTestNotFound),
		errors.Is(err, util.ErrAttemptNotFound),
		errors.Is(err, util.ErrSessionNotFound),
		errors.Is(err, util.ErrArchiveNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, attempt.ErrAttemptSubmitted),
		errors.Is(err, util.ErrAttemptSubmissionFail):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrTooManySessions):
		util.TooManyRequests(ctx, err.Error())
	case errors.Is(err, util.ErrAIDisabled):
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// pagination 解析 page/limit 查询参数
func pagination(ctx *gin.Context) (int, int) {
	page := util.ParseIntDefault(ctx.Query("page"), 1, 1)
	limit := util.ParseIntDefault(ctx.Query("limit"), 20, 1)
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
