package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/licoreria/internal/domain/shared"
	apperrors "github.com/xiebiao/licoreria/pkg/errors"
	"github.com/xiebiao/licoreria/pkg/money"
	"github.com/xiebiao/licoreria/pkg/response"
)

// pathID 解析路径参数:id，非法时直接写错误响应
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "ID格式错误")
		return 0, false
	}
	return uint(id), true
}

func bindFailed(c *gin.Context, err error) {
	response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
}

// parsePrice 解析"25.50"形式的金额
func parsePrice(c *gin.Context, field, value string) (int64, bool) {
	cents, err := money.Parse(value)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidPrice, field+": "+err.Error())
		return 0, false
	}
	return cents, true
}

func page(p, size int) shared.Page {
	return shared.Page{Page: p, PageSize: size}.Normalize()
}
