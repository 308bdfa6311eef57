package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projectnuraya/tilawah-tracker/internal/service"
	pkgerrors "github.com/projectnuraya/tilawah-tracker/pkg/errors"
	"github.com/projectnuraya/tilawah-tracker/pkg/jwt"
	"github.com/projectnuraya/tilawah-tracker/pkg/response"
)

// errorCodes 业务错误到响应码的映射，未列出的按分类兜底
var errorCodes = map[*pkgerrors.Error]int{
	service.ErrEmailTaken: 11002,

	service.ErrGroupNotFound:   12001,
	service.ErrGroupNameLength: 12002,
	service.ErrGroupForbidden:  12003,

	service.ErrParticipantNotFound:   13001,
	service.ErrParticipantNameEmpty:  13002,
	service.ErrParticipantNameLength: 13003,
	service.ErrParticipantNameTaken:  13004,
	service.ErrInvalidContact:        13005,
	service.ErrBulkEmpty:             13006,
	service.ErrBulkTooLarge:          13007,

	service.ErrPeriodNotFound:       14001,
	service.ErrInvalidStartDate:     14002,
	service.ErrStartDateWeekday:     14003,
	service.ErrPeriodAlreadyActive:  14004,
	service.ErrNoActiveParticipants: 14005,
	service.ErrPeriodAlreadyLocked:  14006,

	service.ErrAssignmentNotFound: 15001,
	service.ErrInvalidStatus:      15002,
	service.ErrInvalidSlot:        15003,
	service.ErrPeriodLockedEdit:   15004,

	service.ErrPublicNotFound:       16001,
	service.ErrCustomMessageTooLong: 16002,
}

var kindStatus = map[pkgerrors.Kind]int{
	pkgerrors.KindValidation:    http.StatusBadRequest,
	pkgerrors.KindNotFound:      http.StatusNotFound,
	pkgerrors.KindAlreadyLocked: http.StatusConflict,
	pkgerrors.KindForbidden:     http.StatusForbidden,
}

var kindCode = map[pkgerrors.Kind]int{
	pkgerrors.KindValidation:    10001,
	pkgerrors.KindNotFound:      10404,
	pkgerrors.KindAlreadyLocked: 10409,
	pkgerrors.KindForbidden:     10003,
}

// handleError 将 Service 层错误统一映射为 HTTP 响应
func handleError(c *gin.Context, err error) {
	var bizErr *pkgerrors.Error
	if errors.As(err, &bizErr) {
		status, ok := kindStatus[bizErr.Kind]
		if !ok {
			response.InternalError(c)
			return
		}
		code, ok := errorCodes[bizErr]
		if !ok {
			code = kindCode[bizErr.Kind]
		}
		response.Error(c, status, code, bizErr.Message)
		return
	}

	switch {
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "邮箱或密码错误")
	case errors.Is(err, service.ErrTokenRevoked),
		errors.Is(err, service.ErrRefreshTokenType),
		errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenInvalid):
		response.Unauthorized(c, 11003, "登录已失效，请重新登录")
	default:
		// 交给日志中间件记录
		_ = c.Error(err)
		response.InternalError(c)
	}
}
