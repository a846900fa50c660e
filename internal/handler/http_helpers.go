package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/locale"
	"github.com/habitlog/internal/service"
	"github.com/habitlog/internal/tracker"
)

// requestLanguage 依次读取 ?lang= 与 Accept-Language，默认中文
func requestLanguage(c *gin.Context) string {
	return locale.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"))
}

func requestMessage(c *gin.Context, key string) string {
	return locale.Message(requestLanguage(c), key)
}

// respondError 输出错误；key 不在文案表中时原样返回
func respondError(c *gin.Context, status int, key string) {
	c.JSON(status, gin.H{"error": requestMessage(c, key)})
}

func bindJSON(c *gin.Context, dst interface{}, key string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, key)
		return false
	}
	return true
}

// respondMutation 输出修改结果；仅持久化失败时附带 warning，状态码不变
func respondMutation(c *gin.Context, payload gin.H, err error) {
	if err != nil {
		if !isPersistenceOnly(err) {
			handleTrackerError(c, err)
			return
		}
		payload["warning"] = requestMessage(c, locale.MsgPersistenceWarning)
	}
	c.JSON(http.StatusOK, payload)
}

// isPersistenceOnly 在没有错误或仅为持久化警告时返回 true
func isPersistenceOnly(err error) bool {
	if err == nil {
		return true
	}
	_, ok := service.AsPersistenceWarning(err)
	return ok
}

func handleTrackerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tracker.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, locale.MsgHabitNotFound)
	case errors.Is(err, tracker.ErrValidation):
		respondError(c, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, tracker.ErrMalformedInput):
		respondError(c, http.StatusBadRequest, locale.MsgMalformedImport)
	default:
		respondError(c, http.StatusInternalServerError, locale.MsgOperationFailed)
	}
}

func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), tracker.ErrValidation.Error()+": ")
	if msg == "" {
		return locale.MsgInvalidRequest
	}
	return msg
}

// resolveDate 解析路径或查询中的日期，空值与 today 表示今天
func (a *API) resolveDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "today") {
		return tracker.CanonicalDate(a.now()), true
	}
	if !tracker.IsCanonicalDate(raw) {
		return "", false
	}
	return raw, true
}
