package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/locale"
	"golang.org/x/crypto/bcrypt"
)

const sessionAuthKey = "authenticated"

type loginPayload struct {
	Password string `json:"password" form:"password"`
}

// Login 校验访问密码并写入会话
func (a *API) Login(c *gin.Context) {
	if !a.AuthEnabled() {
		c.JSON(http.StatusOK, gin.H{"authenticated": true})
		return
	}

	var payload loginPayload
	if err := c.ShouldBind(&payload); err != nil || strings.TrimSpace(payload.Password) == "" {
		respondError(c, http.StatusBadRequest, locale.MsgPasswordRequired)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(payload.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, locale.MsgWrongPassword)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionAuthKey, true)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, locale.MsgSessionSaveFailed)
		return
	}

	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, locale.MsgSessionSaveFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

// AuthRequired 是一个简单的认证中间件，未配置密码时直接放行
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.AuthEnabled() {
			c.Next()
			return
		}

		session := sessions.Default(c)
		if ok, _ := session.Get(sessionAuthKey).(bool); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": requestMessage(c, locale.MsgLoginRequired)})
			return
		}
		c.Next()
	}
}
