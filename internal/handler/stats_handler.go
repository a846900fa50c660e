package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/locale"
	"github.com/habitlog/internal/tracker"
)

const (
	defaultHeatmapDays     = 84
	sessionSelectedDateKey = "selected_date"
	sessionMonthCursorKey  = "month_cursor"
	monthLayout            = "2006-01"
)

type selectionPayload struct {
	Date  string `json:"date"`
	Month string `json:"month"`
}

// GetStats 返回选中日期与月份的统计。
// 参数缺省时依次回退到会话中保存的选择和今天。
func (a *API) GetStats(c *gin.Context) {
	session := sessions.Default(c)

	rawDate := c.Query("date")
	if rawDate == "" {
		rawDate, _ = session.Get(sessionSelectedDateKey).(string)
	}
	date, ok := a.resolveDate(rawDate)
	if !ok {
		respondError(c, http.StatusBadRequest, locale.MsgInvalidDate)
		return
	}

	rawMonth := c.Query("month")
	if rawMonth == "" {
		rawMonth, _ = session.Get(sessionMonthCursorKey).(string)
	}
	month, ok := a.resolveMonth(rawMonth)
	if !ok {
		respondError(c, http.StatusBadRequest, locale.MsgInvalidMonth)
		return
	}

	stats, err := a.tracker.Dashboard(date, month)
	if err != nil {
		handleTrackerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats, "month": month.Format(monthLayout)})
}

// GetHeatmap 返回区间内逐日的完成数，默认最近 12 周
func (a *API) GetHeatmap(c *gin.Context) {
	end, ok := a.resolveDate(c.Query("end"))
	if !ok {
		respondError(c, http.StatusBadRequest, locale.MsgInvalidEndDate)
		return
	}

	start := strings.TrimSpace(c.Query("start"))
	if start == "" {
		endDay, _ := tracker.ParseCanonicalDate(end)
		start = tracker.CanonicalDate(endDay.AddDate(0, 0, -(defaultHeatmapDays - 1)))
	} else if !tracker.IsCanonicalDate(start) {
		respondError(c, http.StatusBadRequest, locale.MsgInvalidStartDate)
		return
	}

	days, err := a.tracker.Heatmap(start, end)
	if err != nil {
		handleTrackerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"start": start, "end": end, "days": days})
}

// UpdateSelection 保存当前选中的日期与月份
func (a *API) UpdateSelection(c *gin.Context) {
	var payload selectionPayload
	if !bindJSON(c, &payload, locale.MsgInvalidRequest) {
		return
	}

	date, ok := a.resolveDate(payload.Date)
	if !ok {
		respondError(c, http.StatusBadRequest, locale.MsgInvalidDate)
		return
	}

	rawMonth := payload.Month
	if strings.TrimSpace(rawMonth) == "" {
		rawMonth = date[:len(monthLayout)]
	}
	month, ok := a.resolveMonth(rawMonth)
	if !ok {
		respondError(c, http.StatusBadRequest, locale.MsgInvalidMonth)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionSelectedDateKey, date)
	session.Set(sessionMonthCursorKey, month.Format(monthLayout))
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, locale.MsgSessionSaveFailed)
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "month": month.Format(monthLayout)})
}

// resolveMonth 解析 YYYY-MM，空值表示本月
func (a *API) resolveMonth(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := a.now()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local), true
	}

	month, err := time.ParseInLocation(monthLayout, raw, time.Local)
	if err != nil || len(raw) != len(monthLayout) {
		return time.Time{}, false
	}
	return month, true
}
