package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/locale"
	"github.com/habitlog/internal/tracker"
)

const defaultStatsWindowDays = 30

type habitPayload struct {
	Name         string `json:"name"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
	Target       int    `json:"target"`
	Schedule     []int  `json:"schedule"`
	ReminderTime string `json:"reminder_time"`
	Notes        string `json:"notes"`
}

func (p habitPayload) input() tracker.HabitInput {
	return tracker.HabitInput{
		Name:         p.Name,
		Icon:         p.Icon,
		Color:        p.Color,
		Target:       p.Target,
		Schedule:     p.Schedule,
		ReminderTime: p.ReminderTime,
		Notes:        p.Notes,
	}
}

// GetDocumentMeta 返回文档概况
func (a *API) GetDocumentMeta(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"document": a.tracker.Meta()})
}

// ListHabits 返回习惯列表 JSON，支持 status=all|active|archived 与关键字 q
func (a *API) ListHabits(c *gin.Context) {
	habits := a.tracker.ListHabits(tracker.HabitFilter{
		Status: c.DefaultQuery("status", "all"),
		Query:  c.Query("q"),
	})

	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		items = append(items, habitToPayload(habit))
	}

	c.JSON(http.StatusOK, gin.H{"habits": items})
}

// GetHabit 返回单个习惯详情及最长连胜
func (a *API) GetHabit(c *gin.Context) {
	habit, err := a.tracker.GetHabit(c.Param("id"))
	if err != nil {
		handleTrackerError(c, err)
		return
	}

	item := habitToPayload(habit)
	item["longest_streak"] = a.tracker.LongestStreak(habit.ID)
	c.JSON(http.StatusOK, gin.H{"habit": item})
}

// CreateHabit 创建习惯
func (a *API) CreateHabit(c *gin.Context) {
	var payload habitPayload
	if !bindJSON(c, &payload, locale.MsgInvalidRequest) {
		return
	}

	habit, err := a.tracker.CreateHabit(c.Request.Context(), payload.input())
	respondMutation(c, gin.H{"habit": habitToPayload(habit)}, err)
}

// UpdateHabit 更新习惯
func (a *API) UpdateHabit(c *gin.Context) {
	var payload habitPayload
	if !bindJSON(c, &payload, locale.MsgInvalidRequest) {
		return
	}

	habit, err := a.tracker.UpdateHabit(c.Request.Context(), c.Param("id"), payload.input())
	respondMutation(c, gin.H{"habit": habitToPayload(habit)}, err)
}

// ToggleArchiveHabit 归档/恢复习惯
func (a *API) ToggleArchiveHabit(c *gin.Context) {
	habit, err := a.tracker.ToggleArchive(c.Request.Context(), c.Param("id"))
	respondMutation(c, gin.H{"habit": habitToPayload(habit)}, err)
}

// GetHabitStats 返回习惯在区间内的完成率与最长连胜，默认统计最近 30 天
func (a *API) GetHabitStats(c *gin.Context) {
	today := a.now()
	end, ok := a.resolveDate(c.Query("end"))
	if !ok {
		respondError(c, http.StatusBadRequest, locale.MsgInvalidEndDate)
		return
	}

	start := strings.TrimSpace(c.Query("start"))
	if start == "" {
		start = tracker.CanonicalDate(today.AddDate(0, 0, -(defaultStatsWindowDays - 1)))
	} else if !tracker.IsCanonicalDate(start) {
		respondError(c, http.StatusBadRequest, locale.MsgInvalidStartDate)
		return
	}

	stats, err := a.tracker.HabitStats(c.Param("id"), start, end)
	if err != nil {
		handleTrackerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func habitToPayload(habit tracker.Habit) gin.H {
	if habit.ID == "" {
		return gin.H{}
	}

	item := gin.H{
		"id":            habit.ID,
		"name":          habit.Name,
		"icon":          habit.Icon,
		"color":         habit.Color,
		"target":        habit.Target,
		"schedule":      habit.Schedule,
		"reminder_time": habit.ReminderTime,
		"notes":         habit.Notes,
		"notes_html":    renderNotes(habit.Notes),
		"archived":      habit.Archived,
	}
	if habit.CreatedAt > 0 {
		item["created_at"] = time.UnixMilli(habit.CreatedAt).Format(time.RFC3339)
	}
	return item
}
