package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/locale"
	"github.com/habitlog/internal/tracker"
)

type entryPayload struct {
	Done *bool   `json:"done"`
	Note *string `json:"note"`
}

type markAllPayload struct {
	Done *bool `json:"done"`
}

// GetDay 返回某日应打卡的习惯及完成状态
func (a *API) GetDay(c *gin.Context) {
	date, ok := a.resolveDate(c.Param("date"))
	if !ok {
		respondError(c, http.StatusBadRequest, locale.MsgInvalidDate)
		return
	}

	items, err := a.tracker.DayView(date)
	if err != nil {
		handleTrackerError(c, err)
		return
	}

	payload := make([]gin.H, 0, len(items))
	done := 0
	for _, item := range items {
		if item.Done {
			done++
		}
		payload = append(payload, gin.H{
			"habit": habitToPayload(item.Habit),
			"done":  item.Done,
			"entry": entryToPayload(item.Entry),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"date":    date,
		"items":   payload,
		"due":     len(items),
		"done":    done,
		"weekday": weekdayOf(date),
	})
}

// SetEntry 切换某日某习惯的完成状态，可同时写入备注
func (a *API) SetEntry(c *gin.Context) {
	date, ok := a.resolveDate(c.Param("date"))
	if !ok {
		respondError(c, http.StatusBadRequest, locale.MsgInvalidDate)
		return
	}

	var payload entryPayload
	if !bindJSON(c, &payload, locale.MsgInvalidRequest) {
		return
	}
	if payload.Done == nil && payload.Note == nil {
		respondError(c, http.StatusBadRequest, locale.MsgMissingEntryField)
		return
	}

	ctx := c.Request.Context()
	habitID := c.Param("id")

	var (
		entry   tracker.LogEntry
		warning error
	)
	if payload.Done != nil {
		var err error
		entry, err = a.tracker.SetDone(ctx, habitID, date, *payload.Done)
		if !isPersistenceOnly(err) {
			handleTrackerError(c, err)
			return
		}
		warning = err
	}
	if payload.Note != nil {
		var err error
		entry, err = a.tracker.SetNote(ctx, habitID, date, *payload.Note)
		if !isPersistenceOnly(err) {
			handleTrackerError(c, err)
			return
		}
		if err != nil {
			warning = err
		}
	}

	respondMutation(c, gin.H{"date": date, "habit_id": habitID, "entry": entryToPayload(entry)}, warning)
}

// MarkAll 将某日全部应打卡习惯设为完成或未完成
func (a *API) MarkAll(c *gin.Context) {
	date, ok := a.resolveDate(c.Param("date"))
	if !ok {
		respondError(c, http.StatusBadRequest, locale.MsgInvalidDate)
		return
	}

	var payload markAllPayload
	if !bindJSON(c, &payload, locale.MsgInvalidRequest) {
		return
	}
	done := true
	if payload.Done != nil {
		done = *payload.Done
	}

	marked, err := a.tracker.MarkAll(c.Request.Context(), date, done)
	respondMutation(c, gin.H{"date": date, "done": done, "marked": marked}, err)
}

func entryToPayload(entry tracker.LogEntry) gin.H {
	item := gin.H{
		"done":  entry.Done,
		"value": entry.Value,
		"note":  entry.Note,
	}
	if entry.At > 0 {
		item["at"] = entry.At
	}
	return item
}

func weekdayOf(date string) int {
	t, err := tracker.ParseCanonicalDate(date)
	if err != nil {
		return 0
	}
	return tracker.ISOWeekday(t)
}
