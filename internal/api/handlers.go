package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AssQ222/PDRPG/internal/engine"
)

const (
	serviceName    = "PDRPG API"
	serviceVersion = "1.0.0"
)

type handlers struct {
	svc *engine.Service
	log *zap.Logger
	now func() time.Time
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   serviceName,
		"version":   serviceVersion,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// pathID parses the :id route parameter, writing a 400 on failure.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "invalid id: must be a positive integer")
		return 0, false
	}
	return id, true
}

// bindJSON decodes the body, writing a 400 on malformed JSON. Field rules are
// enforced by the engine.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// Tasks

func (h *handlers) listTasks(c *gin.Context) {
	tasks, err := h.svc.ListTasks(c.Request.Context())
	if err != nil {
		respondError(c, h.log, "get tasks", err)
		return
	}
	list(c, tasks)
}

func (h *handlers) createTask(c *gin.Context) {
	var in engine.CreateTaskInput
	if !bindJSON(c, &in) {
		return
	}
	task, err := h.svc.CreateTask(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, "create task", err)
		return
	}
	created(c, task)
}

func (h *handlers) toggleTask(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	res, err := h.svc.ToggleTask(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "toggle task", err)
		return
	}
	ok(c, res)
}

func (h *handlers) deleteTask(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := h.svc.DeleteTask(c.Request.Context(), id); err != nil {
		respondError(c, h.log, "delete task", err)
		return
	}
	ok(c, gin.H{"id": id})
}

// Habits

func (h *handlers) todayHabits(c *gin.Context) {
	items, date, err := h.svc.TodayHabits(c.Request.Context())
	if err != nil {
		respondError(c, h.log, "get habits", err)
		return
	}
	n := len(items)
	if items == nil {
		items = []engine.HabitToday{}
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Data: items, Count: &n, Date: date})
}

func (h *handlers) createHabit(c *gin.Context) {
	var in engine.CreateHabitInput
	if !bindJSON(c, &in) {
		return
	}
	habit, err := h.svc.CreateHabit(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, "create habit", err)
		return
	}
	created(c, habit)
}

func (h *handlers) habitEntries(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	entries, err := h.svc.ListHabitEntries(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "get habit entries", err)
		return
	}
	list(c, entries)
}

func (h *handlers) entriesForDate(c *gin.Context) {
	entries, err := h.svc.EntriesForDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondError(c, h.log, "get habit entries", err)
		return
	}
	list(c, entries)
}

func (h *handlers) logHabitEntry(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var in engine.LogEntryInput
	if !bindJSON(c, &in) {
		return
	}
	in.HabitID = id
	res, err := h.svc.LogHabitEntry(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, "log habit entry", err)
		return
	}
	ok(c, res)
}

// Character

func (h *handlers) character(c *gin.Context) {
	view, err := h.svc.GetCharacter(c.Request.Context())
	if err != nil {
		respondError(c, h.log, "get character", err)
		return
	}
	ok(c, gin.H{
		"character":      view.Character,
		"level_progress": view.LevelProgress,
	})
}

// Quests

func (h *handlers) listQuests(c *gin.Context) {
	f := engine.QuestFilter{Week: c.Query("week")}
	if s := c.Query("status"); s != "" {
		status, err := engine.ParseQuestStatus(s)
		if err != nil {
			respondError(c, h.log, "get quests", err)
			return
		}
		f.Status = status
	}
	quests, err := h.svc.ListQuests(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.log, "get quests", err)
		return
	}
	list(c, quests)
}

func (h *handlers) activeQuests(c *gin.Context) {
	quests, err := h.svc.ActiveQuests(c.Request.Context())
	if err != nil {
		respondError(c, h.log, "get active quests", err)
		return
	}
	list(c, quests)
}

func (h *handlers) generateQuests(c *gin.Context) {
	quests, err := h.svc.GenerateWeeklyQuests(c.Request.Context())
	if err != nil {
		respondError(c, h.log, "generate quests", err)
		return
	}
	list(c, quests)
}

// refreshQuests expires overdue quests, then recomputes progress for the
// rest of the current week.
func (h *handlers) refreshQuests(c *gin.Context) {
	ctx := c.Request.Context()
	expired, err := h.svc.ExpireOverdueQuests(ctx)
	if err != nil {
		respondError(c, h.log, "expire quests", err)
		return
	}
	changed, err := h.svc.UpdateAllQuestProgress(ctx)
	if err != nil {
		respondError(c, h.log, "update quest progress", err)
		return
	}
	n := len(changed)
	ok(c, gin.H{"expired": expired, "updated": changed, "updated_count": n})
}

func (h *handlers) completeQuest(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	q, err := h.svc.CompleteQuest(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "complete quest", err)
		return
	}
	ok(c, q)
}

// Achievements

func (h *handlers) listAchievements(c *gin.Context) {
	ctx := c.Request.Context()
	s := c.Query("status")
	if s == "" {
		all, err := h.svc.ListAchievements(ctx)
		if err != nil {
			respondError(c, h.log, "get achievements", err)
			return
		}
		list(c, all)
		return
	}
	status, err := engine.ParseAchievementStatus(s)
	if err != nil {
		respondError(c, h.log, "get achievements", err)
		return
	}
	filtered, err := h.svc.AchievementsByStatus(ctx, status)
	if err != nil {
		respondError(c, h.log, "get achievements", err)
		return
	}
	list(c, filtered)
}

func (h *handlers) achievementStats(c *gin.Context) {
	stats, err := h.svc.AchievementStats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, "get achievement stats", err)
		return
	}
	ok(c, stats)
}

func (h *handlers) checkAchievements(c *gin.Context) {
	changed, err := h.svc.CheckAndUpdate(c.Request.Context())
	if err != nil {
		respondError(c, h.log, "check achievements", err)
		return
	}
	list(c, changed)
}

func (h *handlers) earnAchievement(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	a, err := h.svc.EarnAchievement(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "earn achievement", err)
		return
	}
	ok(c, a)
}
