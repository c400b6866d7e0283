package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AssQ222/PDRPG/internal/storage"
)

// fixedNow is a Tuesday in ISO week 2026-11.
var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, opts ...Option) (*Service, *testClock, func()) {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	clock := &testClock{t: fixedNow}
	svc := NewService(db, append([]Option{WithClock(clock.Now)}, opts...)...)
	cleanup := func() {
		_ = db.Close()
	}
	return svc, clock, cleanup
}

func setExperience(t *testing.T, svc *Service, exp int64) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.GetCharacter(ctx); err != nil {
		t.Fatalf("get character: %v", err)
	}
	if err := svc.CharacterRepo().UpdateExperience(ctx, exp, LevelForExperience(exp), fixedNow); err != nil {
		t.Fatalf("update experience: %v", err)
	}
}

func mustCharacter(t *testing.T, svc *Service) *CharacterView {
	t.Helper()
	c, err := svc.GetCharacter(context.Background())
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	return c
}

func TestCharacterDefaultsAndLevelRepair(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	c := mustCharacter(t, svc)
	if c.Level != 1 || c.Experience != 0 || c.Class != string(ClassWarrior) {
		t.Fatalf("default character=%+v", c.Character)
	}
	if c.Attributes.Strength != StartingAttributeValue || c.Attributes.Constitution != StartingAttributeValue {
		t.Fatalf("default attributes=%+v", c.Attributes)
	}

	// A stale cached level is fixed on read.
	if err := svc.CharacterRepo().UpdateExperience(ctx, 950, 1, fixedNow); err != nil {
		t.Fatalf("update: %v", err)
	}
	if c := mustCharacter(t, svc); c.Level != 4 {
		t.Fatalf("repaired level=%d, want 4", c.Level)
	}

	res, err := svc.AddExperience(ctx, 50)
	if err != nil {
		t.Fatalf("AddExperience: %v", err)
	}
	if res.Experience != 1000 || res.Level != 4 || res.LeveledUp {
		t.Fatalf("AddExperience result=%+v", res)
	}

	mage, err := svc.CreateCharacter(ctx, ClassMage)
	if err != nil {
		t.Fatalf("CreateCharacter: %v", err)
	}
	if mage.Experience != 0 || mage.Level != 1 || mage.Class != string(ClassMage) {
		t.Fatalf("reset character=%+v", mage.Character)
	}
	if _, err := svc.CreateCharacter(ctx, CharacterClass("Paladin")); !IsValidation(err) {
		t.Fatalf("CreateCharacter(Paladin) err=%v, want ValidationError", err)
	}
}

func TestLargeExperienceGrantLevelsUp(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	res, err := svc.AddExperience(context.Background(), 500)
	if err != nil {
		t.Fatalf("AddExperience: %v", err)
	}
	if res.Level != 3 || !res.LeveledUp {
		t.Fatalf("result=%+v, want level 3 leveled up", res)
	}
}

func TestToggleTaskGrantsRewardOnce(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, CreateTaskInput{Title: "  Trening na siłowni  ", GoalRelated: true})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Title != "Trening na siłowni" {
		t.Fatalf("title not trimmed: %q", task.Title)
	}

	res, err := svc.ToggleTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if !res.Task.Completed || !res.RewardApplied || res.Reward == nil || res.Reward.Exp != 25 {
		t.Fatalf("toggle result=%+v", res)
	}
	c := mustCharacter(t, svc)
	if c.Experience != 25 || c.Attributes.Strength != 11 {
		t.Fatalf("character after toggle exp=%d str=%d", c.Experience, c.Attributes.Strength)
	}

	// Un-completing does not take experience back or grant more.
	res, err = svc.ToggleTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ToggleTask back: %v", err)
	}
	if res.Task.Completed || res.Reward != nil {
		t.Fatalf("untoggle result=%+v", res)
	}
	if c := mustCharacter(t, svc); c.Experience != 25 {
		t.Fatalf("exp after untoggle=%d, want 25", c.Experience)
	}

	if _, err := svc.ToggleTask(ctx, 999); !IsNotFound(err) {
		t.Fatalf("ToggleTask(999) err=%v, want NotFoundError", err)
	}
}

func TestTaskValidation(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := svc.CreateTask(ctx, CreateTaskInput{Title: "   "}); !IsValidation(err) {
		t.Fatalf("blank title err=%v, want ValidationError", err)
	}
	long := make([]rune, 101)
	for i := range long {
		long[i] = 'ż'
	}
	_, err := svc.CreateTask(ctx, CreateTaskInput{Title: string(long)})
	var verr ValidationError
	if !errors.As(err, &verr) || verr.Field != "title" {
		t.Fatalf("long title err=%v, want title ValidationError", err)
	}
	if _, err := svc.CreateTask(ctx, CreateTaskInput{Title: string(long[:100])}); err != nil {
		t.Fatalf("100-rune title rejected: %v", err)
	}
	if _, err := svc.CreateHabit(ctx, CreateHabitInput{Title: string(long[:51])}); !IsValidation(err) {
		t.Fatalf("51-rune habit title err=%v, want ValidationError", err)
	}
}

type failingHook struct{ calls int }

func (h *failingHook) TaskCompleted(context.Context, storage.Task) error {
	h.calls++
	return errors.New("reward store unavailable")
}

func (h *failingHook) HabitEntryCompleted(context.Context, storage.Habit, storage.HabitEntry, int) error {
	h.calls++
	return errors.New("reward store unavailable")
}

func TestRewardFailureDoesNotFailCompletion(t *testing.T) {
	hook := &failingHook{}
	svc, _, cleanup := newTestService(t, WithRewardHook(hook))
	defer cleanup()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, CreateTaskInput{Title: "Nauka"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	res, err := svc.ToggleTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if res.RewardApplied {
		t.Fatalf("expected RewardApplied=false")
	}
	stored, _ := svc.TaskRepo().Get(ctx, task.ID)
	if !stored.Completed {
		t.Fatalf("completion was rolled back")
	}

	h, err := svc.CreateHabit(ctx, CreateHabitInput{Title: "Medytacja"})
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	logRes, err := svc.LogHabitEntry(ctx, LogEntryInput{HabitID: h.ID, Completed: true})
	if err != nil {
		t.Fatalf("LogHabitEntry: %v", err)
	}
	if logRes.Streak != 1 || logRes.RewardApplied {
		t.Fatalf("log result=%+v", logRes)
	}
	if hook.calls != 2 {
		t.Fatalf("hook calls=%d, want 2", hook.calls)
	}
	if c := mustCharacter(t, svc); c.Experience != 0 {
		t.Fatalf("exp=%d, want 0 with failing hook", c.Experience)
	}
}

func TestHabitEntryEndToEnd(t *testing.T) {
	svc, clock, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	h, err := svc.CreateHabit(ctx, CreateHabitInput{Title: "Codzienna medytacja", Type: HabitBoolean})
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}

	res, err := svc.LogHabitEntry(ctx, LogEntryInput{HabitID: h.ID, Completed: true})
	if err != nil {
		t.Fatalf("LogHabitEntry: %v", err)
	}
	if res.Streak != 1 || res.Entry.Date != "2026-03-10" {
		t.Fatalf("log result=%+v", res)
	}
	c := mustCharacter(t, svc)
	if c.Experience != 10 || c.Attributes.Wisdom != 11 {
		t.Fatalf("character exp=%d wis=%d, want 10/11", c.Experience, c.Attributes.Wisdom)
	}

	// Re-logging the same date replaces the entry instead of adding one.
	if _, err := svc.LogHabitEntry(ctx, LogEntryInput{HabitID: h.ID, Date: "2026-03-10", Completed: false}); err != nil {
		t.Fatalf("relog: %v", err)
	}
	entries, err := svc.ListHabitEntries(ctx, h.ID)
	if err != nil {
		t.Fatalf("ListHabitEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].Completed {
		t.Fatalf("entries=%+v, want one incomplete entry", entries)
	}
	stored, _ := svc.HabitRepo().Get(ctx, h.ID)
	if stored.CurrentStreak != 0 {
		t.Fatalf("streak after failing relog=%d, want 0", stored.CurrentStreak)
	}

	// Backfill two previous days then complete today again.
	for _, d := range []string{"2026-03-08", "2026-03-09", "2026-03-10"} {
		if _, err := svc.LogHabitEntry(ctx, LogEntryInput{HabitID: h.ID, Date: d, Completed: true}); err != nil {
			t.Fatalf("log %s: %v", d, err)
		}
	}
	stored, _ = svc.HabitRepo().Get(ctx, h.ID)
	if stored.CurrentStreak != 3 {
		t.Fatalf("streak=%d, want 3", stored.CurrentStreak)
	}

	today, date, err := svc.TodayHabits(ctx)
	if err != nil {
		t.Fatalf("TodayHabits: %v", err)
	}
	if date != "2026-03-10" || len(today) != 1 || !today[0].TodayCompleted || today[0].TodayEntry == nil {
		t.Fatalf("today=%+v date=%s", today, date)
	}

	// Two days later with nothing logged the refreshed streak drops to 0.
	clock.t = fixedNow.AddDate(0, 0, 2)
	habits, err := svc.RefreshStreaks(ctx)
	if err != nil {
		t.Fatalf("RefreshStreaks: %v", err)
	}
	if habits[0].CurrentStreak != 0 {
		t.Fatalf("refreshed streak=%d, want 0", habits[0].CurrentStreak)
	}

	if _, err := svc.LogHabitEntry(ctx, LogEntryInput{HabitID: h.ID, Date: "10-03-2026"}); !IsValidation(err) {
		t.Fatalf("bad date err=%v, want ValidationError", err)
	}
	if _, err := svc.LogHabitEntry(ctx, LogEntryInput{HabitID: 404, Completed: true}); !IsNotFound(err) {
		t.Fatalf("missing habit err=%v, want NotFoundError", err)
	}
}

func TestCounterHabitTarget(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	target := 8
	h, err := svc.CreateHabit(ctx, CreateHabitInput{Title: "Drink water", Type: HabitCounter, TargetValue: &target})
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	res, err := svc.LogHabitEntry(ctx, LogEntryInput{HabitID: h.ID, Value: 5})
	if err != nil {
		t.Fatalf("log 5: %v", err)
	}
	if res.Streak != 0 || res.Reward != nil {
		t.Fatalf("below target result=%+v", res)
	}
	res, err = svc.LogHabitEntry(ctx, LogEntryInput{HabitID: h.ID, Value: 8})
	if err != nil {
		t.Fatalf("log 8: %v", err)
	}
	if res.Streak != 1 || res.Reward == nil || res.Reward.Attribute != AttributeConstitution {
		t.Fatalf("at target result=%+v", res)
	}
}

func TestGenerateWeeklyQuestsIsIdempotent(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	for _, title := range []string{"Sport: bieganie", "Raport", "Nauka Go"} {
		if _, err := svc.CreateTask(ctx, CreateTaskInput{Title: title}); err != nil {
			t.Fatalf("CreateTask %q: %v", title, err)
		}
	}
	h, err := svc.CreateHabit(ctx, CreateHabitInput{Title: "Czytanie"})
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	if err := svc.HabitRepo().UpdateStreak(ctx, h.ID, 4, fixedNow); err != nil {
		t.Fatalf("UpdateStreak: %v", err)
	}

	quests, err := svc.GenerateWeeklyQuests(ctx)
	if err != nil {
		t.Fatalf("GenerateWeeklyQuests: %v", err)
	}
	if len(quests) != 4 {
		t.Fatalf("generated %d quests, want 4", len(quests))
	}
	byTitle := map[string]storage.Quest{}
	for _, q := range quests {
		byTitle[q.Title] = q
		if q.Week != "2026-11" || q.Status != string(QuestActive) {
			t.Fatalf("quest %q week=%s status=%s", q.Title, q.Week, q.Status)
		}
		if q.Deadline == nil || !q.Deadline.Equal(fixedNow.Add(QuestDuration)) {
			t.Fatalf("quest %q deadline=%v", q.Title, q.Deadline)
		}
	}
	if q := byTitle["Tygodniowy Wykonawca"]; q.TargetValue != 3 || q.RewardExp != 50 {
		t.Fatalf("task quest=%+v", q)
	}
	if q := byTitle["Mistrz Konsekwencji"]; q.TargetValue != 7 || q.HabitID == nil || *q.HabitID != h.ID {
		t.Fatalf("habit quest=%+v", q)
	}
	if q := byTitle["Tygodniowy Rozwój"]; q.TargetValue != 125 || q.RewardExp != 100 {
		t.Fatalf("character quest=%+v", q)
	}
	if q, ok := byTitle["Specjalista: NAUKA"]; !ok || q.Category == nil || *q.Category != "nauka" || q.TargetValue != 3 {
		t.Fatalf("category quest=%+v ok=%v", q, ok)
	}

	again, err := svc.GenerateWeeklyQuests(ctx)
	if err != nil {
		t.Fatalf("second GenerateWeeklyQuests: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second call generated %d quests", len(again))
	}
	n, _ := svc.QuestRepo().CountByWeek(ctx, "2026-11")
	if n != 4 {
		t.Fatalf("quests in week=%d, want 4", n)
	}
}

func TestGenerateWeeklyQuestsWithoutData(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	quests, err := svc.GenerateWeeklyQuests(context.Background())
	if err != nil {
		t.Fatalf("GenerateWeeklyQuests: %v", err)
	}
	// Only the character quest has no precondition.
	if len(quests) != 1 || quests[0].Type != string(QuestCharacter) {
		t.Fatalf("quests=%+v, want single character quest", quests)
	}
}

func TestQuestProgressCompletesOnce(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	sport := "sport"
	q, err := svc.CreateQuest(ctx, CreateQuestInput{
		Title:       "Sportowiec",
		Type:        QuestTask,
		TargetValue: 2,
		Category:    &sport,
		RewardExp:   60,
	})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}

	for _, title := range []string{"Sport rano", "Sport wieczorem", "Zakupy"} {
		task, err := svc.CreateTask(ctx, CreateTaskInput{Title: title})
		if err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		if _, err := svc.ToggleTask(ctx, task.ID); err != nil {
			t.Fatalf("ToggleTask: %v", err)
		}
	}
	expBefore := mustCharacter(t, svc).Experience

	changed, err := svc.UpdateAllQuestProgress(ctx)
	if err != nil {
		t.Fatalf("UpdateAllQuestProgress: %v", err)
	}
	if len(changed) != 1 || changed[0].Status != string(QuestCompleted) || changed[0].CurrentProgress != 2 {
		t.Fatalf("changed=%+v", changed)
	}
	if got := mustCharacter(t, svc).Experience; got != expBefore+60 {
		t.Fatalf("exp=%d, want %d", got, expBefore+60)
	}

	// Once Completed the quest is never touched again.
	if _, err := svc.CreateTask(ctx, CreateTaskInput{Title: "Sport extra"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	changed, err = svc.UpdateAllQuestProgress(ctx)
	if err != nil {
		t.Fatalf("second UpdateAllQuestProgress: %v", err)
	}
	if len(changed) != 0 {
		t.Fatalf("second pass changed=%+v", changed)
	}
	if got := mustCharacter(t, svc).Experience; got != expBefore+60 {
		t.Fatalf("reward granted twice: exp=%d", got)
	}
	stored, _ := svc.QuestRepo().Get(ctx, q.ID)
	if stored.Status != string(QuestCompleted) {
		t.Fatalf("status=%s", stored.Status)
	}
}

func TestCharacterQuestUsesLifetimeExperience(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	setExperience(t, svc, 1000)
	if _, err := svc.GenerateWeeklyQuests(ctx); err != nil {
		t.Fatalf("GenerateWeeklyQuests: %v", err)
	}
	changed, err := svc.UpdateAllQuestProgress(ctx)
	if err != nil {
		t.Fatalf("UpdateAllQuestProgress: %v", err)
	}
	if len(changed) != 1 || changed[0].Status != string(QuestCompleted) {
		t.Fatalf("changed=%+v", changed)
	}
	if got := mustCharacter(t, svc).Experience; got != 1100 {
		t.Fatalf("exp=%d, want 1100", got)
	}
}

func TestExpireAndCompleteQuest(t *testing.T) {
	svc, clock, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestInput{Title: "Rozwój", Type: QuestCharacter, TargetValue: 5000, RewardExp: 40})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}
	other, err := svc.CreateQuest(ctx, CreateQuestInput{Title: "Inny", Type: QuestCharacter, TargetValue: 5000, RewardExp: 40})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}

	done, err := svc.CompleteQuest(ctx, other.ID)
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if done.CurrentProgress != 5000 || done.Status != string(QuestCompleted) {
		t.Fatalf("completed quest=%+v", done)
	}
	if got := mustCharacter(t, svc).Experience; got != 40 {
		t.Fatalf("exp=%d, want 40", got)
	}
	if _, err := svc.CompleteQuest(ctx, other.ID); !IsState(err) {
		t.Fatalf("second CompleteQuest err=%v, want StateError", err)
	}

	clock.t = fixedNow.Add(QuestDuration + time.Minute)
	n, err := svc.ExpireOverdueQuests(ctx)
	if err != nil {
		t.Fatalf("ExpireOverdueQuests: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired=%d, want 1", n)
	}
	if _, err := svc.CompleteQuest(ctx, q.ID); !IsState(err) {
		t.Fatalf("CompleteQuest on expired err=%v, want StateError", err)
	}
	if _, err := svc.CompleteQuest(ctx, 404); !IsNotFound(err) {
		t.Fatalf("CompleteQuest(404) err=%v, want NotFoundError", err)
	}
}

func TestAchievementLifecycle(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	seeded, err := svc.SeedDefaultAchievements(ctx)
	if err != nil {
		t.Fatalf("SeedDefaultAchievements: %v", err)
	}
	if seeded == 0 {
		t.Fatalf("nothing seeded")
	}
	if again, _ := svc.SeedDefaultAchievements(ctx); again != 0 {
		t.Fatalf("second seed inserted %d", again)
	}

	setExperience(t, svc, 1600) // level 5

	changed, err := svc.CheckAndUpdate(ctx)
	if err != nil {
		t.Fatalf("CheckAndUpdate #1: %v", err)
	}
	if len(changed) != 1 || changed[0].Status != string(AchievementAvailable) || changed[0].RequiredValue != 5 {
		t.Fatalf("first pass changed=%+v", changed)
	}

	changed, err = svc.CheckAndUpdate(ctx)
	if err != nil {
		t.Fatalf("CheckAndUpdate #2: %v", err)
	}
	if len(changed) != 1 || changed[0].Status != string(AchievementEarned) || changed[0].EarnedAt == nil {
		t.Fatalf("second pass changed=%+v", changed)
	}
	if got := mustCharacter(t, svc).Experience; got != 1750 {
		t.Fatalf("exp=%d, want 1750 after level-5 bonus", got)
	}

	// Earned never regresses even if the metric drops.
	setExperience(t, svc, 0)
	if _, err := svc.CheckAndUpdate(ctx); err != nil {
		t.Fatalf("CheckAndUpdate #3: %v", err)
	}
	earned, err := svc.AchievementsByStatus(ctx, AchievementEarned)
	if err != nil {
		t.Fatalf("AchievementsByStatus: %v", err)
	}
	if len(earned) != 1 {
		t.Fatalf("earned=%d, want 1", len(earned))
	}

	stats, err := svc.AchievementStats(ctx)
	if err != nil {
		t.Fatalf("AchievementStats: %v", err)
	}
	if stats.Earned != 1 || stats.Available != 0 || stats.Total != seeded {
		t.Fatalf("stats=%+v", stats)
	}
}

func TestEarnAchievementChecks(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	a, err := svc.CreateAchievement(ctx, CreateAchievementInput{
		Name:          "Pięć zadań",
		Type:          AchievementTaskCount,
		RequiredValue: 1,
	})
	if err != nil {
		t.Fatalf("CreateAchievement: %v", err)
	}
	if _, err := svc.EarnAchievement(ctx, a.ID); !IsState(err) {
		t.Fatalf("earn locked err=%v, want StateError", err)
	}

	task, _ := svc.CreateTask(ctx, CreateTaskInput{Title: "Zadanie"})
	if _, err := svc.ToggleTask(ctx, task.ID); err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if _, err := svc.CheckAndUpdate(ctx); err != nil {
		t.Fatalf("CheckAndUpdate: %v", err)
	}

	// Requirement regresses before the manual earn.
	if _, err := svc.ToggleTask(ctx, task.ID); err != nil {
		t.Fatalf("ToggleTask back: %v", err)
	}
	_, err = svc.EarnAchievement(ctx, a.ID)
	var serr StateError
	if !errors.As(err, &serr) || serr.Reason != "requirements are no longer met" {
		t.Fatalf("earn regressed err=%v", err)
	}

	if _, err := svc.ToggleTask(ctx, task.ID); err != nil {
		t.Fatalf("ToggleTask again: %v", err)
	}
	got, err := svc.EarnAchievement(ctx, a.ID)
	if err != nil {
		t.Fatalf("EarnAchievement: %v", err)
	}
	if got.Status != string(AchievementEarned) {
		t.Fatalf("status=%s", got.Status)
	}
	// 15 per completion twice, plus TaskCount bonus 1*2.
	if exp := mustCharacter(t, svc).Experience; exp != 32 {
		t.Fatalf("exp=%d, want 32", exp)
	}
}

func TestCrudEdges(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, CreateTaskInput{Title: "Read"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	got, err := svc.GetTask(ctx, task.ID)
	if err != nil || got.Title != "Read" {
		t.Fatalf("GetTask=%+v err=%v", got, err)
	}
	if _, err := svc.GetTask(ctx, 999); !IsNotFound(err) {
		t.Fatalf("GetTask missing err=%v", err)
	}

	target := 3
	h, err := svc.CreateHabit(ctx, CreateHabitInput{Title: "Stretch", Type: HabitCounter, TargetValue: &target})
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	title := " Stretching "
	updated, err := svc.UpdateHabit(ctx, h.ID, UpdateHabitInput{Title: &title})
	if err != nil {
		t.Fatalf("UpdateHabit: %v", err)
	}
	if updated.Title != "Stretching" || updated.Type != string(HabitCounter) || updated.TargetValue == nil || *updated.TargetValue != 3 {
		t.Fatalf("updated=%+v", updated)
	}
	blank := "  "
	if _, err := svc.UpdateHabit(ctx, h.ID, UpdateHabitInput{Title: &blank}); !IsValidation(err) {
		t.Fatalf("blank title err=%v, want ValidationError", err)
	}
	zero := 0
	if _, err := svc.UpdateHabit(ctx, h.ID, UpdateHabitInput{TargetValue: &zero}); !IsValidation(err) {
		t.Fatalf("zero target err=%v, want ValidationError", err)
	}
	if _, err := svc.UpdateHabit(ctx, 999, UpdateHabitInput{Title: &title}); !IsNotFound(err) {
		t.Fatalf("UpdateHabit missing err=%v", err)
	}
	if _, err := svc.LogHabitEntry(ctx, LogEntryInput{HabitID: h.ID, Value: 3}); err != nil {
		t.Fatalf("LogHabitEntry: %v", err)
	}
	entries, err := svc.EntriesForDate(ctx, "2026-03-10")
	if err != nil || len(entries) != 1 {
		t.Fatalf("EntriesForDate=%v err=%v", entries, err)
	}
	if _, err := svc.EntriesForDate(ctx, "yesterday"); !IsValidation(err) {
		t.Fatalf("EntriesForDate bad date err=%v", err)
	}
	if err := svc.DeleteHabit(ctx, h.ID); err != nil {
		t.Fatalf("DeleteHabit: %v", err)
	}
	if err := svc.DeleteHabit(ctx, h.ID); !IsNotFound(err) {
		t.Fatalf("second DeleteHabit err=%v", err)
	}
	entries, _ = svc.EntriesForDate(ctx, "2026-03-10")
	if len(entries) != 0 {
		t.Fatalf("entries survived habit delete: %v", entries)
	}

	q, err := svc.CreateQuest(ctx, CreateQuestInput{Title: "Side quest", Type: QuestTask, TargetValue: 2, RewardExp: 5})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}
	active, err := svc.ListQuests(ctx, QuestFilter{Week: "2026-11", Status: QuestActive})
	if err != nil || len(active) != 1 {
		t.Fatalf("ListQuests=%v err=%v", active, err)
	}
	if _, err := svc.ListQuests(ctx, QuestFilter{Status: "Paused"}); !IsValidation(err) {
		t.Fatalf("ListQuests bad status err=%v", err)
	}
	if err := svc.DeleteQuest(ctx, q.ID); err != nil {
		t.Fatalf("DeleteQuest: %v", err)
	}
	if err := svc.DeleteQuest(ctx, q.ID); !IsNotFound(err) {
		t.Fatalf("second DeleteQuest err=%v", err)
	}
}

func TestUpdateHabitTargetRecomputesStreak(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	one := 1
	h, err := svc.CreateHabit(ctx, CreateHabitInput{Title: "Water", Type: HabitCounter, TargetValue: &one})
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	res, err := svc.LogHabitEntry(ctx, LogEntryInput{HabitID: h.ID, Value: 2})
	if err != nil {
		t.Fatalf("LogHabitEntry: %v", err)
	}
	if res.Streak != 1 {
		t.Fatalf("streak=%d, want 1", res.Streak)
	}

	ten := 10
	updated, err := svc.UpdateHabit(ctx, h.ID, UpdateHabitInput{TargetValue: &ten})
	if err != nil {
		t.Fatalf("UpdateHabit: %v", err)
	}
	if updated.CurrentStreak != 0 || updated.Title != "Water" {
		t.Fatalf("updated=%+v", updated)
	}
	stored, err := svc.GetHabit(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetHabit: %v", err)
	}
	if stored.CurrentStreak != 0 || *stored.TargetValue != 10 {
		t.Fatalf("stored=%+v", stored)
	}

	if _, err := svc.UpdateHabit(ctx, h.ID, UpdateHabitInput{TargetValue: &one}); err != nil {
		t.Fatalf("UpdateHabit: %v", err)
	}
	if stored, _ = svc.GetHabit(ctx, h.ID); stored.CurrentStreak != 1 {
		t.Fatalf("streak after lowering target=%d, want 1", stored.CurrentStreak)
	}
}

type countingHook struct {
	tasks, habits int
}

func (h *countingHook) TaskCompleted(context.Context, storage.Task) error {
	h.tasks++
	return nil
}

func (h *countingHook) HabitEntryCompleted(context.Context, storage.Habit, storage.HabitEntry, int) error {
	h.habits++
	return nil
}

func TestHookChainRunsEveryHook(t *testing.T) {
	ctx := context.Background()
	failing := &failingHook{}
	after := &countingHook{}
	chain := HookChain{failing, after}

	if err := chain.TaskCompleted(ctx, storage.Task{ID: 1}); err == nil || err.Error() != "reward store unavailable" {
		t.Fatalf("TaskCompleted err=%v", err)
	}
	if err := chain.HabitEntryCompleted(ctx, storage.Habit{ID: 1}, storage.HabitEntry{}, 1); err == nil {
		t.Fatalf("HabitEntryCompleted err=nil, want first hook's error")
	}
	if failing.calls != 2 || after.tasks != 1 || after.habits != 1 {
		t.Fatalf("failing=%d tasks=%d habits=%d", failing.calls, after.tasks, after.habits)
	}
	if err := (HookChain{after}).TaskCompleted(ctx, storage.Task{}); err != nil {
		t.Fatalf("clean chain err=%v", err)
	}
}

func TestHookChainAsServiceHook(t *testing.T) {
	counter := &countingHook{}
	svc, _, cleanup := newTestService(t, WithRewardHook(HookChain{counter, &failingHook{}}))
	defer cleanup()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, CreateTaskInput{Title: "Sport"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	res, err := svc.ToggleTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if res.RewardApplied || counter.tasks != 1 {
		t.Fatalf("applied=%v counter=%d", res.RewardApplied, counter.tasks)
	}
}

func TestGenerateLogsBlueprintCodes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc, _, cleanup := newTestService(t, WithLogger(zap.New(core)))
	defer cleanup()
	ctx := context.Background()

	if _, err := svc.GenerateWeeklyQuests(ctx); err != nil {
		t.Fatalf("GenerateWeeklyQuests: %v", err)
	}
	built := map[string]bool{}
	for _, e := range logs.FilterMessage("quest blueprint built").All() {
		built[e.ContextMap()["blueprint"].(string)] = true
	}
	skipped := map[string]bool{}
	for _, e := range logs.FilterMessage("quest blueprint skipped").All() {
		skipped[e.ContextMap()["blueprint"].(string)] = true
	}
	if !built["weekly_growth"] || len(built) != 1 {
		t.Fatalf("built=%v, want only weekly_growth", built)
	}
	for _, code := range []string{"task_executor", "consistency_master", "specialist"} {
		if !skipped[code] {
			t.Fatalf("skipped=%v, missing %s", skipped, code)
		}
	}
}
