package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AssQ222/PDRPG/internal/engine"
	"github.com/AssQ222/PDRPG/internal/storage"
	"github.com/AssQ222/PDRPG/internal/ui"
)

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	character *engine.CharacterView
	habits    []engine.HabitToday
	date      string
	quests    []storage.Quest
	tasks     []storage.Task

	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	character *engine.CharacterView
	habits    []engine.HabitToday
	date      string
	quests    []storage.Quest
	tasks     []storage.Task
	err       error
}

// actionMsg reports the outcome of a write; the board reloads afterwards.
type actionMsg struct {
	log string
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		c, err := m.svc.GetCharacter(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		habits, date, err := m.svc.TodayHabits(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		quests, err := m.svc.ActiveQuests(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		tasks, err := m.svc.ListTasks(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		open := tasks[:0]
		for _, t := range tasks {
			if !t.Completed {
				open = append(open, t)
			}
		}
		return loadedMsg{character: c, habits: habits, date: date, quests: quests, tasks: open}
	}
}

// logHabitCmd ticks today's entry: a Boolean habit flips, a Counter habit gains one.
func (m boardModel) logHabitCmd(h engine.HabitToday) tea.Cmd {
	return func() tea.Msg {
		in := engine.LogEntryInput{HabitID: h.Habit.ID}
		if h.Habit.Type == string(engine.HabitCounter) {
			if h.TodayEntry != nil {
				in.Value = h.TodayEntry.Value
			}
			in.Value++
		} else {
			in.Completed = !h.TodayCompleted
		}
		res, err := m.svc.LogHabitEntry(m.ctx, in)
		if err != nil {
			return actionMsg{err: err}
		}
		log := fmt.Sprintf("%s logged, streak %d", h.Habit.Title, res.Streak)
		if res.RewardApplied && res.Reward != nil {
			log += fmt.Sprintf(", +%d XP", res.Reward.Exp)
		}
		return actionMsg{log: log}
	}
}

func (m boardModel) toggleTaskCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.ToggleTask(m.ctx, id)
		if err != nil {
			return actionMsg{err: err}
		}
		log := fmt.Sprintf("Completed %q", res.Task.Title)
		if res.RewardApplied && res.Reward != nil {
			log += fmt.Sprintf(", +%d XP", res.Reward.Exp)
		}
		return actionMsg{log: log}
	}
}

func (m boardModel) generateCmd() tea.Cmd {
	return func() tea.Msg {
		qs, err := m.svc.GenerateWeeklyQuests(m.ctx)
		if err != nil {
			return actionMsg{err: err}
		}
		if len(qs) == 0 {
			return actionMsg{log: "Quests for this week already exist."}
		}
		return actionMsg{log: fmt.Sprintf("Generated %d quests.", len(qs))}
	}
}

// refreshCmd runs the periodic bookkeeping: expiry, quest progress and achievements.
func (m boardModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		expired, err := m.svc.ExpireOverdueQuests(m.ctx)
		if err != nil {
			return actionMsg{err: err}
		}
		changed, err := m.svc.UpdateAllQuestProgress(m.ctx)
		if err != nil {
			return actionMsg{err: err}
		}
		earned, err := m.svc.CheckAndUpdate(m.ctx)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{log: fmt.Sprintf("Refreshed at %s: %d expired, %d quests moved, %d achievements changed.",
			time.Now().Format("15:04:05"), expired, len(changed), len(earned))}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.character = msg.character
		m.habits = msg.habits
		m.date = msg.date
		m.quests = msg.quests
		m.tasks = msg.tasks
		m.clampSelection()
		return m, nil
	case actionMsg:
		if msg.err != nil {
			m.lastLog = "Failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = msg.log
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.refreshCmd()
		case "g":
			return m, m.generateCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < m.rowCount()-1 {
				m.selected++
			}
			return m, nil
		case "c", " ", "enter":
			if m.selected < len(m.habits) {
				return m, m.logHabitCmd(m.habits[m.selected])
			}
			if i := m.selected - len(m.habits); i >= 0 && i < len(m.tasks) {
				return m, m.toggleTaskCmd(m.tasks[i].ID)
			}
			return m, nil
		}
	}
	return m, nil
}

// Rows are today's habits followed by open tasks.
func (m boardModel) rowCount() int {
	return len(m.habits) + len(m.tasks)
}

func (m *boardModel) clampSelection() {
	if m.selected >= m.rowCount() {
		m.selected = m.rowCount() - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 30
	if m.width > 0 {
		leftW = min(leftW, m.width/2)
		leftW = max(leftW, 18)
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.character == nil {
		return "PDRPG | loading…"
	}
	c := m.character
	p := c.LevelProgress
	bar := ui.ProgressBar(c.Experience-p.CurrentLevelExp, p.NextLevelExp-p.CurrentLevelExp, 30)
	return fmt.Sprintf("PDRPG | %s | Level %d | XP %d %s %.0f%%",
		c.Class, c.Level, c.Experience, bar, p.ProgressPercentage)
}

func (m boardModel) renderSidebar() string {
	if m.character == nil {
		return "Attributes\n\nLoading…"
	}
	set := engine.AttributeSet(m.character.Attributes)
	lines := []string{"Attributes"}
	for _, attr := range engine.Attributes {
		lines = append(lines, fmt.Sprintf("- %-13s %3d", attr, set.Get(attr)))
	}
	lines = append(lines,
		"",
		"Keys",
		"- ↑/↓ or j/k: move",
		"- c/space: log habit / finish task",
		"- g: generate weekly quests",
		"- r: refresh progress",
		"- q: quit",
	)
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	var out []string
	cursor := func(row int) string {
		if row == m.selected {
			return "> "
		}
		return "  "
	}

	out = append(out, "Habits "+m.date)
	if len(m.habits) == 0 {
		out = append(out, "  (no habits)")
	}
	for i, h := range m.habits {
		detail := fmt.Sprintf("streak %d", h.Habit.CurrentStreak)
		if h.Habit.Type == string(engine.HabitCounter) {
			v := 0
			if h.TodayEntry != nil {
				v = h.TodayEntry.Value
			}
			target := "-"
			if h.Habit.TargetValue != nil {
				target = fmt.Sprint(*h.Habit.TargetValue)
			}
			detail = fmt.Sprintf("%d/%s, %s", v, target, detail)
		}
		out = append(out, fmt.Sprintf("%s%s %s (%s)", cursor(i), checkbox(h.TodayCompleted), h.Habit.Title, detail))
	}

	out = append(out, "", "Tasks")
	if len(m.tasks) == 0 {
		out = append(out, "  (nothing open)")
	}
	for i, t := range m.tasks {
		goal := ""
		if t.GoalRelated {
			goal = " [goal]"
		}
		out = append(out, fmt.Sprintf("%s%s %s%s", cursor(len(m.habits)+i), checkbox(false), t.Title, goal))
	}

	out = append(out, "", "Quests")
	if len(m.quests) == 0 {
		out = append(out, "  (none active, press g)")
	}
	for _, q := range m.quests {
		bar := ui.ProgressBar(int64(q.CurrentProgress), int64(q.TargetValue), 10)
		out = append(out, fmt.Sprintf("  %s %s %d/%d (+%d XP)", bar, q.Title, q.CurrentProgress, q.TargetValue, q.RewardExp))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
