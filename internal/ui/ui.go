package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tt/internal/config"
	"tt/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeTag
)

type Model struct {
	store         *task.Store
	cfg           config.Config
	openPath      string
	donePath      string
	deleteIfEmpty bool

	rows       []task.Row
	cursor     int
	mode       mode
	input      textinput.Model
	status     string
	confirmDel bool
	pendingDel string
	selfWrite  bool

	watch *watcher
}

// Run starts the interactive list view for the file pair. External
// rewrites of either file are picked up while the view is open.
func Run(cfg config.Config, openPath, donePath string) error {
	store := task.NewStore()
	if err := store.Load(openPath, donePath); err != nil {
		return err
	}

	watch, err := newWatcher(filepath.Dir(openPath), openPath, donePath)
	if err != nil {
		return err
	}
	defer watch.Close()

	ti := textinput.New()
	ti.Placeholder = "Task text"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		store:         store,
		cfg:           cfg,
		openPath:      openPath,
		donePath:      donePath,
		deleteIfEmpty: cfg.DeleteIfEmpty,
		rows:          store.List(task.KindOpen, task.ListOptions{}),
		status:        "Press 'a' to add, space to finish, 'd' to delete.",
		input:         ti,
		mode:          modeList,
		watch:         watch,
	}

	program := tea.NewProgram(m)
	_, err = program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return waitForChange(m.watch.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reloadMsg:
		if m.selfWrite {
			m.selfWrite = false
		} else if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		} else {
			m.status = "List changed on disk, reloaded."
		}
		return m, waitForChange(m.watch.events)
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		if m.mode != modeList {
			return m.updateInputMode(msg.String(), msg)
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m *Model) reload() error {
	store := task.NewStore()
	if err := store.Load(m.openPath, m.donePath); err != nil {
		return err
	}
	m.store = store
	m.refreshRows()
	return nil
}

func (m *Model) refreshRows() {
	m.rows = m.store.List(task.KindOpen, task.ListOptions{})
	m.cursor = clampCursor(m.cursor, len(m.rows))
}

func (m *Model) flush() error {
	m.selfWrite = true
	return m.store.Write(m.openPath, m.donePath, m.deleteIfEmpty)
}

func (m Model) current() (task.Row, bool) {
	if len(m.rows) == 0 {
		return task.Row{}, false
	}
	return m.rows[clampCursor(m.cursor, len(m.rows))], true
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(m.rows) > 0 {
			m.cursor = clampCursor(m.cursor+1, len(m.rows))
		}
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.rows))
		}
	case m.cfg.Keys.Add:
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Placeholder = "Task text"
		m.input.Focus()
		m.status = "Add mode: type the task text and press Enter"
	case m.cfg.Keys.Finish, "F":
		row, ok := m.current()
		if !ok {
			return m, nil
		}
		res, err := m.store.Finish(row.ID, key == "F")
		if err != nil {
			m.status = fmt.Sprintf("finish failed: %v", err)
			return m, nil
		}
		if res.Blocked {
			m.status = "Task has open sub-tasks; press 'F' to finish the whole subtree."
			return m, nil
		}
		if err := m.flush(); err != nil {
			m.status = fmt.Sprintf("write failed: %v", err)
			return m, nil
		}
		m.refreshRows()
		m.status = fmt.Sprintf("Finished %d task(s)", len(res.Finished))
	case m.cfg.Keys.Delete:
		row, ok := m.current()
		if !ok {
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = row.ID
		m.status = fmt.Sprintf("Delete %q? y/n", row.Text)
	case m.cfg.Keys.Edit:
		row, ok := m.current()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		m.mode = modeEdit
		m.input.SetValue(row.Text)
		m.input.Placeholder = "New text or s/pattern/replacement/"
		m.input.Focus()
		m.status = "Edit mode: adjust the text and press Enter"
	case m.cfg.Keys.Tag:
		_, ok := m.current()
		if !ok {
			m.status = "No tasks to tag"
			return m, nil
		}
		m.mode = modeTag
		m.input.SetValue("")
		m.input.Placeholder = "tags to add, -tag to remove"
		m.input.Focus()
		m.status = "Tag mode: space-separated tags, '-' prefix removes"
	}
	return m, nil
}

func (m Model) updateInputMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		return m.applyInput()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) applyInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	var err error
	var done string
	switch m.mode {
	case modeAdd:
		if text == "" {
			m.status = "Task text cannot be empty"
			return m, nil
		}
		_, err = m.store.Add(text, "", "")
		done = "Added task"
	case modeEdit:
		row, ok := m.current()
		if !ok {
			m.status = "No task selected"
			return m, nil
		}
		err = m.store.Edit(row.ID, text)
		done = "Edited task"
	case modeTag:
		row, ok := m.current()
		if !ok {
			m.status = "No task selected"
			return m, nil
		}
		err = m.store.Tag(row.ID, text)
		done = "Updated tags"
	}
	if err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	if err := m.flush(); err != nil {
		m.status = fmt.Sprintf("write failed: %v", err)
		return m, nil
	}
	m.refreshRows()
	m.status = done
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = ""
		return m, nil
	case "y", "Y":
		if m.pendingDel == "" {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		if err := m.store.Remove(m.pendingDel, false); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
		} else if err := m.flush(); err != nil {
			m.status = fmt.Sprintf("write failed: %v", err)
		} else {
			m.refreshRows()
			m.status = "Deleted task"
		}
		m.confirmDel = false
		m.pendingDel = ""
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString("tt — " + m.openPath)
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString("No open tasks. Press 'a' to add one.")
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n---\n")

	if m.mode != modeList {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(renderHelp(m.cfg.Keys))

	return b.String()
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	for i, line := range task.FormatRows(m.rows, false) {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}
		b.WriteString(cursor + " " + line + "\n")
	}
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s finish (F force) • %s delete • %s edit • %s tag • %s quit",
		k.Up, k.Down, k.Add, k.Finish, k.Delete, k.Edit, k.Tag, k.Quit)
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
