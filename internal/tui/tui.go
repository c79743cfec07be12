package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/qna/internal/board"
	"github.com/idilsaglam/qna/internal/model"
	"github.com/idilsaglam/qna/internal/ui"
)

// listItem adapts a question to bubbles/list.Item.
type listItem struct {
	ID      model.ID
	Text    string
	Answers int
}

func (i listItem) Title() string       { return i.Text }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Text }

// completion messages for the async board commands
type refreshedMsg struct{ err error }
type answeredMsg struct {
	text string // kept so a failed submit stays resubmittable
	err  error
}
type editedMsg struct{ err error }
type removedMsg struct{ err error }

type appModel struct {
	board *board.Board
	list  list.Model

	// Inline compose/edit, sharing one text input
	composing bool
	editing   bool
	editItem  model.ID
	editAns   model.ID
	ti        textinput.Model
	inputErr  string

	// Which answer of the selected question the cursor is on
	ansCursor int
}

// Custom delegate to control how questions render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	count := ui.MutedStyle.Render(fmt.Sprintf(" (%d)", it.Answers))
	prefix := "  "
	text := it.Text
	if index == m.Index() {
		prefix = ui.SelectedStyle.Render("> ")
		text = ui.TitleStyle.Render(text)
	}
	fmt.Fprintln(w, prefix+text+count)
}

// Run starts the Bubble Tea browser on top of the given board.
func Run(b *board.Board) error {
	if os.Getenv("QNA_DEBUG") != "" {
		f, err := tea.LogToFile("qna-debug.log", "debug")
		if err == nil {
			defer f.Close()
		}
	}

	p := tea.NewProgram(newApp(b), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newApp(b *board.Board) appModel {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = ui.TitleStyle.Render("Questions")
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.TitleStyle
	l.Styles.HelpStyle = ui.HelpStyle
	l.Styles.PaginationStyle = ui.HelpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("question", "questions")

	answerBind := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "answer"))
	editBind := key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	delBind := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	refreshBind := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{answerBind, editBind, delBind, refreshBind}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	m := appModel{board: b, list: l}
	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.Placeholder = "Your answer..."
	m.ti.CharLimit = 500
	return m
}

// ------- async board commands -------

func refreshCmd(b *board.Board) tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{err: b.Refresh(context.Background())}
	}
}

func submitCmd(b *board.Board, itemID model.ID, text string) tea.Cmd {
	return func() tea.Msg {
		return answeredMsg{text: text, err: b.SubmitAnswer(context.Background(), itemID, text)}
	}
}

func editCmd(b *board.Board, itemID, answerID model.ID, text string) tea.Cmd {
	return func() tea.Msg {
		return editedMsg{err: b.EditAnswer(context.Background(), itemID, answerID, text)}
	}
}

func removeCmd(b *board.Board, itemID, answerID model.ID) tea.Cmd {
	return func() tea.Msg {
		return removedMsg{err: b.RemoveAnswer(context.Background(), itemID, answerID)}
	}
}

// ------- Bubble Tea model -------

func (m appModel) Init() tea.Cmd { return refreshCmd(m.board) }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// completion messages first, they arrive in every mode
	switch x := msg.(type) {
	case refreshedMsg:
		m.syncList()
		m.ansCursor = 0
		return m, nil
	case answeredMsg:
		m.syncList()
		if x.err != nil {
			// reopen the input with the rejected text so it can be resubmitted
			m.composing = true
			m.ti.SetValue(x.text)
			m.ti.CursorEnd()
			m.ti.Focus()
		}
		return m, nil
	case editedMsg, removedMsg:
		m.syncList()
		m.clampCursor()
		return m, nil
	case tea.WindowSizeMsg:
		m.list.SetSize(x.Width-2, x.Height-8)
		return m, nil
	}

	if m.composing || m.editing {
		return m.updateInput(msg)
	}
	return m.updateBrowse(msg)
}

func (m appModel) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if x, isKey := msg.(tea.KeyMsg); isKey {
		switch x.String() {
		case "enter":
			text := strings.TrimSpace(m.ti.Value())
			if m.composing {
				if text == "" {
					m.inputErr = "Answer cannot be empty"
					return m, nil
				}
				sel, selected := m.selected()
				m.resetInput()
				if !selected {
					return m, nil
				}
				return m, submitCmd(m.board, sel.ID, text)
			}
			// an empty edit is a cancel, the board will not issue a call
			itemID, answerID := m.editItem, m.editAns
			m.resetInput()
			return m, editCmd(m.board, itemID, answerID, text)
		case "esc":
			m.resetInput()
			return m, nil
		}
	}
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m appModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if x, isKey := msg.(tea.KeyMsg); isKey && !m.list.SettingFilter() {
		switch x.String() {
		case "q", "esc":
			return m, tea.Quit
		case "r":
			return m, refreshCmd(m.board)
		case "a", "enter":
			if _, selected := m.selected(); !selected {
				return m, nil
			}
			m.composing = true
			m.inputErr = ""
			m.ti.SetValue("")
			m.ti.Placeholder = "Your answer..."
			m.ti.Focus()
			return m, nil
		case "e":
			sel, ans, found := m.selectedAnswer()
			if !found {
				return m, nil
			}
			m.editing = true
			m.editItem = sel.ID
			m.editAns = ans.ID
			m.inputErr = ""
			m.ti.SetValue(ans.Text)
			m.ti.CursorEnd()
			m.ti.Placeholder = "Edit answer..."
			m.ti.Focus()
			return m, nil
		case "d":
			sel, ans, found := m.selectedAnswer()
			if !found {
				return m, nil
			}
			return m, removeCmd(m.board, sel.ID, ans.ID)
		case "tab":
			m.ansCursor++
			m.clampCursor()
			return m, nil
		case "shift+tab":
			m.ansCursor--
			m.clampCursor()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) View() string {
	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(m.answerPanel())

	if m.composing || m.editing {
		title := "Answer question"
		if m.editing {
			title = "Edit answer"
		}
		if m.inputErr != "" {
			title += " — " + ui.ErrorStyle.Render(m.inputErr)
		}
		b.WriteString("\n")
		b.WriteString(inputBar.Render(title + "\n" + m.ti.View()))
	}

	if msg := m.board.Err(); msg != "" {
		b.WriteString("\n")
		b.WriteString(ui.ErrorStyle.Render("✖ " + msg))
		b.WriteString(ui.MutedStyle.Render("  (try again, or run `qna login`)"))
	}
	return b.String()
}

var inputBar = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("8")).
	Padding(0, 1)

// answerPanel renders the selected question's answers with the answer cursor.
func (m appModel) answerPanel() string {
	sel, selected := m.selected()
	if !selected {
		return ui.MutedStyle.Render("  no questions")
	}
	item, found := m.lookup(sel.ID)
	if !found || len(item.Answers) == 0 {
		return ui.MutedStyle.Render("  no answers yet — press a to answer")
	}
	var lines []string
	for i, a := range item.Answers {
		marker := "  "
		text := a.Text
		if i == m.ansCursor {
			marker = ui.AccentStyle.Render("→ ")
			text = ui.TitleStyle.Render(text)
		}
		lines = append(lines, marker+text+ui.MutedStyle.Render("  #"+a.ID.String()))
	}
	lines = append(lines, ui.HelpStyle.Render("  tab: next answer • e: edit • d: delete"))
	return strings.Join(lines, "\n")
}

// ------- helpers -------

// syncList rebuilds the visible list from the board's current view.
func (m *appModel) syncList() {
	items := m.board.Items()
	li := make([]list.Item, 0, len(items))
	for _, it := range items {
		li = append(li, listItem{ID: it.ID, Text: it.Description, Answers: len(it.Answers)})
	}
	m.list.SetItems(li)
}

func (m *appModel) resetInput() {
	m.composing = false
	m.editing = false
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m appModel) selected() (listItem, bool) {
	it, isItem := m.list.SelectedItem().(listItem)
	return it, isItem
}

func (m appModel) selectedAnswer() (listItem, model.Answer, bool) {
	sel, selected := m.selected()
	if !selected {
		return listItem{}, model.Answer{}, false
	}
	item, found := m.lookup(sel.ID)
	if !found || m.ansCursor < 0 || m.ansCursor >= len(item.Answers) {
		return listItem{}, model.Answer{}, false
	}
	return sel, item.Answers[m.ansCursor], true
}

func (m appModel) lookup(id model.ID) (model.Item, bool) {
	for _, it := range m.board.Items() {
		if it.ID == id {
			return it, true
		}
	}
	return model.Item{}, false
}

func (m *appModel) clampCursor() {
	max := 0
	if sel, selected := m.selected(); selected {
		if item, found := m.lookup(sel.ID); found {
			max = len(item.Answers) - 1
		}
	}
	if max < 0 {
		max = 0
	}
	if m.ansCursor > max {
		m.ansCursor = 0 // wrap
	}
	if m.ansCursor < 0 {
		m.ansCursor = max
	}
}
