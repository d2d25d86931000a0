package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jasperwreed/astroguide/internal/models"
	"github.com/jasperwreed/astroguide/internal/notify"
	"github.com/jasperwreed/astroguide/internal/session"
)

type focus int

const (
	focusInput focus = iota
	focusList
)

type (
	stateMsg         session.State
	toastMsg         notify.Toast
	toastExpiredMsg  struct{ seq int }
	rateLimitTickMsg time.Time
	listLoadedMsg    struct{ err error }
	openedMsg        struct{ err error }
	submitDoneMsg    struct {
		err     error
		created bool
	}
	createdMsg struct {
		conv *models.Conversation
		err  error
	}
	loadMoreDoneMsg struct{ err error }
	prefsSavedMsg   struct{ err error }
)

type listItem struct {
	item models.ConversationListItem
}

func (i listItem) FilterValue() string {
	return i.item.DisplayTitle()
}

func (i listItem) Title() string {
	return i.item.DisplayTitle()
}

func (i listItem) Description() string {
	if i.item.LastMessagePreview != nil && *i.item.LastMessagePreview != "" {
		return *i.item.LastMessagePreview
	}
	if i.item.UpdatedAt.IsZero() {
		return ""
	}
	return i.item.UpdatedAt.Local().Format("2006-01-02 15:04")
}

type chatModel struct {
	ctx    context.Context
	deps   Deps
	styles styles
	prefs  models.Preferences

	list     list.Model
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	state     session.State
	focus     focus
	toast     *notify.Toast
	toastSeq  int
	rateLimit int
	busy      bool

	width  int
	height int
	ready  bool
}

func newChatModel(ctx context.Context, deps Deps) chatModel {
	st := stylesFor(deps.Preferences.Theme)

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Conversations"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = st.title

	input := textinput.New()
	input.Placeholder = "Ask a question and press enter"
	input.Prompt = "> "
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return chatModel{
		ctx:      ctx,
		deps:     deps,
		styles:   st,
		prefs:    deps.Preferences,
		list:     l,
		viewport: viewport.New(0, 0),
		input:    input,
		spinner:  sp,
		focus:    focusInput,
	}
}

func (m chatModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.spinner.Tick,
		m.deps.Bridge.waitForState(),
		m.deps.Bridge.waitForToast(),
		m.fetchList(true),
		rateLimitTick(),
	}
	if m.deps.ConversationID != "" {
		cmds = append(cmds, m.openConversation(m.deps.ConversationID))
	}
	return tea.Batch(cmds...)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.refreshTranscript(false)
		return m, nil

	case stateMsg:
		s := session.State(msg)
		if s.Version > m.state.Version {
			follow := s.IsStreaming() || len(s.Messages) != len(m.state.Messages)
			m.state = s
			m.refreshTranscript(follow)
		}
		return m, m.deps.Bridge.waitForState()

	case toastMsg:
		t := notify.Toast(msg)
		m.toastSeq++
		m.toast = &t
		seq := m.toastSeq
		return m, tea.Batch(
			m.deps.Bridge.waitForToast(),
			tea.Tick(t.Duration, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} }),
		)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case rateLimitTickMsg:
		m.rateLimit = m.deps.Notifier.RateLimitSeconds()
		return m, rateLimitTick()

	case listLoadedMsg:
		m.syncList()
		return m, nil

	case createdMsg:
		if msg.err != nil {
			return m, nil
		}
		m.syncList()
		return m, m.openConversation(msg.conv.ID)

	case submitDoneMsg:
		m.busy = false
		if msg.created {
			m.syncList()
		}
		m.warnOnRejection(msg.err)
		return m, nil

	case openedMsg, loadMoreDoneMsg:
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.deps.Notifier.Show(notify.LevelError, "Failed to save preferences", 0)
		}
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state.IsStreaming() {
			m.refreshTranscript(false)
		}
		return m, cmd

	case tea.KeyMsg:
		if handled, next, cmd := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	if m.focus == focusList {
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
		if m.deps.Conversations != nil && m.list.Index() >= len(m.list.Items())-1 && m.deps.Conversations.HasMore() {
			cmds = append(cmds, m.fetchList(false))
		}
	} else {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m chatModel) handleKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering && msg.String() != "ctrl+c" {
		return false, m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return true, m, tea.Quit

	case "tab":
		if m.focus == focusInput {
			m.focus = focusList
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return true, m, nil

	case "esc":
		if m.state.IsStreaming() || m.busy {
			m.deps.Session.CancelStream(true)
			return true, m, nil
		}
		return false, m, nil

	case "ctrl+r":
		m.busy = true
		return true, m, m.retry()

	case "ctrl+n":
		return true, m, m.create()

	case "ctrl+u":
		return true, m, m.loadMore()

	case "ctrl+d":
		m.prefs.Difficulty = m.prefs.Difficulty.Next()
		return true, m, m.savePrefs()

	case "ctrl+l":
		if m.prefs.Language == models.LanguageZh {
			m.prefs.Language = models.LanguageEn
		} else {
			m.prefs.Language = models.LanguageZh
		}
		return true, m, m.savePrefs()

	case "ctrl+t":
		if m.prefs.Theme == models.ThemeDark {
			m.prefs.Theme = models.ThemeLight
		} else {
			m.prefs.Theme = models.ThemeDark
		}
		m.styles = stylesFor(m.prefs.Theme)
		m.list.Styles.Title = m.styles.title
		m.refreshTranscript(false)
		return true, m, m.savePrefs()

	case "enter":
		if m.focus == focusList {
			item, ok := m.list.SelectedItem().(listItem)
			if !ok || item.item.ID == m.state.ConversationID {
				return true, m, nil
			}
			m.focus = focusInput
			m.input.Focus()
			return true, m, m.openConversation(item.item.ID)
		}

		content := m.input.Value()
		if content == "" {
			return true, m, nil
		}
		m.input.SetValue("")
		m.busy = true
		return true, m, m.submit(content)
	}

	return false, m, nil
}

// warnOnRejection surfaces errors the orchestrator returns without notifying.
func (m chatModel) warnOnRejection(err error) {
	switch {
	case err == nil:
	case errors.Is(err, session.ErrRateLimited):
		m.deps.Notifier.Show(notify.LevelWarning,
			fmt.Sprintf("Too many requests, wait %ds.", m.deps.Notifier.RateLimitSeconds()), notify.RateLimitToastDuration)
	case errors.Is(err, session.ErrStreamActive):
		m.deps.Notifier.Show(notify.LevelWarning, "Wait for the current answer or press esc to stop it.", 0)
	case errors.Is(err, session.ErrEmptyContent), errors.Is(err, session.ErrNoConversation):
		m.deps.Notifier.Show(notify.LevelWarning, err.Error(), 0)
	}
}

func (m *chatModel) layout() {
	listWidth := m.width / 3
	bodyHeight := m.height - 5

	m.list.SetSize(listWidth, bodyHeight)
	m.viewport.Width = m.width - listWidth - 4
	m.viewport.Height = bodyHeight
	m.input.Width = m.width - 4
}

func (m *chatModel) refreshTranscript(follow bool) {
	m.viewport.SetContent(renderTranscript(m.state, m.styles, m.viewport.Width, m.spinner.View()))
	if follow {
		m.viewport.GotoBottom()
	}
}

func (m *chatModel) syncList() {
	convs := m.deps.Conversations.Items()
	items := make([]list.Item, 0, len(convs))
	for _, c := range convs {
		items = append(items, listItem{item: c})
	}
	m.list.SetItems(items)
}

func (m chatModel) fetchList(reset bool) tea.Cmd {
	ctx, convs := m.ctx, m.deps.Conversations
	return func() tea.Msg {
		return listLoadedMsg{err: convs.FetchList(ctx, reset)}
	}
}

func (m chatModel) openConversation(id string) tea.Cmd {
	ctx, orch := m.ctx, m.deps.Session
	return func() tea.Msg {
		return openedMsg{err: orch.OpenConversation(ctx, id)}
	}
}

func (m chatModel) submit(content string) tea.Cmd {
	ctx, orch, convs := m.ctx, m.deps.Session, m.deps.Conversations
	conversationID := m.state.ConversationID
	difficulty, language := m.prefs.Difficulty, m.prefs.Language

	return func() tea.Msg {
		created := false
		if conversationID == "" {
			conv, err := convs.Create(ctx, "")
			if err != nil {
				return submitDoneMsg{err: err}
			}
			conversationID = conv.ID
			created = true
		}
		err := orch.SubmitUserMessage(ctx, conversationID, content, difficulty, language)
		return submitDoneMsg{err: err, created: created}
	}
}

func (m chatModel) retry() tea.Cmd {
	ctx, orch := m.ctx, m.deps.Session
	return func() tea.Msg {
		return submitDoneMsg{err: orch.RetryLastAssistantMessage(ctx)}
	}
}

func (m chatModel) create() tea.Cmd {
	ctx, convs := m.ctx, m.deps.Conversations
	return func() tea.Msg {
		conv, err := convs.Create(ctx, "")
		return createdMsg{conv: conv, err: err}
	}
}

func (m chatModel) loadMore() tea.Cmd {
	ctx, orch := m.ctx, m.deps.Session
	return func() tea.Msg {
		return loadMoreDoneMsg{err: orch.LoadMoreMessages(ctx)}
	}
}

func (m chatModel) savePrefs() tea.Cmd {
	store, prefs := m.deps.Store, m.prefs
	return func() tea.Msg {
		return prefsSavedMsg{err: store.SavePreferences(prefs)}
	}
}

func rateLimitTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return rateLimitTickMsg(t)
	})
}

func (m chatModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	listPane, transcriptPane := m.styles.pane, m.styles.pane
	if m.focus == focusList {
		listPane = m.styles.focused
	} else {
		transcriptPane = m.styles.focused
	}

	listView := listPane.
		Width(m.width/3 - 2).
		Height(m.height - 5).
		Render(m.list.View())

	contentView := transcriptPane.
		Width(m.width - m.width/3 - 2).
		Height(m.height - 5).
		Render(m.viewport.View())

	return m.topBar() + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, listView, contentView) + "\n" +
		m.input.View() + "\n" +
		m.bottomBar()
}

func (m chatModel) topBar() string {
	title := "New conversation"
	if m.deps.Conversations != nil {
		for _, it := range m.deps.Conversations.Items() {
			if it.ID == m.state.ConversationID {
				title = it.DisplayTitle()
			}
		}
	}

	dbInfo := "DB: default"
	if m.deps.DBPath != "" {
		dbInfo = "DB: " + filepath.Base(m.deps.DBPath)
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		m.styles.title.Render("AstroGuide"),
		m.styles.help.Render("  "+title+"  "+dbInfo),
	)
}

func (m chatModel) bottomBar() string {
	if m.toast != nil {
		style, ok := m.styles.toasts[m.toast.Level]
		if !ok {
			style = m.styles.toasts[notify.LevelInfo]
		}
		return style.Render(m.toast.Message)
	}

	status := fmt.Sprintf("  %s · %s · %s", m.prefs.Difficulty, m.prefs.Language, m.prefs.Theme)
	if m.state.IsStreaming() {
		status = "  " + m.spinner.View() + " streaming, esc to stop ·" + status
	}
	if m.rateLimit > 0 {
		status += m.styles.errorText.Render(fmt.Sprintf("  rate limited %ds", m.rateLimit))
	}

	return m.styles.help.Render(status + "  •  enter: send • tab: focus • ctrl+r: retry • ctrl+n: new • ctrl+d/l/t: difficulty/language/theme • ctrl+c: quit")
}
