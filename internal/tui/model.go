package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/domain/ports/adapter"
	"agent-promosi/internal/usecase"
)

// Texts supplies user-facing messages; *i18n.Translator satisfies it.
type Texts interface {
	T(key string, args ...interface{}) string
}

// transcriptMsg carries a snapshot from the conversation watch.
type transcriptMsg struct {
	tr model.Transcript
	ok bool
}

// relayDoneMsg marks the end of one relay round trip.
type relayDoneMsg struct{ res model.RelayResult }

// Model is the chat widget: a scrollable transcript above a single-line input.
type Model struct {
	conv      *usecase.Conversation
	relay     adapter.Relay
	updates   <-chan model.Transcript
	stopWatch func()
	texts     Texts
	connected bool

	transcript model.Transcript
	input      textinput.Model
	view       viewport.Model
	width      int
	height     int
	quitting   bool
}

// NewModel opens a fresh conversation over relay. connected only drives the header badge.
func NewModel(id, ownerID string, relay adapter.Relay, texts Texts, connected bool) Model {
	conv := usecase.NewConversation(id, ownerID, relay)
	updates, stop := conv.Watch()

	ti := textinput.New()
	ti.Placeholder = texts.T("tui.placeholder")
	ti.CharLimit = 2000
	ti.Focus()

	return Model{
		conv:       conv,
		relay:      relay,
		updates:    updates,
		stopWatch:  stop,
		texts:      texts,
		connected:  connected,
		transcript: conv.Snapshot(),
		input:      ti,
		view:       viewport.New(80, 20),
		width:      80,
		height:     24,
	}
}

func waitForTranscript(ch <-chan model.Transcript) tea.Cmd {
	return func() tea.Msg {
		tr, ok := <-ch
		return transcriptMsg{tr: tr, ok: ok}
	}
}

// sendToRelay runs the outstanding turn and resolves it. The relay never fails,
// so the conversation always returns to idle.
func sendToRelay(conv *usecase.Conversation, relay adapter.Relay, text string) tea.Cmd {
	return func() tea.Msg {
		res := relay.Send(context.Background(), text)
		conv.Resolve(res)
		return relayDoneMsg{res: res}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForTranscript(m.updates))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case transcriptMsg:
		if !msg.ok {
			return m, nil
		}
		m.transcript = msg.tr
		m.refresh()
		return m, waitForTranscript(m.updates)

	case relayDoneMsg:
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.stopWatch()
			m.conv.Close()
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "pgup":
			m.view.ViewUp()
			return m, nil
		case "pgdown":
			m.view.ViewDown()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a turn. Blank input and input while awaiting are ignored and kept in the box.
func (m Model) submit() (tea.Model, tea.Cmd) {
	msg, err := m.conv.Begin(m.input.Value())
	if err != nil {
		return m, nil
	}
	m.input.SetValue("")
	m.transcript = m.conv.Snapshot()
	m.refresh()
	return m, sendToRelay(m.conv, m.relay, msg.Text)
}

func (m *Model) resize() {
	header := lipgloss.Height(m.headerView())
	footer := lipgloss.Height(m.footerView())
	h := m.height - header - footer
	if h < 3 {
		h = 3
	}
	m.view.Width = m.width
	m.view.Height = h
	m.input.Width = m.width - 6
	m.refresh()
}

func (m *Model) refresh() {
	m.view.SetContent(m.renderMessages())
	m.view.GotoBottom()
}

func (m Model) renderMessages() string {
	if len(m.transcript.Messages) == 0 {
		return subtitleStyle.Render(m.texts.T("tui.welcome"))
	}
	maxW := m.width * 3 / 4
	if maxW < 20 {
		maxW = 20
	}
	var b strings.Builder
	for _, msg := range m.transcript.Messages {
		stamp := timeStyle.Render(msg.At.Format("15:04"))
		if msg.Role == model.RoleUser {
			bubble := userBubbleStyle.Width(maxW).Render(msg.Text)
			b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Right, bubble))
			b.WriteString("\n")
			b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Right, stamp))
		} else {
			b.WriteString(botBubbleStyle.Width(maxW).Render(msg.Text))
			b.WriteString("\n")
			b.WriteString(stamp)
		}
		b.WriteString("\n\n")
	}
	if m.transcript.Awaiting {
		b.WriteString(typingStyle.Render(m.texts.T("tui.typing")))
	}
	return b.String()
}

func (m Model) headerView() string {
	badge := offlineStyle.Render("● " + m.texts.T("tui.disconnected"))
	if m.connected {
		badge = onlineStyle.Render("● " + m.texts.T("tui.connected"))
	}
	title := titleStyle.Render(m.texts.T("tui.title")) + " " + badge
	return title + "\n" + subtitleStyle.Render(m.texts.T("tui.subtitle"))
}

func (m Model) footerView() string {
	return inputStyle.Width(m.width-2).Render(m.input.View()) + "\n" + helpStyle.Render(m.texts.T("tui.help"))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.headerView() + "\n" + m.view.View() + "\n" + m.footerView()
}

// Transcript exposes the last snapshot the widget rendered.
func (m Model) Transcript() model.Transcript { return m.transcript }
