// ABOUTME: Interactive TUI composer for writing a post with image attachments.
// ABOUTME: Sends through a submit function and shows the resulting notification as a toast.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/chirp/internal/models"
	"github.com/2389-research/chirp/internal/notify"
)

// SubmitFn publishes a draft. It is normally compose.Submitter.SubmitDraft.
type SubmitFn func(ctx context.Context, d *models.Draft) error

// Toasts collects notifications raised while a submission runs.
// Pass it as the submitter's notifier and to NewComposeModel.
type Toasts struct {
	mu      sync.Mutex
	pending []models.Notification
}

// NewToasts creates an empty toast queue.
func NewToasts() *Toasts {
	return &Toasts{}
}

// Notify implements notify.Notifier.
func (t *Toasts) Notify(n models.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, n)
}

func (t *Toasts) drain() []models.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.pending
	t.pending = nil
	return out
}

// submitResultMsg carries the outcome of an async submission.
type submitResultMsg struct {
	err error
}

var (
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	attachmentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	toastStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("82")).Padding(0, 1)
)

// ComposeModel is the bubbletea model for the composer.
type ComposeModel struct {
	draft     *models.Draft
	editor    textarea.Model
	attach    textinput.Model
	attaching bool
	spinner   spinner.Model
	sending   bool
	submit    SubmitFn
	toasts    *Toasts
	cancelCtx *cancelHolder
	toast     string
	err       error
	sent      int
	quitting  bool
}

// NewComposeModel creates a composer pre-filled from d.
func NewComposeModel(d *models.Draft, submit SubmitFn, toasts *Toasts) ComposeModel {
	if d == nil {
		d = models.NewDraft()
	}

	editor := textarea.New()
	editor.Placeholder = "What's happening?"
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.SetWidth(60)
	editor.SetHeight(6)
	editor.SetValue(d.Text)
	editor.Focus()

	attach := textinput.New()
	attach.Placeholder = "path/to/image.png"
	attach.Width = 50

	s := spinner.New()
	s.Spinner = spinner.Dot

	if toasts == nil {
		toasts = NewToasts()
	}

	return ComposeModel{
		draft:     d,
		editor:    editor,
		attach:    attach,
		spinner:   s,
		submit:    submit,
		toasts:    toasts,
		cancelCtx: &cancelHolder{},
	}
}

// Init implements tea.Model.
func (m ComposeModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m ComposeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			if m.cancelCtx.cancel != nil {
				m.cancelCtx.cancel()
			}
			return m, tea.Quit
		}
		if m.sending {
			return m, nil
		}
		if m.attaching {
			return m.updateAttach(msg)
		}
		return m.updateEditor(msg)

	case submitResultMsg:
		m.cancelCtx.cancel = nil
		m.sending = false
		toasts := m.toasts.drain()
		if msg.err != nil {
			m.err = msg.err
			m.toast = ""
			m.editor.Focus()
			return m, nil
		}
		m.err = nil
		m.toast = ""
		if len(toasts) > 0 {
			m.toast = notify.Render(toasts[len(toasts)-1])
		}
		m.sent++
		m.draft = models.NewDraft()
		m.editor.Reset()
		m.editor.Focus()
		return m, nil

	case spinner.TickMsg:
		if m.sending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m ComposeModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyCtrlS:
		return m.startSubmit()
	case tea.KeyCtrlO:
		m.attaching = true
		m.editor.Blur()
		m.attach.Reset()
		m.attach.Focus()
		return m, textinput.Blink
	case tea.KeyCtrlX:
		if n := len(m.draft.Images); n > 0 {
			m.draft.Images = m.draft.Images[:n-1]
		}
		return m, nil
	}

	m.toast = ""
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.draft.Text = m.editor.Value()
	return m, cmd
}

func (m ComposeModel) updateAttach(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.attaching = false
		m.attach.Blur()
		m.editor.Focus()
		return m, nil
	case tea.KeyEnter:
		if p := strings.TrimSpace(m.attach.Value()); p != "" {
			m.draft.Images = append(m.draft.Images, p)
		}
		m.attaching = false
		m.attach.Blur()
		m.editor.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.attach, cmd = m.attach.Update(msg)
	return m, cmd
}

func (m ComposeModel) startSubmit() (tea.Model, tea.Cmd) {
	if m.submit == nil {
		m.err = fmt.Errorf("sending is not configured")
		return m, nil
	}

	m.draft.Text = m.editor.Value()
	m.sending = true
	m.err = nil
	m.toast = ""

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelCtx.cancel = cancel
	fn := m.submit
	d := *m.draft
	d.Images = append([]string(nil), m.draft.Images...)
	return m, tea.Batch(func() tea.Msg {
		defer cancel()
		return submitResultMsg{err: fn(ctx, &d)}
	}, m.spinner.Tick)
}

// View implements tea.Model.
func (m ComposeModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   CHIRP"))
	b.WriteString(titleStyle.Render(" - Compose"))
	b.WriteString("\n\n")
	b.WriteString(m.editor.View())
	b.WriteString("\n")

	if len(m.draft.Images) > 0 {
		b.WriteString("\n")
		for i, p := range m.draft.Images {
			b.WriteString(attachmentStyle.Render(fmt.Sprintf("  [%d] %s", i+1, filepath.Base(p))))
			b.WriteString("\n")
		}
	}

	if m.attaching {
		b.WriteString("\n")
		b.WriteString(stepStyle.Render("Attach image:"))
		b.WriteString("\n")
		b.WriteString(m.attach.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.sending:
		b.WriteString(m.spinner.View())
		b.WriteString(" Sending...")
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", m.err)))
	case m.toast != "":
		b.WriteString(toastStyle.Render(m.toast))
	}
	b.WriteString("\n")

	b.WriteString(hintStyle.Render("ctrl+s send  ctrl+o attach  ctrl+x drop last image  esc quit"))
	b.WriteString("\n")
	return b.String()
}

// Draft returns the unsent draft as currently edited.
func (m ComposeModel) Draft() *models.Draft {
	d := *m.draft
	d.Text = m.editor.Value()
	return &d
}

// Sent returns how many posts were published during the session.
func (m ComposeModel) Sent() int {
	return m.sent
}
