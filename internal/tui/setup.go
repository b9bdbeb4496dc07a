// ABOUTME: Interactive TUI wizard for connecting chirp to a tweet API.
// ABOUTME: Walks through API URL, API key and language fields, then resolves the account behind the key.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/chirp/internal/models"
	"github.com/2389-research/chirp/internal/notify"
	"github.com/2389-research/chirp/internal/storage"
)

// DefaultAPIURL is the default tweet API endpoint.
const DefaultAPIURL = "http://localhost:8000"

// DefaultLanguage is used when the language field is left blank.
const DefaultLanguage = "en"

// Step is a position in the wizard. The input steps come first and index
// into SetupModel.fields.
type Step int

const (
	StepAPIURL Step = iota
	StepAPIKey
	StepLanguage
	StepValidating
	StepDone
	StepFailed
)

// SetupResult holds the values collected by the wizard.
type SetupResult struct {
	APIURL   string
	APIKey   string
	Language string
}

// validationResultMsg carries the result of an async validation attempt.
type validationResultMsg struct {
	author models.Author
	err    error
}

// ValidateFn resolves the account an API key belongs to.
type ValidateFn func(ctx context.Context, apiURL, apiKey string) (models.Author, error)

// cancelHolder shares a cancel function across bubbletea model copies.
// Models are passed by value, so the pointer is what keeps the func visible.
type cancelHolder struct {
	cancel context.CancelFunc
}

// setupField is one input step. commit normalizes the raw value and reports
// a problem that keeps the wizard on this step.
type setupField struct {
	title  string
	hint   string
	input  textinput.Model
	commit func(string) (string, error)
}

// SetupModel is the bubbletea model for the setup wizard.
type SetupModel struct {
	step          Step
	fields        [3]setupField
	fieldErr      error
	spinner       spinner.Model
	validateFn    ValidateFn
	cancelCtx     *cancelHolder
	author        models.Author
	validationErr error
	quitting      bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newField(title, hint, placeholder, value string, commit func(string) (string, error)) setupField {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Width = 50
	in.SetValue(value)
	return setupField{title: title, hint: hint, input: in, commit: commit}
}

func commitAPIURL(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultAPIURL, nil
	}
	return storage.NormalizeAPIURL(v), nil
}

func commitAPIKey(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("an API key is required")
	}
	return v, nil
}

func commitLanguage(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "":
		return DefaultLanguage, nil
	case "en", "ru":
		return v, nil
	}
	return v, fmt.Errorf("unsupported language %q (use en or ru)", v)
}

// NewSetupModel creates the wizard, pre-filled with existing config values.
func NewSetupModel(apiURL, apiKey, lang string) SetupModel {
	key := newField("API Key", "", "your-api-key", apiKey, commitAPIKey)
	key.input.EchoMode = textinput.EchoPassword

	fields := [3]setupField{
		newField("API URL", "(press Enter for default)", DefaultAPIURL, apiURL, commitAPIURL),
		key,
		newField("Language", "(en or ru, press Enter for en)", DefaultLanguage, lang, commitLanguage),
	}
	fields[0].input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	return SetupModel{
		step:       StepAPIURL,
		fields:     fields,
		spinner:    s,
		validateFn: ValidateConnection,
		cancelCtx:  &cancelHolder{},
	}
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SetupModel) editing() bool {
	return int(m.step) < len(m.fields)
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEscape {
			m.quitting = true
			if m.cancelCtx.cancel != nil {
				m.cancelCtx.cancel()
			}
			return m, tea.Quit
		}
		if m.editing() {
			return m.updateField(msg)
		}
		if m.step == StepFailed {
			return m.updateFailed(msg)
		}

	case validationResultMsg:
		m.cancelCtx.cancel = nil
		if msg.err != nil {
			m.validationErr = msg.err
			m.step = StepFailed
			return m, nil
		}
		m.author = msg.author
		m.step = StepDone
		return m, tea.Quit

	case spinner.TickMsg:
		if m.step == StepValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m SetupModel) updateField(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.fields[m.step]

	if msg.Type != tea.KeyEnter {
		m.fieldErr = nil
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		return m, cmd
	}

	v, err := f.commit(f.input.Value())
	f.input.SetValue(v)
	if err != nil {
		m.fieldErr = err
		return m, nil
	}
	m.fieldErr = nil
	f.input.Blur()

	m.step++
	if m.editing() {
		m.fields[m.step].input.Focus()
		return m, textinput.Blink
	}
	return m, tea.Batch(m.startValidation(), m.spinner.Tick)
}

func (m SetupModel) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) == 0 {
		return m, nil
	}
	switch msg.Runes[0] {
	case 'r':
		m.step = StepValidating
		m.validationErr = nil
		return m, tea.Batch(m.startValidation(), m.spinner.Tick)
	case 's':
		m.step = StepDone
		return m, tea.Quit
	case 'q':
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SetupModel) startValidation() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelCtx.cancel = cancel
	r := m.Result()
	fn := m.validateFn
	return func() tea.Msg {
		author, err := fn(ctx, r.APIURL, r.APIKey)
		return validationResultMsg{author: author, err: err}
	}
}

// summary lists the values committed before the current step.
func (m SetupModel) summary(upto int) string {
	var b strings.Builder
	for i := 0; i < upto && i < len(m.fields); i++ {
		v := m.fields[i].input.Value()
		if m.fields[i].input.EchoMode == textinput.EchoPassword {
			v = strings.Repeat("*", len(v))
		}
		fmt.Fprintf(&b, "  %s: %s\n", m.fields[i].title, v)
	}
	return b.String()
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   CHIRP"))
	b.WriteString(titleStyle.Render(" - Setup"))
	b.WriteString("\n\n")
	b.WriteString("Connect your tweet API account.\n\n")

	switch {
	case m.editing():
		f := m.fields[m.step]
		if s := m.summary(int(m.step)); s != "" {
			b.WriteString(s)
			b.WriteString("\n")
		}
		b.WriteString(stepStyle.Render(fmt.Sprintf("Step %d of %d: %s", m.step+1, len(m.fields), f.title)))
		b.WriteString("\n")
		if f.hint != "" {
			b.WriteString(promptStyle.Render(f.hint))
			b.WriteString("\n")
		}
		b.WriteString(f.input.View())
		b.WriteString("\n")
		if m.fieldErr != nil {
			b.WriteString(errorStyle.Render(m.fieldErr.Error()))
			b.WriteString("\n")
		}

	case m.step == StepValidating:
		b.WriteString(m.summary(len(m.fields)))
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(" Validating connection...\n")

	case m.step == StepDone:
		if m.author.IsZero() {
			b.WriteString(successStyle.Render("✓ Saved"))
		} else {
			b.WriteString(successStyle.Render("✓ Connected as " + m.author.Name))
		}
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("Sent posts will report: " + notify.Message(m.Result().Language, notify.TweetSent)))
		b.WriteString("\n")

	case m.step == StepFailed:
		errMsg := "unknown error"
		if m.validationErr != nil {
			errMsg = m.validationErr.Error()
		}
		b.WriteString(errorStyle.Render("✗ Validation failed: " + errMsg))
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("[r]etry  [s]ave anyway  [q]uit"))
		b.WriteString("\n")
	}

	return b.String()
}

// Result returns the entered values.
func (m SetupModel) Result() SetupResult {
	return SetupResult{
		APIURL:   m.fields[StepAPIURL].input.Value(),
		APIKey:   m.fields[StepAPIKey].input.Value(),
		Language: m.fields[StepLanguage].input.Value(),
	}
}

// Author returns the account resolved during validation. It is zero when
// the user chose "save anyway".
func (m SetupModel) Author() models.Author {
	return m.author
}

// ShouldSave reports whether the wizard finished and was not cancelled.
func (m SetupModel) ShouldSave() bool {
	return m.step == StepDone && !m.quitting
}
