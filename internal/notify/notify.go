// ABOUTME: Notification surfaces and localized message catalog.
// ABOUTME: Provides writer, recorder, and func notifiers plus x/text message lookup.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/2389-research/chirp/internal/models"
)

// Message keys. The English text doubles as the catalog key.
const (
	TweetSent = "Tweet sent!"
)

func init() {
	_ = message.SetString(language.English, TweetSent, "Tweet sent!")
	_ = message.SetString(language.Russian, TweetSent, "Твит отправлен!")
}

var supported = language.NewMatcher([]language.Tag{language.English, language.Russian})

// Message returns the localized text for key in lang. Unknown languages fall back to English.
func Message(lang, key string) string {
	tag, _ := language.MatchStrings(supported, lang)
	base, _ := tag.Base()
	return message.NewPrinter(language.Make(base.String())).Sprintf(key)
}

// Notifier displays notifications to the user.
type Notifier interface {
	Notify(n models.Notification)
}

var (
	infoStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// Render formats a notification as a styled single line.
func Render(n models.Notification) string {
	label := fmt.Sprintf("[%s]", n.Severity)
	switch n.Severity {
	case models.SeverityWarning:
		label = warningStyle.Render(label)
	case models.SeverityError:
		label = errorStyle.Render(label)
	default:
		label = infoStyle.Render(label)
	}
	return label + " " + n.Message
}

// Writer prints notifications to an io.Writer.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter creates a notifier writing to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Notify implements Notifier.
func (w *Writer) Notify(n models.Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = fmt.Fprintln(w.out, Render(n))
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu  sync.Mutex
	all []models.Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

// Notifications returns a copy of the recorded notifications.
func (r *Recorder) Notifications() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Notification, len(r.all))
	copy(out, r.all)
	return out
}

// Func adapts a plain function to Notifier.
type Func func(models.Notification)

// Notify implements Notifier.
func (f Func) Notify(n models.Notification) {
	f(n)
}
