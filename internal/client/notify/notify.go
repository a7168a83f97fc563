// Package notify dispatches short user-facing messages with a severity.
// There is no queue: messages are written in call order and never dismissed.
package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type Severity string

const (
	SeverityDefault Severity = "default"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// ParseSeverity maps s case-insensitively. Unknown values are SeverityDefault.
func ParseSeverity(s string) Severity {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeveritySuccess, SeverityError, SeverityInfo, SeverityWarning:
		return sev
	case "warn":
		return SeverityWarning
	}
	return SeverityDefault
}

// Notifier displays one message.
type Notifier interface {
	Notify(sev Severity, msg string)
}

func Success(n Notifier, format string, args ...any) {
	n.Notify(SeveritySuccess, fmt.Sprintf(format, args...))
}

func Error(n Notifier, format string, args ...any) {
	n.Notify(SeverityError, fmt.Sprintf(format, args...))
}

func Info(n Notifier, format string, args ...any) {
	n.Notify(SeverityInfo, fmt.Sprintf(format, args...))
}

func Warning(n Notifier, format string, args ...any) {
	n.Notify(SeverityWarning, fmt.Sprintf(format, args...))
}

// TerminalNotifier renders each message as a single styled line.
type TerminalNotifier struct {
	mu     sync.Mutex
	w      io.Writer
	labels map[Severity]string
	styles map[Severity]lipgloss.Style
}

// NewTerminalNotifier writes to w. Colors are used only when w is a terminal
// that supports them.
func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	r := lipgloss.NewRenderer(w)
	badge := func(color string) lipgloss.Style {
		return r.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
	}
	return &TerminalNotifier{
		w: w,
		labels: map[Severity]string{
			SeveritySuccess: "[ok]",
			SeverityError:   "[error]",
			SeverityInfo:    "[info]",
			SeverityWarning: "[warn]",
			SeverityDefault: "[*]",
		},
		styles: map[Severity]lipgloss.Style{
			SeveritySuccess: badge("42"),
			SeverityError:   badge("196"),
			SeverityInfo:    badge("39"),
			SeverityWarning: badge("220"),
			SeverityDefault: badge("245"),
		},
	}
}

func (n *TerminalNotifier) Notify(sev Severity, msg string) {
	if _, ok := n.styles[sev]; !ok {
		sev = SeverityDefault
	}
	line := n.styles[sev].Render(n.labels[sev]) + " " + msg

	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintln(n.w, line)
}

// Message is one recorded notification.
type Message struct {
	Severity Severity
	Text     string
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Notify(sev Severity, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Severity: sev, Text: msg})
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last returns the most recent message, or the zero Message.
func (r *Recorder) Last() Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}
	}
	return r.messages[len(r.messages)-1]
}
