package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// newInput returns a single-line field. The cursor does not blink, so a
// focused field schedules no timers.
func newInput(placeholder string, password bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 40
	ti.Cursor.SetMode(cursor.CursorStatic)
	if password {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

func newTextArea(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetWidth(60)
	ta.SetHeight(4)
	ta.Cursor.SetMode(cursor.CursorStatic)
	return ta
}

// inputForm is a column of labeled text inputs with one focused at a time.
type inputForm struct {
	labels []string
	names  []string
	inputs []textinput.Model
	focus  int
}

func newInputForm() *inputForm {
	return &inputForm{}
}

// add appends a field. name is the JSON name validation errors use.
func (f *inputForm) add(label, name string, input textinput.Model) *inputForm {
	if len(f.inputs) == 0 {
		input.Focus()
	}
	f.labels = append(f.labels, label)
	f.names = append(f.names, name)
	f.inputs = append(f.inputs, input)
	return f
}

func (f *inputForm) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *inputForm) last() bool {
	return f.focus == len(f.inputs)-1
}

// move shifts focus by delta, wrapping around.
func (f *inputForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *inputForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// view renders the fields with their inline errors.
func (f *inputForm) view(errs map[string]string) string {
	var b strings.Builder
	for i, input := range f.inputs {
		label := f.labels[i]
		if i == f.focus {
			label = selectedStyle.Render(label)
		} else {
			label = labelStyle.Render(label)
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n")
		if msg := errs[f.names[i]]; msg != "" {
			b.WriteString(errorStyle.Render(msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// selector is a one-of choice cycled with left and right.
type selector struct {
	options []string
	index   int
}

func newSelector(options []string, current string) selector {
	s := selector{options: options}
	for i, o := range options {
		if o == current {
			s.index = i
		}
	}
	return s
}

func (s *selector) value() string {
	if len(s.options) == 0 {
		return ""
	}
	return s.options[s.index]
}

func (s *selector) step(delta int) {
	if len(s.options) == 0 {
		return
	}
	s.index = (s.index + delta + len(s.options)) % len(s.options)
}

func (s selector) view(focused bool, display func(string) string) string {
	v := s.value()
	if display != nil {
		v = display(v)
	}
	if focused {
		return selectedStyle.Render("◂ " + v + " ▸")
	}
	return "  " + v
}
