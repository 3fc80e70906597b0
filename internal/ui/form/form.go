// Package form implements the multi-field input forms used for sign-in and
// for creating and editing records.
package form

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PawelWisn/Fleet-Flow/internal/debounce"
	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
	"github.com/PawelWisn/Fleet-Flow/internal/theme"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/selector"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Kind controls how a field is edited, validated and encoded.
type Kind int

const (
	Text Kind = iota
	Secret
	Number
	Decimal
	DateTime
	Bool
	Select
	File
)

// Field describes one input.
type Field struct {
	Name        string
	Label       string
	Kind        Kind
	Required    bool
	Placeholder string
	// Source feeds Select fields.
	Source selector.Source
	// Numeric encodes a Select value as an integer id.
	Numeric bool
	// CreateOnly fields are dropped when editing an existing record.
	CreateOnly bool
}

// Options tune a form.
type Options struct {
	Editing     bool
	SearchDelay time.Duration
	Submit      string
}

// Form is a vertical list of fields with one focused at a time.
type Form struct {
	title     string
	fields    []Field
	inputs    []textinput.Model
	toggles   []bool
	selectors map[int]*selector.Model
	focus     int
	errors    map[string]string
	err       string
	editing   bool
	submit    string
}

// New builds a form. CreateOnly fields are skipped when editing.
func New(title string, fields []Field, opts Options) *Form {
	f := &Form{
		title:     title,
		selectors: map[int]*selector.Model{},
		errors:    map[string]string{},
		editing:   opts.Editing,
		submit:    opts.Submit,
	}
	if f.submit == "" {
		f.submit = "save"
	}
	for _, field := range fields {
		if field.CreateOnly && opts.Editing {
			continue
		}
		idx := len(f.fields)
		f.fields = append(f.fields, field)
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Placeholder = field.Placeholder
		switch field.Kind {
		case Secret:
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		case DateTime:
			if ti.Placeholder == "" {
				ti.Placeholder = "YYYY-MM-DD HH:MM"
			}
		case Select:
			f.selectors[idx] = selector.New(selector.Config{
				Name:        field.Name,
				Source:      field.Source,
				Placeholder: field.Placeholder,
				SearchDelay: opts.SearchDelay,
			})
		}
		f.inputs = append(f.inputs, ti)
		f.toggles = append(f.toggles, false)
	}
	f.focusField(0)
	return f
}

func (f *Form) Title() string                 { return f.title }
func (f *Form) Error() string                 { return f.err }
func (f *Form) Editing() bool                 { return f.editing }
func (f *Form) Focus() int                    { return f.focus }
func (f *Form) Fields() []Field               { return f.fields }

// FieldError returns the inline error of a field.
func (f *Form) FieldError(name string) string { return f.errors[name] }

// SetError shows a form-level message.
func (f *Form) SetError(msg string) { f.err = msg }

// SetFieldErrors shows server-side validation errors. Errors for unknown
// fields are folded into the form-level message.
func (f *Form) SetFieldErrors(errs map[string]string) {
	f.errors = map[string]string{}
	var unmapped []string
	for name, msg := range errs {
		if f.index(name) >= 0 {
			f.errors[name] = msg
			continue
		}
		unmapped = append(unmapped, fmt.Sprintf("%s: %s", name, msg))
	}
	sort.Strings(unmapped)
	if len(unmapped) > 0 {
		f.err = strings.Join(unmapped, "; ")
	}
	for i, field := range f.fields {
		if _, ok := f.errors[field.Name]; ok {
			f.focusField(i)
			break
		}
	}
}

// Selector returns the selector backing a Select field.
func (f *Form) Selector(name string) *selector.Model {
	return f.selectors[f.index(name)]
}

func (f *Form) index(name string) int {
	for i, field := range f.fields {
		if field.Name == name {
			return i
		}
	}
	return -1
}

// SetValues pre-fills the form from a decoded record. Select values whose
// labels are not known yet are resolved asynchronously.
func (f *Form) SetValues(values map[string]any) tea.Cmd {
	var cmds []tea.Cmd
	for i, field := range f.fields {
		raw, ok := values[field.Name]
		if !ok || raw == nil {
			continue
		}
		switch field.Kind {
		case Bool:
			b, _ := raw.(bool)
			f.toggles[i] = b
		case Select:
			value := stringify(raw)
			cmd := f.selectors[i].SetValue(value)
			if label, ok := relatedLabel(field, value, values); ok {
				f.selectors[i].SetLabel(label)
				cmd = nil
			}
			cmds = append(cmds, cmd)
		case DateTime:
			text := stringify(raw)
			if ts, err := fleet.ParseTimestamp(text); err == nil {
				text = ts.Display()
			}
			f.inputs[i].SetValue(text)
		case Secret, File:
		default:
			f.inputs[i].SetValue(stringify(raw))
		}
	}
	return tea.Batch(cmds...)
}

// relatedLabel labels a foreign key from the related record the backend
// embeds next to it ("company" for "company_id").
func relatedLabel(field Field, value string, values map[string]any) (string, bool) {
	labeler, ok := field.Source.(selector.Labeler)
	if !ok || !strings.HasSuffix(field.Name, "_id") {
		return "", false
	}
	related := values[strings.TrimSuffix(field.Name, "_id")]
	if related == nil {
		return "", false
	}
	return labeler.Label(value, related)
}

// SetValue sets the text of a single field.
func (f *Form) SetValue(name, value string) {
	if i := f.index(name); i >= 0 {
		f.inputs[i].SetValue(value)
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Value returns the raw text of a field, or the selected value for selects.
func (f *Form) Value(name string) string {
	i := f.index(name)
	if i < 0 {
		return ""
	}
	switch f.fields[i].Kind {
	case Select:
		return f.selectors[i].Value()
	case Bool:
		return strconv.FormatBool(f.toggles[i])
	case Secret:
		return f.inputs[i].Value()
	default:
		return strings.TrimSpace(f.inputs[i].Value())
	}
}

// Validate checks required fields and formats, records inline errors and
// reports whether the form is valid.
func (f *Form) Validate() bool {
	f.errors = map[string]string{}
	f.err = ""
	for _, field := range f.fields {
		value := f.Value(field.Name)
		if value == "" {
			if field.Required {
				f.errors[field.Name] = "Required"
			}
			continue
		}
		switch field.Kind {
		case Number:
			if _, err := strconv.Atoi(value); err != nil {
				f.errors[field.Name] = "Must be a whole number"
			}
		case Decimal:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				f.errors[field.Name] = "Must be a number"
			}
		case DateTime:
			if _, err := fleet.ParseTimestamp(value); err != nil {
				f.errors[field.Name] = "Use " + fleet.DisplayLayout
			}
		}
	}
	if len(f.errors) > 0 {
		f.err = "Check your inputs"
		for i, field := range f.fields {
			if _, ok := f.errors[field.Name]; ok {
				f.focusField(i)
				break
			}
		}
		return false
	}
	return true
}

// Payload encodes the values for the backend. Empty optional fields and file
// fields are omitted.
func (f *Form) Payload() (map[string]any, error) {
	out := map[string]any{}
	for _, field := range f.fields {
		value := f.Value(field.Name)
		if field.Kind == File {
			continue
		}
		if value == "" && field.Kind != Bool {
			continue
		}
		switch field.Kind {
		case Number:
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", field.Name, err)
			}
			out[field.Name] = n
		case Decimal:
			n, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", field.Name, err)
			}
			out[field.Name] = n
		case DateTime:
			ts, err := fleet.ParseTimestamp(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", field.Name, err)
			}
			out[field.Name] = ts.Format(fleet.WireLayout)
		case Bool:
			out[field.Name] = value == "true"
		case Select:
			if field.Numeric {
				n, err := strconv.Atoi(value)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", field.Name, err)
				}
				out[field.Name] = n
				continue
			}
			out[field.Name] = value
		default:
			out[field.Name] = value
		}
	}
	return out, nil
}

// Strings returns the non-file values as plain strings, e.g. for multipart
// bodies.
func (f *Form) Strings() map[string]string {
	out := map[string]string{}
	for _, field := range f.fields {
		if field.Kind == File {
			continue
		}
		value := f.Value(field.Name)
		if value == "" {
			continue
		}
		if field.Kind == DateTime {
			if ts, err := fleet.ParseTimestamp(value); err == nil {
				value = ts.Format(fleet.WireLayout)
			}
		}
		out[field.Name] = value
	}
	return out
}

// FilePath returns the path entered into the first file field.
func (f *Form) FilePath() (field, path string) {
	for _, fl := range f.fields {
		if fl.Kind == File {
			return fl.Name, f.Value(fl.Name)
		}
	}
	return "", ""
}

func (f *Form) focusField(i int) {
	if len(f.fields) == 0 {
		return
	}
	if i < 0 {
		i = len(f.fields) - 1
	}
	if i >= len(f.fields) {
		i = 0
	}
	if sel := f.selectors[f.focus]; sel != nil && f.focus != i {
		sel.Blur()
	}
	f.inputs[f.focus].Blur()
	f.focus = i
	if f.fields[i].Kind != Select && f.fields[i].Kind != Bool {
		f.inputs[i].Focus()
	}
}

// Update handles one message. It reports done when the form was submitted
// and passed validation, and cancel when the user backed out.
func (f *Form) Update(msg tea.Msg) (tea.Cmd, bool, bool) {
	switch m := msg.(type) {
	case selector.LoadedMsg, selector.ResolvedMsg, debounce.Msg:
		var cmds []tea.Cmd
		for _, sel := range f.selectors {
			cmds = append(cmds, sel.Update(m))
		}
		return tea.Batch(cmds...), false, false
	case tea.KeyMsg:
		return f.handleKey(m)
	}
	return nil, false, false
}

func (f *Form) handleKey(msg tea.KeyMsg) (tea.Cmd, bool, bool) {
	if len(f.fields) == 0 {
		if msg.Type == tea.KeyEsc {
			return nil, false, true
		}
		return nil, msg.Type == tea.KeyEnter, false
	}
	field := f.fields[f.focus]
	sel := f.selectors[f.focus]
	if sel != nil && sel.IsOpen() {
		return sel.Update(msg), false, false
	}
	switch msg.String() {
	case "esc":
		return nil, false, true
	case "tab", "down":
		f.focusField(f.focus + 1)
		return nil, false, false
	case "shift+tab", "up":
		f.focusField(f.focus - 1)
		return nil, false, false
	case "ctrl+s":
		return nil, f.Validate(), false
	case "enter":
		if sel != nil {
			return sel.Open(), false, false
		}
		if f.focus == len(f.fields)-1 {
			return nil, f.Validate(), false
		}
		f.focusField(f.focus + 1)
		return nil, false, false
	}
	switch field.Kind {
	case Bool:
		if msg.Type == tea.KeySpace || msg.String() == "x" {
			f.toggles[f.focus] = !f.toggles[f.focus]
		}
		return nil, false, false
	case Select:
		switch msg.Type {
		case tea.KeyBackspace, tea.KeyDelete:
			sel.Clear()
			return nil, false, false
		case tea.KeyRunes, tea.KeySpace:
			open := sel.Open()
			return tea.Batch(open, sel.Update(msg)), false, false
		}
		return nil, false, false
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	delete(f.errors, field.Name)
	return cmd, false, false
}

// View renders every field with its label and inline error.
func (f *Form) View() string {
	styles := theme.Default()
	lines := []string{styles.Header.Render(f.title), ""}
	for i, field := range f.fields {
		label := field.Label
		if field.Required {
			label += " *"
		}
		if i == f.focus {
			lines = append(lines, styles.FieldLabelFocused.Render("› "+label))
		} else {
			lines = append(lines, styles.FieldLabel.Render("  "+label))
		}
		var value string
		switch field.Kind {
		case Select:
			value = f.selectors[i].View()
		case Bool:
			value = "[ ]"
			if f.toggles[i] {
				value = "[x]"
			}
		default:
			value = f.inputs[i].View()
		}
		for _, line := range strings.Split(value, "\n") {
			lines = append(lines, "    "+line)
		}
		if msg := f.errors[field.Name]; msg != "" {
			lines = append(lines, "    "+styles.FieldError.Render(msg))
		}
	}
	if f.err != "" {
		lines = append(lines, "", styles.Error.Render(f.err))
	}
	lines = append(lines, "", styles.Help.Render(fmt.Sprintf("tab next • ctrl+s %s • esc cancel", f.submit)))
	return strings.Join(lines, "\n")
}
