package form

import (
	"context"
	"testing"

	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/selector"
	tea "github.com/charmbracelet/bubbletea"
)

func typeText(f *Form, text string) {
	for _, r := range text {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// run executes cmd and feeds its messages back into the form.
func run(f *Form, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(f, c)
		}
		return
	}
	next, _, _ := f.Update(msg)
	run(f, next)
}

func companies() selector.Source {
	return selector.SourceFunc(func(_ context.Context, _ string, _ int) (selector.Result, error) {
		return selector.Result{Options: []selector.Option{{Value: "1", Label: "Acme"}, {Value: "2", Label: "Globex"}}}, nil
	})
}

func vehicleFields() []Field {
	return []Field{
		{Name: "brand", Label: "Brand", Kind: Text, Required: true},
		{Name: "production_year", Label: "Year", Kind: Number},
		{Name: "weight", Label: "Weight", Kind: Decimal},
		{Name: "company_id", Label: "Company", Kind: Select, Source: companies(), Numeric: true, Required: true},
	}
}

func TestRequiredFieldsBlockSubmit(t *testing.T) {
	f := New("New vehicle", vehicleFields(), Options{})
	_, done, cancel := f.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if done || cancel {
		t.Fatalf("expected submission to be refused")
	}
	if f.FieldError("brand") != "Required" || f.FieldError("company_id") != "Required" {
		t.Fatalf("expected required errors, got brand=%q company=%q", f.FieldError("brand"), f.FieldError("company_id"))
	}
	if f.Error() != "Check your inputs" {
		t.Fatalf("unexpected form error %q", f.Error())
	}
	if f.Focus() != 0 {
		t.Fatalf("expected focus on first invalid field, got %d", f.Focus())
	}
}

func TestNumberValidation(t *testing.T) {
	f := New("New vehicle", vehicleFields(), Options{})
	f.SetValue("brand", "Toyota")
	f.SetValue("production_year", "20x0")
	f.Selector("company_id").SetValue("1")
	if f.Validate() {
		t.Fatalf("expected validation failure")
	}
	if f.FieldError("production_year") != "Must be a whole number" {
		t.Fatalf("unexpected error %q", f.FieldError("production_year"))
	}
}

func TestPayloadEncodesTypes(t *testing.T) {
	fields := append(vehicleFields(),
		Field{Name: "date_from", Label: "From", Kind: DateTime},
		Field{Name: "is_internal", Label: "Internal", Kind: Bool},
		Field{Name: "description", Label: "Description"},
	)
	f := New("New vehicle", fields, Options{})
	f.SetValue("brand", " Toyota ")
	f.SetValue("production_year", "2020")
	f.SetValue("weight", "1450.5")
	f.SetValue("date_from", "2024-05-01 08:30")
	f.Selector("company_id").SetValue("2")
	if !f.Validate() {
		t.Fatalf("expected valid form, errors: %q", f.Error())
	}
	payload, err := f.Payload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload["brand"] != "Toyota" {
		t.Fatalf("expected trimmed brand, got %#v", payload["brand"])
	}
	if payload["production_year"] != 2020 || payload["company_id"] != 2 {
		t.Fatalf("expected integers, got %#v %#v", payload["production_year"], payload["company_id"])
	}
	if payload["weight"] != 1450.5 {
		t.Fatalf("expected float weight, got %#v", payload["weight"])
	}
	if payload["date_from"] != "2024-05-01T08:30:00" {
		t.Fatalf("unexpected datetime %#v", payload["date_from"])
	}
	if payload["is_internal"] != false {
		t.Fatalf("expected bool, got %#v", payload["is_internal"])
	}
	if _, ok := payload["description"]; ok {
		t.Fatalf("empty optional field must be omitted")
	}
}

func TestEnterAdvancesAndSubmitsOnLastField(t *testing.T) {
	f := New("Sign in", []Field{
		{Name: "email", Label: "Email", Required: true},
		{Name: "password", Label: "Password", Kind: Secret, Required: true},
	}, Options{Submit: "sign in"})
	typeText(f, "admin@example.com")
	if _, done, _ := f.Update(tea.KeyMsg{Type: tea.KeyEnter}); done {
		t.Fatalf("enter on the first field must move focus")
	}
	if f.Focus() != 1 {
		t.Fatalf("expected focus on password, got %d", f.Focus())
	}
	typeText(f, "secret")
	_, done, _ := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !done {
		t.Fatalf("expected submission, error %q", f.Error())
	}
	if f.Value("email") != "admin@example.com" || f.Value("password") != "secret" {
		t.Fatalf("unexpected values %q %q", f.Value("email"), f.Value("password"))
	}
}

func TestEscapeCancels(t *testing.T) {
	f := New("New vehicle", vehicleFields(), Options{})
	if _, _, cancel := f.Update(tea.KeyMsg{Type: tea.KeyEsc}); !cancel {
		t.Fatalf("expected cancel")
	}
}

func TestEscapeClosesOpenSelectorFirst(t *testing.T) {
	f := New("New vehicle", vehicleFields(), Options{})
	for f.Focus() != 3 {
		f.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	cmd, _, _ := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	sel := f.Selector("company_id")
	if !sel.IsOpen() {
		t.Fatalf("expected dropdown open")
	}
	run(f, cmd)
	f.Update(tea.KeyMsg{Type: tea.KeyDown})
	f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if sel.IsOpen() || sel.Value() != "2" || sel.Label() != "Globex" {
		t.Fatalf("expected Globex selected, got %q %q", sel.Value(), sel.Label())
	}
	f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if _, _, cancel := f.Update(tea.KeyMsg{Type: tea.KeyEsc}); cancel {
		t.Fatalf("escape with an open dropdown must only close it")
	}
	if sel.IsOpen() {
		t.Fatalf("expected dropdown closed")
	}
}

func TestCreateOnlyFieldsSkippedWhenEditing(t *testing.T) {
	fields := []Field{
		{Name: "email", Label: "Email", Required: true},
		{Name: "password", Label: "Password", Kind: Secret, Required: true, CreateOnly: true},
	}
	f := New("Edit user", fields, Options{Editing: true})
	if len(f.Fields()) != 1 {
		t.Fatalf("expected password dropped, got %d fields", len(f.Fields()))
	}
}

func TestSetValuesPrefillsAndResolves(t *testing.T) {
	f := New("Edit vehicle", vehicleFields(), Options{Editing: true})
	cmd := f.SetValues(map[string]any{
		"brand":           "Toyota",
		"production_year": float64(2019),
		"company_id":      float64(1),
	})
	if f.Value("brand") != "Toyota" || f.Value("production_year") != "2019" {
		t.Fatalf("unexpected prefill %q %q", f.Value("brand"), f.Value("production_year"))
	}
	sel := f.Selector("company_id")
	if sel.Value() != "1" || sel.Display() != selector.DefaultPlaceholder {
		t.Fatalf("expected unresolved value with placeholder, got %q %q", sel.Value(), sel.Display())
	}
	run(f, cmd)
	if sel.Label() != "Acme" {
		t.Fatalf("expected resolved label, got %q", sel.Label())
	}
}

func TestSetValuesLabelsFromEmbeddedRecord(t *testing.T) {
	fields := []Field{
		{Name: "company_id", Label: "Company", Kind: Select, Numeric: true,
			Source: selector.Remote[fleet.Company](nil, "companies", 10, nil)},
	}
	f := New("Edit vehicle", fields, Options{Editing: true})
	f.SetValues(map[string]any{
		"company_id": float64(1),
		"company":    map[string]any{"id": float64(1), "name": "Acme"},
	})
	sel := f.Selector("company_id")
	if sel.Label() != "Acme" || sel.Resolving() {
		t.Fatalf("expected label from embedded company, got %q resolving=%v", sel.Label(), sel.Resolving())
	}

	f = New("Edit vehicle", fields, Options{Editing: true})
	f.SetValues(map[string]any{
		"company_id": float64(2),
		"company":    map[string]any{"id": float64(1), "name": "Acme"},
	})
	sel = f.Selector("company_id")
	if sel.Label() != "" || !sel.Resolving() {
		t.Fatalf("expected mismatched company to be resolved remotely, got %q resolving=%v", sel.Label(), sel.Resolving())
	}
}

func TestSetFieldErrorsMapsServerErrors(t *testing.T) {
	f := New("New vehicle", vehicleFields(), Options{})
	f.SetFieldErrors(map[string]string{"production_year": "must be after 1900", "vin": "already exists"})
	if f.FieldError("production_year") != "must be after 1900" {
		t.Fatalf("expected inline error, got %q", f.FieldError("production_year"))
	}
	if f.Error() != "vin: already exists" {
		t.Fatalf("expected unmapped error at form level, got %q", f.Error())
	}
	if f.Focus() != 1 {
		t.Fatalf("expected focus on the failing field, got %d", f.Focus())
	}
}

func TestStringsForMultipart(t *testing.T) {
	f := New("New document", []Field{
		{Name: "title", Label: "Title", Required: true},
		{Name: "vehicle_id", Label: "Vehicle", Kind: Select, Source: companies(), Numeric: true},
		{Name: "file", Label: "File", Kind: File, Required: true},
	}, Options{})
	f.SetValue("title", "Insurance")
	f.SetValue("file", "/tmp/policy.pdf")
	f.Selector("vehicle_id").SetValue("2")
	values := f.Strings()
	if values["title"] != "Insurance" || values["vehicle_id"] != "2" {
		t.Fatalf("unexpected values %+v", values)
	}
	if _, ok := values["file"]; ok {
		t.Fatalf("file path must not be sent as a field")
	}
	if name, path := f.FilePath(); name != "file" || path != "/tmp/policy.pdf" {
		t.Fatalf("unexpected file %q %q", name, path)
	}
}
