// Package resource describes the backend collections the console can list,
// preview, edit and delete.
package resource

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
	"github.com/PawelWisn/Fleet-Flow/internal/format/table"
	"github.com/PawelWisn/Fleet-Flow/internal/state"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/form"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/listing"
)

// Action is a row-level operation offered on a list screen.
type Action string

const (
	ActionEdit         Action = "edit"
	ActionDelete       Action = "delete"
	ActionDownload     Action = "download"
	ActionReport       Action = "report"
	ActionReservations Action = "reservations"
	ActionRefuels      Action = "refuels"
)

// Label is the menu text of the action.
func (a Action) Label() string {
	switch a {
	case ActionEdit:
		return "Edit"
	case ActionDelete:
		return "Delete"
	case ActionDownload:
		return "Download file"
	case ActionReport:
		return "Download fuel report"
	case ActionReservations:
		return "Show reservations"
	case ActionRefuels:
		return "Show refuels"
	default:
		return string(a)
	}
}

// Env carries what resource descriptors need at runtime.
type Env struct {
	Client      *api.Client
	Session     state.Session
	PageSize    int
	SearchDelay time.Duration
}

// Detail is the full view of one record.
type Detail struct {
	ID    int
	Label string
	Lines []string
	// Record is the decoded value, e.g. fleet.Document.
	Record any
}

// Descriptor is everything the UI knows about one collection.
type Descriptor struct {
	// Name is the API collection path and menu id.
	Name     string
	Title    string
	Singular string
	Columns  []table.Column
	// Searchable collections send the search term to the backend; the rest
	// filter the loaded page locally.
	Searchable bool
	// FilterKey names the structured filter cycled from the list screen.
	FilterKey    string
	FilterValues []string
	// ViewCap and ManageCap gate listing and editing. A zero ViewCap only
	// requires a signed-in user.
	ViewCap   fleet.Capability
	ManageCap fleet.Capability
	Multipart bool
	Actions   []Action

	fetch  func(context.Context, *api.Client, api.Params) (api.Page[listing.Row], error)
	detail func(context.Context, *api.Client, int) (Detail, error)
	fields func(Env) []form.Field
}

// Collection declares the list, detail and form behaviour of T. Define turns it
// into a Descriptor.
type Collection[T fleet.Entity] struct {
	Descriptor
	Cells  func(T) []string
	Search func(T) string
	Lines  func(T) []string
	Fields func(Env) []form.Field
}

// Define binds the typed callbacks of col to the generic query layer.
func Define[T fleet.Entity](col Collection[T]) Descriptor {
	d := col.Descriptor
	cells := col.Cells
	search := col.Search
	lines := col.Lines
	d.fetch = func(ctx context.Context, c *api.Client, params api.Params) (api.Page[listing.Row], error) {
		page, err := api.Query[T](ctx, c, d.Name, params)
		if err != nil {
			return api.Page[listing.Row]{}, err
		}
		return api.MapPage(page, func(item T) listing.Row {
			row := listing.Row{ID: item.EntityID(), Label: item.DisplayLabel(), Record: item}
			if cells != nil {
				row.Cells = cells(item)
			}
			if search != nil {
				row.Search = search(item)
			}
			return row
		}), nil
	}
	d.detail = func(ctx context.Context, c *api.Client, id int) (Detail, error) {
		item, err := api.Get[T](ctx, c, d.Name, id)
		if err != nil {
			return Detail{}, err
		}
		out := Detail{ID: item.EntityID(), Label: item.DisplayLabel(), Record: item}
		if lines != nil {
			out.Lines = lines(item)
		}
		return out, nil
	}
	d.fields = col.Fields
	return d
}

// CanView reports whether the session may open the list.
func (d Descriptor) CanView(s state.Session) bool {
	if s == nil || !s.SignedIn() {
		return false
	}
	return d.ViewCap == 0 || s.Can(d.ViewCap)
}

// CanManage reports whether the session may create, edit and delete.
func (d Descriptor) CanManage(s state.Session) bool {
	if !d.CanView(s) {
		return false
	}
	return d.ManageCap == 0 || s.Can(d.ManageCap)
}

// RowActions lists the actions the session may run on a row.
func (d Descriptor) RowActions(s state.Session) []Action {
	out := make([]Action, 0, len(d.Actions))
	for _, a := range d.Actions {
		switch a {
		case ActionEdit, ActionDelete:
			if !d.CanManage(s) {
				continue
			}
		case ActionReservations:
			if !Reservations.CanView(s) {
				continue
			}
		case ActionRefuels:
			if !Refuels.CanView(s) {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// Fetch loads one page of rows.
func (d Descriptor) Fetch(ctx context.Context, c *api.Client, params api.Params) (api.Page[listing.Row], error) {
	if d.fetch == nil {
		return api.Page[listing.Row]{}, fmt.Errorf("%s: not listable", d.Name)
	}
	return d.fetch(ctx, c, params)
}

// Detail loads one record for the preview panel.
func (d Descriptor) Detail(ctx context.Context, c *api.Client, id int) (Detail, error) {
	if d.detail == nil {
		return Detail{}, fmt.Errorf("%s: no detail view", d.Name)
	}
	return d.detail(ctx, c, id)
}

// Values loads one record as raw JSON to prefill an edit form.
func (d Descriptor) Values(ctx context.Context, c *api.Client, id int) (map[string]any, error) {
	return c.GetRaw(ctx, d.Name, id)
}

// Fields returns the form fields of the collection.
func (d Descriptor) Fields(env Env) []form.Field {
	if d.fields == nil {
		return nil
	}
	return d.fields(env)
}

// NewForm builds the create form, or the edit form when id is non-zero.
func (d Descriptor) NewForm(env Env, id int) *form.Form {
	title := "New " + d.Singular
	if id != 0 {
		title = fmt.Sprintf("Edit %s #%d", d.Singular, id)
	}
	return form.New(title, d.Fields(env), form.Options{Editing: id != 0, SearchDelay: env.SearchDelay})
}

// ErrNoFile is returned when a multipart create has no file to send.
var ErrNoFile = errors.New("no file selected")

// Save creates (id == 0) or updates the record from the form values.
func (d Descriptor) Save(ctx context.Context, c *api.Client, id int, f *form.Form) (map[string]any, error) {
	if d.Multipart && id == 0 {
		field, path := f.FilePath()
		if strings.TrimSpace(path) == "" {
			return nil, ErrNoFile
		}
		return c.CreateMultipart(ctx, d.Name, f.Strings(), &api.FilePart{Field: field, Path: path})
	}
	payload, err := f.Payload()
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return c.Create(ctx, d.Name, payload)
	}
	return c.Update(ctx, d.Name, id, payload)
}

// NewScreen builds a list screen for the collection. scope adds fixed
// filters such as vehicle_id.
func (d Descriptor) NewScreen(env Env, scope map[string]string) *listing.Screen {
	client := env.Client
	cfg := listing.Config{
		Name:        d.Name,
		Resource:    strings.ToLower(d.Title),
		PageSize:    env.PageSize,
		SearchDelay: env.SearchDelay,
		Scope:       scope,
		LocalFilter: !d.Searchable,
		Fetch: func(ctx context.Context, params api.Params) (api.Page[listing.Row], error) {
			return d.Fetch(ctx, client, params)
		},
	}
	if d.CanManage(env.Session) && hasAction(d.Actions, ActionDelete) {
		cfg.Remove = func(ctx context.Context, id int) error {
			return client.Delete(ctx, d.Name, id)
		}
	}
	return listing.New(cfg)
}

// Scoped resolves a scoped-list action on a row of d into the target
// collection and its fixed filter.
func (d Descriptor) Scoped(action Action, id int) (Descriptor, map[string]string, bool) {
	var target Descriptor
	switch action {
	case ActionReservations:
		target = Reservations
	case ActionRefuels:
		target = Refuels
	default:
		return Descriptor{}, nil, false
	}
	key := strings.TrimSuffix(d.Name, "s") + "_id"
	return target, map[string]string{key: strconv.Itoa(id)}, true
}

func hasAction(actions []Action, want Action) bool {
	for _, a := range actions {
		if a == want {
			return true
		}
	}
	return false
}

// Download fetches the file behind a download action and returns the payload
// with the file name it should be saved under.
func Download(ctx context.Context, c *api.Client, action Action, record any) (api.Payload, string, error) {
	switch action {
	case ActionDownload:
		doc, ok := record.(fleet.Document)
		if !ok {
			return api.Payload{}, "", fmt.Errorf("download: unexpected record %T", record)
		}
		payload, err := c.DocumentFile(ctx, doc.ID)
		return payload, DocumentFilename(doc), err
	case ActionReport:
		v, ok := record.(fleet.Vehicle)
		if !ok {
			return api.Payload{}, "", fmt.Errorf("report: unexpected record %T", record)
		}
		payload, err := c.FuelReport(ctx, v.ID)
		return payload, ReportFilename(v), err
	}
	return api.Payload{}, "", fmt.Errorf("%s is not a download", action)
}

// DocumentFilename is "<title>.<ext>" with the extension of the stored file.
func DocumentFilename(doc fleet.Document) string {
	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = fmt.Sprintf("document_%d", doc.ID)
	}
	ext := strings.TrimPrefix(filepath.Ext(doc.FilePath), ".")
	if ext == "" {
		return title
	}
	return title + "." + ext
}

// ReportFilename is "vehicle_<registration>_report.pdf".
func ReportFilename(v fleet.Vehicle) string {
	reg := strings.TrimSpace(v.RegistrationNumber)
	if reg == "" {
		reg = fmt.Sprint(v.ID)
	}
	return fmt.Sprintf("vehicle_%s_report.pdf", reg)
}
