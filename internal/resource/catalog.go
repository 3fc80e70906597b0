package resource

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
	"github.com/PawelWisn/Fleet-Flow/internal/format/table"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/form"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/selector"
)

const optionPageSize = 10

var Vehicles = Define(Collection[fleet.Vehicle]{
	Descriptor: Descriptor{
		Name:     "vehicles",
		Title:    "Vehicles",
		Singular: "vehicle",
		Columns: []table.Column{
			{Title: "ID", Align: table.AlignRight},
			{Title: "Vehicle", MaxWidth: 28},
			{Title: "Registration"},
			{Title: "Year", Align: table.AlignRight},
			{Title: "Km", Align: table.AlignRight},
			{Title: "Status"},
		},
		Searchable:   true,
		FilterKey:    "status",
		FilterValues: availabilityValues(),
		ManageCap:    fleet.CapManageFleet,
		Actions:      []Action{ActionEdit, ActionDelete, ActionReservations, ActionRefuels, ActionReport},
	},
	Cells: func(v fleet.Vehicle) []string {
		return []string{
			strconv.Itoa(v.ID),
			strings.TrimSpace(v.Brand + " " + v.Model),
			v.RegistrationNumber,
			strconv.Itoa(v.ProductionYear),
			strconv.Itoa(v.Kilometrage),
			string(v.Availability),
		}
	},
	Lines: func(v fleet.Vehicle) []string {
		company := fmt.Sprintf("#%d", v.CompanyID)
		if v.Company != nil {
			company = v.Company.Name
		}
		return []string{
			"Brand: " + v.Brand,
			"Model: " + v.Model,
			"Registration: " + v.RegistrationNumber,
			"VIN: " + v.VIN,
			"ID number: " + dash(v.IDNumber),
			fmt.Sprintf("Year: %d", v.ProductionYear),
			fmt.Sprintf("Kilometrage: %d km", v.Kilometrage),
			fmt.Sprintf("Weight: %.0f kg", v.Weight),
			"Gearbox: " + string(v.GearboxType),
			"Tires: " + string(v.TireType),
			"Status: " + string(v.Availability),
			"Company: " + company,
		}
	},
	Fields: func(env Env) []form.Field {
		return []form.Field{
			{Name: "brand", Label: "Brand", Required: true},
			{Name: "model", Label: "Model", Required: true},
			{Name: "registration_number", Label: "Registration", Required: true},
			{Name: "vin", Label: "VIN", Required: true},
			{Name: "id_number", Label: "ID number"},
			{Name: "production_year", Label: "Production year", Kind: form.Number, Required: true},
			{Name: "kilometrage", Label: "Kilometrage", Kind: form.Number, Required: true},
			{Name: "weight", Label: "Weight (kg)", Kind: form.Decimal, Required: true},
			{Name: "gearbox_type", Label: "Gearbox", Kind: form.Select, Required: true, Source: selector.Strings(fleet.Gearboxes()...)},
			{Name: "tire_type", Label: "Tires", Kind: form.Select, Required: true, Source: selector.Strings(fleet.TireTypes()...)},
			{Name: "availability", Label: "Status", Kind: form.Select, Required: true, Source: selector.Strings(fleet.Availabilities()...)},
			{Name: "company_id", Label: "Company", Kind: form.Select, Required: true, Numeric: true,
				Source: selector.Remote[fleet.Company](env.Client, "companies", optionPageSize, nil)},
		}
	},
})

var Companies = Define(Collection[fleet.Company]{
	Descriptor: Descriptor{
		Name:     "companies",
		Title:    "Companies",
		Singular: "company",
		Columns: []table.Column{
			{Title: "ID", Align: table.AlignRight},
			{Title: "Name", MaxWidth: 30},
			{Title: "NIP"},
			{Title: "City"},
			{Title: "Internal"},
		},
		ManageCap: fleet.CapManageFleet,
		Actions:   []Action{ActionEdit, ActionDelete},
	},
	Cells: func(c fleet.Company) []string {
		return []string{strconv.Itoa(c.ID), c.Name, c.NIP, c.City, yesNo(c.IsInternal)}
	},
	Search: func(c fleet.Company) string {
		return strings.Join([]string{c.Name, c.NIP, c.City, c.Country}, " ")
	},
	Lines: func(c fleet.Company) []string {
		address := strings.TrimSpace(c.Address1 + " " + c.Address2)
		return []string{
			"Name: " + c.Name,
			"NIP: " + c.NIP,
			"Description: " + dash(c.Description),
			"Phone: " + dash(c.Phone),
			"Address: " + dash(address),
			"City: " + dash(strings.TrimSpace(c.PostCode+" "+c.City)),
			"Country: " + dash(c.Country),
			"Internal: " + yesNo(c.IsInternal),
		}
	},
	Fields: func(Env) []form.Field {
		return []form.Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "nip", Label: "NIP", Required: true},
			{Name: "description", Label: "Description"},
			{Name: "phone", Label: "Phone"},
			{Name: "address1", Label: "Address"},
			{Name: "address2", Label: "Address (cont.)"},
			{Name: "post_code", Label: "Post code"},
			{Name: "city", Label: "City"},
			{Name: "country", Label: "Country"},
			{Name: "is_internal", Label: "Internal", Kind: form.Bool},
		}
	},
})

var Users = Define(Collection[fleet.User]{
	Descriptor: Descriptor{
		Name:     "users",
		Title:    "Users",
		Singular: "user",
		Columns: []table.Column{
			{Title: "ID", Align: table.AlignRight},
			{Title: "Name", MaxWidth: 24},
			{Title: "Email", MaxWidth: 32},
			{Title: "Role"},
		},
		ViewCap:   fleet.CapViewUsers,
		ManageCap: fleet.CapManageUsers,
		Actions:   []Action{ActionEdit, ActionDelete, ActionReservations, ActionRefuels},
	},
	Cells: func(u fleet.User) []string {
		return []string{strconv.Itoa(u.ID), u.Name, u.Email, u.Role.String()}
	},
	Search: func(u fleet.User) string {
		return u.Name + " " + u.Email + " " + u.Role.String()
	},
	Lines: func(u fleet.User) []string {
		company := "-"
		switch {
		case u.Company != nil:
			company = u.Company.Name
		case u.CompanyID != nil:
			company = fmt.Sprintf("#%d", *u.CompanyID)
		}
		return []string{
			"Name: " + u.Name,
			"Email: " + u.Email,
			"Role: " + u.Role.String(),
			"Company: " + company,
		}
	},
	Fields: func(env Env) []form.Field {
		roles := make([]string, 0, 3)
		for _, r := range fleet.Roles() {
			roles = append(roles, r.String())
		}
		canAdmin := env.Session != nil && env.Session.CanManageAdmins()
		roleSource := selector.Strings(roles...).Where(func(o selector.Option) bool {
			return canAdmin || o.Value != fleet.RoleAdmin.String()
		})
		return []form.Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "email", Label: "Email", Required: true},
			{Name: "password", Label: "Password", Kind: form.Secret, Required: true, CreateOnly: true},
			{Name: "role", Label: "Role", Kind: form.Select, Required: true, Source: roleSource},
			{Name: "company_id", Label: "Company", Kind: form.Select, Numeric: true,
				Source: selector.Remote[fleet.Company](env.Client, "companies", optionPageSize, nil)},
		}
	},
})

var Reservations = Define(Collection[fleet.Reservation]{
	Descriptor: Descriptor{
		Name:     "reservations",
		Title:    "Reservations",
		Singular: "reservation",
		Columns: []table.Column{
			{Title: "ID", Align: table.AlignRight},
			{Title: "Vehicle", MaxWidth: 30},
			{Title: "From"},
			{Title: "To"},
			{Title: "User", MaxWidth: 20},
		},
		ManageCap: fleet.CapBook,
		Actions:   []Action{ActionEdit, ActionDelete},
	},
	Cells: func(r fleet.Reservation) []string {
		return []string{strconv.Itoa(r.ID), vehicleName(r.VehicleID, r.Vehicle), r.DateFrom.Display(), r.DateTo.Display(), userName(r.UserID, r.User)}
	},
	Search: func(r fleet.Reservation) string {
		return vehicleName(r.VehicleID, r.Vehicle) + " " + userName(r.UserID, r.User)
	},
	Lines: func(r fleet.Reservation) []string {
		return []string{
			"Vehicle: " + vehicleName(r.VehicleID, r.Vehicle),
			"User: " + userName(r.UserID, r.User),
			"From: " + r.DateFrom.Display(),
			"To: " + r.DateTo.Display(),
			"Booked: " + r.ReservationDate.Display(),
		}
	},
	Fields: func(env Env) []form.Field {
		fields := []form.Field{
			{Name: "vehicle_id", Label: "Vehicle", Kind: form.Select, Required: true, Numeric: true,
				Source: selector.Remote[fleet.Vehicle](env.Client, "vehicles", optionPageSize, nil)},
		}
		if env.Session != nil && env.Session.CanAccessUsers() {
			fields = append(fields, form.Field{Name: "user_id", Label: "User", Kind: form.Select, Numeric: true,
				Source: selector.Remote[fleet.User](env.Client, "users", optionPageSize, nil)})
		}
		return append(fields,
			form.Field{Name: "date_from", Label: "From", Kind: form.DateTime, Required: true},
			form.Field{Name: "date_to", Label: "To", Kind: form.DateTime, Required: true},
		)
	},
})

var Refuels = Define(Collection[fleet.Refuel]{
	Descriptor: Descriptor{
		Name:     "refuels",
		Title:    "Refuels",
		Singular: "refuel",
		Columns: []table.Column{
			{Title: "ID", Align: table.AlignRight},
			{Title: "Date"},
			{Title: "Vehicle", MaxWidth: 28},
			{Title: "Litres", Align: table.AlignRight},
			{Title: "Price", Align: table.AlignRight},
			{Title: "Station", MaxWidth: 20},
		},
		ManageCap: fleet.CapBook,
		Actions:   []Action{ActionEdit, ActionDelete},
	},
	Cells: func(r fleet.Refuel) []string {
		return []string{
			strconv.Itoa(r.ID),
			r.Date.Display(),
			vehicleName(r.VehicleID, r.Vehicle),
			fmt.Sprintf("%.2f", r.FuelAmount),
			fmt.Sprintf("%.2f", r.Price),
			r.GasStation,
		}
	},
	Search: func(r fleet.Refuel) string {
		return r.GasStation + " " + vehicleName(r.VehicleID, r.Vehicle)
	},
	Lines: func(r fleet.Refuel) []string {
		document := "-"
		if r.DocumentID != 0 {
			document = fmt.Sprintf("#%d", r.DocumentID)
		}
		return []string{
			"Date: " + r.Date.Display(),
			"Vehicle: " + vehicleName(r.VehicleID, r.Vehicle),
			"User: " + userName(r.UserID, r.User),
			fmt.Sprintf("Fuel: %.2f l", r.FuelAmount),
			fmt.Sprintf("Price: %.2f", r.Price),
			fmt.Sprintf("Odometer: %d km", r.Kilometrage),
			"Station: " + dash(r.GasStation),
			"Receipt: " + document,
		}
	},
	Fields: func(env Env) []form.Field {
		return []form.Field{
			{Name: "vehicle_id", Label: "Vehicle", Kind: form.Select, Required: true, Numeric: true,
				Source: selector.Remote[fleet.Vehicle](env.Client, "vehicles", optionPageSize, nil)},
			{Name: "date", Label: "Date", Kind: form.DateTime, Required: true},
			{Name: "fuel_amount", Label: "Fuel (l)", Kind: form.Decimal, Required: true},
			{Name: "price", Label: "Price", Kind: form.Decimal, Required: true},
			{Name: "kilometrage_during_refuel", Label: "Odometer (km)", Kind: form.Number, Required: true},
			{Name: "gas_station", Label: "Gas station", Required: true},
			{Name: "document_id", Label: "Receipt", Kind: form.Select, Numeric: true,
				Source: selector.Remote[fleet.Document](env.Client, "documents", optionPageSize, nil)},
		}
	},
})

var Documents = Define(Collection[fleet.Document]{
	Descriptor: Descriptor{
		Name:     "documents",
		Title:    "Documents",
		Singular: "document",
		Columns: []table.Column{
			{Title: "ID", Align: table.AlignRight},
			{Title: "Title", MaxWidth: 30},
			{Title: "Type"},
			{Title: "Vehicle", MaxWidth: 24},
			{Title: "Uploaded"},
		},
		ManageCap: fleet.CapBook,
		Multipart: true,
		Actions:   []Action{ActionDownload, ActionEdit, ActionDelete},
	},
	Cells: func(d fleet.Document) []string {
		return []string{strconv.Itoa(d.ID), d.Title, string(d.FileType), vehicleName(d.VehicleID, d.Vehicle), d.CreatedAt.Display()}
	},
	Search: func(d fleet.Document) string {
		return d.Title + " " + d.Description + " " + string(d.FileType)
	},
	Lines: func(d fleet.Document) []string {
		return []string{
			"Title: " + d.Title,
			"Type: " + string(d.FileType),
			"Description: " + dash(d.Description),
			"Vehicle: " + vehicleName(d.VehicleID, d.Vehicle),
			"File: " + DocumentFilename(d),
			"Size: " + humanSize(d.FileSize),
			"Uploaded: " + d.CreatedAt.Display(),
			"Updated: " + d.UpdatedAt.Display(),
		}
	},
	Fields: func(env Env) []form.Field {
		return []form.Field{
			{Name: "title", Label: "Title", Required: true},
			{Name: "file_type", Label: "Type", Kind: form.Select, Required: true, Source: selector.Strings(fleet.DocumentTypes()...)},
			{Name: "description", Label: "Description"},
			{Name: "vehicle_id", Label: "Vehicle", Kind: form.Select, Required: true, Numeric: true,
				Source: selector.Remote[fleet.Vehicle](env.Client, "vehicles", optionPageSize, nil)},
			{Name: "file", Label: "File", Kind: form.File, Required: true, CreateOnly: true, Placeholder: "/path/to/file.pdf"},
		}
	},
})

// All lists every collection in menu order.
func All() []Descriptor {
	return []Descriptor{Vehicles, Reservations, Refuels, Documents, Companies, Users}
}

// Find returns the collection with the given name.
func Find(name string) (Descriptor, bool) {
	for _, d := range All() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

func availabilityValues() []string {
	values := fleet.Availabilities()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func vehicleName(id int, v *fleet.Vehicle) string {
	if v != nil {
		return v.DisplayLabel()
	}
	return fmt.Sprintf("#%d", id)
}

func userName(id int, u *fleet.User) string {
	if u != nil {
		return u.DisplayLabel()
	}
	if id == 0 {
		return "-"
	}
	return fmt.Sprintf("#%d", id)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func humanSize(n int64) string {
	switch {
	case n <= 0:
		return "-"
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
