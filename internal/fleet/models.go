package fleet

import (
	"fmt"
	"strings"
	"time"
)

// Entity is implemented by every record type listed by the console.
type Entity interface {
	EntityID() int
	DisplayLabel() string
}

// Availability mirrors the backend's vehicle availability enum.
type Availability string

const (
	AvailabilityInUse          Availability = "in use"
	AvailabilityService        Availability = "service"
	AvailabilityAvailable      Availability = "available"
	AvailabilityDecommissioned Availability = "decommissioned"
	AvailabilityBooked         Availability = "booked"
)

// Availabilities lists the known availability values in display order.
func Availabilities() []Availability {
	return []Availability{
		AvailabilityAvailable,
		AvailabilityInUse,
		AvailabilityBooked,
		AvailabilityService,
		AvailabilityDecommissioned,
	}
}

type Gearbox string

const (
	GearboxAutomatic     Gearbox = "automatic"
	GearboxManual        Gearbox = "manual"
	GearboxSemiAutomatic Gearbox = "semi-automatic"
)

func Gearboxes() []Gearbox {
	return []Gearbox{GearboxManual, GearboxAutomatic, GearboxSemiAutomatic}
}

type TireType string

const (
	TireSummer    TireType = "summer"
	TireWinter    TireType = "winter"
	TireAllSeason TireType = "all-season"
)

func TireTypes() []TireType {
	return []TireType{TireSummer, TireWinter, TireAllSeason}
}

type Company struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	PostCode    string `json:"post_code"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	Country     string `json:"country"`
	NIP         string `json:"nip"`
	IsInternal  bool   `json:"is_internal"`
}

func (c Company) EntityID() int        { return c.ID }
func (c Company) DisplayLabel() string { return c.Name }

type Vehicle struct {
	ID                 int          `json:"id"`
	IDNumber           string       `json:"id_number"`
	VIN                string       `json:"vin"`
	Weight             float64      `json:"weight"`
	RegistrationNumber string       `json:"registration_number"`
	Brand              string       `json:"brand"`
	Model              string       `json:"model"`
	ProductionYear     int          `json:"production_year"`
	Kilometrage        int          `json:"kilometrage"`
	GearboxType        Gearbox      `json:"gearbox_type"`
	Availability       Availability `json:"availability"`
	TireType           TireType     `json:"tire_type"`
	CompanyID          int          `json:"company_id"`
	Company            *Company     `json:"company,omitempty"`
}

func (v Vehicle) EntityID() int { return v.ID }

func (v Vehicle) DisplayLabel() string {
	name := strings.TrimSpace(v.Brand + " " + v.Model)
	if v.RegistrationNumber == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, v.RegistrationNumber)
}

type User struct {
	ID        int      `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Role      Role     `json:"role"`
	CompanyID *int     `json:"company_id"`
	Company   *Company `json:"company,omitempty"`
}

func (u User) EntityID() int { return u.ID }

func (u User) DisplayLabel() string {
	if u.Name == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}

type Reservation struct {
	ID              int       `json:"id"`
	DateFrom        Timestamp `json:"date_from"`
	DateTo          Timestamp `json:"date_to"`
	ReservationDate Timestamp `json:"reservation_date"`
	VehicleID       int       `json:"vehicle_id"`
	UserID          int       `json:"user_id"`
	Vehicle         *Vehicle  `json:"vehicle,omitempty"`
	User            *User     `json:"user,omitempty"`
}

func (r Reservation) EntityID() int { return r.ID }

func (r Reservation) DisplayLabel() string {
	vehicle := fmt.Sprintf("vehicle #%d", r.VehicleID)
	if r.Vehicle != nil {
		vehicle = r.Vehicle.DisplayLabel()
	}
	return fmt.Sprintf("%s %s → %s", vehicle, r.DateFrom.Display(), r.DateTo.Display())
}

type Refuel struct {
	ID          int       `json:"id"`
	Date        Timestamp `json:"date"`
	FuelAmount  float64   `json:"fuel_amount"`
	Price       float64   `json:"price"`
	Kilometrage int       `json:"kilometrage_during_refuel"`
	GasStation  string    `json:"gas_station"`
	VehicleID   int       `json:"vehicle_id"`
	DocumentID  int       `json:"document_id"`
	UserID      int       `json:"user_id"`
	Vehicle     *Vehicle  `json:"vehicle,omitempty"`
	User        *User     `json:"user,omitempty"`
}

func (r Refuel) EntityID() int { return r.ID }

func (r Refuel) DisplayLabel() string {
	return fmt.Sprintf("%s %s %.2fl", r.Date.Display(), r.GasStation, r.FuelAmount)
}

// DocumentType mirrors the backend's document category enum.
type DocumentType string

const (
	DocumentRegistration DocumentType = "registration"
	DocumentInsurance    DocumentType = "insurance"
	DocumentMaintenance  DocumentType = "maintenance"
	DocumentInspection   DocumentType = "inspection"
	DocumentManual       DocumentType = "manual"
	DocumentOther        DocumentType = "other"
)

func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentRegistration,
		DocumentInsurance,
		DocumentMaintenance,
		DocumentInspection,
		DocumentManual,
		DocumentOther,
	}
}

type Document struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	FilePath    string       `json:"file_path"`
	FileType    DocumentType `json:"file_type"`
	FileSize    int64        `json:"file_size"`
	VehicleID   int          `json:"vehicle_id"`
	UserID      int          `json:"user_id"`
	CreatedAt   Timestamp    `json:"created_at"`
	UpdatedAt   Timestamp    `json:"updated_at"`
	Vehicle     *Vehicle     `json:"vehicle,omitempty"`
}

func (d Document) EntityID() int        { return d.ID }
func (d Document) DisplayLabel() string { return d.Title }

// Timestamp decodes the backend's naive ISO-8601 datetimes as well as RFC 3339.
type Timestamp struct {
	time.Time
}

// WireLayout is the layout the backend accepts for datetime fields.
const WireLayout = "2006-01-02T15:04:05"

// DisplayLayout is used when rendering and parsing user-entered datetimes.
const DisplayLayout = "2006-01-02 15:04"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	WireLayout,
	DisplayLayout,
	"2006-01-02",
}

// ParseTimestamp accepts any of the layouts the backend or a user may produce.
func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return Timestamp{Time: parsed}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid datetime %q (want %s)", value, DisplayLayout)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(WireLayout) + `"`), nil
}

// Display formats the timestamp for tables; zero values render as a dash.
func (t Timestamp) Display() string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DisplayLayout)
}
