package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
)

// SessionCookie is the cookie the fake backend issues on login.
const SessionCookie = "session"

var resources = []string{"companies", "vehicles", "users", "reservations", "refuels", "documents"}

var required = map[string][]string{
	"companies":    {"name", "nip"},
	"vehicles":     {"brand", "model", "registration_number", "vin", "production_year", "kilometrage", "weight", "gearbox_type", "tire_type", "availability", "company_id"},
	"users":        {"name", "email", "role"},
	"reservations": {"vehicle_id", "date_from", "date_to"},
	"refuels":      {"vehicle_id", "date", "fuel_amount", "price", "kilometrage_during_refuel", "gas_station"},
	"documents":    {"title", "file_type", "vehicle_id"},
}

var manageCap = map[string]fleet.Capability{
	"companies":    fleet.CapManageFleet,
	"vehicles":     fleet.CapManageFleet,
	"users":        fleet.CapManageUsers,
	"reservations": fleet.CapBook,
	"refuels":      fleet.CapBook,
	"documents":    fleet.CapBook,
}

var searchFields = map[string][]string{
	"companies":    {"name", "nip", "city", "country"},
	"vehicles":     {"brand", "model", "registration_number", "vin"},
	"users":        {"name", "email"},
	"reservations": {},
	"refuels":      {"gas_station"},
	"documents":    {"title", "description", "file_type"},
}

func schema() *memdb.DBSchema {
	tables := make(map[string]*memdb.TableSchema, len(resources))
	for _, name := range resources {
		tables[name] = &memdb.TableSchema{
			Name: name,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "ID"},
				},
			},
		}
	}
	return &memdb.DBSchema{Tables: tables}
}

type record struct {
	ID     int
	Fields map[string]any
}

// Request is a request observed by the backend.
type Request struct {
	Method string
	Path   string
	Query  url.Values
}

type failure struct {
	match  func(*http.Request) bool
	status int
	detail string
}

// Backend is an in-memory Fleet-Flow API served over HTTP for tests. Records
// live in go-memdb tables, one per collection.
type Backend struct {
	// URL is the API base URL clients should be configured with.
	URL string
	// Now is the clock used for upcoming reservations.
	Now func() time.Time

	db  *memdb.MemDB
	srv *httptest.Server

	mu        sync.Mutex
	nextID    map[string]int
	passwords map[string]string
	sessions  map[string]int
	files     map[int][]byte
	requests  []Request
	failures  []failure
	delay     func(*http.Request) time.Duration
}

// NewBackend starts a backend that is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		t.Fatalf("failed to create backend store: %v", err)
	}
	b := &Backend{
		Now:       time.Now,
		db:        db,
		nextID:    make(map[string]int),
		passwords: make(map[string]string),
		sessions:  make(map[string]int),
		files:     make(map[int][]byte),
	}
	gin.SetMode(gin.TestMode)
	b.srv = httptest.NewServer(b.router())
	t.Cleanup(b.srv.Close)
	b.URL = b.srv.URL + "/api"
	return b
}

func (b *Backend) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	api := r.Group("/api")
	api.Use(b.observe, b.inject, b.authenticate)
	api.POST("/:resource/:action/", b.handleAction)
	api.GET("/:resource/", b.handleList)
	api.POST("/:resource/", b.handleCreate)
	api.GET("/:resource/:id/", b.handleGet)
	api.PUT("/:resource/:id/", b.handleUpdate)
	api.DELETE("/:resource/:id/", b.handleDelete)
	api.GET("/:resource/:id/download/", b.handleDownload)
	api.GET("/:resource/:id/reports/fuel/", b.handleReport)
	return r
}

// SetDelay makes every request wait for fn(req) before it is served.
func (b *Backend) SetDelay(fn func(*http.Request) time.Duration) {
	b.mu.Lock()
	b.delay = fn
	b.mu.Unlock()
}

// FailWith answers requests matching match with status until ClearFailures.
func (b *Backend) FailWith(status int, detail string, match func(*http.Request) bool) {
	b.mu.Lock()
	b.failures = append(b.failures, failure{match: match, status: status, detail: detail})
	b.mu.Unlock()
}

// ClearFailures removes every injected failure.
func (b *Backend) ClearFailures() {
	b.mu.Lock()
	b.failures = nil
	b.mu.Unlock()
}

// ExpireSessions forgets every issued session cookie.
func (b *Backend) ExpireSessions() {
	b.mu.Lock()
	b.sessions = make(map[string]int)
	b.mu.Unlock()
}

// Requests returns the requests whose path starts with prefix, relative to
// the API base.
func (b *Backend) Requests(prefix string) []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, 0, len(b.requests))
	for _, req := range b.requests {
		if strings.HasPrefix(req.Path, prefix) {
			out = append(out, req)
		}
	}
	return out
}

// PathFor matches requests on collection, for use with FailWith.
func PathFor(method, resource string) func(*http.Request) bool {
	prefix := "/api/" + strings.Trim(resource, "/") + "/"
	return func(r *http.Request) bool {
		return (method == "" || r.Method == method) && strings.HasPrefix(r.URL.Path, prefix)
	}
}

// AddUser stores u with password and returns it with its assigned id.
func (b *Backend) AddUser(u fleet.User, password string) fleet.User {
	id := b.insert("users", u)
	b.mu.Lock()
	b.passwords[strings.ToLower(u.Email)] = password
	b.mu.Unlock()
	u.ID = id
	return u
}

func (b *Backend) AddCompany(c fleet.Company) fleet.Company {
	c.ID = b.insert("companies", c)
	return c
}

func (b *Backend) AddVehicle(v fleet.Vehicle) fleet.Vehicle {
	v.ID = b.insert("vehicles", v)
	return v
}

func (b *Backend) AddReservation(r fleet.Reservation) fleet.Reservation {
	r.ID = b.insert("reservations", r)
	return r
}

func (b *Backend) AddRefuel(r fleet.Refuel) fleet.Refuel {
	r.ID = b.insert("refuels", r)
	return r
}

// AddDocument stores d with content as its downloadable file.
func (b *Backend) AddDocument(d fleet.Document, content []byte) fleet.Document {
	d.FileSize = int64(len(content))
	d.ID = b.insert("documents", d)
	b.mu.Lock()
	b.files[d.ID] = content
	b.mu.Unlock()
	return d
}

// Count returns the number of records in resource.
func (b *Backend) Count(resource string) int {
	return len(b.all(resource))
}

// Record returns the stored fields of one record.
func (b *Backend) Record(resource string, id int) (map[string]any, bool) {
	rec := b.find(resource, id)
	if rec == nil {
		return nil, false
	}
	return cloneFields(rec.Fields), true
}

func (b *Backend) insert(resource string, v any) int {
	fields := toFields(v)
	delete(fields, "company")
	delete(fields, "vehicle")
	delete(fields, "user")
	b.mu.Lock()
	b.nextID[resource]++
	id := b.nextID[resource]
	b.mu.Unlock()
	fields["id"] = id
	b.put(resource, &record{ID: id, Fields: fields})
	return id
}

func (b *Backend) put(resource string, rec *record) {
	txn := b.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(resource, rec); err != nil {
		panic(fmt.Sprintf("testutil: insert %s: %v", resource, err))
	}
	txn.Commit()
}

func (b *Backend) find(resource string, id int) *record {
	txn := b.db.Txn(false)
	obj, err := txn.First(resource, "id", id)
	if err != nil || obj == nil {
		return nil
	}
	return obj.(*record)
}

func (b *Backend) all(resource string) []*record {
	txn := b.db.Txn(false)
	it, err := txn.Get(resource, "id")
	if err != nil {
		return nil
	}
	var out []*record
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, obj.(*record))
	}
	return out
}

func (b *Backend) remove(resource string, rec *record) {
	txn := b.db.Txn(true)
	defer txn.Abort()
	if err := txn.Delete(resource, rec); err != nil {
		return
	}
	txn.Commit()
}

func (b *Backend) observe(c *gin.Context) {
	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method: c.Request.Method,
		Path:   strings.TrimPrefix(c.Request.URL.Path, "/api"),
		Query:  c.Request.URL.Query(),
	})
	delay := b.delay
	b.mu.Unlock()
	if delay == nil {
		return
	}
	if d := delay(c.Request); d > 0 {
		select {
		case <-time.After(d):
		case <-c.Request.Context().Done():
			c.Abort()
		}
	}
}

func (b *Backend) inject(c *gin.Context) {
	b.mu.Lock()
	failures := append([]failure(nil), b.failures...)
	b.mu.Unlock()
	for _, f := range failures {
		if f.match(c.Request) {
			abortDetail(c, f.status, f.detail)
			return
		}
	}
}

func (b *Backend) authenticate(c *gin.Context) {
	if c.Request.Method == http.MethodPost && c.Param("resource") == "users" && c.Param("action") == "login" {
		return
	}
	token, err := c.Cookie(SessionCookie)
	if err != nil {
		abortDetail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	b.mu.Lock()
	id, ok := b.sessions[token]
	b.mu.Unlock()
	if !ok {
		abortDetail(c, http.StatusUnauthorized, "Session expired")
		return
	}
	rec := b.find("users", id)
	if rec == nil {
		abortDetail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var user fleet.User
	fromFields(rec.Fields, &user)
	c.Set("user", user)
}

func currentUser(c *gin.Context) fleet.User {
	user, _ := c.Get("user")
	u, _ := user.(fleet.User)
	return u
}

func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func knownResource(name string) bool {
	for _, r := range resources {
		if r == name {
			return true
		}
	}
	return false
}

func (b *Backend) handleAction(c *gin.Context) {
	if c.Param("resource") != "users" {
		abortDetail(c, http.StatusNotFound, "Not Found")
		return
	}
	switch c.Param("action") {
	case "login":
		b.login(c)
	case "logout":
		token, _ := c.Cookie(SessionCookie)
		b.mu.Lock()
		delete(b.sessions, token)
		b.mu.Unlock()
		c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
		c.Status(http.StatusNoContent)
	default:
		abortDetail(c, http.StatusNotFound, "Not Found")
	}
}

func (b *Backend) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "Invalid body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	b.mu.Lock()
	password, ok := b.passwords[email]
	b.mu.Unlock()
	if !ok || password != body.Password {
		abortDetail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	var user fleet.User
	for _, rec := range b.all("users") {
		if strings.EqualFold(fmt.Sprint(rec.Fields["email"]), email) {
			fromFields(rec.Fields, &user)
			break
		}
	}
	token := uuid.NewString()
	b.mu.Lock()
	b.sessions[token] = user.ID
	b.mu.Unlock()
	c.SetCookie(SessionCookie, token, 3600, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (b *Backend) handleList(c *gin.Context) {
	resource := c.Param("resource")
	if !knownResource(resource) {
		abortDetail(c, http.StatusNotFound, "Not Found")
		return
	}
	if !b.canView(c, resource) {
		return
	}
	b.writePage(c, resource, b.filter(resource, b.all(resource), c.Request.URL.Query()))
}

func (b *Backend) canView(c *gin.Context, resource string) bool {
	if resource == "users" && !currentUser(c).Role.Can(fleet.CapViewUsers) {
		abortDetail(c, http.StatusForbidden, "Not enough permissions")
		return false
	}
	return true
}

func (b *Backend) canManage(c *gin.Context, resource string) bool {
	if !currentUser(c).Role.Can(manageCap[resource]) {
		abortDetail(c, http.StatusForbidden, "Not enough permissions")
		return false
	}
	return true
}

func (b *Backend) filter(resource string, recs []*record, query url.Values) []*record {
	search := strings.ToLower(strings.TrimSpace(query.Get("search")))
	out := make([]*record, 0, len(recs))
	for _, rec := range recs {
		if search != "" && !matchesSearch(rec, searchFields[resource], search) {
			continue
		}
		if !matchesFilters(resource, rec, query) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchesSearch(rec *record, fields []string, term string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(fmt.Sprint(rec.Fields[f])), term) {
			return true
		}
	}
	return false
}

func matchesFilters(resource string, rec *record, query url.Values) bool {
	for key, values := range query {
		switch key {
		case "page", "size", "search":
			continue
		}
		field := key
		if resource == "vehicles" && key == "status" {
			field = "availability"
		}
		if fmt.Sprint(rec.Fields[field]) != values[0] {
			return false
		}
	}
	return true
}

func (b *Backend) writePage(c *gin.Context, resource string, recs []*record) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))
	if page < 1 || size < 1 || size > 100 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{
			{"loc": []string{"query", "size"}, "msg": "Input should be between 1 and 100", "type": "value_error"},
		}})
		return
	}
	start := (page - 1) * size
	end := start + size
	if start > len(recs) {
		start = len(recs)
	}
	if end > len(recs) {
		end = len(recs)
	}
	items := make([]map[string]any, 0, end-start)
	for _, rec := range recs[start:end] {
		items = append(items, b.expand(resource, rec))
	}
	pages := int(math.Ceil(float64(len(recs)) / float64(size)))
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(recs), "page": page, "size": size, "pages": pages})
}

// expand embeds the related records the real API returns alongside ids.
func (b *Backend) expand(resource string, rec *record) map[string]any {
	out := cloneFields(rec.Fields)
	embed := func(key, table string) {
		id, ok := intField(out, key+"_id")
		if !ok {
			return
		}
		if related := b.find(table, id); related != nil {
			out[key] = cloneFields(related.Fields)
		}
	}
	switch resource {
	case "vehicles", "users":
		embed("company", "companies")
	case "reservations", "refuels":
		embed("vehicle", "vehicles")
		embed("user", "users")
	case "documents":
		embed("vehicle", "vehicles")
	}
	return out
}

func (b *Backend) record(c *gin.Context) (string, *record, bool) {
	resource := c.Param("resource")
	if !knownResource(resource) {
		abortDetail(c, http.StatusNotFound, "Not Found")
		return "", nil, false
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{
			{"loc": []string{"path", "id"}, "msg": "Input should be a valid integer", "type": "int_parsing"},
		}})
		return "", nil, false
	}
	rec := b.find(resource, id)
	if rec == nil {
		abortDetail(c, http.StatusNotFound, fmt.Sprintf("%s not found", strings.TrimSuffix(resource, "s")))
		return "", nil, false
	}
	return resource, rec, true
}

func (b *Backend) handleGet(c *gin.Context) {
	switch {
	case c.Param("resource") == "users" && c.Param("id") == "me":
		c.JSON(http.StatusOK, currentUser(c))
		return
	case c.Param("resource") == "reservations" && c.Param("id") == "upcoming":
		b.upcoming(c)
		return
	}
	resource, rec, ok := b.record(c)
	if !ok || !b.canView(c, resource) {
		return
	}
	c.JSON(http.StatusOK, b.expand(resource, rec))
}

func (b *Backend) upcoming(c *gin.Context) {
	now := b.Now()
	var recs []*record
	for _, rec := range b.all("reservations") {
		from, err := fleet.ParseTimestamp(fmt.Sprint(rec.Fields["date_from"]))
		if err == nil && from.After(now) {
			recs = append(recs, rec)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return fmt.Sprint(recs[i].Fields["date_from"]) < fmt.Sprint(recs[j].Fields["date_from"])
	})
	b.writePage(c, "reservations", recs)
}

func (b *Backend) handleCreate(c *gin.Context) {
	resource := c.Param("resource")
	if !knownResource(resource) {
		abortDetail(c, http.StatusNotFound, "Not Found")
		return
	}
	if !b.canManage(c, resource) {
		return
	}
	var (
		fields map[string]any
		file   []byte
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var ok bool
		if fields, file, ok = readMultipart(c); !ok {
			return
		}
	} else if err := c.ShouldBindJSON(&fields); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "Invalid body")
		return
	}
	if resource == "reservations" {
		if _, ok := fields["user_id"]; !ok {
			fields["user_id"] = currentUser(c).ID
		}
	}
	if !b.validate(c, resource, fields, 0) {
		return
	}
	if resource == "documents" && file == nil {
		validationError(c, map[string]string{"file": "Field required"})
		return
	}
	if resource == "users" {
		password, _ := fields["password"].(string)
		delete(fields, "password")
		b.mu.Lock()
		b.passwords[strings.ToLower(fmt.Sprint(fields["email"]))] = password
		b.mu.Unlock()
	}
	id := b.insert(resource, fields)
	if file != nil {
		b.mu.Lock()
		b.files[id] = file
		b.mu.Unlock()
	}
	c.JSON(http.StatusCreated, b.expand(resource, b.find(resource, id)))
}

func readMultipart(c *gin.Context) (map[string]any, []byte, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "Invalid form")
		return nil, nil, false
	}
	fields := make(map[string]any, len(form.Value))
	for k, v := range form.Value {
		if len(v) == 0 {
			continue
		}
		if n, err := strconv.Atoi(v[0]); err == nil && strings.HasSuffix(k, "_id") {
			fields[k] = n
			continue
		}
		fields[k] = v[0]
	}
	header, err := c.FormFile("file")
	if err != nil {
		return fields, nil, true
	}
	f, err := header.Open()
	if err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "Invalid file")
		return nil, nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "Invalid file")
		return nil, nil, false
	}
	fields["file_path"] = header.Filename
	fields["file_size"] = len(data)
	return fields, data, true
}

func (b *Backend) handleUpdate(c *gin.Context) {
	resource, rec, ok := b.record(c)
	if !ok || !b.canManage(c, resource) {
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "Invalid body")
		return
	}
	merged := cloneFields(rec.Fields)
	for k, v := range body {
		if k == "id" || k == "password" {
			continue
		}
		merged[k] = v
	}
	if !b.validate(c, resource, merged, rec.ID) {
		return
	}
	b.put(resource, &record{ID: rec.ID, Fields: merged})
	c.JSON(http.StatusOK, b.expand(resource, b.find(resource, rec.ID)))
}

func (b *Backend) handleDelete(c *gin.Context) {
	resource, rec, ok := b.record(c)
	if !ok || !b.canManage(c, resource) {
		return
	}
	b.remove(resource, rec)
	c.Status(http.StatusNoContent)
}

func (b *Backend) handleDownload(c *gin.Context) {
	resource, rec, ok := b.record(c)
	if !ok {
		return
	}
	if resource != "documents" {
		abortDetail(c, http.StatusNotFound, "Not Found")
		return
	}
	b.mu.Lock()
	data, found := b.files[rec.ID]
	b.mu.Unlock()
	if !found {
		abortDetail(c, http.StatusNotFound, "File not found")
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}

func (b *Backend) handleReport(c *gin.Context) {
	resource, rec, ok := b.record(c)
	if !ok {
		return
	}
	if resource != "vehicles" {
		abortDetail(c, http.StatusNotFound, "Not Found")
		return
	}
	var litres float64
	for _, refuel := range b.all("refuels") {
		if id, ok := intField(refuel.Fields, "vehicle_id"); ok && id == rec.ID {
			amount, _ := refuel.Fields["fuel_amount"].(float64)
			litres += amount
		}
	}
	report := fmt.Sprintf("%%PDF-1.4\nFuel report for %v: %.2f l\n", rec.Fields["registration_number"], litres)
	c.Data(http.StatusOK, "application/pdf", []byte(report))
}

func (b *Backend) validate(c *gin.Context, resource string, fields map[string]any, id int) bool {
	missing := make(map[string]string)
	for _, name := range required[resource] {
		v, ok := fields[name]
		if !ok || v == nil || strings.TrimSpace(fmt.Sprint(v)) == "" {
			missing[name] = "Field required"
		}
	}
	if resource == "users" && id == 0 {
		if p, _ := fields["password"].(string); p == "" {
			missing["password"] = "Field required"
		}
	}
	if len(missing) > 0 {
		validationError(c, missing)
		return false
	}
	switch resource {
	case "users":
		if fmt.Sprint(fields["role"]) == fleet.RoleAdmin.String() && !currentUser(c).Role.Can(fleet.CapManageAdmins) {
			abortDetail(c, http.StatusForbidden, "Only admins can manage admins")
			return false
		}
		for _, other := range b.all("users") {
			if other.ID != id && strings.EqualFold(fmt.Sprint(other.Fields["email"]), fmt.Sprint(fields["email"])) {
				abortDetail(c, http.StatusConflict, "Email already registered")
				return false
			}
		}
	case "reservations":
		return b.validateReservation(c, fields, id)
	}
	return true
}

func (b *Backend) validateReservation(c *gin.Context, fields map[string]any, id int) bool {
	from, errFrom := fleet.ParseTimestamp(fmt.Sprint(fields["date_from"]))
	to, errTo := fleet.ParseTimestamp(fmt.Sprint(fields["date_to"]))
	if errFrom != nil || errTo != nil {
		bad := make(map[string]string)
		if errFrom != nil {
			bad["date_from"] = "Input should be a valid datetime"
		}
		if errTo != nil {
			bad["date_to"] = "Input should be a valid datetime"
		}
		validationError(c, bad)
		return false
	}
	if !to.After(from.Time) {
		validationError(c, map[string]string{"date_to": "Value error, date_to must be after date_from"})
		return false
	}
	vehicleID, _ := intField(fields, "vehicle_id")
	if b.find("vehicles", vehicleID) == nil {
		abortDetail(c, http.StatusNotFound, "vehicle not found")
		return false
	}
	for _, other := range b.all("reservations") {
		if other.ID == id {
			continue
		}
		if otherVehicle, _ := intField(other.Fields, "vehicle_id"); otherVehicle != vehicleID {
			continue
		}
		otherFrom, err1 := fleet.ParseTimestamp(fmt.Sprint(other.Fields["date_from"]))
		otherTo, err2 := fleet.ParseTimestamp(fmt.Sprint(other.Fields["date_to"]))
		if err1 != nil || err2 != nil {
			continue
		}
		if from.Before(otherTo.Time) && otherFrom.Before(to.Time) {
			abortDetail(c, http.StatusConflict, "Vehicle is already reserved in this period")
			return false
		}
	}
	return true
}

func validationError(c *gin.Context, fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	detail := make([]gin.H, 0, len(names))
	for _, name := range names {
		detail = append(detail, gin.H{"loc": []string{"body", name}, "msg": fields[name], "type": "value_error"})
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": detail})
}

func intField(fields map[string]any, key string) (int, bool) {
	switch v := fields[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

func toFields(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return cloneFields(m)
	}
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: encode %T: %v", v, err))
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("testutil: decode %T: %v", v, err))
	}
	return out
}

func fromFields(fields map[string]any, out any) {
	data, err := json.Marshal(fields)
	if err != nil {
		return
	}
	_ = json.Unmarshal(data, out)
}

func cloneFields(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Context returns a context bounded by the test deadline or five seconds.
func Context(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
