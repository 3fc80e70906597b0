package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCount(t *testing.T) {
	assert.Equal(t, 4, PageCount(47, 15))
	assert.Equal(t, 1, PageCount(0, 15))
	assert.Equal(t, 1, PageCount(15, 15))
	assert.Equal(t, 2, PageCount(16, 15))
	assert.Equal(t, 5, PageCount(5, 0))
}

func TestParamsNormalizedAndValues(t *testing.T) {
	p := Params{Page: 0, Size: 500, Search: "  acme ", Filters: map[string]string{"status": "available", "company_id": "", "b": "x"}}
	n := p.Normalized()
	assert.Equal(t, 1, n.Page)
	assert.Equal(t, MaxPageSize, n.Size)
	assert.Equal(t, "acme", n.Search)

	assert.Equal(t, "b=x&page=1&search=acme&size=100&status=available", p.Values().Encode())
	assert.Equal(t, "page=1&size=15", Params{}.Values().Encode())
}

func TestQueryDecodesEnvelope(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vehicles/", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"items":[{"id":1,"brand":"Ford","model":"Transit"},{"id":2,"brand":"Fiat","model":"Ducato"}],"total":47,"page":2,"size":15,"pages":4}`))
	}))
	page, err := Query[fleet.Vehicle](context.Background(), c, "vehicles", Params{Page: 2, Size: 15, Search: "f"})
	require.NoError(t, err)
	assert.Equal(t, "page=2&search=f&size=15", gotQuery)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 47, page.Total)
	assert.Equal(t, 4, page.Pages)
	assert.True(t, page.HasMore())
}

func TestQueryRepairsPagesFromTotal(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[],"total":0,"page":1,"size":15,"pages":0}`))
	}))
	page, err := Query[fleet.Company](context.Background(), c, "companies", Params{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pages)
	assert.NotNil(t, page.Items)
	assert.False(t, page.HasMore())
}

func TestQueryClampsPagePastEnd(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[],"total":47,"page":5,"size":15,"pages":4}`))
	}))
	page, err := Query[fleet.Vehicle](context.Background(), c, "vehicles", Params{Page: 5, Size: 15})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Pages)
	assert.Equal(t, 4, page.Page)
	assert.False(t, page.HasMore())
}

func TestQueryAcceptsBareArray(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Acme"},{"id":2,"name":"Globex"}]`))
	}))
	page, err := Query[fleet.Company](context.Background(), c, "companies", Params{Size: 15})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.Pages)
	assert.Equal(t, 1, page.Page)
}

func TestQueryRejectsOversizedPage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"id":1},{"id":2}],"total":2,"page":1,"size":1,"pages":2}`))
	}))
	_, err := Query[fleet.Company](context.Background(), c, "companies", Params{})
	require.Error(t, err)
	assert.Equal(t, KindServer, KindOf(err))
}

func TestMapPage(t *testing.T) {
	src := Page[fleet.Company]{Items: []fleet.Company{{ID: 1, Name: "Acme"}}, Total: 1, Page: 1, Size: 15, Pages: 1}
	out := MapPage(src, func(c fleet.Company) string { return c.DisplayLabel() })
	assert.Equal(t, []string{"Acme"}, out.Items)
	assert.Equal(t, src.Total, out.Total)
}
