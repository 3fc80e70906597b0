package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDetailString(t *testing.T) {
	msg, fields := parseDetail([]byte(`{"detail":"Vehicle not found"}`))
	assert.Equal(t, "Vehicle not found", msg)
	assert.Nil(t, fields)
}

func TestParseDetailValidationList(t *testing.T) {
	body := []byte(`{"detail":[
		{"loc":["body","date_to"],"msg":"must be after date_from","type":"value_error"},
		{"loc":["body","vehicle_id"],"msg":"field required","type":"missing"},
		{"loc":["body"],"msg":"invalid payload","type":"value_error"}
	]}`)
	msg, fields := parseDetail(body)
	assert.Equal(t, "invalid payload", msg)
	assert.Equal(t, map[string]string{
		"date_to":    "must be after date_from",
		"vehicle_id": "field required",
	}, fields)
}

func TestParseDetailFieldsOnlyBuildsMessage(t *testing.T) {
	body := []byte(`{"detail":[{"loc":["body","name"],"msg":"too short","type":"value_error"}]}`)
	msg, fields := parseDetail(body)
	assert.Equal(t, "name: too short", msg)
	assert.Equal(t, "too short", fields["name"])
}

func TestParseDetailNumericLocUsesPrecedingString(t *testing.T) {
	body := []byte(`{"detail":[{"loc":["body","items",0],"msg":"bad item","type":"value_error"}]}`)
	_, fields := parseDetail(body)
	assert.Equal(t, "bad item", fields["items"])
}

func TestParseDetailPlainBody(t *testing.T) {
	msg, fields := parseDetail([]byte("Internal Server Error\n"))
	assert.Equal(t, "Internal Server Error", msg)
	assert.Nil(t, fields)
}

func TestErrorIsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("load vehicles: %w", &Error{Kind: KindForbidden, Status: 403, Path: "/vehicles/"})
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}

func TestFieldErrorsReturnsCopy(t *testing.T) {
	src := &Error{Kind: KindValidation, Fields: map[string]string{"email": "taken"}}
	fields := FieldErrors(src)
	fields["email"] = "changed"
	assert.Equal(t, "taken", src.Fields["email"])
	assert.Nil(t, FieldErrors(errors.New("plain")))
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: KindNotFound, Status: 404, Method: "GET", Path: "/vehicles/9/", Message: "Vehicle not found"}
	assert.Equal(t, "not found GET /vehicles/9/: status=404: Vehicle not found", err.Error())
}
