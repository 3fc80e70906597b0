package table

import (
	"reflect"
	"testing"
)

func TestFormatPadsColumns(t *testing.T) {
	rows := [][]string{
		{"ID", "Name", "Km"},
		{"1", "Ford Transit", "120000"},
		{"12", "Fiat", "900"},
	}
	got := Format(rows, []Alignment{AlignRight, AlignLeft, AlignRight})
	want := []string{
		"ID  Name              Km",
		" 1  Ford Transit  120000",
		"12  Fiat             900",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected table:\n%q\nwant\n%q", got, want)
	}
}

func TestFormatUsesDisplayWidth(t *testing.T) {
	rows := [][]string{{"日本", "x"}, {"ab", "y"}}
	got := Format(rows, nil)
	want := []string{"日本  x", "ab    y"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected wide table %q", got)
	}
}

func TestRenderTruncatesCells(t *testing.T) {
	header, body := Render([]Column{{Title: "Name", MaxWidth: 6}, {Title: "City"}}, [][]string{{"Acme Logistics", "Gdańsk"}})
	if header != "Name    City" {
		t.Fatalf("unexpected header %q", header)
	}
	if len(body) != 1 || body[0] != "Acme …  Gdańsk" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestTruncate(t *testing.T) {
	if Truncate("short", 10) != "short" {
		t.Fatalf("short text must stay intact")
	}
	if Truncate("anything", 0) != "" {
		t.Fatalf("zero width must be empty")
	}
}

func TestFormatEmpty(t *testing.T) {
	if Format(nil, nil) != nil {
		t.Fatalf("expected nil for no rows")
	}
}
