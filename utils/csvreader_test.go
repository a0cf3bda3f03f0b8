package utils

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	csvData := `contract_number,legacy_id,room_code
DH-2024-031,L-118,A12
DH-2024-044,L-207,B03`

	reader := strings.NewReader(csvData)

	got, err := ParseCSV(reader)
	if err != nil {
		t.Fatalf("ParseCSV returned error: %v", err)
	}

	want := [][]string{
		{"contract_number", "legacy_id", "room_code"},
		{"DH-2024-031", "L-118", "A12"},
		{"DH-2024-044", "L-207", "B03"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseCSV returned %+v, want %+v", got, want)
	}
}
