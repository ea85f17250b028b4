package domain

import "testing"

func TestRecordID(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{"mongo id", Record{"_id": "6650f1", "id": "x"}, "6650f1"},
		{"plain id", Record{"id": 42.0}, "42"},
		{"none", Record{"name": "Bandage"}, ""},
	}
	for _, tt := range tests {
		if got := tt.rec.ID(); got != tt.want {
			t.Errorf("%s: ID() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRecordField(t *testing.T) {
	rec := Record{
		"name":     "Oximeter",
		"price":    1499.5,
		"active":   true,
		"tags":     []any{"health", "device"},
		"category": map[string]any{"name": "Devices", "parent": map[string]any{"name": "Medical"}},
		"note":     nil,
	}
	tests := map[string]string{
		"name":                 "Oximeter",
		"price":                "1499.5",
		"active":               "true",
		"tags":                 `["health","device"]`,
		"category.name":        "Devices",
		"category.parent.name": "Medical",
		"category.missing":     "",
		"name.deeper":          "",
		"note":                 "",
		"absent":               "",
	}
	for field, want := range tests {
		if got := rec.Field(field); got != want {
			t.Errorf("Field(%q) = %q, want %q", field, got, want)
		}
	}
}
