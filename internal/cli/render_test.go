package cli

import (
	"reflect"
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"json", []string{"json"}},
		{"svg,png", []string{"svg", "png"}},
		{" SVG , Json ", []string{"svg", "json"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := validateFormats([]string{"svg", "png", "pdf", "json", "dot"}); err != nil {
		t.Errorf("valid formats rejected: %v", err)
	}
	if err := validateFormats([]string{"bmp"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input  string
		output string
		format string
		multi  bool
		want   string
	}{
		{"infra.yaml", "", "svg", false, "infra.svg"},
		{"infra.yaml", "out.svg", "svg", false, "out.svg"},
		{"infra.yaml", "", "json", true, "infra.json"},
		{"infra.yaml", "export.svg", "png", true, "export.png"},
	}
	for _, tt := range tests {
		got := outputPath(tt.input, tt.output, tt.format, tt.multi)
		if got != tt.want {
			t.Errorf("outputPath(%q,%q,%q,%v) = %q, want %q",
				tt.input, tt.output, tt.format, tt.multi, got, tt.want)
		}
	}
}
