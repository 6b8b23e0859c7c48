package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// capture redirects output to buffers for the duration of the test
func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	t.Cleanup(func() { SetOutput(nil, nil) })
	return &out, &errOut
}

type product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestPrintJSON_Struct(t *testing.T) {
	out, _ := capture(t)
	if err := PrintJSON(product{ID: 1, Name: "Kettle", Price: 25}); err != nil {
		t.Fatalf("PrintJSON error: %v", err)
	}
	var got product
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out.String())
	}
	if got.Name != "Kettle" {
		t.Errorf("unexpected decoded value %+v", got)
	}
	if !strings.Contains(out.String(), "\n  \"name\"") {
		t.Errorf("expected indented output, got %q", out.String())
	}
}

func TestPrintYAML_RespectsJsonTags(t *testing.T) {
	out, _ := capture(t)
	if err := PrintYAML(product{ID: 1, Name: "Kettle", Price: 25.5}); err != nil {
		t.Fatalf("PrintYAML error: %v", err)
	}
	for _, want := range []string{"id: 1", "name: Kettle", "price: 25.5"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("yaml output %q missing %q", out.String(), want)
		}
	}
	if strings.Contains(out.String(), "Name:") {
		t.Errorf("yaml output used Go field names: %q", out.String())
	}
}

func TestPrintFormatted(t *testing.T) {
	tests := []struct {
		format    string
		wantTable bool
		contains  string
	}{
		{"json", false, "\"name\": \"Kettle\""},
		{"yaml", false, "name: Kettle"},
		{"table", true, ""},
		{"", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, _ := capture(t)
			tableCalled := false
			err := PrintFormatted(tt.format, product{Name: "Kettle"}, func() error {
				tableCalled = true
				return nil
			})
			if err != nil {
				t.Fatalf("PrintFormatted error: %v", err)
			}
			if tableCalled != tt.wantTable {
				t.Errorf("table called = %v, want %v", tableCalled, tt.wantTable)
			}
			if !strings.Contains(out.String(), tt.contains) {
				t.Errorf("output %q missing %q", out.String(), tt.contains)
			}
		})
	}
}

func TestPrintTable_Alignment(t *testing.T) {
	out, _ := capture(t)
	PrintTable([]string{"ID", "NAME"}, [][]string{{"1", "Kettle"}, {"22", "Rake"}})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out.String())
	}
	col := strings.Index(lines[0], "NAME")
	if strings.Index(lines[1], "Kettle") != col || strings.Index(lines[2], "Rake") != col {
		t.Errorf("columns not aligned:\n%s", out.String())
	}
}

func TestPrintError(t *testing.T) {
	out, errOut := capture(t)
	PrintError(errors.New("boom"))
	if errOut.String() != "Error: boom\n" {
		t.Errorf("unexpected stderr %q", errOut.String())
	}
	if out.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", out.String())
	}
}
