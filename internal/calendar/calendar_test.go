package calendar

import (
	"testing"
	"time"

	"github.com/hpungsan/yada/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Date
		wantErr bool
	}{
		{input: "2024-01-01", want: "2024-01-01"},
		{input: "  2024-02-29 ", want: "2024-02-29"},
		{input: "2023-02-29", wantErr: true},
		{input: "01/02/2024", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrInvalidRequest) {
					t.Errorf("Parse(%q) error = %v, want INVALID_REQUEST", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBeforeAndAddDays(t *testing.T) {
	d := MustParse("2024-02-28")

	if next := d.AddDays(1); next != "2024-02-29" {
		t.Errorf("AddDays(1) = %q, want 2024-02-29", next)
	}
	if next := d.AddDays(2); next != "2024-03-01" {
		t.Errorf("AddDays(2) = %q, want 2024-03-01", next)
	}
	if prev := MustParse("2024-01-01").AddDays(-1); prev != "2023-12-31" {
		t.Errorf("AddDays(-1) = %q, want 2023-12-31", prev)
	}
	if !d.Before(d.AddDays(1)) {
		t.Error("date should be before the next day")
	}
	if d.Before(d) {
		t.Error("date should not be before itself")
	}
}

func TestToday(t *testing.T) {
	fixed := func() time.Time { return time.Date(2024, 5, 17, 23, 59, 0, 0, time.UTC) }
	if got := Today(fixed); got != "2024-05-17" {
		t.Errorf("Today = %q, want 2024-05-17", got)
	}
}
