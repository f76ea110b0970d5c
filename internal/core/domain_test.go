package core

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid day", input: "2024-05-01", wantErr: false},
		{name: "leap day", input: "2024-02-29", wantErr: false},
		{name: "not a leap year", input: "2023-02-29", wantErr: true},
		{name: "missing zero padding", input: "2024-5-1", wantErr: true},
		{name: "garbage", input: "yesterday", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDay(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDay(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestDay_Prev(t *testing.T) {
	tests := []struct {
		name string
		day  Day
		want Day
	}{
		{name: "mid month", day: "2024-05-03", want: "2024-05-02"},
		{name: "month boundary", day: "2024-05-01", want: "2024-04-30"},
		{name: "year boundary", day: "2024-01-01", want: "2023-12-31"},
		{name: "after leap day", day: "2024-03-01", want: "2024-02-29"},
		{name: "malformed", day: "not-a-day", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.day.Prev(); got != tt.want {
				t.Errorf("Day(%q).Prev() = %q, want %q", tt.day, got, tt.want)
			}
		})
	}
}

func TestDay_InMonth(t *testing.T) {
	if !Day("2024-05-15").InMonth(2024, 5) {
		t.Error("2024-05-15 should be in 2024-05")
	}
	if Day("2024-05-15").InMonth(2024, 6) {
		t.Error("2024-05-15 should not be in 2024-06")
	}
	if Day("bogus").InMonth(2024, 5) {
		t.Error("malformed day should never match a month")
	}
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"abc", "player_1", "ABCdef123456789"}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("ValidateUsername(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{"ab", "sixteen_chars_xx", "has space", "dash-ed", "", "名前"}
	for _, u := range invalid {
		if err := ValidateUsername(u); err == nil {
			t.Errorf("ValidateUsername(%q) = nil, want error", u)
		}
	}
}

func TestValidatePIN(t *testing.T) {
	if err := ValidatePIN("123456"); err != nil {
		t.Errorf("ValidatePIN(123456) = %v, want nil", err)
	}
	for _, pin := range []string{"12345", "1234567", "12345a", "", "12 456"} {
		if err := ValidatePIN(pin); err == nil {
			t.Errorf("ValidatePIN(%q) = nil, want error", pin)
		}
	}
}

func TestResources_SubAdd(t *testing.T) {
	a := Resources{Gold: 130, HeartPoints: 10, HighlightCoins: 5}
	b := Resources{Gold: 100, HeartPoints: 25, HighlightCoins: 5}

	diff := a.Sub(b)
	if diff.Gold != 30 || diff.HeartPoints != -15 || diff.HighlightCoins != 0 {
		t.Errorf("Sub = %+v, want gold 30, heart -15, coins 0", diff)
	}

	sum := diff.Add(b)
	if sum != a {
		t.Errorf("Sub then Add should round-trip, got %+v want %+v", sum, a)
	}
}

func TestUserRecord_Clone(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := NewUserRecord("player_1", now)
	rec.Records["2024-05-01"] = &Snapshot{Resources: Resources{Gold: 100}, Note: "first"}

	cp := rec.Clone()
	cp.Records["2024-05-01"].Gold = 999
	cp.Records["2024-05-02"] = &Snapshot{}

	if rec.Records["2024-05-01"].Gold != 100 {
		t.Error("mutating the clone changed the original snapshot")
	}
	if len(rec.Records) != 1 {
		t.Error("mutating the clone changed the original record set")
	}
}
