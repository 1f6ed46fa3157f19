package format

import (
	"testing"
	"time"
)

// expectedCUITValid recomputes the checksum independently of ValidCUIT
func expectedCUITValid(digits string) bool {
	weights := []int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}
	sum := 0
	for i := 0; i < 10; i++ {
		sum += int(digits[i]-'0') * weights[i]
	}
	r := sum % 11
	check := 11 - r
	if r < 2 {
		check = r
	}
	return check == int(digits[10]-'0')
}

func TestValidCUIT(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"20123456786", true},   // sum 148, rem 5, check 6
		{"20-12345678-6", true}, // separators ignored
		{"20123456780", false},  // wrong check digit
		{"03000000001", true},   // rem 1 keeps the remainder
		{"03000000000", false},
		{"00000000000", true},   // rem 0
		{"30000000007", true},   // rem 4, check 7
		{"2012345678", false},   // 10 digits
		{"201234567861", false}, // 12 digits
		{"", false},
		{"ab-cdefghij-k", false},
	}

	for _, tc := range cases {
		if got := ValidCUIT(tc.in); got != tc.want {
			t.Errorf("ValidCUIT(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidCUIT_AgreesWithChecksumRule(t *testing.T) {
	base := []string{"2012345678", "2700000000", "3071234567", "2399999999", "0300000000"}
	for _, b := range base {
		for last := 0; last <= 9; last++ {
			in := b + string(rune('0'+last))
			if got, want := ValidCUIT(in), expectedCUITValid(in); got != want {
				t.Errorf("ValidCUIT(%q) = %v, checksum rule says %v", in, got, want)
			}
		}
	}
}

func TestCUIT(t *testing.T) {
	cases := map[string]string{
		"20123456786":     "20-12345678-6",
		"201234":          "20-1234",
		"":                "",
		"2":               "2",
		"20":              "20",
		"201":             "20-1",
		"2012345678":      "20-12345678",
		"201234567861234": "20-12345678-6",
		"20.123.456-786":  "20-12345678-6",
	}
	for in, want := range cases {
		if got := CUIT(in); got != want {
			t.Errorf("CUIT(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCUIT_Idempotent(t *testing.T) {
	for _, in := range []string{"20123456786", "201234", "2", "", "20-12345678-6"} {
		once := CUIT(in)
		if twice := CUIT(once); twice != once {
			t.Errorf("CUIT not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestDateInput(t *testing.T) {
	cases := map[string]string{
		"01011990":    "01/01/1990",
		"0101":        "01/01",
		"01":          "01",
		"010":         "01/0",
		"01011990123": "01/01/1990",
		"01/01/1990":  "01/01/1990",
		"":            "",
		"dd01mm01":    "01/01",
	}
	for in, want := range cases {
		if got := DateInput(in); got != want {
			t.Errorf("DateInput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDateInput_Idempotent(t *testing.T) {
	for _, in := range []string{"01011990", "0101", "010", ""} {
		once := DateInput(in)
		if twice := DateInput(once); twice != once {
			t.Errorf("DateInput not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestValidDateInputAt(t *testing.T) {
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		in   string
		want bool
	}{
		{"15/06/1990", true},
		{"31/02/2024", false},
		{"29/02/2024", true},
		{"29/02/2023", false},
		{"01/01/2030", false},
		{"18/10/2026", true},
		{"19/10/2026", false},
		{"1/1/1990", false},
		{"1990-06-15", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidDateInputAt(tc.in, now); got != tc.want {
			t.Errorf("ValidDateInputAt(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidDateInput_FutureRejected(t *testing.T) {
	future := time.Now().AddDate(1, 0, 0).Format(DisplayLayout)
	if ValidDateInput(future) {
		t.Fatalf("expected %s to be rejected as a future date", future)
	}
	if !ValidDateInput("15/06/1990") {
		t.Fatalf("expected 15/06/1990 to be valid")
	}
}

func TestParseDateInput(t *testing.T) {
	got, err := ParseDateInput("05/03/2024")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("ParseDateInput = %v, want %v", got, want)
	}

	if _, err := ParseDateInput("31/04/2024"); err == nil {
		t.Fatalf("expected error for 31/04/2024")
	}
}

func TestValidEmail(t *testing.T) {
	cases := map[string]bool{
		"a@b.com":            true,
		"ana.perez@x.com.ar": true,
		"a@b":                false,
		"a b@c.com":          false,
		"a@@b.com":           false,
		"@b.com":             false,
		"":                   false,
	}
	for in, want := range cases {
		if got := ValidEmail(in); got != want {
			t.Errorf("ValidEmail(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDateDisplay(t *testing.T) {
	cases := map[string]string{
		"2024-03-05T00:00:00Z":        "05/03/2024",
		"2024-03-05T00:00:00":         "05/03/2024",
		"2024-03-05T10:20:30.1234567": "05/03/2024",
		"2024-03-05":                  "05/03/2024",
		"":                            "",
		"not-a-date":                  "not-a-date",
		"05/03/2024":                  "05/03/2024",
	}
	for in, want := range cases {
		if got := DateDisplay(in); got != want {
			t.Errorf("DateDisplay(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDateTime(t *testing.T) {
	if got := DateTime(nil); got != NotAvailable {
		t.Fatalf("DateTime(nil) = %q, want %q", got, NotAvailable)
	}

	ts := time.Date(2024, time.March, 5, 14, 30, 9, 0, time.Local)
	if got, want := DateTime(&ts), "05/03/2024, 14:30:09"; got != want {
		t.Fatalf("DateTime = %q, want %q", got, want)
	}
}
