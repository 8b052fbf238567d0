package money

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"100.00", "100.00", false},
		{"0.01", "0.01", false},
		{"33", "33.00", false},
		{"12.5", "12.50", false},
		{"-4.20", "-4.20", false},
		{"10.123", "", true}, // too many decimal places
		{"abc", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && m.String() != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, m, tt.want)
			}
		})
	}
}

func TestArithmetic(t *testing.T) {
	a := MustParse("10.50")
	b := MustParse("0.75")

	if got := a.Add(b).String(); got != "11.25" {
		t.Errorf("Add = %s, want 11.25", got)
	}
	if got := a.Sub(b).String(); got != "9.75" {
		t.Errorf("Sub = %s, want 9.75", got)
	}
	if got := b.Sub(a).String(); got != "-9.75" {
		t.Errorf("Sub = %s, want -9.75", got)
	}
	if !MustParse("50").Equal(MustParse("50.00")) {
		t.Error("50 and 50.00 should be equal")
	}
	if Zero.IsPositive() || !MustParse("0.01").IsPositive() {
		t.Error("IsPositive misclassified")
	}
}

func TestSplitEven(t *testing.T) {
	tests := []struct {
		name  string
		total string
		n     int
		want  []string
	}{
		{"even division", "100.00", 4, []string{"25.00", "25.00", "25.00", "25.00"}},
		{"remainder to first", "100.00", 3, []string{"33.34", "33.33", "33.33"}},
		{"two leftover cents", "0.05", 3, []string{"0.02", "0.02", "0.01"}},
		{"single participant", "7.77", 1, []string{"7.77"}},
		{"sub-cent shares", "0.02", 3, []string{"0.01", "0.01", "0.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := MustParse(tt.total)
			shares, err := total.SplitEven(tt.n)
			if err != nil {
				t.Fatalf("SplitEven failed: %v", err)
			}
			if len(shares) != tt.n {
				t.Fatalf("got %d shares, want %d", len(shares), tt.n)
			}
			for i, want := range tt.want {
				if shares[i].String() != want {
					t.Errorf("share[%d] = %s, want %s", i, shares[i], want)
				}
			}
			if !Sum(shares).Equal(total) {
				t.Errorf("shares sum to %s, want %s", Sum(shares), total)
			}
		})
	}

	if _, err := MustParse("10.00").SplitEven(0); err == nil {
		t.Error("expected error splitting among zero participants")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	m := MustParse("42.10")
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"42.10"` {
		t.Errorf("Marshal = %s, want \"42.10\"", data)
	}

	var back Money
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Equal(m) {
		t.Errorf("round trip = %s, want %s", back, m)
	}

	// Bare numbers are accepted too.
	if err := json.Unmarshal([]byte(`19.99`), &back); err != nil {
		t.Fatalf("Unmarshal number failed: %v", err)
	}
	if back.String() != "19.99" {
		t.Errorf("Unmarshal number = %s, want 19.99", back)
	}
}

func TestScan(t *testing.T) {
	var m Money
	if err := m.Scan("12.34"); err != nil || m.String() != "12.34" {
		t.Errorf("Scan string = %s, err %v", m, err)
	}
	if err := m.Scan([]byte("0.99")); err != nil || m.String() != "0.99" {
		t.Errorf("Scan bytes = %s, err %v", m, err)
	}
	if err := m.Scan(nil); err != nil || !m.IsZero() {
		t.Errorf("Scan nil = %s, err %v", m, err)
	}
	if err := m.Scan(3.14); err == nil {
		t.Error("expected error scanning float64")
	}
	if err := m.Scan(int64(42)); err == nil {
		t.Error("expected error scanning int64")
	}
}
