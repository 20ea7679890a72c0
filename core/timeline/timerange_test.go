package timeline

import "testing"

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"18:30", "18:30:00"},
		{"18:30:15", "18:30:15"},
		{"00:00", "00:00:00"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeTime(c.in); got != c.want {
			t.Errorf("NormalizeTime(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestContainsInclusiveBounds(t *testing.T) {
	cases := []struct {
		tm, start, end string
		want           bool
	}{
		{"18:00:00", "18:00:00", "18:30:00", true},  // lower bound
		{"18:30:00", "18:00:00", "18:30:00", true},  // upper bound
		{"18:30", "18:00:00", "18:30:00", true},     // HH:MM normalized
		{"18:30:01", "18:00:00", "18:30:00", false}, // just past the end
		{"17:59:59", "18:00:00", "18:30:00", false},
		{"18:15:42", "18:00:00", "18:30:00", true},
		{"12:00:00", "10:00", "14:00", true}, // HH:MM bounds
	}
	for _, c := range cases {
		if got := Contains(c.tm, c.start, c.end); got != c.want {
			t.Errorf("Contains(%q, %q, %q) = %v, want %v", c.tm, c.start, c.end, got, c.want)
		}
	}
}
