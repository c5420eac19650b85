package otpver

import (
	"reflect"
	"testing"
)

func TestIsValid(t *testing.T) {
	valid := []string{"27.2", "26.1.2", "22.0", "v25.0"}
	for _, v := range valid {
		if !IsValid(v) {
			t.Errorf("IsValid(%q) = false, want true", v)
		}
	}
	invalid := []string{"", "OTP-27", "27.x", "latest"}
	for _, v := range invalid {
		if IsValid(v) {
			t.Errorf("IsValid(%q) = true, want false", v)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"27.2", "27.2", 0},
		{"26.1", "27.0", -1},
		{"27.10", "27.9", 1},
		{"27.0", "27.0.1", -1},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestBranch(t *testing.T) {
	if got, want := Branch("27.2"), "grisp/OTP-27.2"; got != want {
		t.Errorf("Branch(27.2) = %q, want %q", got, want)
	}
}

func TestFromBranch(t *testing.T) {
	tests := []struct {
		branch string
		want   string
		ok     bool
	}{
		{"grisp/OTP-27.2", "27.2", true},
		{"grisp/OTP-22.0", "22.0", true},
		{"grisp/OTP-foo", "", false},
		{"master", "", false},
		{"OTP-27.2", "", false},
	}
	for _, tt := range tests {
		got, ok := FromBranch(tt.branch)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FromBranch(%q) = (%q, %v), want (%q, %v)", tt.branch, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSort(t *testing.T) {
	versions := []string{"22.0", "27.2", "25.1", "27.10"}
	Sort(versions)
	want := []string{"27.10", "27.2", "25.1", "22.0"}
	if !reflect.DeepEqual(versions, want) {
		t.Errorf("Sort() = %v, want %v", versions, want)
	}
}
