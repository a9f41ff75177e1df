package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidLogin(t *testing.T) {
	valid := []string{"alice", "jan.kowalski", "op-7", "x1"}
	invalid := []string{"", "Alice", "jan kowalski", ".alice", "-alice", "alice!"}
	for _, login := range valid {
		if !IsValidLogin(login) {
			t.Errorf("IsValidLogin(%q) = false, want true", login)
		}
	}
	for _, login := range invalid {
		if IsValidLogin(login) {
			t.Errorf("IsValidLogin(%q) = true, want false", login)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"active", "finished", "canceled"}
	if !IsInSlice("finished", slice) {
		t.Errorf("IsInSlice(finished) = false, want true")
	}
	if IsInSlice("paused", slice) {
		t.Errorf("IsInSlice(paused) = true, want false")
	}
}
