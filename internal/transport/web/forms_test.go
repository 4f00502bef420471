package web

import (
	"strings"
	"testing"
)

func TestValidateFormJoinsViolations(t *testing.T) {
	err := ValidateForm(RegisterForm{Username: "ab", Email: "not-an-email", Password: "short"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		"username must be at least 3 characters",
		"email must be a valid email address",
		"password must be at least 8 characters",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
	if !strings.Contains(msg, ", ") {
		t.Fatalf("expected violations joined with commas: %q", msg)
	}
}

func TestValidateFormAccepts(t *testing.T) {
	cases := []struct {
		name string
		form any
	}{
		{"register", RegisterForm{Username: "colt", Email: "colt@example.com", Password: "correct horse"}},
		{"login", LoginForm{Username: "colt", Password: "pw"}},
		{"campground", CampgroundForm{Title: "Misty Hollow", Location: "Bend, Oregon", Price: 25}},
		{"free campground", CampgroundForm{Title: "Free Spot", Location: "Moab, Utah", Price: 0}},
		{"review", ReviewForm{Rating: 5, Body: "Great spot."}},
	}
	for _, tc := range cases {
		if err := ValidateForm(tc.form); err != nil {
			t.Fatalf("%s: unexpected validation error: %v", tc.name, err)
		}
	}
}

func TestValidateFormRejects(t *testing.T) {
	cases := []struct {
		name string
		form any
		want string
	}{
		{"missing title", CampgroundForm{Location: "Bend, Oregon"}, "title is required"},
		{"negative price", CampgroundForm{Title: "X", Location: "Y", Price: -1}, "price must be 0 or greater"},
		{"rating too high", ReviewForm{Rating: 6, Body: "ok"}, "rating must be at most 5"},
		{"rating missing", ReviewForm{Body: "ok"}, "rating is required"},
		{"empty review body", ReviewForm{Rating: 3}, "body is required"},
		{"blank login", LoginForm{}, "username is required"},
	}
	for _, tc := range cases {
		err := ValidateForm(tc.form)
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected %q in %q", tc.name, tc.want, err.Error())
		}
	}
}
