package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"  admin@example.org  ", true},

		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{"User Name <user@example.com>", false},
		{"user @example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidOTP(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"123456", true},
		{" 000000 ", true},
		{"12345", false},
		{"1234567", false},
		{"12a456", false},
		{"", false},
		{"１２３４５６", false}, // full-width digits
	}
	for _, tt := range tests {
		if got := IsValidOTP(tt.code); got != tt.want {
			t.Errorf("IsValidOTP(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		// Valid URLs
		{"http://example.com", true},
		{"https://example.com", true},
		{"https://api.example.com/api", true},
		{"http://localhost:8080", true},

		// Valid with whitespace (trimmed)
		{"  https://example.com  ", true},

		// Invalid URLs
		{"", false},
		{"   ", false},
		{"ftp://example.com", false},
		{"mailto:user@example.com", false},
		{"example.com", false},
		{"//example.com", false},
		{"not a url", false},
		{"file:///path/to/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsValidHTTPURL(tt.url); got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type input struct {
		Email string `validate:"required,email" label:"Email address"`
		Code  string `validate:"required,otp" label:"Code"`
		Color string `validate:"omitempty,oneof=info dark" label:"Sidenav color"`
	}

	tests := []struct {
		name      string
		in        input
		wantFirst string
	}{
		{"valid", input{Email: "ada@x.io", Code: "123456"}, ""},
		{"missing email", input{Code: "123456"}, "Email address is required."},
		{"bad email", input{Email: "nope", Code: "123456"}, "A valid email address is required."},
		{"bad code", input{Email: "ada@x.io", Code: "12"}, "Code must be the 6-digit code from the email."},
		{"bad enum", input{Email: "ada@x.io", Code: "123456", Color: "pink"}, "Sidenav color must be one of: info, dark."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.in)
			if res.HasErrors() != (tt.wantFirst != "") {
				t.Fatalf("HasErrors = %v (%s)", res.HasErrors(), res.All())
			}
			if res.First() != tt.wantFirst {
				t.Errorf("First() = %q, want %q", res.First(), tt.wantFirst)
			}
		})
	}
}

func TestResult_All(t *testing.T) {
	r := &Result{Errors: []FieldError{{Message: "Error 1"}, {Message: "Error 2"}}}
	if r.All() != "Error 1; Error 2" {
		t.Errorf("All() = %q", r.All())
	}
	if (&Result{}).First() != "" {
		t.Error("First() of empty result should be empty")
	}
}
