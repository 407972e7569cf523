package schemas

import (
	"strings"
	"testing"
)

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"valid", `{"email":"ann@example.com","password":"Secret1","full_name":"Ann Lee"}`, true},
		{"missing fields", `{"email":"ann@example.com"}`, false},
		{"bad email", `{"email":"not-an-email","password":"Secret1","full_name":"Ann"}`, false},
		{"short password", `{"email":"a@b.co","password":"Ab1","full_name":"Ann"}`, false},
		{"no uppercase", `{"email":"a@b.co","password":"secret1","full_name":"Ann"}`, false},
		{"no digit", `{"email":"a@b.co","password":"Secrets","full_name":"Ann"}`, false},
		{"markup in name", `{"email":"a@b.co","password":"Secret1","full_name":"<b>Ann</b>"}`, false},
		{"single-char name", `{"email":"a@b.co","password":"Secret1","full_name":"A"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := Validate(Register, []byte(tt.body))
			if tt.valid && problems != nil {
				t.Errorf("expected valid, got %v", problems)
			}
			if !tt.valid && problems == nil {
				t.Error("expected validation problems")
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	if problems := Validate(Login, []byte(`{"email":"a@b.co","password":"x"}`)); problems != nil {
		t.Errorf("expected valid login, got %v", problems)
	}
	if problems := Validate(Login, []byte(`{"email":"a@b.co","password":""}`)); problems == nil {
		t.Error("empty password must fail")
	}
}

func TestValidateBet(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"valid", `{"event_id":3,"selected_team":"Liverpool","amount":50}`, true},
		{"zero amount", `{"event_id":3,"selected_team":"Liverpool","amount":0}`, false},
		{"over max amount", `{"event_id":3,"selected_team":"Liverpool","amount":10001}`, false},
		{"zero event id", `{"event_id":0,"selected_team":"Liverpool","amount":10}`, false},
		{"fractional event id", `{"event_id":1.5,"selected_team":"Liverpool","amount":10}`, false},
		{"empty team", `{"event_id":3,"selected_team":"","amount":10}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := Validate(Bet, []byte(tt.body))
			if tt.valid && problems != nil {
				t.Errorf("expected valid, got %v", problems)
			}
			if !tt.valid && problems == nil {
				t.Error("expected validation problems")
			}
		})
	}
}

func TestValidateReportsFieldPaths(t *testing.T) {
	problems := Validate(Bet, []byte(`{"event_id":0,"selected_team":"X","amount":10}`))
	if len(problems) == 0 {
		t.Fatal("expected problems")
	}
	found := false
	for _, p := range problems {
		if strings.HasPrefix(p, "event_id:") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a problem prefixed with the field path, got %v", problems)
	}
}

func TestValidateMalformedInput(t *testing.T) {
	if problems := Validate(Bet, []byte(`{not json`)); problems == nil {
		t.Error("malformed JSON must fail")
	}
	if problems := Validate("nope", []byte(`{}`)); problems == nil {
		t.Error("unknown schema must fail")
	}
}
