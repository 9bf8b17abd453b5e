package hr

import (
	"encoding/json"
	"testing"
)

func TestOptionMarshalNone(t *testing.T) {
	data, err := json.Marshal(None[UserProfile]())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "null" {
		t.Fatalf("expected null, got %s", data)
	}
}

func TestOptionMarshalSome(t *testing.T) {
	profile := UserProfile{Name: "Jane Doe", Role: RoleHRStaff}
	data, err := json.Marshal(Some(profile))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out Option[UserProfile]
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := out.Get()
	if !ok {
		t.Fatal("expected value to be present")
	}
	if got.Name != "Jane Doe" || got.Role != RoleHRStaff {
		t.Fatalf("unexpected profile %+v", got)
	}
}

func TestOptionUnmarshalNull(t *testing.T) {
	var out Option[UserProfile]
	if err := json.Unmarshal([]byte("null"), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.IsSome() {
		t.Fatal("expected absent value")
	}
}

func TestOptionNestedField(t *testing.T) {
	var profile UserProfile
	if err := json.Unmarshal([]byte(`{"name":"Jane","role":"employee","employeeId":null}`), &profile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.EmployeeID.IsSome() {
		t.Fatal("expected employee id to be absent")
	}

	if err := json.Unmarshal([]byte(`{"name":"Jane","role":"employee","employeeId":"EMP-0007"}`), &profile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id, ok := profile.EmployeeID.Get()
	if !ok || id != "EMP-0007" {
		t.Fatalf("expected EMP-0007, got %q present=%v", id, ok)
	}
}

func TestOptionOrZero(t *testing.T) {
	if got := None[string]().OrZero(); got != "" {
		t.Fatalf("expected zero value, got %q", got)
	}
	if got := Some("x").OrZero(); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
}
