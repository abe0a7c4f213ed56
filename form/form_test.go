package form

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func userSchema() Schema {
	return Schema{
		Fields: []Field{
			{Name: "username", Rules: []validation.Rule{validation.Required, validation.Length(3, 32)}},
			{Name: "password", Rules: []validation.Rule{validation.Length(8, 128)}, Secret: true},
		},
	}
}

func rangeSchema() Schema {
	return Schema{
		Fields: []Field{
			{Name: "min", Rules: []validation.Rule{validation.Required}},
			{Name: "max", Rules: []validation.Rule{validation.Required}},
		},
		Cross: []CrossRule{
			{
				Fields: []string{"min", "max"},
				Check: func(v Values) error {
					minVal, ok1 := v["min"].(int)
					maxVal, ok2 := v["max"].(int)
					if !ok1 || !ok2 {
						return nil
					}
					if maxVal < minVal {
						return validation.Errors{"max": fmt.Errorf("must not be less than min")}
					}
					return nil
				},
			},
		},
	}
}

func TestSetField_ValidatesSingleField(t *testing.T) {
	f := New(userSchema(), nil)

	f.SetField("username", "ab")
	if errs := f.FieldErrors("username"); len(errs) == 0 {
		t.Errorf("expected a length error for %q", "ab")
	}

	f.SetField("username", "ayse.demir")
	if errs := f.FieldErrors("username"); len(errs) != 0 {
		t.Errorf("unexpected errors after valid value: %v", errs)
	}
}

func TestSetField_RerunsCrossRules(t *testing.T) {
	f := New(rangeSchema(), Values{"min": 1, "max": 10})

	f.SetField("max", 0)
	if errs := f.FieldErrors("max"); len(errs) == 0 {
		t.Errorf("expected cross-rule error when max < min")
	}

	f.SetField("max", 5)
	if errs := f.FieldErrors("max"); len(errs) != 0 {
		t.Errorf("cross-rule error not cleared: %v", errs)
	}
}

func TestIsDirty(t *testing.T) {
	f := New(userSchema(), Values{"username": "ayse"})
	if f.IsDirty() {
		t.Errorf("fresh form reported dirty")
	}

	f.SetField("username", "fatma")
	if !f.IsDirty() {
		t.Errorf("edited form reported clean")
	}

	f.SetField("username", "ayse")
	if f.IsDirty() {
		t.Errorf("form restored to its snapshot reported dirty")
	}
}

func TestReset_SwitchingTargetClearsAllState(t *testing.T) {
	f := New(userSchema(), Values{"username": "ayse", "password": ""})

	// Introduce a validation error while editing entity X.
	f.SetField("username", "x")
	if len(f.Errors()) == 0 {
		t.Fatalf("expected an error before the switch")
	}

	// Switch the dialog to entity Y without submitting.
	target := Values{"username": "mehmet", "password": ""}
	f.Reset(target)

	if len(f.Errors()) != 0 {
		t.Errorf("errors leaked across target switch: %v", f.Errors())
	}
	if !reflect.DeepEqual(f.Values(), target) {
		t.Errorf("values = %v, want %v", f.Values(), target)
	}
	if f.IsDirty() {
		t.Errorf("reset form reported dirty")
	}
}

func TestSubmit_InvalidBlocksCallback(t *testing.T) {
	f := New(userSchema(), Values{"username": ""})

	called := false
	err := f.Submit(func(Values) error {
		called = true
		return nil
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if called {
		t.Errorf("onValid invoked despite validation failure")
	}
	if len(verr.Fields["username"]) == 0 {
		t.Errorf("missing field message: %v", verr.Fields)
	}
}

func TestSubmit_OmitsEmptySecretField(t *testing.T) {
	f := New(userSchema(), Values{"username": "ayse", "password": ""})

	var payload Values
	err := f.Submit(func(v Values) error {
		payload = v
		return nil
	})
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	if _, present := payload["password"]; present {
		t.Errorf("blank secret field must be omitted entirely, payload: %v", payload)
	}
	if payload["username"] != "ayse" {
		t.Errorf("non-secret field missing from payload: %v", payload)
	}
}

func TestSubmit_KeepsProvidedSecretField(t *testing.T) {
	f := New(userSchema(), Values{"username": "ayse", "password": "yeni-sifre-123"})

	var payload Values
	if err := f.Submit(func(v Values) error { payload = v; return nil }); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if payload["password"] != "yeni-sifre-123" {
		t.Errorf("provided secret dropped from payload: %v", payload)
	}
}

func TestSubmit_SubmittingFlagDuringCallback(t *testing.T) {
	f := New(userSchema(), Values{"username": "ayse"})

	if err := f.Submit(func(Values) error {
		if !f.IsSubmitting() {
			t.Errorf("IsSubmitting() false inside the submit callback")
		}
		return nil
	}); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if f.IsSubmitting() {
		t.Errorf("IsSubmitting() still true after completion")
	}
}
