// Package form binds a validation schema to editable field values and
// produces a validated payload on submit. One Form backs one open create or
// edit dialog; it is created when the dialog opens, reset when the dialog
// switches target entities, and discarded when the dialog closes.
package form

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Values is an open entity record: field name to value. Entities across the
// ERP modules share no closed type; validation at the form boundary is what
// makes a record trustworthy downstream.
type Values map[string]any

// Clone returns a shallow copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Field declares validation for one named field.
type Field struct {
	Name  string
	Rules []validation.Rule

	// Secret marks write-only fields such as passwords. On submit an
	// empty secret means "leave unchanged" and the field is omitted from
	// the payload entirely, never sent as an empty string.
	Secret bool
}

// CrossRule validates a relationship between fields, e.g. an end date not
// preceding a start date. Check receives the full value map; returning a
// validation.Errors attributes messages per field, any other error is
// attributed to the first listed field.
type CrossRule struct {
	Fields []string
	Check  func(Values) error
}

// Schema is the full rule set for one entity form.
type Schema struct {
	Fields []Field
	Cross  []CrossRule
}

func (s Schema) field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ValidationError carries per-field messages. It is resolved locally in the
// form and never reaches the network.
type ValidationError struct {
	Fields map[string][]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed for fields: %s", strings.Join(names, ", "))
}

// Form tracks the editable state of one entity dialog.
type Form struct {
	mu         sync.Mutex
	schema     Schema
	values     Values
	initial    Values
	errors     map[string][]string
	submitting bool
}

// New creates a Form seeded with defaults: the entity snapshot for an edit
// dialog, or the blank/template record for a create dialog.
func New(schema Schema, defaults Values) *Form {
	if defaults == nil {
		defaults = Values{}
	}
	return &Form{
		schema:  schema,
		values:  defaults.Clone(),
		initial: defaults.Clone(),
		errors:  map[string][]string{},
	}
}

// SetField updates one value and revalidates that field plus any cross
// rules that reference it.
func (f *Form) SetField(name string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[name] = value

	delete(f.errors, name)
	if field, ok := f.schema.field(name); ok {
		if err := validation.Validate(value, field.Rules...); err != nil {
			f.errors[name] = []string{err.Error()}
		}
	}

	for _, cross := range f.schema.Cross {
		if !containsField(cross.Fields, name) {
			continue
		}
		for _, touched := range cross.Fields {
			f.clearCrossErrorsLocked(touched)
		}
		f.applyCrossLocked(cross)
	}
}

// Reset replaces the form's target entity. Values, errors, and dirtiness
// all restart from the new snapshot; nothing from the previous target may
// leak into the new one.
func (f *Form) Reset(target Values) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if target == nil {
		target = Values{}
	}
	f.values = target.Clone()
	f.initial = target.Clone()
	f.errors = map[string][]string{}
	f.submitting = false
}

// Values returns a copy of the current field values.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values.Clone()
}

// FieldErrors returns the messages recorded against one field.
func (f *Form) FieldErrors(name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.errors[name]...)
}

// Errors returns a copy of all recorded field errors.
func (f *Form) Errors() map[string][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]string, len(f.errors))
	for name, msgs := range f.errors {
		out[name] = append([]string(nil), msgs...)
	}
	return out
}

// IsValid reports whether a full-schema validation currently passes.
func (f *Form) IsValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.validateAllLocked()) == 0
}

// IsDirty reports whether any value differs from the seeded snapshot.
func (f *Form) IsDirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !reflect.DeepEqual(f.values, f.initial)
}

// IsSubmitting reports whether a submit handler is currently running. Views
// disable the triggering control while true.
func (f *Form) IsSubmitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Submit runs full-schema validation. On failure the per-field errors are
// recorded and a *ValidationError returned without invoking onValid. On
// success onValid receives the outgoing payload: a copy of the values with
// empty secret fields omitted.
func (f *Form) Submit(onValid func(Values) error) error {
	f.mu.Lock()
	errs := f.validateAllLocked()
	if len(errs) > 0 {
		f.errors = errs
		f.mu.Unlock()
		return &ValidationError{Fields: copyErrors(errs)}
	}
	f.errors = map[string][]string{}
	payload := f.payloadLocked()
	f.submitting = true
	f.mu.Unlock()

	err := onValid(payload)

	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
	return err
}

// payloadLocked assembles the outgoing record, dropping empty secrets.
func (f *Form) payloadLocked() Values {
	payload := f.values.Clone()
	for _, field := range f.schema.Fields {
		if !field.Secret {
			continue
		}
		if isEmptyValue(payload[field.Name]) {
			delete(payload, field.Name)
		}
	}
	return payload
}

// validateAllLocked runs every field rule and cross rule over the current
// values and returns the collected messages.
func (f *Form) validateAllLocked() map[string][]string {
	errs := map[string][]string{}
	for _, field := range f.schema.Fields {
		if err := validation.Validate(f.values[field.Name], field.Rules...); err != nil {
			errs[field.Name] = append(errs[field.Name], err.Error())
		}
	}
	for _, cross := range f.schema.Cross {
		mergeCrossError(errs, cross, cross.Check(f.values))
	}
	return errs
}

// applyCrossLocked re-runs one cross rule and records its messages.
func (f *Form) applyCrossLocked(cross CrossRule) {
	mergeCrossError(f.errors, cross, cross.Check(f.values))
}

// clearCrossErrorsLocked drops stale cross-rule messages for a field while
// keeping its own field-rule message, which SetField just recomputed.
func (f *Form) clearCrossErrorsLocked(name string) {
	if field, ok := f.schema.field(name); ok {
		if err := validation.Validate(f.values[name], field.Rules...); err != nil {
			f.errors[name] = []string{err.Error()}
			return
		}
	}
	delete(f.errors, name)
}

func mergeCrossError(into map[string][]string, cross CrossRule, err error) {
	if err == nil {
		return
	}
	var fieldErrs validation.Errors
	if ok := asValidationErrors(err, &fieldErrs); ok {
		for name, ferr := range fieldErrs {
			into[name] = append(into[name], ferr.Error())
		}
		return
	}
	if len(cross.Fields) > 0 {
		name := cross.Fields[0]
		into[name] = append(into[name], err.Error())
	}
}

func asValidationErrors(err error, out *validation.Errors) bool {
	if verrs, ok := err.(validation.Errors); ok {
		*out = verrs
		return true
	}
	return false
}

func containsField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

func copyErrors(errs map[string][]string) map[string][]string {
	out := make(map[string][]string, len(errs))
	for name, msgs := range errs {
		out[name] = append([]string(nil), msgs...)
	}
	return out
}

// isEmptyValue treats nil and blank strings as "not provided" for the
// secret-field convention.
func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
