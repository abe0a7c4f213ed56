package masterdata

import (
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/dokumatek/erpkit/form"
	"github.com/dokumatek/erpkit/view"
)

// codePattern matches generated entity codes such as "KMS-PM-1234".
var codePattern = regexp.MustCompile(`^[A-Z]{2,4}(-[A-Z]{2,4})*-\d{4}$`)

const planDateLayout = "2006-01-02"

// FabricTypeSchema validates fabric type records.
func FabricTypeSchema() form.Schema {
	return form.Schema{
		Fields: []form.Field{
			{Name: "name", Rules: []validation.Rule{validation.Required, validation.Length(2, 64)}},
			{Name: "code", Rules: []validation.Rule{validation.Required, validation.Match(codePattern)}},
			{Name: "description", Rules: []validation.Rule{validation.Length(0, 255)}},
		},
	}
}

// UserSchema validates operator records. On a create form the password is
// required; on an edit form it is optional and, being a secret field, an
// empty value means "leave unchanged" and is omitted from the payload.
func UserSchema(isNew bool) form.Schema {
	passwordRules := []validation.Rule{validation.Length(8, 128)}
	if isNew {
		passwordRules = append([]validation.Rule{validation.Required}, passwordRules...)
	}
	return form.Schema{
		Fields: []form.Field{
			{Name: "username", Rules: []validation.Rule{validation.Required, validation.Length(3, 32)}},
			{Name: "email", Rules: []validation.Rule{validation.Required, is.Email}},
			{Name: "password", Rules: passwordRules, Secret: true},
			{Name: "departmentId", Rules: []validation.Rule{validation.Required}},
			{Name: "roleId", Rules: []validation.Rule{validation.Required}},
		},
	}
}

// DyeRecipeLineSchema validates one chemical line of a dye recipe.
func DyeRecipeLineSchema() form.Schema {
	return form.Schema{
		Fields: []form.Field{
			{Name: "chemical", Rules: []validation.Rule{validation.Required, validation.Length(2, 64)}},
			{Name: "amountGrams", Rules: []validation.Rule{validation.Required, validation.Min(0.0), validation.Max(100000.0)}},
			{Name: "sequence", Rules: []validation.Rule{validation.Required, validation.Min(1.0)}},
		},
	}
}

// ProductionPlanSchema validates planning records, including the
// cross-field rule that a plan cannot end before it starts.
func ProductionPlanSchema() form.Schema {
	dateRules := []validation.Rule{validation.Required, validation.Date(planDateLayout)}
	return form.Schema{
		Fields: []form.Field{
			{Name: "title", Rules: []validation.Rule{validation.Required, validation.Length(2, 128)}},
			{Name: "startDate", Rules: dateRules},
			{Name: "endDate", Rules: dateRules},
		},
		Cross: []form.CrossRule{
			{
				Fields: []string{"startDate", "endDate"},
				Check:  planDatesOrdered,
			},
		},
	}
}

// planDatesOrdered rejects plans whose end date precedes their start date.
// Unparseable dates are left to the per-field rules.
func planDatesOrdered(values form.Values) error {
	start, ok1 := values["startDate"].(string)
	end, ok2 := values["endDate"].(string)
	if !ok1 || !ok2 {
		return nil
	}
	startAt, err1 := time.Parse(planDateLayout, start)
	endAt, err2 := time.Parse(planDateLayout, end)
	if err1 != nil || err2 != nil {
		return nil
	}
	if endAt.Before(startAt) {
		return validation.Errors{
			"endDate": fmt.Errorf("must not be before the start date"),
		}
	}
	return nil
}

// FormValues seeds an edit form from an entity row.
func FormValues(rec view.Record) form.Values {
	values := make(form.Values, len(rec))
	for k, v := range rec {
		values[k] = v
	}
	return values
}
