package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestForm() *Form {
	return NewForm(map[string][]Rule{
		"customer_name": {
			Required("Customer name is required"),
			MinLength(2, "Customer name is too short"),
		},
		"contact_number": {
			Required("Contact number is required"),
			Phone("Contact number is invalid"),
		},
	})
}

func TestFormSetValueBeforeTouch(t *testing.T) {
	form := newTestForm()

	// Typing into an untouched field must not flash an error
	form.SetValue("customer_name", "")
	assert.Empty(t, form.Error("customer_name"))
	assert.False(t, form.Touched("customer_name"))
}

func TestFormBlurValidates(t *testing.T) {
	form := newTestForm()

	form.Blur("customer_name")
	assert.True(t, form.Touched("customer_name"))
	assert.Equal(t, "Customer name is required", form.Error("customer_name"))

	// After blur the field is live: edits re-validate immediately
	form.SetValue("customer_name", "A")
	assert.Equal(t, "Customer name is too short", form.Error("customer_name"))

	form.SetValue("customer_name", "Asha")
	assert.Empty(t, form.Error("customer_name"))
}

func TestFormValidateAll(t *testing.T) {
	form := newTestForm()
	form.SetValue("customer_name", "Asha")

	valid, errs := form.ValidateAll()
	assert.False(t, valid)
	assert.Len(t, errs, 1)
	assert.Equal(t, "Contact number is required", errs["contact_number"])
	assert.NotContains(t, errs, "customer_name", "passing fields are omitted")

	form.SetValue("contact_number", "9876543210")
	valid, errs = form.ValidateAll()
	assert.True(t, valid)
	assert.Empty(t, errs)
}

func TestFormSubmitInvalid(t *testing.T) {
	form := newTestForm()

	called := false
	valid, err := form.Submit(func(map[string]string) error {
		called = true
		return nil
	})

	assert.False(t, valid)
	assert.NoError(t, err, "an invalid form is not a failure")
	assert.False(t, called, "fn must not run for an invalid form")
	assert.True(t, form.Touched("customer_name"), "submit touches every field")
	assert.True(t, form.Touched("contact_number"))
	assert.NotEmpty(t, form.Error("customer_name"))
}

func TestFormSubmitValid(t *testing.T) {
	form := newTestForm()
	form.SetValue("customer_name", "Asha")
	form.SetValue("contact_number", "9876543210")

	var got map[string]string
	valid, err := form.Submit(func(values map[string]string) error {
		got = values
		return nil
	})

	assert.True(t, valid)
	assert.NoError(t, err)
	assert.Equal(t, "Asha", got["customer_name"])
}

func TestFormSubmitPropagatesError(t *testing.T) {
	form := newTestForm()
	form.SetValue("customer_name", "Asha")
	form.SetValue("contact_number", "9876543210")

	wantErr := errors.New("save failed")
	valid, err := form.Submit(func(map[string]string) error {
		return wantErr
	})

	assert.True(t, valid)
	assert.ErrorIs(t, err, wantErr)
}

func TestFormReset(t *testing.T) {
	form := newTestForm()
	form.Blur("customer_name")
	form.SetValue("customer_name", "Asha")

	form.Reset()

	assert.Empty(t, form.Value("customer_name"))
	assert.False(t, form.Touched("customer_name"))
	assert.Empty(t, form.Error("customer_name"))
}
