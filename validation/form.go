package validation

// Form tracks values, touched state and error messages for a declared set
// of fields. Field-level validation fires on change only once the field
// has been touched, which avoids flashing errors while the user is still
// typing; blur always validates and marks the field touched.
type Form struct {
	rules   map[string][]Rule
	values  map[string]string
	touched map[string]bool
	errors  map[string]string
}

// NewForm creates a form for the given field -> ordered rule list mapping
func NewForm(rules map[string][]Rule) *Form {
	return &Form{
		rules:   rules,
		values:  make(map[string]string),
		touched: make(map[string]bool),
		errors:  make(map[string]string),
	}
}

// SetValue records a changed value. The field is re-validated only if it
// was already touched.
func (f *Form) SetValue(name, value string) {
	f.values[name] = value
	if f.touched[name] {
		f.validateField(name)
	}
}

// Blur marks the field touched and validates it
func (f *Form) Blur(name string) {
	f.touched[name] = true
	f.validateField(name)
}

// Value returns the current value of a field
func (f *Form) Value(name string) string {
	return f.values[name]
}

// Error returns the current error message for a field, or "" when valid
func (f *Form) Error(name string) string {
	return f.errors[name]
}

// Touched reports whether the field has been touched
func (f *Form) Touched(name string) bool {
	return f.touched[name]
}

// ValidateAll evaluates every declared field regardless of touched state
// and returns overall validity plus the complete error map. Fields that
// pass are omitted from the map.
func (f *Form) ValidateAll() (bool, map[string]string) {
	errs := make(map[string]string)
	for name, rules := range f.rules {
		if msg := ValidateValue(f.values[name], rules); msg != "" {
			errs[name] = msg
		}
	}
	f.errors = errs
	return len(errs) == 0, errs
}

// Submit marks all declared fields touched, runs whole-form validation
// and invokes fn only when the form is valid. It returns the validity
// so callers can branch without treating "invalid" as a failure; the
// error is whatever fn returned.
func (f *Form) Submit(fn func(values map[string]string) error) (bool, error) {
	for name := range f.rules {
		f.touched[name] = true
	}
	valid, _ := f.ValidateAll()
	if !valid {
		return false, nil
	}
	if fn == nil {
		return true, nil
	}
	values := make(map[string]string, len(f.values))
	for k, v := range f.values {
		values[k] = v
	}
	return true, fn(values)
}

// Reset clears values, touched state and errors
func (f *Form) Reset() {
	f.values = make(map[string]string)
	f.touched = make(map[string]bool)
	f.errors = make(map[string]string)
}

func (f *Form) validateField(name string) {
	rules, ok := f.rules[name]
	if !ok {
		return
	}
	if msg := ValidateValue(f.values[name], rules); msg != "" {
		f.errors[name] = msg
	} else {
		delete(f.errors, name)
	}
}
