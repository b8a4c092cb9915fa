package auth

// Form is the state of the login/signup dialog. Exactly one mode is active;
// changing mode always starts from empty fields.
type Form struct {
	Open   bool             `json:"open"`
	Mode   Mode             `json:"mode"`
	Fields Credentials      `json:"-"`
	Error  *ValidationError `json:"error,omitempty"`
}

func NewForm() Form {
	return Form{Mode: ModeLogin}
}

func (f *Form) Show(mode Mode) {
	f.reset(mode)
	f.Open = true
}

// Switch changes mode and clears fields and errors.
func (f *Form) Switch(mode Mode) {
	f.reset(mode)
}

func (f *Form) Close() {
	f.reset(f.Mode)
	f.Open = false
}

// Fail records a validation error and keeps the submitted fields.
func (f *Form) Fail(creds Credentials, err *ValidationError) {
	f.Fields = creds
	f.Error = err
}

func (f *Form) reset(mode Mode) {
	if mode == "" {
		mode = ModeLogin
	}
	f.Mode = mode
	f.Fields = Credentials{}
	f.Error = nil
}
