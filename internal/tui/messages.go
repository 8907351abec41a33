package tui

// NavigateTo switches the auth-flow router to another page.
type NavigateTo struct {
	Page string
}

// AuthResult finishes a login or register attempt. A nil Err from the
// login page ends the auth flow; the register page navigates back to the
// menu with a notice instead.
type AuthResult struct {
	Err        error
	Login      string
	Registered bool
}

// RegisterSuccessNotice is shown on the menu after a successful
// registration.
type RegisterSuccessNotice struct {
	Login string
}
