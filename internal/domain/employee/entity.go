package employee

// Employee is a worker known to the central station. Login doubles as the
// identifier typed at a worker station; Password is the shared secret fed
// into the login challenge digest, so it is stored as entered.
type Employee struct {
	Login    string
	Password string
	Name     string
	Active   bool
}
