package route

// Route names of the built-in table.
const (
	NameRoot      = "root"
	NameLogin     = DefaultLogin
	NamePatient   = DefaultPatientHome
	NameDoctor    = DefaultDoctorHome
	NameDashboard = "dashboard"
	NameNotFound  = "not-found"
)

// Default returns the application's built-in route table: a public login
// page, the patient and doctor areas fenced by role, and the administrative
// dashboard open to any authenticated role. The root path and every unmatched
// path redirect to login. Roles other than doctor and patient land on the
// dashboard.
func Default() *Table {
	return MustNewTable(DefaultDefinition())
}

// DefaultDefinition returns the definition behind [Default] so callers can
// extend it before building their own table.
func DefaultDefinition() Definition {
	return Definition{
		Routes: []Descriptor{
			{Name: NameRoot, Path: "/", Redirect: NameLogin},
			{Name: NameLogin, Path: "/login"},
			{Name: NamePatient, Path: "/patient", RequiresAuth: true, AllowedRoles: []Role{RolePatient}},
			{Name: NameDoctor, Path: "/doctor", RequiresAuth: true, AllowedRoles: []Role{RoleDoctor}},
			{Name: NameDashboard, Path: "/dashboard", RequiresAuth: true},
			{Name: NameNotFound, Redirect: NameLogin},
		},
		Login: NameLogin,
		Homes: map[Role]string{
			RoleDoctor:  NameDoctor,
			RolePatient: NamePatient,
		},
		DefaultHome: NameDashboard,
		CatchAll:    NameNotFound,
	}
}
