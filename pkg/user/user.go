package user

// Access describes what a user is allowed to do beyond editing their own claims.
type Access struct {
	Examine       bool
	ApproveTravel bool
	Admin         bool
}

type User struct {
	Id     int
	Uid    string
	Name   string
	Email  string
	Access Access
}
