package domain

// Session carries the caller identity into every service call. It is
// built from verified JWT claims by the auth middleware; a zero session
// means no valid credential was presented.
type Session struct {
	UserID uint
	Email  string
	Role   string
}

func (s Session) Valid() bool   { return s.UserID != 0 }
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }
