package types

import "github.com/99designs/gqlgen/graphql"

// User is a person who owns todos.
type User struct {
	ID    string  `json:"id" yaml:"id"`       // Assigned by the store on creation.
	Name  string  `json:"name" yaml:"name"`   // Required.
	Email string  `json:"email" yaml:"email"` // Required; uniqueness is not enforced.
	Role  *string `json:"role" yaml:"role"`   // Optional; nil when absent.
}

// Clone returns a copy of the user that shares no memory with u.
func (u User) Clone() User {
	u.Role = cloneString(u.Role)
	return u
}

// NewUser carries the fields accepted by Store.CreateUser.
type NewUser struct {
	Name  string
	Email string
	Role  *string
}

// Build returns the User described by n with the given id.
func (n NewUser) Build(id string) User {
	return User{ID: id, Name: n.Name, Email: n.Email, Role: cloneString(n.Role)}
}

// UserPatch is a shallow merge applied by Store.UpdateUser. Fields that are
// not set keep their current value. Setting Role to nil clears it.
type UserPatch struct {
	Name  graphql.Omittable[string]
	Email graphql.Omittable[string]
	Role  graphql.Omittable[*string]
}

// Apply merges the set fields of p into u.
func (p UserPatch) Apply(u *User) {
	if v, ok := p.Name.ValueOK(); ok {
		u.Name = v
	}
	if v, ok := p.Email.ValueOK(); ok {
		u.Email = v
	}
	if v, ok := p.Role.ValueOK(); ok {
		u.Role = cloneString(v)
	}
}
