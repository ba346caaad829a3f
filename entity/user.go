package entity

import (
	"github.com/wallet-backend/wallet-backend/database/query"
)

// User maps the user table. Every Get joins the parent person row, so the
// person fields hydrate alongside the user's own.
type User struct {
	Person
	UserId       *string
	Username     *string
	Password     *string
	UserPersonId *string
	UserCreation *string
}

func NewUser() *User {
	u := &User{}
	joins := []query.WBJoin{
		{
			Table:  "person",
			Type:   "INNER",
			Filter: query.WBFilterGroup{{Key: "user_person_id", Column: "person_id"}},
		},
	}
	u.define("user", "user_id", joins, u.fieldDefs(), u.Person.fieldDefs())
	return u
}

func (u *User) fieldDefs() []WBField {
	return []WBField{
		StringField("user_id", &u.UserId),
		StringField("username", &u.Username),
		StringField("password", &u.Password),
		StringField("user_person_id", &u.UserPersonId),
		StringField("user_creation", &u.UserCreation),
	}
}

// GetByAuthFields hydrates the user whose username or e-mail matches the
// given sign-in value.
func (u *User) GetByAuthFields(value string) bool {
	return u.Get(query.WBFilterGroup{
		{Key: "username", Value: value},
		{Key: "email", Value: value, Relation: "OR"},
	})
}

// GetByUsername hydrates the user matching a username.
func (u *User) GetByUsername(username string) bool {
	return u.Get(query.WBFilterGroup{{Key: "username", Value: username}})
}

// GetUserId returns the user identifier, empty when unset.
func (u *User) GetUserId() string {
	if u.UserId == nil {
		return ""
	}
	return *u.UserId
}

// GetPassword returns the stored password hash, empty when unset.
func (u *User) GetPassword() string {
	if u.Password == nil {
		return ""
	}
	return *u.Password
}

// GetEmail returns the joined person's e-mail, empty when unset.
func (u *User) GetEmail() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
