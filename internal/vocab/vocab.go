// Package vocab defines the backend entities the admin console works with.
//
// The console never mutates categories or words; they are decoded from the
// backend as-is and only filtered locally.
package vocab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is a backend identifier. The backend's id type is opaque to the client,
// so both JSON numbers and strings are accepted and kept verbatim.
type ID string

// UnmarshalJSON accepts a JSON number, string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits an id that is a valid JSON number literal as a number and
// everything else, including "007" and "+5", as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.isNumberLiteral() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) isNumberLiteral() bool {
	s := string(id)
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	if c := s[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}
	return json.Valid([]byte(s))
}

func (id ID) String() string { return string(id) }

// Category is a named group of words.
type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// CategoryDetail is a category with its words, as returned by the detail endpoint.
type CategoryDetail struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Words []Word `json:"words"`
}

// Word belongs to exactly one category.
type Word struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Published   bool   `json:"published"`
}

// RoleAdministrator is the only role an invite can currently grant.
const RoleAdministrator = "Administrator"

// Roles lists the roles offered on the invite form.
var Roles = []string{RoleAdministrator}

// InviteRequest invites a new user to the admin console. It is built per
// submission and never stored.
type InviteRequest struct {
	Name    string `json:"name" validate:"required"`
	Surname string `json:"surname" validate:"required"`
	Email   string `json:"email" validate:"required,simple_email"`
	Role    string `json:"role" validate:"required"`
}
