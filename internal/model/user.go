package model

import "encoding/json"

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	var w struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	u.ID = w.ID
	if u.ID == "" {
		u.ID = w.MongoID
	}
	u.Name = w.Name
	u.Email = w.Email
	return nil
}

// Pagination is returned by the server next to a page of tasks.
type Pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total,omitempty"`
}
