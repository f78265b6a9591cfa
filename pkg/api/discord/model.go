package discord

import "fmt"

type User struct {
	ID         string
	Username   string
	GlobalName string
	Email      string
	Avatar     string
}

type Member struct {
	User  User
	Nick  string
	Roles []string
}

type Guild struct {
	ID      string
	OwnerID string
}

// APIError is the error object returned by Discord with a non-2xx status.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord api error: status %d, code %d: %s", e.Status, e.Code, e.Message)
}
