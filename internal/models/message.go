package models

// Message is the plain {"message": ...} response body
type Message struct {
	Message string `json:"message"`
}
