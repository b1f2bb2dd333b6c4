package dto

// RegisterReq represents the request body for the /auth/register endpoint.
type RegisterReq struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required,min=3,max=64"`
	Password  string `json:"password" binding:"required,min=8"`
}

// RegisterRes is returned with 201 Created.
type RegisterRes struct {
	Message string `json:"message"`
	UserID  uint   `json:"user_id"`
}

// MessageRes is a generic message body.
type MessageRes struct {
	Message string `json:"message"`
}
