package auth

import "errors"

type RegisterDTO struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginDTO struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

var (
	errEmailTaken    = errors.New("email already registered")
	errUsernameTaken = errors.New("username already taken")
	errInvalidLogin  = errors.New("invalid email or password")
)
