package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are JWT claims for registered users (hosts and logged-in players)
type UserClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// PlayerClaims are JWT claims for anonymous players, scoped to one session slug
type PlayerClaims struct {
	SessionURL string `json:"sessionUrl"`
	PlayerID   string `json:"playerId"`
	Nickname   string `json:"nickname"`
	jwt.RegisteredClaims
}

// Identity is the resolved result of either token kind.
type Identity struct {
	ID         string // userId or anonymous playerId
	Nickname   string
	SessionURL string // non-empty only for session-scoped player tokens
	Registered bool
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// JoinRequest is the anonymous player join body
type JoinRequest struct {
	Nickname string `json:"nickname"`
}

// JoinResponse carries the session-scoped player token
type JoinResponse struct {
	PlayerID string   `json:"playerId"`
	Token    string   `json:"token"`
	Session  *Session `json:"session,omitempty"`
}
