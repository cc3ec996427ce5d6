package user

import "time"

type User struct {
	ID           int      `db:"id" json:"id"`
	Name         string   `db:"name" json:"name"`
	Email        string   `db:"email" json:"email"`
	PasswordHash string   `db:"password_hash" json:"-"`
	Role         string   `db:"role" json:"role"`
	Phone        *string  `db:"phone" json:"phone,omitempty"`
	BirthDate    *string  `db:"birth_date" json:"birth_date,omitempty"` // YYYY-MM-DD
	BirthTime    *string  `db:"birth_time" json:"birth_time,omitempty"` // HH:MM
	BirthLat     *float64 `db:"birth_lat" json:"birth_lat,omitempty"`
	BirthLon     *float64 `db:"birth_lon" json:"birth_lon,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required" validate:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" binding:"required,min=8" validate:"required,min=8"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type UpdateProfileRequest struct {
	Name      *string  `json:"name"`
	Phone     *string  `json:"phone"`
	BirthDate *string  `json:"birth_date"`
	BirthTime *string  `json:"birth_time"`
	BirthLat  *float64 `json:"birth_lat"`
	BirthLon  *float64 `json:"birth_lon"`
}
