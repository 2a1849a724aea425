package dto

// LoginRequest — workers and admins log in with DNI + password.
type LoginRequest struct {
	DNI      string `json:"dni" binding:"required" validate:"required,min=8,max=15"`
	Password string `json:"password" binding:"required" validate:"required,min=6"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	User         PerfilResponse  `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RegistroRequest creates an obrero profile. The role is not a client input:
// admins are seeded, never self-promoted.
type RegistroRequest struct {
	DNI       string  `json:"dni" validate:"required,min=8,max=15"`
	Nombres   string  `json:"nombres" validate:"required"`
	Apellidos string  `json:"apellidos" validate:"required"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Password  string  `json:"password" validate:"required,min=6"`
}

type PerfilResponse struct {
	ID            string  `json:"id"`
	DNI           string  `json:"dni"`
	Nombres       string  `json:"nombres"`
	Apellidos     string  `json:"apellidos"`
	Email         *string `json:"email,omitempty"`
	Rol           string  `json:"rol"`
	SonidoAlertas bool    `json:"sonido_alertas"`
}

// PreferenciasRequest toggles per-profile settings (today: the sound opt-in).
type PreferenciasRequest struct {
	SonidoAlertas *bool `json:"sonido_alertas"`
}
