package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/config"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/dto"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/repository"
)

type AuthService interface {
	Registro(ctx context.Context, req dto.RegistroRequest) (*dto.LoginResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	ActualizarPreferencias(ctx context.Context, perfilID uuid.UUID, req dto.PreferenciasRequest) (*dto.PerfilResponse, error)
}

type authService struct {
	repo repository.PerfilRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.PerfilRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

// Registro creates an obrero profile and logs it in. The role is fixed here:
// there is no path from registration to admin.
func (s *authService) Registro(ctx context.Context, req dto.RegistroRequest) (*dto.LoginResponse, error) {
	if existente, err := s.repo.FindByDNI(ctx, req.DNI); err == nil && existente != nil {
		return nil, errors.New("ya existe un usuario registrado con ese DNI")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	perfil := &model.Perfil{
		DNI:          req.DNI,
		Nombres:      req.Nombres,
		Apellidos:    req.Apellidos,
		Email:        req.Email,
		PasswordHash: string(hash),
		Rol:          model.RolObrero,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, perfil); err != nil {
		return nil, errors.New("no se pudo registrar el usuario")
	}

	return s.respuestaLogin(perfil)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	perfil, err := s.repo.FindByDNI(ctx, req.DNI)
	if err != nil {
		return nil, errors.New("credenciales invalidas")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(perfil.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("credenciales invalidas")
	}

	return s.respuestaLogin(perfil)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token invalido o expirado")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("claims invalidos")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("token mal formado")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("token mal formado")
	}

	perfil, err := s.repo.FindByID(ctx, uid)
	if err != nil || !perfil.Activo {
		return nil, errors.New("usuario no encontrado o inactivo")
	}

	return s.respuestaLogin(perfil)
}

// ActualizarPreferencias persists per-profile settings (sound opt-in).
func (s *authService) ActualizarPreferencias(ctx context.Context, perfilID uuid.UUID, req dto.PreferenciasRequest) (*dto.PerfilResponse, error) {
	perfil, err := s.repo.FindByID(ctx, perfilID)
	if err != nil {
		return nil, errors.New("perfil no encontrado")
	}
	if req.SonidoAlertas != nil {
		perfil.SonidoAlertas = *req.SonidoAlertas
	}
	if err := s.repo.Update(ctx, perfil); err != nil {
		return nil, err
	}
	resp := perfilResponse(perfil)
	return &resp, nil
}

func (s *authService) respuestaLogin(perfil *model.Perfil) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(perfil, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(perfil, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         perfilResponse(perfil),
	}, nil
}

func (s *authService) generateToken(perfil *model.Perfil, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": perfil.ID.String(),
		"dni":     perfil.DNI,
		"rol":     perfil.Rol,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func perfilResponse(p *model.Perfil) dto.PerfilResponse {
	return dto.PerfilResponse{
		ID:            p.ID.String(),
		DNI:           p.DNI,
		Nombres:       p.Nombres,
		Apellidos:     p.Apellidos,
		Email:         p.Email,
		Rol:           p.Rol,
		SonidoAlertas: p.SonidoAlertas,
	}
}
