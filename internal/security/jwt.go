package security

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

const (
	RoleAdmin = "admin"
	RoleOwner = "owner"
)

// Claims : access-токен оператора, выданный внешним IdP
type Claims struct {
	UserUUID string `json:"user_uuid"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// JWTService : только проверка токенов, выпуском занимается IdP
type JWTService struct {
	secretKey []byte
	issuer    string
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{secretKey: []byte(cfg.SecretKey), issuer: cfg.Issuer}
}

func (service *JWTService) ValidateJWT(jwtTokenStr string) (*Claims, error) {
	var claims = &Claims{}

	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()})}
	if service.issuer != "" {
		options = append(options, jwt.WithIssuer(service.issuer))
	}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return service.secretKey, nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("невалидный токен: %w", err)
	}
	if !jwtToken.Valid || claims.UserUUID == "" {
		return nil, fmt.Errorf("невалидный токен")
	}

	return claims, nil
}

func JWTMiddleware(jwtService *JWTService) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authorizationHeader := request.Header.Get("Authorization")
			if !strings.HasPrefix(authorizationHeader, "Bearer ") {
				util.HandleError(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateJWT(strings.TrimPrefix(authorizationHeader, "Bearer "))
			if err != nil {
				zap.L().Debug("[JWTMiddleware] отклонён токен", zap.Error(err))
				util.HandleError(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			req := request.WithContext(context.WithValue(request.Context(), UserContextKey, claims))
			next.ServeHTTP(writer, req)
		})
	}
}

// RequireAdmin : пропускает только роль admin. Ставится после JWTMiddleware
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims, err := GetClaimsFromContext(request.Context())
		if err != nil || !claims.IsAdmin() {
			util.HandleError(writer, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(writer, request)
	})
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return claims, nil
}
