// controllers/auth_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/gig-portal/eqrf_backend/middleware"
	"github.com/gig-portal/eqrf_backend/models"
	"github.com/gig-portal/eqrf_backend/repositories"
	"github.com/gig-portal/eqrf_backend/utils"
)

type AuthController struct {
	users repositories.UserStore
	logs  repositories.LogStore
	redis *redis.Client
}

func NewAuthController(users repositories.UserStore, logs repositories.LogStore, rdb *redis.Client) *AuthController {
	return &AuthController{users: users, logs: logs, redis: rdb}
}

// Login authenticates a user and returns a token pair.
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Username and password are required",
		})
	}

	if utils.IsLoginBlocked(ac.redis, req.Username) {
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:  http.StatusTooManyRequests,
			Message: "Too many failed login attempts, try again later",
		})
	}

	user, err := ac.users.FindByUsername(ctx, req.Username)
	if err != nil {
		// Burn an attempt even for unknown usernames so they cannot be
		// enumerated by timing the throttle.
		utils.RecordFailedLogin(ac.redis, req.Username)
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid username or password",
		})
	}

	if !user.IsActive {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User account is inactive",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		if attemptErr := utils.RecordFailedLogin(ac.redis, req.Username); attemptErr == utils.ErrTooManyAttempts {
			return c.JSON(http.StatusTooManyRequests, models.Response{
				Status:  http.StatusTooManyRequests,
				Message: "Too many failed login attempts, try again later",
			})
		}
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid username or password",
		})
	}

	utils.ClearLoginAttempts(ac.redis, req.Username)

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Username, user.FullName, user.Role)
	if err != nil {
		log.Printf("Failed to generate token for %s: %v", user.Username, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	now := time.Now()
	if err := ac.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Printf("Failed to update last login for %s: %v", user.Username, err)
	}
	user.LastLogin = &now
	user.Password = ""

	ac.appendLog(ctx, *user, "Login", "User logged in", c.RealIP())

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: models.LoginData{
			Token:        token,
			RefreshToken: refreshToken,
			User:         *user,
		},
	})
}

// Logout invalidates the caller's token.
func (ac *AuthController) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	authHeader := c.Request().Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "No token provided",
		})
	}

	claims := middleware.GetUserFromToken(c)
	expiry := time.Now().Add(12 * time.Hour)
	if claims != nil && claims.ExpiresAt > 0 {
		expiry = time.Unix(claims.ExpiresAt, 0)
	}
	middleware.BlacklistToken(tokenString, expiry)

	if claims != nil {
		if user, err := ac.users.FindByID(ctx, claims.UserID); err == nil {
			ac.appendLog(ctx, *user, "Logout", "User logged out", c.RealIP())
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logout successful",
	})
}

// ValidateSession checks whether the presented token still identifies an
// active session. The frontend calls this on reload before trusting a stored
// token.
func (ac *AuthController) ValidateSession(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	authHeader := c.Request().Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		tokenString = ""
	}

	result, err := utils.ValidateToken(ctx, tokenString, ac.users)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to validate token",
		})
	}

	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnauthorized
	}
	return c.JSON(status, models.Response{
		Status:  status,
		Message: result.Message,
		Data:    result,
	})
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func (ac *AuthController) RefreshToken(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Refresh token is required",
		})
	}

	token, err := jwt.ParseWithClaims(req.RefreshToken, &middleware.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(middleware.GetJWTSecret()), nil
	})
	if err != nil || !token.Valid {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid refresh token",
		})
	}

	claims, ok := token.Claims.(*middleware.JwtCustomClaims)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid refresh token",
		})
	}

	user, err := ac.users.FindByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found or inactive",
		})
	}

	newToken, newRefresh, err := middleware.GenerateJWT(user.ID.Hex(), user.Username, user.FullName, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token refreshed",
		Data: models.LoginData{
			Token:        newToken,
			RefreshToken: newRefresh,
			User:         *user,
		},
	})
}

func (ac *AuthController) appendLog(ctx context.Context, user models.User, action, details, ip string) {
	entry := models.SystemLog{
		Timestamp: time.Now(),
		UserID:    user.ID.Hex(),
		UserName:  user.FullName,
		UserRole:  user.Role,
		Action:    action,
		Details:   details,
		IPAddress: ip,
	}
	if err := ac.logs.Append(ctx, entry); err != nil {
		log.Printf("Failed to append audit log: %v", err)
	}
}
