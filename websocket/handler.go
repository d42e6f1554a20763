package websocket

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	custommw "github.com/gig-portal/eqrf_backend/middleware"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the connection and registers the client with the
// hub. The token travels as a query parameter because browsers cannot set
// headers on WebSocket upgrades.
func HandleWebSocket(c echo.Context, hub *Hub) error {
	tokenString := c.QueryParam("token")
	userID, err := userIDFromToken(tokenString)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Please provide valid credentials")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
	}

	hub.register <- client

	conn.WriteJSON(Notification{
		Type:    "connected",
		Message: "WebSocket connection established",
		UserID:  userID,
	})

	// Reader loop only exists to detect disconnects; clients never push.
	go func() {
		defer func() {
			hub.unregister <- client
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()

	return nil
}

func userIDFromToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", errors.New("no token provided")
	}

	token, err := jwt.ParseWithClaims(tokenString, &custommw.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(custommw.GetJWTSecret()), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(*custommw.JwtCustomClaims)
	if !ok || claims.UserID == "" {
		return "", errors.New("invalid token claims")
	}

	return claims.UserID, nil
}
