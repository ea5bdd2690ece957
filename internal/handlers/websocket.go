package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rwandashareride/backend/internal/services"
)

// WebSocketHandler upgrades the connection and registers the authenticated
// user with the hub.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		role := c.GetString("userRole")

		services.HandleWebSocket(hub, c.Writer, c.Request, userID, role)
	}
}
