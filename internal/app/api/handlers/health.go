package handlers

import (
	"net/http"

	"github.com/DallanL/nms-like-n-subscribe/pkg/response"

	"github.com/gin-gonic/gin"
)

// @Summary      Health check
// @Description  Returns service status
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, response.OKT(map[string]string{"status": "ok"}))
}

// @Summary      Service status
// @Description  Legacy status endpoint
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /status [get]
func Status(c *gin.Context) {
	c.JSON(http.StatusOK, response.OKT(map[string]string{"status": "Service is running!"}))
}

func RegisterHealthRoutes(r gin.IRouter) {
	r.GET("/healthz", Healthz)
	r.GET("/status", Status)
}
