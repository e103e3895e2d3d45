package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	subsvc "github.com/DallanL/nms-like-n-subscribe/internal/app/service/subscription"
	"github.com/DallanL/nms-like-n-subscribe/internal/platform/nms"
	"github.com/DallanL/nms-like-n-subscribe/pkg/response"
)

// @Summary      Create subscription
// @Description  Trades user credentials for a token, creates the subscription on the NMS platform and persists it locally.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body subscription.CreateRequest true "Subscription creation request"
// @Success      200  {object}  handlers.RespCreateSubscription
// @Router       /create-subscription [post]
func ApiCreateSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := svc.Create(c.Request.Context(), &req)
		if err != nil {
			switch {
			case errors.Is(err, subsvc.ErrInvalidModel):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			case errors.Is(err, nms.ErrAuthenticationFailed):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeUnauthorized, err.Error()))
			default:
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, svc *subsvc.Service) {
	r.POST("/create-subscription", ApiCreateSubscription(svc))
}
