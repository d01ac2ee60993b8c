package server

import "github.com/gin-gonic/gin"

// apiResponse is the uniform JSON envelope for every API endpoint.
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondSuccess(c *gin.Context, data interface{}) {
	c.JSON(200, apiResponse{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, apiResponse{Success: false, Message: message})
}
