package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hubblehq/hubble/pkg/db/pagination"
)

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

func respondList[T any](c *gin.Context, page pagination.Page[T]) {
	c.JSON(http.StatusOK, page)
}
