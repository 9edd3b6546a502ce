package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterImportRoutes registers the import endpoints on an authenticated group
func RegisterImportRoutes(r *gin.RouterGroup, h *ImportHandler) {
	r.POST("/suppliers/:supplierId/imports", h.SubmitImport)
	r.POST("/suppliers/:supplierId/imports/sync", h.ImportSync)
	r.GET("/suppliers/:supplierId/imports", h.ListImports)
	r.GET("/imports/:importId", h.GetImport)
	r.POST("/gtin/validate", ValidateGTIN)
}

// RegisterDocsRoutes serves the swagger UI and doc.json under /docs
func RegisterDocsRoutes(r *gin.Engine) {
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
