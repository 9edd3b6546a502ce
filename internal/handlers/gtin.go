package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/catalog-import/internal/matching"
	"github.com/kosarica/catalog-import/internal/types"
)

// ValidateGTINRequest lists identifiers to check
type ValidateGTINRequest struct {
	Codes []string `json:"codes" binding:"required,min=1,max=1000" jsonschema:"required,minItems=1,maxItems=1000"`
}

// ValidateGTINResponse holds one result per requested code, in order
type ValidateGTINResponse struct {
	Results []GTINResult `json:"results" jsonschema:"required"`
}

// GTINResult pairs a submitted code with its validation outcome
type GTINResult struct {
	Code string `json:"code"`
	types.IdentifierValidationResult
}

// ValidateGTIN checks trade identifiers without touching the catalog
// @Summary Validate GTINs
// @Description Checks length, digits and check digit of GTIN-8/12/13/14 codes and returns the 14-digit normalized form
// @Tags gtin
// @Accept json
// @Produce json
// @Param request body ValidateGTINRequest true "Codes to validate"
// @Success 200 {object} ValidateGTINResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Router /gtin/validate [post]
func ValidateGTIN(c *gin.Context) {
	var req ValidateGTINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := make([]GTINResult, len(req.Codes))
	for i, code := range req.Codes {
		results[i] = GTINResult{Code: code, IdentifierValidationResult: matching.ValidateGTIN(code)}
	}
	c.JSON(http.StatusOK, ValidateGTINResponse{Results: results})
}
