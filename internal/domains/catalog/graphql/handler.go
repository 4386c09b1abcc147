package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	graphqlgo "github.com/graph-gophers/graphql-go"

	"library-backend/internal/shared/response"
)

// Request is a GraphQL-over-HTTP request body.
type Request struct {
	Query         string                 `json:"query" form:"query"`
	OperationName string                 `json:"operationName" form:"operationName"`
	Variables     map[string]interface{} `json:"variables" form:"-"`
}

// Handler serves the catalog schema over HTTP.
type Handler struct {
	schema *graphqlgo.Schema
}

func NewHandler(schema *graphqlgo.Schema) *Handler {
	return &Handler{schema: schema}
}

// Serve godoc
// @Summary Execute a GraphQL query or mutation
// @Accept json
// @Produce json
// @Router /graphql [post]
func (h *Handler) Serve(c *gin.Context) {
	var req Request

	switch c.Request.Method {
	case http.MethodGet:
		if err := c.ShouldBindQuery(&req); err != nil {
			response.BadRequest(c, "invalid query parameters")
			return
		}
		if raw := c.Query("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				response.BadRequest(c, "variables must be a JSON object")
				return
			}
		}
	default:
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "request body must be a JSON GraphQL request")
			return
		}
	}

	if req.Query == "" {
		response.BadRequest(c, "query is required")
		return
	}

	result := h.schema.Exec(c.Request.Context(), req.Query, req.OperationName, req.Variables)

	c.JSON(http.StatusOK, result)
}
