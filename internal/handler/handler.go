package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/practice-admin/internal/model"
)

// Context keys set by middleware.
const (
	ContextRequestID = "request_id"
	ContextClaims    = "claims"
	ContextProfile   = "profile"
	ContextToken     = "token"
)

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func CurrentClaims(c *gin.Context) *model.TokenClaims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*model.TokenClaims); ok {
			return claims
		}
	}
	return nil
}

func CurrentProfile(c *gin.Context) *model.Profile {
	if v, ok := c.Get(ContextProfile); ok {
		if p, ok := v.(*model.Profile); ok {
			return p
		}
	}
	return nil
}
