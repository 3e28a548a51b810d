package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"nimbusdrive/middleware"
	"nimbusdrive/utils"
)

// requireIdentity reads the verified caller email, aborting with 401 when the
// request somehow reached a protected handler without one.
func requireIdentity(c *gin.Context) (string, bool) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return "", false
	}
	return identity, true
}

// pathObjectID parses the named path parameter as an ObjectID, aborting with
// 400 on malformed input.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// optionalObjectID parses an optional hex id from a request body field.
// Empty means absent.
func optionalObjectID(raw *string) (*primitive.ObjectID, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(*raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}
