// Package handler exposes the services over gin.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"donation-settle-api/internal/constant"
	"donation-settle-api/internal/middleware"
	"donation-settle-api/internal/utils"
)

func respondOK(c *gin.Context, data interface{}) {
	resp := utils.Success(data)
	resp.TraceID = middleware.TraceID(c)
	c.JSON(http.StatusOK, resp)
}

// respondError maps err to its HTTP status; internal details only reach the log.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	code := constant.CodeOf(err)
	status := constant.HTTPStatus(code)
	entry := log.WithFields(logrus.Fields{
		"trace_id": middleware.TraceID(c),
		"path":     c.FullPath(),
		"actor":    middleware.ActorID(c),
		"code":     code,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
		_ = c.Error(err)
	} else {
		entry.Info("request rejected")
	}
	c.JSON(status, utils.FromError(err, middleware.TraceID(c)))
}

func bindJSON(c *gin.Context, log *logrus.Logger, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, log, constant.Newf(constant.CodeInvalidParams, "%s", utils.ValidationMsg(err)))
		return false
	}
	return true
}

func pathID(c *gin.Context, log *logrus.Logger, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, log, constant.Newf(constant.CodeInvalidParams, "%s must be a positive integer", name))
		return 0, false
	}
	return id, true
}
