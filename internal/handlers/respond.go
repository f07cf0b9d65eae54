package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"projmon/internal/models"
	"projmon/internal/workflow"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError maps the workflow error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		incomplete  *workflow.IncompleteError
		validation  *workflow.ValidationError
		invariant   *workflow.InvariantViolationError
		notAuth     *workflow.NotAuthorizedError
		transition  *workflow.InvalidTransitionError
		transferred *workflow.AlreadyTransferredError
		locked      *workflow.AlreadyLockedError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &incomplete):
		status = http.StatusBadRequest
	case errors.As(err, &validation), errors.As(err, &invariant):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &notAuth):
		status = http.StatusForbidden
	case errors.As(err, &transition), errors.As(err, &transferred), errors.As(err, &locked):
		status = http.StatusConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		status = http.StatusNotFound
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// currentUser pulls the user injected by middleware.InjectUser.
func currentUser(c *gin.Context) (models.User, bool) {
	uVal, ok := c.Get("CurrentUser")
	if !ok {
		return models.User{}, false
	}
	user, ok := uVal.(models.User)
	return user, ok
}

func currentActor(c *gin.Context) workflow.Actor {
	user, _ := currentUser(c)
	return workflow.Actor{ID: user.ID, Admin: user.Role == models.RoleAdmin}
}

// parseID reads the :id route parameter; 0 means unparseable and falls
// through to a not-found from the storage layer.
func parseID(c *gin.Context) uint {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
