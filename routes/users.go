package routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventsapi/images"
	"eventsapi/models"
	"eventsapi/utils"
)

// GET /users/get-user-by-username/:username
func (d *deps) getUserByUsername(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	user, err := d.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		d.log.Error().Err(err).Str("username", username).Msg("fetch user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch user"})
		return
	}

	user.AttendingEvents, err = d.attendingEventIDs(username)
	if err != nil {
		d.log.Error().Err(err).Str("username", username).Msg("fetch memberships")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch user"})
		return
	}

	// User's json tags keep the password hash out of the projection
	c.JSON(http.StatusOK, user)
}

// POST /users/create-user
func (d *deps) createUser(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Image    string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and/or password must be a string"})
		return
	}

	u := models.User{Username: req.Username, Password: req.Password}
	if err := d.users.Create(&u); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("User '%s' already exists", req.Username)})
			return
		}
		d.log.Error().Err(err).Str("username", req.Username).Msg("create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to create user"})
		return
	}

	// The record is already committed; an image failure is reported but not
	// rolled back.
	if req.Image != "" {
		if err := d.images.Put(c.Request.Context(), req.Username, req.Image); err != nil {
			d.log.Error().Err(err).Str("username", req.Username).Msg("upload image")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to upload image"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"username": req.Username})
}

// PUT /users/update-user-password
func (d *deps) updateUserPassword(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and/or password must be a string"})
		return
	}

	if err := d.users.UpdatePassword(req.Username, req.Password); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		d.log.Error().Err(err).Str("username", req.Username).Msg("update password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": req.Username})
}

// DELETE /users/delete-user-by-username/:username
//
// Deletes the record only; events, sessions and images are left in place.
func (d *deps) deleteUserByUsername(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	if err := d.users.Delete(username); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		d.log.Error().Err(err).Str("username", username).Msg("delete user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": username})
}

// POST /users/login
func (d *deps) login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and/or password must be a string"})
		return
	}

	_, err := d.users.ValidateCredentials(req.Username, req.Password)
	if err != nil {
		// an unknown user looks the same as a wrong password
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		d.log.Error().Err(err).Str("username", req.Username).Msg("validate credentials")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to log in"})
		return
	}

	token, err := utils.GenerateToken(d.cfg.TokenSecret, req.Username)
	if err != nil {
		d.log.Error().Err(err).Msg("mint token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to log in"})
		return
	}

	// overwrites any live session, revoking its token
	if err := d.sessions.Put(req.Username, token); err != nil {
		d.log.Error().Err(err).Str("username", req.Username).Msg("store session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to log in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": req.Username, "token": token})
}

// POST /users/logout
func (d *deps) logout(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	if err := d.sessions.Delete(req.Username); err != nil {
		d.log.Error().Err(err).Str("username", req.Username).Msg("delete session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to log out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": req.Username})
}

// PUT /users/add-to-created-events
func (d *deps) addToCreatedEvents(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		EventID  string `json:"eventId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and eventId are required"})
		return
	}

	if err := d.users.AddCreatedEvent(req.Username, req.EventID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		d.log.Error().Err(err).Str("username", req.Username).Msg("add created event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": req.Username, "eventId": req.EventID})
}

// PUT /users/add-to-attending-events
func (d *deps) addToAttendingEvents(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		EventID  string `json:"eventId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and eventId are required"})
		return
	}

	if !d.requireUserAndEvent(c, req.Username, req.EventID) {
		return
	}

	if err := d.members.Add(req.Username, req.EventID); err != nil {
		d.log.Error().Err(err).Str("username", req.Username).Msg("add membership")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": req.Username, "eventId": req.EventID})
}

// GET /users/get-image/:username
func (d *deps) getImage(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	dataURI, err := d.images.Get(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		d.log.Error().Err(err).Str("username", username).Msg("fetch image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": username, "image": dataURI})
}

// POST /users/set-image
func (d *deps) setImage(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Image    string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and image are required"})
		return
	}

	if err := d.images.Put(c.Request.Context(), req.Username, req.Image); err != nil {
		if errors.Is(err, images.ErrBadDataURI) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image must be a base64 data URI"})
			return
		}
		d.log.Error().Err(err).Str("username", req.Username).Msg("upload image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to upload image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": req.Username})
}

func (d *deps) attendingEventIDs(username string) ([]string, error) {
	memberships, err := d.members.ListByUser(username)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.EventID)
	}
	return ids, nil
}

// requireUserAndEvent writes the error response and returns false unless both
// referenced records exist.
func (d *deps) requireUserAndEvent(c *gin.Context, username, eventID string) bool {
	if _, err := d.users.GetByUsername(username); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			d.log.Error().Err(err).Str("username", username).Msg("fetch user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch user"})
		}
		return false
	}
	if _, err := d.events.GetByID(eventID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		} else {
			d.log.Error().Err(err).Str("eventId", eventID).Msg("fetch event")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch event"})
		}
		return false
	}
	return true
}
