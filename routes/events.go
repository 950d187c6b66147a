package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eventsapi/models"
)

// withAttendees joins the event against the memberships table so every event
// response carries the derived attendee list and count.
func (d *deps) withAttendees(e *models.Event) error {
	attendees, err := d.members.UsernamesByEvent(e.ID)
	if err != nil {
		return err
	}
	e.Attendees = attendees
	e.NumberOfAttendees = len(attendees)
	return nil
}

// POST /events/create-event
func (d *deps) createEvent(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description" binding:"required"`
		Creator     string `json:"creator" binding:"required"`
		StartTime   string `json:"startTime" binding:"required"`
		EndTime     string `json:"endTime" binding:"required"`
		Location    string `json:"location" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required event fields"})
		return
	}

	event := models.Event{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Creator:     req.Creator,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		PastEvent:   false,
		Attendees:   []string{},
	}

	if err := d.events.Create(&event); err != nil {
		d.log.Error().Err(err).Str("eventId", event.ID).Msg("create event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to create event"})
		return
	}

	// best effort; an unknown creator just means no created_events entry
	if err := d.users.AddCreatedEvent(req.Creator, event.ID); err != nil {
		d.log.Warn().Err(err).Str("creator", req.Creator).Str("eventId", event.ID).Msg("record created event")
	}

	if d.inv != nil {
		d.inv.PurgeEvents(c)
	}

	c.JSON(http.StatusOK, event)
}

// GET /events/get-event-by-id/:id
func (d *deps) getEventByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event id is required"})
		return
	}

	event, err := d.events.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		d.log.Error().Err(err).Str("eventId", id).Msg("fetch event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch event"})
		return
	}

	if err := d.withAttendees(&event); err != nil {
		d.log.Error().Err(err).Str("eventId", id).Msg("fetch attendees")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch event"})
		return
	}

	c.JSON(http.StatusOK, event)
}

// GET /events/get-events-by-creator/:username
func (d *deps) getEventsByCreator(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	events, err := d.events.GetByCreator(username)
	if err != nil {
		d.log.Error().Err(err).Str("username", username).Msg("fetch events by creator")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch events"})
		return
	}
	if len(events) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No events found"})
		return
	}

	for i := range events {
		if err := d.withAttendees(&events[i]); err != nil {
			d.log.Error().Err(err).Str("eventId", events[i].ID).Msg("fetch attendees")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch events"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// DELETE /events/delete-event-by-id/:id
//
// Membership rows go first, then the document. A failure in between leaves an
// event with no attendees rather than memberships pointing at nothing.
func (d *deps) deleteEventByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event id is required"})
		return
	}

	if _, err := d.events.GetByID(id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		d.log.Error().Err(err).Str("eventId", id).Msg("fetch event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch event"})
		return
	}

	if err := d.members.RemoveAllForEvent(id); err != nil {
		d.log.Error().Err(err).Str("eventId", id).Msg("cascade memberships")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to delete event"})
		return
	}

	if err := d.events.Delete(id); err != nil && !errors.Is(err, models.ErrNotFound) {
		d.log.Error().Err(err).Str("eventId", id).Msg("delete event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to delete event"})
		return
	}

	if d.inv != nil {
		d.inv.PurgeEvents(c)
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// PUT /events/update-event
//
// Field-level merge: a supplied non-empty value wins, empty keeps the old
// value. Clearing a field to empty is therefore not possible, matching how
// clients already use this route.
func (d *deps) updateEvent(c *gin.Context) {
	var req struct {
		ID          string `json:"id" binding:"required"`
		Title       string `json:"title"`
		Description string `json:"description"`
		StartTime   string `json:"startTime"`
		EndTime     string `json:"endTime"`
		Location    string `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event id is required"})
		return
	}

	event, err := d.events.GetByID(req.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		d.log.Error().Err(err).Str("eventId", req.ID).Msg("fetch event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch event"})
		return
	}

	if req.Title != "" {
		event.Title = req.Title
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if req.StartTime != "" {
		event.StartTime = req.StartTime
	}
	if req.EndTime != "" {
		event.EndTime = req.EndTime
	}
	if req.Location != "" {
		event.Location = req.Location
	}

	if err := d.events.Update(&event); err != nil {
		d.log.Error().Err(err).Str("eventId", req.ID).Msg("update event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to update event"})
		return
	}

	if d.inv != nil {
		d.inv.PurgeEvents(c)
	}

	if err := d.withAttendees(&event); err != nil {
		d.log.Error().Err(err).Str("eventId", req.ID).Msg("fetch attendees")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch event"})
		return
	}

	c.JSON(http.StatusOK, event)
}

// PUT /events/add-attendees
//
// Every username is processed independently: unknown users and failed inserts
// are skipped, the rest still join. The unique index dedups re-adds.
func (d *deps) addAttendees(c *gin.Context) {
	var req struct {
		ID        string   `json:"id" binding:"required"`
		Attendees []string `json:"attendees" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event id and attendees are required"})
		return
	}

	event, err := d.events.GetByID(req.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		d.log.Error().Err(err).Str("eventId", req.ID).Msg("fetch event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch event"})
		return
	}

	for _, username := range req.Attendees {
		if _, err := d.users.GetByUsername(username); err != nil {
			d.log.Warn().Err(err).Str("username", username).Str("eventId", req.ID).Msg("skip attendee")
			continue
		}
		if err := d.members.Add(username, req.ID); err != nil {
			d.log.Warn().Err(err).Str("username", username).Str("eventId", req.ID).Msg("skip attendee")
		}
	}

	d.respondWithAttendeeList(c, &event)
}

// PUT /events/remove-attendees
func (d *deps) removeAttendees(c *gin.Context) {
	var req struct {
		ID        string   `json:"id" binding:"required"`
		Attendees []string `json:"attendees" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event id and attendees are required"})
		return
	}

	event, err := d.events.GetByID(req.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		d.log.Error().Err(err).Str("eventId", req.ID).Msg("fetch event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch event"})
		return
	}

	// removing a non-attendee is a no-op
	for _, username := range req.Attendees {
		if err := d.members.Remove(username, req.ID); err != nil {
			d.log.Warn().Err(err).Str("username", username).Str("eventId", req.ID).Msg("skip attendee removal")
		}
	}

	d.respondWithAttendeeList(c, &event)
}

func (d *deps) respondWithAttendeeList(c *gin.Context, event *models.Event) {
	if err := d.withAttendees(event); err != nil {
		d.log.Error().Err(err).Str("eventId", event.ID).Msg("fetch attendees")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch attendees"})
		return
	}

	if d.inv != nil {
		d.inv.PurgeEvents(c)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                event.ID,
		"attendees":         event.Attendees,
		"numberOfAttendees": event.NumberOfAttendees,
	})
}

// PUT /events/toggle-past-event
func (d *deps) togglePastEvent(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event id is required"})
		return
	}

	event, err := d.events.GetByID(req.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		d.log.Error().Err(err).Str("eventId", req.ID).Msg("fetch event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch event"})
		return
	}

	event.PastEvent = !event.PastEvent
	if err := d.events.Update(&event); err != nil {
		d.log.Error().Err(err).Str("eventId", req.ID).Msg("update event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to update event"})
		return
	}

	if d.inv != nil {
		d.inv.PurgeEvents(c)
	}

	if err := d.withAttendees(&event); err != nil {
		d.log.Error().Err(err).Str("eventId", req.ID).Msg("fetch attendees")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch event"})
		return
	}

	c.JSON(http.StatusOK, event)
}

// GET /events/get-events-by-username/:username
func (d *deps) getEventsByUsername(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	memberships, err := d.members.ListByUser(username)
	if err != nil {
		d.log.Error().Err(err).Str("username", username).Msg("fetch memberships")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch events"})
		return
	}
	if len(memberships) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No events found for user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": memberships})
}

// POST /events/add-event-to-user
func (d *deps) addEventToUser(c *gin.Context) {
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to add event to user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": req.Username, "eventId": req.EventID})
}

// DELETE /events/remove-event-from-user
func (d *deps) removeEventFromUser(c *gin.Context) {
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

	if err := d.members.Remove(req.Username, req.EventID); err != nil {
		d.log.Error().Err(err).Str("username", req.Username).Msg("remove membership")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to remove event from user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": req.Username, "eventId": req.EventID})
}
