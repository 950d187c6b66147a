package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /public-events/get-all-events
//
// Unauthenticated full scan. No pagination; the dataset is expected to stay
// small and the response cache absorbs repeat traffic.
func (d *deps) getAllEvents(c *gin.Context) {
	events, err := d.events.GetAll()
	if err != nil {
		d.log.Error().Err(err).Msg("scan events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Scan could not be completed"})
		return
	}

	for i := range events {
		if err := d.withAttendees(&events[i]); err != nil {
			d.log.Error().Err(err).Str("eventId", events[i].ID).Msg("fetch attendees")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Scan could not be completed"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
