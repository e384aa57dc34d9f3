package services

import (
	"context"
	"net/http"

	"tripmate/models"
)

// ListMessages returns the trip chat in the order the remote sent it.
func (c *APIClient) ListMessages(ctx context.Context, tripID int) ([]models.Message, error) {
	var messages []models.Message
	if err := c.getJSON(ctx, tripPath(tripID, "messages"), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *APIClient) CreateMessage(ctx context.Context, tripID int, data models.MessageFormData) (models.Message, error) {
	var msg models.Message
	err := c.sendJSON(ctx, http.MethodPost, tripPath(tripID, "messages"), data, &msg)
	return msg, err
}
