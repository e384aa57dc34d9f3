package services

import (
	"context"
	"net/http"
	"strconv"

	"tripmate/models"
)

func (c *APIClient) ListItinerary(ctx context.Context, tripID int) ([]models.ItineraryItem, error) {
	var items []models.ItineraryItem
	if err := c.getJSON(ctx, tripPath(tripID, "itinerary"), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *APIClient) CreateItineraryItem(ctx context.Context, tripID int, data models.ItineraryItemFormData) (models.ItineraryItem, error) {
	var item models.ItineraryItem
	err := c.sendJSON(ctx, http.MethodPost, tripPath(tripID, "itinerary"), data, &item)
	return item, err
}

func (c *APIClient) DeleteItineraryItem(ctx context.Context, tripID, itemID int) error {
	return c.sendJSON(ctx, http.MethodDelete, tripPath(tripID, "itinerary", strconv.Itoa(itemID)), nil, nil)
}
