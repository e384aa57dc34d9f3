package services

import (
	"context"
	"net/http"

	"tripmate/models"
)

func (c *APIClient) ListTrips(ctx context.Context) ([]models.Trip, error) {
	var trips []models.Trip
	if err := c.getJSON(ctx, "/trips", &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

func (c *APIClient) GetTrip(ctx context.Context, tripID int) (models.Trip, error) {
	var trip models.Trip
	err := c.getJSON(ctx, tripPath(tripID), &trip)
	return trip, err
}

func (c *APIClient) CreateTrip(ctx context.Context, data models.TripFormData) (models.Trip, error) {
	var trip models.Trip
	err := c.sendJSON(ctx, http.MethodPost, "/trips", data, &trip)
	return trip, err
}

// UpdateTrip sends only the fields set in patch.
func (c *APIClient) UpdateTrip(ctx context.Context, tripID int, patch models.TripPatch) (models.Trip, error) {
	var trip models.Trip
	err := c.sendJSON(ctx, http.MethodPatch, tripPath(tripID), patch, &trip)
	return trip, err
}

func (c *APIClient) DeleteTrip(ctx context.Context, tripID int) error {
	return c.sendJSON(ctx, http.MethodDelete, tripPath(tripID), nil, nil)
}

// JoinTrip adds the current user to the trip's participants.
func (c *APIClient) JoinTrip(ctx context.Context, tripID int) (models.StatusResponse, error) {
	var status models.StatusResponse
	err := c.sendJSON(ctx, http.MethodPost, tripPath(tripID, "join"), nil, &status)
	return status, err
}

// LeaveTrip removes the current user from the trip's participants.
func (c *APIClient) LeaveTrip(ctx context.Context, tripID int) (models.StatusResponse, error) {
	var status models.StatusResponse
	err := c.sendJSON(ctx, http.MethodDelete, tripPath(tripID, "leave"), nil, &status)
	return status, err
}
