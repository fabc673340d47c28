package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
)

// ImageUpload is an optional inline image payload. Data is base64 in JSON.
type ImageUpload struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

func (i *ImageUpload) toPayload() *domain.ImagePayload {
	if i == nil {
		return nil
	}
	return &domain.ImagePayload{Data: i.Data, ContentType: i.ContentType}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        time.Time    `json:"date"`
	Category    string       `json:"category"`
	Image       *ImageUpload `json:"image"`
}

// Validate implements Validator. Returns error messages for required and enum rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Title == "" {
		errs = append(errs, "title is required")
	}
	if c.Description == "" {
		errs = append(errs, "description is required")
	}
	if c.Date.IsZero() {
		errs = append(errs, "date is required")
	}
	if c.Category == "" {
		errs = append(errs, "category is required")
	} else if !domain.Category(c.Category).Valid() {
		errs = append(errs, "category must be one of Conference, Workshop, Meetup")
	}
	if c.Image != nil && len(c.Image.Data) == 0 {
		errs = append(errs, "image.data cannot be empty")
	}
	return errs
}

// EventSuccessResponse is the success envelope for endpoints returning a resolved event.
type EventSuccessResponse struct {
	Data  *domain.ResolvedEvent `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ListEventsSuccessResponse is the success envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  []*domain.ResolvedEvent `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// DeleteEventResponse is the data payload for DELETE /events/{eventID} (200).
type DeleteEventResponse struct {
	Status string `json:"status"`
}

// DeleteEventSuccessResponse is the success envelope for DELETE /events/{eventID} (200).
type DeleteEventSuccessResponse struct {
	Data  DeleteEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// writeServiceError maps service errors to the API error taxonomy.
func (c *EventController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the event creator may do this")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyJoined):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "already joined")
	case errors.Is(err, domain.ErrUploadFailed):
		helpers.WriteJSONError(w, http.StatusBadGateway, helpers.ErrCodeUploadFailed, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create a new event. Title, description, date, and category (Conference, Workshop, or Meetup) are required; an inline base64 image is optional and is uploaded to blob storage first. The authenticated user becomes the creator. All connected websocket clients receive an eventCreated notification.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event with creator and attendees resolved"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 502 {object} helpers.APIResponse "error.code: upload_failed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	input := domain.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Category:    domain.Category(req.Category),
		Image:       req.Image.toPayload(),
	}
	event, err := c.Service.Create(r.Context(), input, userID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List all events
// @Description Returns every event with creator and attendees resolved to {id, name, email}. Public, no authentication.
// @Tags events
// @Produce json
// @Success 200 {object} controllers.ListEventsSuccessResponse "data is an array of resolved events"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.List(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []*domain.ResolvedEvent{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// UpdateEventRequest is the request body for PUT /events/{eventID}.
// All fields optional; omitted fields are unchanged, never cleared.
type UpdateEventRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Date        *time.Time   `json:"date"`
	Category    *string      `json:"category"`
	Image       *ImageUpload `json:"image"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && *u.Title == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.Description != nil && *u.Description == "" {
		errs = append(errs, "description cannot be empty")
	}
	if u.Category != nil && !domain.Category(*u.Category).Valid() {
		errs = append(errs, "category must be one of Conference, Workshop, Meetup")
	}
	if u.Image != nil && len(u.Image.Data) == 0 {
		errs = append(errs, "image.data cannot be empty")
	}
	return errs
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Updates title, description, date, category, and/or image. Only the creator can update; omitted fields are unchanged. An inline image replaces the stored image URL; upload failure leaves the event untouched. Connected clients receive an eventUpdated notification.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated resolved event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: upload_failed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	input := domain.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Image:       req.Image.toPayload(),
	}
	if req.Category != nil {
		cat := domain.Category(*req.Category)
		input.Category = &cat
	}
	event, err := c.Service.Update(r.Context(), eventID, input, userID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Permanently deletes an event. Only the creator can delete. Connected clients receive an eventDeleted notification carrying the bare id.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.DeleteEventSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Delete(r.Context(), eventID, userID); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}

// JoinEvent godoc
// @Summary Join an event
// @Description Adds the authenticated user to the event's attendee list. A second join by the same user is rejected with 409. Connected clients receive an attendeeUpdated notification with the resolved event.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the resolved event including the new attendee"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already joined)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/join [post]
func (c *EventController) JoinEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.Join(r.Context(), eventID, userID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
