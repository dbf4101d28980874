package handler

import (
	"github.com/labstack/echo/v4"

	"rentline/internal/usecase"
	"rentline/pkg/response"
	"rentline/pkg/utils"
)

type NegotiationHandler struct {
	negotiationUseCase *usecase.NegotiationUseCase
}

func NewNegotiationHandler(negotiationUseCase *usecase.NegotiationUseCase) *NegotiationHandler {
	return &NegotiationHandler{
		negotiationUseCase: negotiationUseCase,
	}
}

type createNegotiationRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
	HomeID  string `json:"home_id" validate:"required"`
}

type sendNegotiationRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// CreateRoom opens (or returns) the negotiation room between the caller and
// the owner of a home listing.
func (h *NegotiationHandler) CreateRoom(c echo.Context) error {
	var req createNegotiationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	buyerID := c.Get("uid").(string)

	room, err := h.negotiationUseCase.CreateRoom(c.Request().Context(), req.OwnerID, buyerID, req.HomeID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, room)
}

// GetRoom returns one negotiation room the caller participates in.
func (h *NegotiationHandler) GetRoom(c echo.Context) error {
	userID := c.Get("uid").(string)
	roomID := c.Param("id")

	room, err := h.negotiationUseCase.GetRoom(c.Request().Context(), userID, roomID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, room)
}

// SendMessage sends one negotiation message over the REST surface. The send
// is refused when either participant is absent from the room.
func (h *NegotiationHandler) SendMessage(c echo.Context) error {
	var req sendNegotiationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.negotiationUseCase.SendMessage(c.Request().Context(), userID, c.Param("id"), req.Content)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// ListMessages returns negotiation messages for a room, newest first.
func (h *NegotiationHandler) ListMessages(c echo.Context) error {
	userID := c.Get("uid").(string)
	roomID := c.Param("id")
	params := utils.GetListParams(c)

	messages, total, err := h.negotiationUseCase.ListMessages(c.Request().Context(), userID, roomID, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, messages, total, params.Limit, params.Offset)
}

// CanSend reports whether both participants are present in the room.
func (h *NegotiationHandler) CanSend(c echo.Context) error {
	canSend, err := h.negotiationUseCase.CanSend(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"can_send": canSend})
}

// SetStartPoint arms the special-terms export window at the current time.
func (h *NegotiationHandler) SetStartPoint(c echo.Context) error {
	userID := c.Get("uid").(string)

	at, err := h.negotiationUseCase.SetStartPoint(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"start_point": at})
}

// RequestEnd records the owner's pending request to finalize the terms.
func (h *NegotiationHandler) RequestEnd(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.negotiationUseCase.RequestEndPointExport(c.Request().Context(), c.Param("id"), userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "requested"})
}

// AcceptEnd closes the window and returns the special-terms transcript.
func (h *NegotiationHandler) AcceptEnd(c echo.Context) error {
	userID := c.Get("uid").(string)

	transcript, err := h.negotiationUseCase.SetEndPointAndExport(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"transcript": transcript})
}

// RejectEnd declines the pending finalize request.
func (h *NegotiationHandler) RejectEnd(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.negotiationUseCase.RejectEndPointExport(c.Request().Context(), c.Param("id"), userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "rejected"})
}
