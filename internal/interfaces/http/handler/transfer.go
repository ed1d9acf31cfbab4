package handler

import (
	transferapp "github.com/contaro/backend/internal/application/transfer"
	"github.com/gin-gonic/gin"
)

// TransferHandler handles inter-warehouse transfer API endpoints
type TransferHandler struct {
	BaseHandler
	transferService *transferapp.Service
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *transferapp.Service) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

// Create registers a new transfer document
func (h *TransferHandler) Create(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	var req transferapp.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if req.ActorID == nil {
		if actorID, err := getActorID(c); err == nil {
			req.ActorID = &actorID
		}
	}

	doc, err := h.transferService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, doc)
}

// GetByID retrieves a transfer document with its items
func (h *TransferHandler) GetByID(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	documentID, ok := h.pathID(c, "id", "document ID")
	if !ok {
		return
	}

	doc, err := h.transferService.GetByID(c.Request.Context(), companyID, documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// List retrieves a paginated list of transfer documents
func (h *TransferHandler) List(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	var filter transferapp.TransferListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	docs, total, err := h.transferService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, docs, total, filter.Page, filter.PageSize)
}

// Issue posts the outbound leg, moving goods out of the source warehouse
func (h *TransferHandler) Issue(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	documentID, ok := h.pathID(c, "id", "document ID")
	if !ok {
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Actor identification required (X-Actor-ID)")
		return
	}

	doc, err := h.transferService.Issue(c.Request.Context(), companyID, documentID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// MarkInTransit flags an issued transfer as physically on the road
func (h *TransferHandler) MarkInTransit(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	documentID, ok := h.pathID(c, "id", "document ID")
	if !ok {
		return
	}

	doc, err := h.transferService.MarkInTransit(c.Request.Context(), companyID, documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// Receive posts the inbound leg at the destination warehouse
func (h *TransferHandler) Receive(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	documentID, ok := h.pathID(c, "id", "document ID")
	if !ok {
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Actor identification required (X-Actor-ID)")
		return
	}

	// The body is optional; it only carries selling price overrides.
	var req transferapp.ReceiveTransferRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	doc, err := h.transferService.Receive(c.Request.Context(), companyID, documentID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// Cancel cancels a transfer, reversing the outbound leg if already issued
func (h *TransferHandler) Cancel(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	documentID, ok := h.pathID(c, "id", "document ID")
	if !ok {
		return
	}

	var req transferapp.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.transferService.Cancel(c.Request.Context(), companyID, documentID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}
