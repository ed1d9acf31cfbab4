package handler

import (
	receiptapp "github.com/contaro/backend/internal/application/receipt"
	"github.com/gin-gonic/gin"
)

// ReceiptHandler handles goods receipt (NIR) API endpoints
type ReceiptHandler struct {
	BaseHandler
	receiptService *receiptapp.Service
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *receiptapp.Service) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
	}
}

// Create registers a new goods receipt document
func (h *ReceiptHandler) Create(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	var req receiptapp.CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if req.ActorID == nil {
		if actorID, err := getActorID(c); err == nil {
			req.ActorID = &actorID
		}
	}

	doc, err := h.receiptService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, doc)
}

// GetByID retrieves a receipt document with its lines
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	documentID, ok := h.pathID(c, "id", "document ID")
	if !ok {
		return
	}

	doc, err := h.receiptService.GetByID(c.Request.Context(), companyID, documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// List retrieves a paginated list of receipt documents
func (h *ReceiptHandler) List(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	var filter receiptapp.ReceiptListFilter
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

	docs, total, err := h.receiptService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, docs, total, filter.Page, filter.PageSize)
}

// Submit moves a draft receipt into the approval queue
func (h *ReceiptHandler) Submit(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	documentID, ok := h.pathID(c, "id", "document ID")
	if !ok {
		return
	}

	doc, err := h.receiptService.Submit(c.Request.Context(), companyID, documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// Approve approves a pending receipt document
func (h *ReceiptHandler) Approve(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	documentID, ok := h.pathID(c, "id", "document ID")
	if !ok {
		return
	}

	approverID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Approver identification required (X-Actor-ID)")
		return
	}

	doc, err := h.receiptService.Approve(c.Request.Context(), companyID, documentID, approverID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// Reject rejects a pending receipt document with a reason
func (h *ReceiptHandler) Reject(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	documentID, ok := h.pathID(c, "id", "document ID")
	if !ok {
		return
	}

	rejecterID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Rejecter identification required (X-Actor-ID)")
		return
	}

	var req receiptapp.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.receiptService.Reject(c.Request.Context(), companyID, documentID, rejecterID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}
