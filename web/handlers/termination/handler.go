package termination

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"deskhive.com/deskhive/core/models"
	core "deskhive.com/deskhive/core/termination"
	"deskhive.com/deskhive/infrastructure/calendar"
	"deskhive.com/deskhive/infrastructure/communication"
	web "deskhive.com/deskhive/web/common"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ContractGetter is the read slice of the store the handler needs to
// address customer notifications.
type ContractGetter interface {
	GetContract(ctx context.Context, id int64) (*models.Contract, error)
}

type Endpoint struct {
	svc       *core.Service
	contracts ContractGetter
	notify    *communication.Dispatcher
	// booker is nil when no calendar credentials are configured.
	booker *calendar.Booker
}

func Register(r *gin.RouterGroup, svc *core.Service, contracts ContractGetter, notify *communication.Dispatcher, booker *calendar.Booker) {
	endpoint := &Endpoint{svc: svc, contracts: contracts, notify: notify, booker: booker}
	r.POST("/termination-cases", endpoint.Create)
	r.GET("/termination-cases/:id", endpoint.Find)
	r.PATCH("/termination-cases/:id/status", endpoint.UpdateStatus)
	r.PUT("/termination-cases/:id/checklist", endpoint.UpdateChecklist)
	r.POST("/termination-cases/:id/settlement", endpoint.CalculateSettlement)
	r.POST("/termination-cases/:id/refund", endpoint.ProcessRefund)
	r.POST("/termination-cases/:id/inspection", endpoint.BookInspection)
	r.POST("/termination-cases/:id/cancel", endpoint.Cancel)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse("Invalid id"))
		return 0, false
	}
	return id, true
}

type CreateCaseDTO struct {
	ContractID      int64        `json:"contract_id" binding:"required"`
	TerminationType string       `json:"termination_type" binding:"required"`
	NoticeDate      *models.Date `json:"notice_date,omitempty"`
	ExpectedEndDate *models.Date `json:"expected_end_date,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	CreatedBy       string       `json:"created_by,omitempty"`
}

func (ep *Endpoint) Create(c *gin.Context) {
	var dto CreateCaseDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	params := core.CreateParams{
		ContractID:      dto.ContractID,
		TerminationType: dto.TerminationType,
		Notes:           dto.Notes,
		CreatedBy:       dto.CreatedBy,
	}
	if dto.NoticeDate != nil {
		params.NoticeDate = *dto.NoticeDate
	}
	if dto.ExpectedEndDate != nil {
		params.ExpectedEndDate = *dto.ExpectedEndDate
	}

	tc, err := ep.svc.CreateCase(c.Request.Context(), params)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	ep.notifyCustomer(c, tc.ContractID, func(contract *models.Contract) string {
		return "We received your move-out notice for agreement " + contract.ContractNumber +
			". We'll guide you through the next steps here."
	}, "termination", "notice_received")

	c.JSON(http.StatusCreated, web.NewSuccessResponse(tc))
}

func (ep *Endpoint) Find(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	tc, err := ep.svc.GetCase(c.Request.Context(), id)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(tc))
}

type UpdateStatusDTO struct {
	Status string `json:"status" binding:"required"`
}

func (ep *Endpoint) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var dto UpdateStatusDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	tc, err := ep.svc.UpdateStatus(c.Request.Context(), id, dto.Status)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(tc))
}

type ChecklistItemDTO struct {
	Item  string `json:"item" binding:"required"`
	Value *bool  `json:"value" binding:"required"`
}

func (ep *Endpoint) UpdateChecklist(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var dto ChecklistItemDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	res, err := ep.svc.UpdateChecklistItem(c.Request.Context(), id, dto.Item, *dto.Value)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(res))
}

type SettlementDTO struct {
	DocApprovedDate *models.Date    `json:"doc_approved_date" binding:"required"`
	OtherDeductions decimal.Decimal `json:"other_deductions"`
	Notes           string          `json:"notes,omitempty"`
}

func (ep *Endpoint) CalculateSettlement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var dto SettlementDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	res, err := ep.svc.CalculateSettlement(c.Request.Context(), id, *dto.DocApprovedDate, dto.OtherDeductions, dto.Notes)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	ep.notifyCustomer(c, res.Case.ContractID, func(contract *models.Contract) string {
		return communication.SettlementReadyText(contract.ContractNumber, res.RefundAmount.String())
	}, "termination", "settlement")

	c.JSON(http.StatusOK, web.NewSuccessResponse(res))
}

type RefundDTO struct {
	RefundMethod  string `json:"refund_method" binding:"required"`
	RefundAccount string `json:"refund_account,omitempty"`
	RefundReceipt string `json:"refund_receipt,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

func (ep *Endpoint) ProcessRefund(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var dto RefundDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	tc, err := ep.svc.ProcessRefund(c.Request.Context(), id, core.RefundParams{
		Method:  dto.RefundMethod,
		Account: dto.RefundAccount,
		Receipt: dto.RefundReceipt,
		Notes:   dto.Notes,
	})
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	if contract, err := ep.contracts.GetContract(c.Request.Context(), tc.ContractID); err == nil {
		refund := ""
		if tc.RefundAmount != nil {
			refund = tc.RefundAmount.String()
		}
		ep.notify.GoEmail(contract.Email,
			"Deposit settlement for agreement "+contract.ContractNumber,
			"Your deposit settlement is complete. Refunded amount: TWD "+refund+
				". Method: "+dto.RefundMethod+". Thank you for staying with us.")
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(tc))
}

type BookInspectionDTO struct {
	CalendarID string    `json:"calendar_id" binding:"required"`
	Start      time.Time `json:"start" binding:"required"`
	End        time.Time `json:"end" binding:"required"`
	Attendees  []string  `json:"attendees,omitempty"`
}

// BookInspection reserves the move-out inspection slot on the branch
// calendar and records nothing on the case itself; the checklist item is
// ticked separately once the inspection happens.
func (ep *Endpoint) BookInspection(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if ep.booker == nil {
		c.JSON(http.StatusBadGateway, web.NewErrorResponse("Calendar integration is not configured"))
		return
	}

	var dto BookInspectionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	tc, err := ep.svc.GetCase(c.Request.Context(), id)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	contract, err := ep.contracts.GetContract(c.Request.Context(), tc.ContractID)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	booking, err := ep.booker.Book(c.Request.Context(), calendar.BookingRequest{
		CalendarID:  dto.CalendarID,
		Summary:     "Move-out inspection " + contract.ContractNumber,
		Description: "Room " + contract.RoomCode,
		Start:       dto.Start,
		End:         dto.End,
		Attendees:   dto.Attendees,
	})
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(booking))
}

func (ep *Endpoint) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var dto struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	tc, err := ep.svc.CancelCase(c.Request.Context(), id, dto.Reason)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(tc))
}

// notifyCustomer resolves the contract's LINE chat and fires the message
// without blocking or failing the request.
func (ep *Endpoint) notifyCustomer(c *gin.Context, contractID int64, textFor func(*models.Contract) string, tags ...string) {
	if ep.notify == nil {
		return
	}
	contract, err := ep.contracts.GetContract(c.Request.Context(), contractID)
	if err != nil || contract.LineUserID == "" {
		return
	}
	ep.notify.Go(contract.LineUserID, contractID, textFor(contract), tags...)
}
