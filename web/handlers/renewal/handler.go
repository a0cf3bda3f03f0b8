package renewal

import (
	"context"
	"net/http"
	"strconv"

	core "deskhive.com/deskhive/core/renewal"
	"deskhive.com/deskhive/infrastructure/documents"
	"deskhive.com/deskhive/infrastructure/einvoice"
	"deskhive.com/deskhive/utils"
	web "deskhive.com/deskhive/web/common"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"deskhive.com/deskhive/core/models"
)

// ContractStore is the read slice of the store the list, document and
// invoice endpoints need.
type ContractStore interface {
	GetContract(ctx context.Context, id int64) (*models.Contract, error)
	ListExpiring(ctx context.Context, from, to models.Date) ([]models.Contract, error)
}

type Endpoint struct {
	tracker   *core.Tracker
	cases     *core.CaseService
	contracts ContractStore
	docs      *documents.Client
	invoices  *einvoice.Client
}

func Register(r *gin.RouterGroup, tracker *core.Tracker, cases *core.CaseService, contracts ContractStore, docs *documents.Client, invoices *einvoice.Client) {
	endpoint := &Endpoint{tracker: tracker, cases: cases, contracts: contracts, docs: docs, invoices: invoices}
	r.GET("/contracts/expiring", endpoint.ListExpiring)
	r.GET("/contracts/:id/renewal", endpoint.Status)
	r.POST("/contracts/:id/renewal/flags", endpoint.SetFlag)
	r.POST("/contracts/:id/renewal/drafts", endpoint.CreateDraft)
	r.POST("/contracts/:id/documents/contract", endpoint.RenderContract)
	r.POST("/contracts/:id/invoices", endpoint.IssueInvoice)
	r.POST("/renewal-cases/:id/activate", endpoint.Activate)
	r.POST("/renewal-cases/:id/cancel", endpoint.Cancel)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse("Invalid id"))
		return 0, false
	}
	return id, true
}

type SetFlagDTO struct {
	Flag  string `json:"flag" binding:"required"`
	Value *bool  `json:"value" binding:"required"`
	Notes string `json:"notes,omitempty"`
}

func (ep *Endpoint) SetFlag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var dto SetFlagDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	res, err := ep.tracker.SetFlag(c.Request.Context(), id, dto.Flag, *dto.Value, dto.Notes)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(res))
}

func (ep *Endpoint) Status(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := ep.tracker.Status(c.Request.Context(), id)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(res))
}

type DraftDTO struct {
	NewMonthlyRent decimal.Decimal `json:"new_monthly_rent" binding:"required"`
	NewEndDate     *models.Date    `json:"new_end_date" binding:"required"`
	Notes          string          `json:"notes,omitempty"`
	CreatedBy      string          `json:"created_by,omitempty"`
}

func (ep *Endpoint) CreateDraft(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var dto DraftDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	rc, err := ep.cases.CreateDraft(c.Request.Context(), id, core.DraftTerms{
		NewMonthlyRent: dto.NewMonthlyRent,
		NewEndDate:     *dto.NewEndDate,
		Notes:          dto.Notes,
		CreatedBy:      dto.CreatedBy,
	})
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(rc))
}

type ActivateDTO struct {
	OperationKey string `json:"operation_key" binding:"required"`
}

func (ep *Endpoint) Activate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var dto ActivateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	res, err := ep.cases.Activate(c.Request.Context(), id, dto.OperationKey)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(res))
}

// ListExpiring returns contracts whose end date falls within the coming
// window, the front desk's renewal worklist.
func (ep *Endpoint) ListExpiring(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "60"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse("Invalid days"))
		return
	}

	today := utils.TaipeiNow()
	contracts, err := ep.contracts.ListExpiring(c.Request.Context(),
		models.NewDate(today),
		models.NewDate(today.AddDate(0, 0, days)))
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(contracts, int64(len(contracts))))
}

type RenderContractDTO struct {
	CustomerName string `json:"customer_name" binding:"required"`
	BranchName   string `json:"branch_name" binding:"required"`
}

func (ep *Endpoint) RenderContract(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var dto RenderContractDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	contract, err := ep.contracts.GetContract(c.Request.Context(), id)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	payload := documents.NewContractPayload(documents.ContractPayload{
		ContractNumber: contract.ContractNumber,
		CustomerName:   dto.CustomerName,
		BranchName:     dto.BranchName,
		RoomCode:       contract.RoomCode,
		StartDate:      contract.StartDate.String(),
		EndDate:        contract.EndDate.String(),
		Deposit:        contract.Deposit.String(),
	}, contract.MonthlyRent)

	res, err := ep.docs.Render(c.Request.Context(), documents.TemplateContract, payload)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(res))
}

type IssueInvoiceDTO struct {
	OperationKey string          `json:"operation_key" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	BuyerName    string          `json:"buyer_name" binding:"required"`
	BuyerTaxID   string          `json:"buyer_tax_id,omitempty"`
	Description  string          `json:"description,omitempty"`
}

func (ep *Endpoint) IssueInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var dto IssueInvoiceDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	if _, err := ep.contracts.GetContract(c.Request.Context(), id); err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	res, err := ep.invoices.Issue(c.Request.Context(), einvoice.Invoice{
		ContractID:  id,
		BuyerName:   dto.BuyerName,
		BuyerTaxID:  dto.BuyerTaxID,
		Description: dto.Description,
		Amount:      dto.Amount,
	}, dto.OperationKey)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(res))
}

type CancelDTO struct {
	Reason string `json:"reason" binding:"required"`
}

func (ep *Endpoint) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var dto CancelDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	rc, err := ep.cases.CancelDraft(c.Request.Context(), id, dto.Reason)
	if err != nil {
		c.JSON(web.FaultStatus(err), web.NewFaultResponse(err))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(rc))
}
