package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/arledger/internal/customer/domain"
)

type createCustomerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Zip        string `json:"zip"`
	IsBillable *bool  `json:"is_billable"`
}

// ListCustomers returns a cursor-paginated page of customer accounts.
func (s *Server) ListCustomers(c *gin.Context) {
	req := customerdomain.ListCustomerRequest{
		PageToken:  c.Query("page_token"),
		Name:       c.Query("name"),
		Email:      c.Query("email"),
		ActiveOnly: c.Query("active_only") == "true",
	}
	if v := c.Query("page_size"); v != "" {
		pageSize, err := strconv.ParseInt(v, 10, 32)
		if err != nil || pageSize <= 0 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.PageSize = int32(pageSize)
	}

	resp, err := s.customerSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCustomer returns a single customer account by snowflake ID.
func (s *Server) GetCustomer(c *gin.Context) {
	customer, err := s.customerSvc.GetByID(c.Request.Context(), customerdomain.GetCustomerRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// CreateCustomer registers a new billable account.
func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	isBillable := true
	if req.IsBillable != nil {
		isBillable = *req.IsBillable
	}

	customer, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:       req.Name,
		Email:      req.Email,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		Zip:        req.Zip,
		IsBillable: isBillable,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}
