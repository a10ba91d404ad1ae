package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/andriansp/gocommerce/internal/application"
	"github.com/andriansp/gocommerce/internal/domain/entity"
	"github.com/andriansp/gocommerce/internal/domain/repository"
	"github.com/andriansp/gocommerce/pkg/response"
	"github.com/andriansp/gocommerce/pkg/validation"
)

// AddressHandler serves the authenticated user's address book. Every lookup
// is scoped by owner, so another user's address id reads as 404.
type AddressHandler struct {
	Svc    *application.AccountService
	Logger *logrus.Logger
}

func NewAddressHandler(svc *application.AccountService, logger *logrus.Logger) *AddressHandler {
	return &AddressHandler{Svc: svc, Logger: logger}
}

func addressPayload(a *entity.Address) gin.H {
	return gin.H{
		"id":             a.ID,
		"address_type":   a.AddressType,
		"street_address": a.StreetAddress,
		"apartment":      a.Apartment,
		"city":           a.City,
		"state":          a.State,
		"postal_code":    a.PostalCode,
		"country":        a.Country,
		"is_default":     a.IsDefault,
	}
}

type addressRequest struct {
	AddressType   string `json:"address_type" binding:"required,addrtype"`
	StreetAddress string `json:"street_address" binding:"required"`
	Apartment     string `json:"apartment"`
	City          string `json:"city" binding:"required"`
	State         string `json:"state" binding:"required"`
	PostalCode    string `json:"postal_code" binding:"required"`
	Country       string `json:"country"`
	IsDefault     bool   `json:"is_default"`
}

// List GET /api/addresses — defaults first, then newest first.
func (h *AddressHandler) List(c *gin.Context) {
	addrs, err := h.Svc.ListAddresses(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("address list failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to list addresses", nil)
		return
	}

	out := make([]gin.H, 0, len(addrs))
	for i := range addrs {
		out = append(out, addressPayload(&addrs[i]))
	}
	response.Success(c, http.StatusOK, out, "addresses", nil)
}

// Create POST /api/addresses
func (h *AddressHandler) Create(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	a := &entity.Address{
		UserID:        c.GetString("userID"),
		AddressType:   req.AddressType,
		StreetAddress: req.StreetAddress,
		Apartment:     req.Apartment,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		IsDefault:     req.IsDefault,
	}
	if err := h.Svc.CreateAddress(c.Request.Context(), a); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("address create failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to create address", nil)
		return
	}
	response.Success(c, http.StatusCreated, addressPayload(a), "address created", nil)
}

// Get GET /api/addresses/:id
func (h *AddressHandler) Get(c *gin.Context) {
	a, err := h.Svc.GetAddress(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "address not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to load address", nil)
		return
	}
	response.Success(c, http.StatusOK, addressPayload(a), "address", nil)
}

// Update PUT /api/addresses/:id
func (h *AddressHandler) Update(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	a := &entity.Address{
		ID:            c.Param("id"),
		UserID:        c.GetString("userID"),
		AddressType:   req.AddressType,
		StreetAddress: req.StreetAddress,
		Apartment:     req.Apartment,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		IsDefault:     req.IsDefault,
	}
	if err := h.Svc.UpdateAddress(c.Request.Context(), a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "address not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to update address", nil)
		return
	}
	response.Success(c, http.StatusOK, addressPayload(a), "address updated", nil)
}

// Delete DELETE /api/addresses/:id
func (h *AddressHandler) Delete(c *gin.Context) {
	err := h.Svc.DeleteAddress(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "address not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to delete address", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "address deleted", nil)
}
