package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/middleware"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/models"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/services"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type CredentialHandler struct {
	credentialService CredentialServiceInterface
}

func NewCredentialHandler(credentialService CredentialServiceInterface) *CredentialHandler {
	return &CredentialHandler{credentialService: credentialService}
}

func (h *CredentialHandler) Create(c *drift.Context) {
	adminEmail := middleware.GetAdminEmail(c)
	if adminEmail == "" {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.IssueCredentialRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		c.BadRequest("name is required")
		return
	}

	cred, rawKey, err := h.credentialService.Issue(context.Background(), services.IssueParams{
		Name:                    req.Name,
		DomainWhitelist:         req.DomainWhitelist,
		AllowWildcardSubdomains: req.AllowWildcardSubdomains,
		RateLimits:              toModelRateLimits(req.RateLimits),
		Notes:                   req.Notes,
	}, adminEmail)
	if err != nil {
		if errors.Is(err, services.ErrWhitelistTooLarge) {
			c.BadRequest("domain whitelist exceeds maximum size")
			return
		}
		c.InternalServerError("failed to issue credential")
		return
	}

	_ = c.JSON(201, dto.CredentialIssuedResponse{
		CredentialResponse: toCredentialResponse(cred),
		Key:                rawKey,
	})
}

func (h *CredentialHandler) List(c *drift.Context) {
	creds, err := h.credentialService.FindActive(context.Background())
	if err != nil {
		c.InternalServerError("failed to list credentials")
		return
	}

	response := []dto.CredentialResponse{}
	for i := range creds {
		response = append(response, toCredentialResponse(&creds[i]))
	}

	_ = c.JSON(200, response)
}

func (h *CredentialHandler) Rotate(c *drift.Context) {
	adminEmail := middleware.GetAdminEmail(c)
	if adminEmail == "" {
		c.Unauthorized("not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid credential id")
		return
	}

	cred, err := h.credentialService.GetByID(context.Background(), id)
	if err != nil {
		c.NotFound("credential not found")
		return
	}

	successor, rawKey, err := h.credentialService.Rotate(context.Background(), cred, adminEmail)
	if err != nil {
		c.InternalServerError("failed to rotate credential")
		return
	}

	_ = c.JSON(200, dto.CredentialIssuedResponse{
		CredentialResponse: toCredentialResponse(successor),
		Key:                rawKey,
	})
}

func (h *CredentialHandler) Deactivate(c *drift.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid credential id")
		return
	}

	if err := h.credentialService.Deactivate(context.Background(), id); err != nil {
		c.NotFound("credential not found")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "credential deactivated"})
}

func (h *CredentialHandler) Cleanup(c *drift.Context) {
	deleted, err := h.credentialService.CleanupExpired(context.Background())
	if err != nil {
		c.InternalServerError("failed to cleanup credentials")
		return
	}

	_ = c.JSON(200, dto.CleanupResponse{Deleted: deleted})
}

func toModelRateLimits(limits *dto.RateLimitConfig) *models.RateLimitConfig {
	if limits == nil {
		return nil
	}

	out := &models.RateLimitConfig{
		Global: models.RateLimitRule(limits.Global),
	}
	if len(limits.Endpoints) > 0 {
		out.Endpoints = make(map[models.Endpoint]models.RateLimitRule, len(limits.Endpoints))
		for name, rule := range limits.Endpoints {
			endpoint := models.Endpoint(name)
			if !models.KnownEndpoint(endpoint) {
				continue
			}
			out.Endpoints[endpoint] = models.RateLimitRule(rule)
		}
	}
	return out
}

func toCredentialResponse(cred *models.APICredential) dto.CredentialResponse {
	resp := dto.CredentialResponse{
		ID:                      cred.ID,
		Name:                    cred.Name,
		KeyPrefix:               cred.KeyPrefix,
		DomainWhitelist:         cred.DomainWhitelist,
		AllowWildcardSubdomains: cred.AllowWildcardSubdomains,
		IsActive:                cred.IsActive,
		TotalRequests:           cred.TotalRequests,
		Tags:                    cred.Tags,
		RotatedFrom:             cred.RotatedFrom,
		CreatedAt:               cred.CreatedAt.Format(time.RFC3339),
	}
	if cred.ExpiresAt != nil {
		formatted := cred.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &formatted
	}
	if cred.LastUsedAt != nil {
		formatted := cred.LastUsedAt.Format(time.RFC3339)
		resp.LastUsedAt = &formatted
	}
	return resp
}
