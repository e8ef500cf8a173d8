package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type privacyReq struct {
	DataSharing *bool `json:"data_sharing"`
	Analytics   *bool `json:"analytics"`
	Marketing   *bool `json:"marketing"`
}

func (h *Handler) GetPrivacy(c *gin.Context) {
	s, err := h.accounts.GetPrivacySettings(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": s})
}

func (h *Handler) UpdatePrivacy(c *gin.Context) {
	var in privacyReq
	if err := c.ShouldBindJSON(&in); err != nil || in.DataSharing == nil || in.Analytics == nil || in.Marketing == nil {
		badRequest(c, "Invalid privacy settings format")
		return
	}

	s, err := h.accounts.UpdatePrivacySettings(c.Request.Context(), currentUser(c).ID, *in.DataSharing, *in.Analytics, *in.Marketing)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Privacy settings updated successfully", "settings": s})
}

// DeleteAccount schedules the account for deletion, or deletes it at once
// with ?immediate=true.
func (h *Handler) DeleteAccount(c *gin.Context) {
	ctx := c.Request.Context()
	u := currentUser(c)

	if c.Query("immediate") == "true" {
		if err := h.accounts.ImmediateDelete(ctx, u.ID); err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully", "immediate": true})
		return
	}

	updated, err := h.accounts.RequestDeletion(ctx, u.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "Account deletion scheduled",
		"scheduled_date":    updated.AccountDeletionScheduled,
		"grace_period_days": int(h.accounts.GracePeriod() / (24 * time.Hour)),
	})
}

func (h *Handler) CancelDeletion(c *gin.Context) {
	if err := h.accounts.CancelDeletion(c.Request.Context(), currentUser(c).ID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deletion cancelled successfully"})
}

// Export sends the user's data as a downloadable, indented JSON file.
func (h *Handler) Export(c *gin.Context) {
	u := currentUser(c)

	exp, err := h.accounts.Export(c.Request.Context(), u.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	body, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		h.fail(c, fmt.Errorf("encode export: %w", err))
		return
	}

	filename := fmt.Sprintf("save-that-again-data-%s-%d.json", u.ID, h.now().UnixMilli())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/json", body)
}
