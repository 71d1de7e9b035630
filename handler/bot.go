package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/swapnilgarg7/sync-sure/config"
	"github.com/swapnilgarg7/sync-sure/model"
	"github.com/swapnilgarg7/sync-sure/pkg/logger"
)

const analyzeUsageText = "To analyze invoices, please POST the contract and invoice files (multipart/form-data) to `POST /api/analyze-invoice` on this service. " +
	"Fields: `contract` and `invoice`. The endpoint returns a JSON compliance report."

// BotHandler receives Bot Framework activities on the messaging channel.
// Not part of the analysis pipeline; it only points users at the upload
// endpoint or echoes what it heard.
type BotHandler struct {
	appID      string
	httpClient *http.Client
}

func NewBotHandler(cfg *config.BotConfig) *BotHandler {
	return &BotHandler{
		appID: cfg.AppID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Messages handles an incoming activity. The reply is posted back to the
// activity's service URL when one is given, and is always included in the
// response body so direct callers can see it too.
func (h *BotHandler) Messages(c *gin.Context) {
	var activity model.Activity
	if err := c.ShouldBindJSON(&activity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid activity payload"})
		return
	}

	var replyText string
	if activity.Type == model.ActivityTypeMessage {
		text := strings.ToLower(strings.TrimSpace(activity.Text))
		if strings.Contains(text, "analyze") {
			replyText = analyzeUsageText
		} else {
			replyText = "Echo: " + activity.Text
		}
	} else {
		replyText = "Received activity of type: " + activity.Type
	}

	reply := activity.Reply(replyText)

	if activity.ServiceURL != "" && activity.Conversation != nil && activity.Conversation.ID != "" {
		if h.appID == "" {
			logger.Warn(c.Request.Context(), "no bot app id configured, sending unauthenticated reply")
		}
		if err := h.postReply(c.Request.Context(), reply); err != nil {
			logger.Error(c.Request.Context(), "failed to deliver bot reply",
				"service_url", activity.ServiceURL,
				"error", err,
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deliver reply: " + err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, reply)
}

// postReply sends the reply activity to the channel's connector service.
func (h *BotHandler) postReply(ctx context.Context, reply *model.Activity) error {
	body, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	url := strings.TrimRight(reply.ServiceURL, "/") + "/v3/conversations/" + reply.Conversation.ID + "/activities"
	if reply.ReplyToID != "" {
		url += "/" + reply.ReplyToID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("connector returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
