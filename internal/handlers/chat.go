package handlers

import (
  "encoding/json"
  "errors"
  "fmt"
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/realblock/realblock-backend/internal/agents"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/requestdata"
)

type ChatHandler struct {
  log     *logger.Logger
  graph   *agents.Graph
}

// graph is nil when no model API key is configured; the handler then
// fails fast with a JSON error instead of opening a stream.
func NewChatHandler(graph *agents.Graph, baseLog *logger.Logger) *ChatHandler {
  return &ChatHandler{
    log:   baseLog.With("handler", "ChatHandler"),
    graph: graph,
  }
}

type sseFrame struct {
  Response    string      `json:"response"`
}

func writeSSE(c *gin.Context, flusher http.Flusher, payload any) error {
  b, err := json.Marshal(payload)
  if err != nil {
    return err
  }
  if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", b); err != nil {
    return err
  }
  flusher.Flush()
  return nil
}

func (ch *ChatHandler) Chat(c *gin.Context) {
  if ch.graph == nil {
    RespondError(c, http.StatusInternalServerError, "AI_NOT_CONFIGURED", errors.New("chat service is not configured"))
    return
  }

  var req struct {
    Message            string            `json:"message"`
    // Client-supplied history. Accepted on the wire but not replayed:
    // each turn is routed from the current message alone.
    PreviousMessages   []agents.Message  `json:"previousMessages"`
  }
  if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
    RespondError(c, http.StatusBadRequest, "INVALID_BODY", errors.New("message is required"))
    return
  }

  userID := uuid.Nil
  if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
    userID = rd.UserID
  }

  flusher, ok := c.Writer.(http.Flusher)
  if !ok {
    RespondError(c, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", errors.New("streaming is not supported"))
    return
  }

  c.Header("Content-Type", "text/event-stream")
  c.Header("Cache-Control", "no-cache")
  c.Header("Connection", "keep-alive")
  c.Writer.WriteHeader(http.StatusOK)
  flusher.Flush()

  state := &agents.ChatState{
    Messages: []agents.Message{{Role: agents.RoleUser, Content: req.Message}},
    UserID:   userID,
  }

  err := ch.graph.Run(c.Request.Context(), state, func(step agents.StepOutput) error {
    return writeSSE(c, flusher, sseFrame{Response: step.Content})
  })
  if err != nil {
    ch.log.Error("Chat stream failed", "user_id", userID, "error", err)
    // Headers are already out; the error has to ride the stream.
    _ = writeSSE(c, flusher, map[string]string{"error": "Stream failed"})
    return
  }

  fmt.Fprint(c.Writer, "data: [DONE]\n\n")
  flusher.Flush()
}
