package handler

import (
	"net/http"

	"catalogadmin/catalog-service/internal/app/catalog/hub"
	"catalogadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// LiveHandler подключает подписчиков live обновлений к hub
type LiveHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewLiveHandler создает обработчик live канала
// allowedOrigins - разрешенные Origin для браузерных подписчиков
func NewLiveHandler(h *hub.Hub, allowedOrigins []string) *LiveHandler {
	return &LiveHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// Subscribe обрабатывает GET /.well-known/updates?topic=...
// Параметр topic повторяемый, нужен хотя бы один
func (h *LiveHandler) Subscribe(c *gin.Context) {
	topics := c.QueryArray("topic")
	if len(topics) == 0 {
		respondError(c, http.StatusBadRequest, "At least one topic is required")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrader уже записал ответ с ошибкой
		logger.Warn().Err(err).Msg("Failed to upgrade live subscription")
		return
	}

	h.hub.Serve(conn, topics)
}
