package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/immxrtalbeast/chatrooms/internal/api/http/converter"
	"github.com/immxrtalbeast/chatrooms/internal/domain"
	"github.com/immxrtalbeast/chatrooms/internal/repository"
	"github.com/immxrtalbeast/chatrooms/internal/service"
	"github.com/immxrtalbeast/chatrooms/internal/validate"
	"github.com/immxrtalbeast/chatrooms/lib/logger/sl"
)

type RoomController struct {
	rooms    service.RoomInteractor
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewRoomController(rooms service.RoomInteractor, log *slog.Logger) *RoomController {
	if log == nil {
		log = slog.Default()
	}
	return &RoomController{
		rooms: rooms,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (c *RoomController) CreateRoom(ctx *gin.Context) {
	room, err := c.rooms.CreateRoom(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": room.Code})
}

func (c *RoomController) GetRoom(ctx *gin.Context) {
	room, err := c.rooms.GetRoom(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"room": converter.RoomToApi(room)})
}

func (c *RoomController) ListMembers(ctx *gin.Context) {
	members, err := c.rooms.ListMembers(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"members": members})
}

func (c *RoomController) ListMessages(ctx *gin.Context) {
	history, err := c.rooms.History(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"messages": converter.MessagesToApi(history)})
}

func (c *RoomController) RemoveRoom(ctx *gin.Context) {
	removed, err := c.rooms.RemoveRoomIfEmpty(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !removed {
		ctx.JSON(http.StatusConflict, gin.H{"error": "room still has members"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"removed": true})
}

// JoinRoom upgrades the request to a websocket and binds the connection
// to a room membership for its whole lifetime. Join-time failures are
// reported as an error event and close the socket; the caller retries
// with a new connection.
func (c *RoomController) JoinRoom(ctx *gin.Context) {
	code := ctx.Param("code")

	// Resolve the room before upgrading so an unknown code is a clean 404.
	if _, err := c.rooms.GetRoom(ctx.Request.Context(), code); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	requestedName := ctx.Query("name")
	if requestedName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.log.Error("websocket upgrade failed", sl.Err(err))
		return
	}

	member := domain.NewMember(uuid.New().String(), requestedName, ctx.ClientIP())
	sess := newSession(code, member, conn, c.rooms, c.log)
	go sess.writePump()

	if err := c.rooms.Join(context.Background(), code, member); err != nil {
		sess.reject(err)
		return
	}

	sess.readLoop()
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrRoomNotFound):
		return "room not found"
	case errors.Is(err, service.ErrNameTaken):
		return "display name already taken"
	case errors.Is(err, service.ErrNotJoined):
		return "not joined"
	case errors.Is(err, service.ErrRateLimited):
		return "rate limit exceeded, please wait"
	case errors.Is(err, validate.ErrInvalidUsername):
		return "invalid username"
	case errors.Is(err, validate.ErrInvalidMessage):
		return "invalid message"
	default:
		return "internal error"
	}
}
