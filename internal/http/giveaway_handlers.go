package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/open-builders/gws-backend/internal/common/errors"
	"github.com/open-builders/gws-backend/internal/common/middleware"
	dg "github.com/open-builders/gws-backend/internal/domain/giveaway"
	du "github.com/open-builders/gws-backend/internal/domain/user"
	gsvc "github.com/open-builders/gws-backend/internal/service/giveaway"
)

// GiveawayService is the coordinator surface used by the handlers.
type GiveawayService interface {
	Create(ctx context.Context, in gsvc.CreateInput) (*dg.Giveaway, error)
	Get(ctx context.Context, id string) (*dg.Giveaway, error)
	List(ctx context.Context) ([]dg.Giveaway, error)
	Join(ctx context.Context, giveawayID, userID string) (*dg.Giveaway, error)
	ManualDraw(ctx context.Context, giveawayID string) (*gsvc.DrawResult, error)
	Update(ctx context.Context, giveawayID string, p dg.Patch) (*dg.Giveaway, error)
}

// GiveawayHandlers serves /api/gws.
type GiveawayHandlers struct {
	service GiveawayService
	users   du.Repository
}

func NewGiveawayHandlers(svc GiveawayService, users du.Repository) *GiveawayHandlers {
	return &GiveawayHandlers{service: svc, users: users}
}

func (h *GiveawayHandlers) Register(r *gin.RouterGroup, secret string) {
	auth := middleware.RequireAuth(secret)
	admin := middleware.RequireAdmin()

	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.POST("", auth, admin, h.create)
	r.POST("/:id/join", auth, h.join)
	r.PATCH("/:id", auth, admin, h.update)
	r.POST("/:id/draw", auth, admin, h.draw)
}

type createGiveawayReq struct {
	Title   string    `json:"title" binding:"required"`
	EndTime time.Time `json:"endTime" binding:"required"`
}

type updateGiveawayReq struct {
	WinnerID *string   `json:"winnerId"`
	State    *dg.State `json:"state"`
}

type giveawayResponse struct {
	Message string       `json:"message"`
	GWS     *dg.Giveaway `json:"gws"`
}

type winnerView struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

type drawResponse struct {
	Message string       `json:"message"`
	Winner  *winnerView  `json:"winner"`
	GWS     *dg.Giveaway `json:"gws"`
}

// list godoc
// @Summary List giveaways
// @Tags gws
// @Produce json
// @Success 200 {array} giveaway.Giveaway
// @Failure 500 {object} middleware.ErrorResponse
// @Router /gws [get]
func (h *GiveawayHandlers) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, toAppError(err))
		return
	}
	c.JSON(http.StatusOK, list)
}

// get godoc
// @Summary Get giveaway by ID
// @Tags gws
// @Produce json
// @Param id path string true "Giveaway ID"
// @Success 200 {object} giveaway.Giveaway
// @Failure 404 {object} middleware.ErrorResponse
// @Router /gws/{id} [get]
func (h *GiveawayHandlers) get(c *gin.Context) {
	g, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, toAppError(err))
		return
	}
	c.JSON(http.StatusOK, g)
}

// create godoc
// @Summary Create a giveaway
// @Tags gws
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body createGiveawayReq true "Giveaway"
// @Success 201 {object} giveawayResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /gws [post]
func (h *GiveawayHandlers) create(c *gin.Context) {
	var req createGiveawayReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, apperrors.NewValidationError("body", err.Error()))
		return
	}
	g, err := h.service.Create(c.Request.Context(), gsvc.CreateInput{Title: req.Title, EndTime: req.EndTime})
	if err != nil {
		middleware.RespondError(c, toAppError(err))
		return
	}
	c.JSON(http.StatusCreated, giveawayResponse{Message: "GWS created", GWS: g})
}

// join godoc
// @Summary Join a giveaway
// @Description Requires a wagering platform username and a positive wager in the current period.
// @Tags gws
// @Produce json
// @Security BearerAuth
// @Param id path string true "Giveaway ID"
// @Success 200 {object} giveawayResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /gws/{id}/join [post]
func (h *GiveawayHandlers) join(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		middleware.RespondError(c, apperrors.NewUnauthorizedError("Access denied"))
		return
	}
	g, err := h.service.Join(c.Request.Context(), c.Param("id"), claims.ID)
	if err != nil {
		middleware.RespondError(c, toAppError(err))
		return
	}
	c.JSON(http.StatusOK, giveawayResponse{Message: "Joined GWS", GWS: g})
}

// update godoc
// @Summary Correct winner or state
// @Tags gws
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Giveaway ID"
// @Param input body updateGiveawayReq true "Patch"
// @Success 200 {object} giveawayResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /gws/{id} [patch]
func (h *GiveawayHandlers) update(c *gin.Context) {
	var req updateGiveawayReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, apperrors.NewValidationError("body", err.Error()))
		return
	}
	g, err := h.service.Update(c.Request.Context(), c.Param("id"), dg.Patch{Winner: req.WinnerID, State: req.State})
	if err != nil {
		middleware.RespondError(c, toAppError(err))
		return
	}
	c.JSON(http.StatusOK, giveawayResponse{Message: "GWS updated", GWS: g})
}

// draw godoc
// @Summary Draw the winner now
// @Tags gws
// @Produce json
// @Security BearerAuth
// @Param id path string true "Giveaway ID"
// @Success 200 {object} drawResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /gws/{id}/draw [post]
func (h *GiveawayHandlers) draw(c *gin.Context) {
	res, err := h.service.ManualDraw(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, toAppError(err))
		return
	}
	resp := drawResponse{Message: "No participants, GWS closed", GWS: res.Giveaway}
	if res.Winner != nil {
		resp.Message = "Winner selected"
		resp.Winner = h.winner(c.Request.Context(), *res.Winner)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GiveawayHandlers) winner(ctx context.Context, id string) *winnerView {
	v := &winnerView{ID: id}
	if h.users == nil {
		return v
	}
	if u, err := h.users.GetByID(ctx, id); err == nil {
		v.Username = u.Username
	}
	return v
}
