package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"tempest/internal/app/auth"
	"tempest/internal/app/observe"
	"tempest/internal/app/ports"
	"tempest/internal/app/replay"
	"tempest/internal/app/session"
	"tempest/internal/app/status"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const sessionIDHeader = "X-Session-ID"
const sessionKeyHeader = "X-Session-Key"

type Handler struct {
	RegisterUC auth.RegisterUseCase
	AuthUC     auth.VerifyUseCase
	Session    *session.Controller
	ObserveUC  observe.UseCase
	StatusUC   status.UseCase
	ReplayUC   replay.UseCase
	KPI        kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	g := s.Group("/api/session")
	g.POST("/register", h.register)
	g.POST("/move", h.move)
	g.POST("/command", h.command)
	g.POST("/town", h.town)
	g.POST("/town/toggle", h.toggleTown)
	g.POST("/mission", h.mission)
	g.POST("/wait", h.wait)
	g.POST("/restart", h.restart)
	g.POST("/status", h.status)
	g.POST("/observe", h.observe)
	g.GET("/replay", h.replay)

	s.GET("/api/bestiary", h.bestiary)
	s.GET("/ops/kpi", h.kpi)
}

type moveRequest struct {
	X         *int   `json:"x,omitempty"`
	Y         *int   `json:"y,omitempty"`
	Direction string `json:"direction,omitempty"`
}

type commandRequest struct {
	Text string `json:"text"`
}

type missionRequest struct {
	MemberID    string `json:"member_id"`
	MissionType string `json:"mission_type,omitempty"`
}

func (h Handler) move(c context.Context, ctx *app.RequestContext) {
	sessionID, ok := h.authenticated(c, ctx)
	if !ok {
		return
	}
	var body moveRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.Session.Move(c, session.MoveRequest{
		SessionID: sessionID,
		X:         body.X,
		Y:         body.Y,
		Direction: body.Direction,
	})
	writeIntent(ctx, resp, err)
}

func (h Handler) command(c context.Context, ctx *app.RequestContext) {
	sessionID, ok := h.authenticated(c, ctx)
	if !ok {
		return
	}
	var body commandRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.Session.Command(c, session.CommandRequest{SessionID: sessionID, Text: body.Text})
	writeIntent(ctx, resp, err)
}

func (h Handler) town(c context.Context, ctx *app.RequestContext) {
	sessionID, ok := h.authenticated(c, ctx)
	if !ok {
		return
	}
	var body commandRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.Session.TownAction(c, session.CommandRequest{SessionID: sessionID, Text: body.Text})
	writeIntent(ctx, resp, err)
}

func (h Handler) mission(c context.Context, ctx *app.RequestContext) {
	sessionID, ok := h.authenticated(c, ctx)
	if !ok {
		return
	}
	var body missionRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.Session.DispatchMission(c, session.MissionRequest{
		SessionID:   sessionID,
		MemberID:    body.MemberID,
		MissionType: body.MissionType,
	})
	writeIntent(ctx, resp, err)
}

func (h Handler) toggleTown(c context.Context, ctx *app.RequestContext) {
	if sessionID, ok := h.authenticated(c, ctx); ok {
		resp, err := h.Session.ToggleTown(c, sessionID)
		writeIntent(ctx, resp, err)
	}
}

func (h Handler) wait(c context.Context, ctx *app.RequestContext) {
	if sessionID, ok := h.authenticated(c, ctx); ok {
		resp, err := h.Session.Wait(c, sessionID)
		writeIntent(ctx, resp, err)
	}
}

func (h Handler) restart(c context.Context, ctx *app.RequestContext) {
	if sessionID, ok := h.authenticated(c, ctx); ok {
		resp, err := h.Session.Restart(c, sessionID)
		writeIntent(ctx, resp, err)
	}
}

func (h Handler) status(c context.Context, ctx *app.RequestContext) {
	sessionID, ok := h.authenticated(c, ctx)
	if !ok {
		return
	}
	resp, err := h.StatusUC.Execute(c, status.Request{SessionID: sessionID})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) observe(c context.Context, ctx *app.RequestContext) {
	sessionID, ok := h.authenticated(c, ctx)
	if !ok {
		return
	}
	resp, err := h.ObserveUC.Execute(c, observe.Request{SessionID: sessionID})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	sessionID, ok := h.authenticated(c, ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	occurredFrom, _ := strconv.ParseInt(string(ctx.Query("occurred_from")), 10, 64)
	occurredTo, _ := strconv.ParseInt(string(ctx.Query("occurred_to")), 10, 64)
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		SessionID:    sessionID,
		Limit:        limit,
		OccurredFrom: occurredFrom,
		OccurredTo:   occurredTo,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) bestiary(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]any{"species": status.Bestiary()})
}

func (h Handler) register(c context.Context, ctx *app.RequestContext) {
	resp, err := h.RegisterUC.Execute(c, auth.RegisterRequest{})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// writeIntent answers an intent. Rejections are a normal 200 response with
// accepted=false; only infrastructure failures become error bodies.
func writeIntent(ctx *app.RequestContext, resp session.Response, err error) {
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

var ErrMissingSessionIDHeader = errors.New("missing x-session-id header")
var ErrMissingSessionKeyHeader = errors.New("missing x-session-key header")
var ErrMissingSessionCredentials = errors.New("missing session credentials")

func (h Handler) authenticated(c context.Context, ctx *app.RequestContext) (string, bool) {
	sessionID, err := h.requireAuthenticatedSession(c, ctx)
	if err != nil {
		writeError(ctx, err)
		return "", false
	}
	return sessionID, true
}

func (h Handler) requireAuthenticatedSession(c context.Context, ctx *app.RequestContext) (string, error) {
	sessionID := strings.TrimSpace(string(ctx.GetHeader(sessionIDHeader)))
	sessionKey := strings.TrimSpace(string(ctx.GetHeader(sessionKeyHeader)))
	if sessionID == "" && sessionKey == "" {
		return "", ErrMissingSessionCredentials
	}
	if sessionID == "" {
		return "", ErrMissingSessionIDHeader
	}
	if sessionKey == "" {
		return "", ErrMissingSessionKeyHeader
	}
	if err := h.AuthUC.Execute(c, auth.VerifyRequest{
		SessionID:  sessionID,
		SessionKey: sessionKey,
	}); err != nil {
		return "", err
	}
	return sessionID, nil
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ErrMissingSessionCredentials):
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_session_credentials", err.Error())
	case errors.Is(err, ErrMissingSessionIDHeader):
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_session_id", err.Error())
	case errors.Is(err, ErrMissingSessionKeyHeader):
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_session_key", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorBody(ctx, consts.StatusUnauthorized, "invalid_session_credentials", err.Error())
	case errors.Is(err, session.ErrInvalidRequest),
		errors.Is(err, auth.ErrInvalidRequest),
		errors.Is(err, observe.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest),
		errors.Is(err, status.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
