package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"membersCardAPI/internal/apperrors"
	"membersCardAPI/internal/types/member"
	"membersCardAPI/internal/validation"
)

// MembersCardService is the lifecycle surface the handler dispatches to.
type MembersCardService interface {
	Init(ctx context.Context, userID string) (*member.Record, error)
	Buy(ctx context.Context, userID, language string) (*member.Record, error)
}

// TokenVerifier resolves an id token to a verified user id.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken, channelID string) (string, error)
}

// MembersCardHandler is the single boundary of the backend. The same core
// serves API Gateway (Lambda) and the local mux server.
type MembersCardHandler struct {
	service       MembersCardService
	verifier      TokenVerifier
	liffChannelID string
	logger        *zap.Logger
}

func NewMembersCardHandler(service MembersCardService, verifier TokenVerifier, liffChannelID string, logger *zap.Logger) *MembersCardHandler {
	return &MembersCardHandler{
		service:       service,
		verifier:      verifier,
		liffChannelID: liffChannelID,
		logger:        logger,
	}
}

// HandleMembersCard serves the request over plain HTTP (local server).
func (h *MembersCardHandler) HandleMembersCard(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status, payload := h.handle(r.Context(), body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// HandleLambda serves the request behind API Gateway.
func (h *MembersCardHandler) HandleLambda(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body := request.Body
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			h.logger.Error("base64 decode failed", zap.Error(err))
			status, payload := errorResponse(http.StatusBadRequest, "Invalid request body")
			return lambdaResponse(status, payload), nil
		}
		body = string(decoded)
	}

	status, payload := h.handle(ctx, []byte(body))
	return lambdaResponse(status, payload), nil
}

// handle runs the shared pipeline: parse, validate, resolve identity,
// dispatch on mode, serialize. Lower-layer failures all collapse into the
// generic error body; detail stays in the server-side log.
func (h *MembersCardHandler) handle(ctx context.Context, body []byte) (int, []byte) {
	var params validation.MembersCardParams
	if err := json.Unmarshal(body, &params); err != nil {
		h.logger.Error("request body parse failed", zap.Error(err))
		return errorResponse(http.StatusBadRequest, "Invalid request body")
	}

	if messages := validation.CheckMembersCardParams(&params); len(messages) > 0 {
		verr := &apperrors.ValidationError{Messages: messages}
		h.logger.Error("request validation failed", zap.String("errors", strings.Join(messages, ", ")))
		return errorResponse(http.StatusBadRequest, verr.Error())
	}

	userID, err := h.verifier.VerifyIDToken(ctx, params.IDToken, h.liffChannelID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			return errorResponse(http.StatusForbidden, "Forbidden")
		}
		h.logger.Error("id token verification failed", zap.Error(err))
		return errorResponse(http.StatusInternalServerError, "Error")
	}

	var rec *member.Record
	switch params.Mode {
	case "init":
		rec, err = h.service.Init(ctx, userID)
	case "buy":
		rec, err = h.service.Buy(ctx, userID, params.Language)
	default:
		verr := &apperrors.ValidationError{Messages: []string{"unknown mode: " + params.Mode}}
		h.logger.Error("unknown mode", zap.String("mode", params.Mode))
		return errorResponse(http.StatusBadRequest, verr.Error())
	}
	if err != nil {
		h.logger.Error("members card operation failed",
			zap.String("mode", params.Mode),
			zap.String("userId", userID),
			zap.Error(err))
		return errorResponse(http.StatusInternalServerError, "ERROR")
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		h.logger.Error("response serialization failed", zap.Error(err))
		return errorResponse(http.StatusInternalServerError, "ERROR")
	}
	return http.StatusOK, payload
}

func errorResponse(status int, message string) (int, []byte) {
	payload, _ := json.Marshal(map[string]string{"error": message})
	return status, payload
}

func lambdaResponse(status int, payload []byte) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(payload),
	}
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	_, payload := errorResponse(status, message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}
