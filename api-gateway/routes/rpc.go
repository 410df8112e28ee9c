package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inspeksi-backend/shared/database/models"
	sharedmw "inspeksi-backend/shared/middleware"
	utils "inspeksi-backend/shared/utils/auth"
	"inspeksi-backend/shared/utils/session"

	"github.com/gin-gonic/gin"
)

// RPCRequest is the single-endpoint procedure call envelope
type RPCRequest struct {
	Procedure string          `json:"procedure" binding:"required"`
	Input     json.RawMessage `json:"input"`
}

// rpcProcedure maps a procedure name onto an internal REST route.
// Paths may contain {field} placeholders filled from the input object;
// for GET calls the remaining input fields become query parameters.
type rpcProcedure struct {
	service  string
	method   string
	path     string
	minLevel int // levelPublic = no session required
}

const levelPublic = -1

var rpcProcedures = map[string]rpcProcedure{
	"auth.login":          {service: "auth", method: http.MethodPost, path: "/api/auth/login", minLevel: levelPublic},
	"auth.register":       {service: "auth", method: http.MethodPost, path: "/api/auth/register", minLevel: levelPublic},
	"auth.refresh":        {service: "auth", method: http.MethodPost, path: "/api/auth/refresh", minLevel: levelPublic},
	"auth.logout":         {service: "auth", method: http.MethodPost, path: "/api/auth/logout", minLevel: models.LevelMember},
	"auth.changePassword": {service: "auth", method: http.MethodPost, path: "/api/auth/change-password", minLevel: models.LevelMember},

	"subscriptions.checkout": {service: "billing", method: http.MethodPost, path: "/api/subscriptions/checkout", minLevel: models.LevelOwner},
	"subscriptions.list":     {service: "billing", method: http.MethodGet, path: "/api/subscriptions", minLevel: models.LevelAdmin},
	"subscriptions.get":      {service: "billing", method: http.MethodGet, path: "/api/subscriptions/{id}", minLevel: models.LevelAdmin},
	"subscriptions.plans":    {service: "billing", method: http.MethodGet, path: "/api/plans", minLevel: models.LevelMember},

	"inspections.create": {service: "inspection", method: http.MethodPost, path: "/api/inspections", minLevel: models.LevelInspector},
	"inspections.list":   {service: "inspection", method: http.MethodGet, path: "/api/inspections", minLevel: models.LevelMember},
	"inspections.get":    {service: "inspection", method: http.MethodGet, path: "/api/inspections/{id}", minLevel: models.LevelMember},
	"inspections.update": {service: "inspection", method: http.MethodPatch, path: "/api/inspections/{id}", minLevel: models.LevelInspector},
	"inspections.delete": {service: "inspection", method: http.MethodDelete, path: "/api/inspections/{id}", minLevel: models.LevelInspector},

	"stats.dashboard": {service: "inspection", method: http.MethodGet, path: "/api/stats/dashboard", minLevel: models.LevelAdmin},
}

// HandleRPC dispatches a {procedure, input} call to the mapped service route
// and wraps the downstream data as {result}.
// @Summary RPC dispatch endpoint
// @Description Single-endpoint procedure call interface used by the browser UI
// @Tags rpc
// @Accept json
// @Produce json
// @Param request body RPCRequest true "Procedure call"
// @Success 200 {object} map[string]interface{} "Wrapped result"
// @Failure 400 {object} map[string]string "Unknown procedure or bad input"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Insufficient role level"
// @Router /rpc [post]
func HandleRPC(ctx *gin.Context) {
	var req RPCRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	proc, exists := rpcProcedures[req.Procedure]
	if !exists {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Unknown procedure",
			"message": fmt.Sprintf("procedure %q is not registered", req.Procedure),
		})
		return
	}

	if proc.minLevel > levelPublic {
		if !authorizeRPC(ctx, proc.minLevel) {
			return
		}
	}

	input := map[string]interface{}{}
	if len(req.Input) > 0 {
		if err := json.Unmarshal(req.Input, &input); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid procedure input",
				"message": err.Error(),
			})
			return
		}
	}

	path, remaining, err := fillPathParams(proc.path, input)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid procedure input",
			"message": err.Error(),
		})
		return
	}

	status, body, err := callService(ctx, proc, path, remaining, req.Input)
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{
			"error":   "Service unavailable",
			"message": err.Error(),
		})
		return
	}

	if status < 200 || status >= 300 {
		var downstream interface{}
		if json.Unmarshal(body, &downstream) == nil {
			ctx.JSON(status, downstream)
		} else {
			ctx.JSON(status, gin.H{"error": "Upstream error"})
		}
		return
	}

	// Unwrap the service envelope so the caller sees {result: ...}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(body, &envelope) == nil && len(envelope.Data) > 0 {
		ctx.JSON(http.StatusOK, gin.H{"result": envelope.Data})
		return
	}
	var raw json.RawMessage = body
	ctx.JSON(http.StatusOK, gin.H{"result": raw})
}

// authorizeRPC validates the bearer token and role level for a procedure.
// Writes the error response and returns false when the call is rejected.
func authorizeRPC(ctx *gin.Context, minLevel int) bool {
	tokenString := sharedmw.ExtractTokenFromHeader(ctx)
	if tokenString == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
		return false
	}

	store := session.GetStore()
	if store == nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Session store unavailable"})
		return false
	}

	claims, _, err := utils.ValidateSession(ctx.Request.Context(), store, tokenString)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return false
	}

	if claims.RoleLevel < minLevel {
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":   "Insufficient role level",
			"message": "This procedure requires a higher role level",
		})
		return false
	}

	return true
}

// fillPathParams substitutes {field} placeholders from the input object and
// returns the input fields that were not consumed by the path.
func fillPathParams(path string, input map[string]interface{}) (string, map[string]interface{}, error) {
	remaining := make(map[string]interface{}, len(input))
	for k, v := range input {
		remaining[k] = v
	}

	for {
		start := strings.Index(path, "{")
		if start < 0 {
			return path, remaining, nil
		}
		end := strings.Index(path[start:], "}")
		if end < 0 {
			return "", nil, fmt.Errorf("malformed path template %q", path)
		}
		field := path[start+1 : start+end]
		value, ok := input[field]
		if !ok {
			return "", nil, fmt.Errorf("missing required input field %q", field)
		}
		path = path[:start] + url.PathEscape(fmt.Sprintf("%v", value)) + path[start+end+1:]
		delete(remaining, field)
	}
}

// callService performs the internal HTTP request for a procedure
func callService(ctx *gin.Context, proc rpcProcedure, path string, queryInput map[string]interface{}, rawInput json.RawMessage) (int, []byte, error) {
	serviceURL, exists := getServiceURLs()[proc.service]
	if !exists {
		return 0, nil, fmt.Errorf("service %q not configured", proc.service)
	}

	target := serviceURL + path
	var body io.Reader
	if proc.method == http.MethodGet || proc.method == http.MethodDelete {
		if len(queryInput) > 0 {
			values := url.Values{}
			for k, v := range queryInput {
				values.Set(k, fmt.Sprintf("%v", v))
			}
			target += "?" + values.Encode()
		}
	} else if len(rawInput) > 0 {
		body = bytes.NewReader(rawInput)
	}

	req, err := http.NewRequestWithContext(ctx.Request.Context(), proc.method, target, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth := ctx.GetHeader("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, respBody, nil
}
