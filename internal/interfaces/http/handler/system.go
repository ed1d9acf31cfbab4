package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

const apiName = "Contaro Inventory API"

// version is overridable at build time via -ldflags "-X ...handler.version=".
var version = "1.0.0"

// SystemHandler serves the unauthenticated service endpoints: liveness ping
// and build/uptime info. These routes skip company scoping.
type SystemHandler struct {
	BaseHandler
	startedAt time.Time
}

func NewSystemHandler() *SystemHandler {
	return &SystemHandler{startedAt: time.Now()}
}

type systemInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo reports the service name, version and uptime.
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, systemInfo{
		Name:      apiName,
		Version:   version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	})
}

type pingReply struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping answers pong with the server's current time.
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, pingReply{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
