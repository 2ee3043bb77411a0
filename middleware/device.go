package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// DeviceIDHeader names the header that selects a device-local catalog
const DeviceIDHeader = "X-Device-ID"

const deviceIDKey = "device_id"

var deviceIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// RequireDeviceID rejects requests without a well-formed X-Device-ID header
func RequireDeviceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(DeviceIDHeader)
		if !deviceIDPattern.MatchString(id) {
			abortWithError(c, http.StatusBadRequest, "INVALID_DEVICE_ID",
				"X-Device-ID header must be 8 to 64 letters, digits, '-' or '_'")
			return
		}
		c.Set(deviceIDKey, id)
		c.Next()
	}
}

// GetDeviceID returns the device id set by RequireDeviceID
func GetDeviceID(c *gin.Context) string {
	return c.GetString(deviceIDKey)
}
