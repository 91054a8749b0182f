package httpsrv

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/waiwai24/free-ollama/internal/domain"
	"github.com/waiwai24/free-ollama/internal/ports"
)

func healthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

type scansAPI struct {
	store ports.ScanReportStore
}

type servicesResponse struct {
	ScanID   string                 `json:"scan_id"`
	Count    int                    `json:"count"`
	Services []domain.ServiceRecord `json:"services"`
}

func (a *scansAPI) latestScan(c *gin.Context) {
	report, ok := a.latest(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, report)
}

// services lists the services of the latest scan, optionally filtered with
// ?active=true|false.
func (a *scansAPI) services(c *gin.Context) {
	var filter *bool

	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "active must be a boolean"})
			return
		}

		filter = &active
	}

	report, ok := a.latest(c)
	if !ok {
		return
	}

	services := make([]domain.ServiceRecord, 0, len(report.Services))
	for _, s := range report.Services {
		if filter == nil || s.IsActive == *filter {
			services = append(services, s)
		}
	}

	c.JSON(http.StatusOK, servicesResponse{
		ScanID:   report.ScanID,
		Count:    len(services),
		Services: services,
	})
}

func (a *scansAPI) latest(c *gin.Context) (domain.ScanReport, bool) {
	report, ok, err := a.store.Latest(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load scan report"})

		return domain.ScanReport{}, false
	}

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scan has completed yet"})
		return domain.ScanReport{}, false
	}

	return report, true
}
