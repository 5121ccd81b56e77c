package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taxpayers/backend/internal/infrastructure/storage"
)

// siteFiles are the documents the front end loads first
var siteFiles = []string{"statistics.json", "top_taxpayers.json"}

// SiteHandler serves the generated site data directory
type SiteHandler struct {
	root      http.FileSystem
	dataDir   string
	startTime time.Time
}

// NewSiteHandler creates a SiteHandler rooted at dataDir
func NewSiteHandler(dataDir string) *SiteHandler {
	return &SiteHandler{
		root:      http.Dir(dataDir),
		dataDir:   dataDir,
		startTime: time.Now(),
	}
}

// HealthResponse is the body of /healthz
type HealthResponse struct {
	Status    string          `json:"status"`
	DataDir   string          `json:"data_dir"`
	Files     map[string]bool `json:"files"`
	GoVersion string          `json:"go_version"`
	Uptime    string          `json:"uptime"`
}

// Health reports whether the data directory holds the site documents.
// Missing documents degrade the status but still answer 200 so the preview
// stays reachable while the pipeline runs.
func (h *SiteHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		DataDir:   h.dataDir,
		Files:     make(map[string]bool, len(siteFiles)),
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	for _, name := range siteFiles {
		info, err := os.Stat(filepath.Join(h.dataDir, name))
		present := err == nil && !info.IsDir()
		resp.Files[name] = present
		if !present {
			resp.Status = "degraded"
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ServeData serves one file below the data directory. Range requests are
// answered with 206 so Parquet readers can fetch single row groups.
func (h *SiteHandler) ServeData(c *gin.Context) {
	name := path.Clean("/" + c.Param("filepath"))

	f, err := h.root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		_ = c.Error(err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	if info.IsDir() {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	if contentType, ok := storage.ContentTypeFor(name); ok {
		c.Header("Content-Type", contentType)
	}
	c.Header("Cache-Control", "no-cache")
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}
