// Package api provides the REST API server for projectconverter
package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/git-moss/ProjectConverter-sub000/pkg/converter"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title ProjectConverter API
// @version 1.0
// @description API for converting between REAPER and DAWproject project files
// @host localhost:8080
// @BasePath /api/v1

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/convert/reaper2daw", handleReaperToDaw)
		v1.POST("/convert/daw2reaper", handleDawToReaper)
		v1.POST("/convert/midi2reaper", handleMidiToReaper)
		v1.POST("/convert/reaper2midi", handleReaperToMidi)
		v1.GET("/formats", listFormats)
		v1.GET("/plugins", listPluginFormats)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r.Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "projectconverter",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported file formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"reaper", "dawproject", "midi"},
		"conversions": converter.GetSupportedConversions(),
	})
}

// listPluginFormats godoc
// @Summary List supported plugin formats
// @Description Returns the plugin state formats the converter can embed
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]map[string]string
// @Router /api/v1/plugins [get]
func listPluginFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"plugins": []map[string]string{
			{"id": "vst2", "name": "VST 2.x", "extension": ".fxp"},
			{"id": "vst3", "name": "VST 3", "extension": ".vstpreset"},
			{"id": "clap", "name": "CLAP", "extension": ".clap-preset"},
		},
	})
}

// handleReaperToDaw godoc
// @Summary Convert a REAPER project to .dawproject
// @Description Upload a .rpp file and receive a .dawproject file
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "REAPER project to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/reaper2daw [post]
func handleReaperToDaw(c *gin.Context) {
	handleConversion(c, converter.FormatReaper, converter.FormatDawProject)
}

// handleDawToReaper godoc
// @Summary Convert a .dawproject file to a REAPER project
// @Description Upload a .dawproject file and receive a .rpp file
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "DAWproject file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/daw2reaper [post]
func handleDawToReaper(c *gin.Context) {
	handleConversion(c, converter.FormatDawProject, converter.FormatReaper)
}

// handleMidiToReaper godoc
// @Summary Import a MIDI file as a REAPER project
// @Description Upload a standard MIDI file and receive a .rpp file
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "MIDI file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/midi2reaper [post]
func handleMidiToReaper(c *gin.Context) {
	handleConversion(c, converter.FormatMIDI, converter.FormatReaper)
}

// handleReaperToMidi godoc
// @Summary Export a REAPER project as a MIDI file
// @Description Upload a .rpp file and receive a standard MIDI file
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "REAPER project to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/reaper2midi [post]
func handleReaperToMidi(c *gin.Context) {
	handleConversion(c, converter.FormatReaper, converter.FormatMIDI)
}

func formatExt(f converter.Format) string {
	switch f {
	case converter.FormatReaper:
		return ".rpp"
	case converter.FormatDawProject:
		return ".dawproject"
	case converter.FormatMIDI:
		return ".mid"
	default:
		return ""
	}
}

func handleConversion(c *gin.Context, from, to converter.Format) {
	// Get uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	// Read file content
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	// Project containers reference media by path, so conversions run
	// against files in a scratch directory rather than in memory.
	tmpDir, err := os.MkdirTemp("", "projectconverter")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create work directory"})
		return
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	inputPath := filepath.Join(tmpDir, "input"+formatExt(from))
	outputPath := filepath.Join(tmpDir, "output"+formatExt(to))
	if err := os.WriteFile(inputPath, data, 0644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return
	}

	conv := converter.New(converter.DefaultOptions())
	ctx := c.Request.Context()

	switch string(from) + "2" + string(to) {
	case "reaper2dawproject":
		err = conv.ReaperToDawProject(ctx, inputPath, outputPath)
	case "dawproject2reaper":
		err = conv.DawProjectToReaper(ctx, inputPath, outputPath)
	case "midi2reaper":
		err = conv.MIDIToReaper(ctx, inputPath, outputPath)
	case "reaper2midi":
		err = conv.ReaperToMIDI(ctx, inputPath, outputPath)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported conversion"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := os.ReadFile(outputPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read conversion result"})
		return
	}

	// Generate output filename
	outputName := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	if outputName == "" {
		outputName = "converted"
	}
	outputName += formatExt(to)

	// Set content type and headers
	var contentType string
	switch to {
	case converter.FormatMIDI:
		contentType = "audio/midi"
	case converter.FormatDawProject:
		contentType = "application/zip"
	default:
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Data(http.StatusOK, contentType, result)
}
