package delivery

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	processingdomain "ladinglens-backend/internal/processing/domain"
	"ladinglens-backend/internal/processing/usecase"

	"github.com/gin-gonic/gin"
)

// BatchRunner is the orchestrator surface the HTTP layer needs. The
// concrete usecase.Processor satisfies it; tests inject their own.
type BatchRunner interface {
	Trigger(opts usecase.Options) (*processingdomain.Job, <-chan interface{}, func(), error)
	Cancel(jobID string) bool
	GetJob(jobID string) (*processingdomain.Job, error)
}

// ProcessingHandler exposes batch triggering, the live event stream, and
// job status polling.
type ProcessingHandler struct {
	processor BatchRunner
}

// NewProcessingHandler creates a new ProcessingHandler
func NewProcessingHandler(processor BatchRunner) *ProcessingHandler {
	return &ProcessingHandler{
		processor: processor,
	}
}

// POST /api/process?skip_dedupe=<bool>
// Process runs one batch and responds with the final summary once the
// whole batch finishes. Intended for small or manual runs.
func (h *ProcessingHandler) Process(c *gin.Context) {
	opts := usecase.Options{SkipDedupe: c.Query("skip_dedupe") == "true"}

	job, events, unsubscribe, err := h.processor.Trigger(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer unsubscribe()

	// Drain the feed until the terminal event; the batch itself runs in
	// the orchestrator's goroutine.
	for raw := range events {
		event, ok := raw.(processingdomain.Event)
		if !ok {
			continue
		}
		if event.Type == processingdomain.EventComplete {
			c.JSON(http.StatusOK, event.Summary)
			return
		}
	}

	// Feed closed without a complete event. The registry holds the
	// terminal state; a dropped event must not turn a completed batch
	// into an error response.
	final, err := h.processor.GetJob(job.ID)
	if err != nil || final == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "batch failed before starting"})
		return
	}
	if final.State == processingdomain.JobCompleted {
		c.JSON(http.StatusOK, final.Summary)
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": final.Error, "job_id": final.ID})
}

// GET /api/process-stream?skip_dedupe=<bool>
// ProcessStream runs one batch and streams its events as Server-Sent
// Events. The connection closes after the complete event. A client
// disconnect releases the subscription but never stops the batch.
func (h *ProcessingHandler) ProcessStream(c *gin.Context) {
	opts := usecase.Options{SkipDedupe: c.Query("skip_dedupe") == "true"}

	job, events, unsubscribe, err := h.processor.Trigger(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	sawComplete := false

	for {
		select {
		case raw, open := <-events:
			if !open {
				if !sawComplete {
					h.writeTerminalEvent(c, job.ID)
				}
				return
			}
			event, ok := raw.(processingdomain.Event)
			if !ok {
				continue
			}
			if event.Type == processingdomain.EventComplete {
				sawComplete = true
			}
			writeSSE(c, event)
		case <-clientGone:
			log.Printf("[API] stream client for job %s disconnected", job.ID)
			return
		}
	}
}

// GET /api/jobs/:id
// GetJob is the poll-by-id status query.
func (h *ProcessingHandler) GetJob(c *gin.Context) {
	job, err := h.processor.GetJob(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// POST /api/jobs/:id/cancel
// CancelJob asks a running batch to stop pulling new threads. In-flight
// segments past the dedup write point finish normally.
func (h *ProcessingHandler) CancelJob(c *gin.Context) {
	if !h.processor.Cancel(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job is not running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancellation requested"})
}

// writeTerminalEvent closes the loop when the feed ended without a
// complete event, reporting the job's actual terminal state from the
// registry rather than assuming failure.
func (h *ProcessingHandler) writeTerminalEvent(c *gin.Context, jobID string) {
	job, err := h.processor.GetJob(jobID)
	if err == nil && job != nil && job.State == processingdomain.JobCompleted {
		summary := job.Summary
		writeSSE(c, processingdomain.Event{
			Type:    processingdomain.EventComplete,
			Summary: &summary,
		})
		return
	}

	message := "batch failed before starting"
	if err == nil && job != nil && job.Error != "" {
		message = job.Error
	}
	writeSSE(c, processingdomain.Event{
		Type:    processingdomain.EventError,
		Message: message,
	})
}

func writeSSE(c *gin.Context, event processingdomain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[API] failed to marshal SSE event: %v", err)
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
	c.Writer.Flush()
}
