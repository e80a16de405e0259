package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	documentdomain "ladinglens-backend/internal/document/domain"
	documentrepo "ladinglens-backend/internal/document/repository"
	emaildomain "ladinglens-backend/internal/email/domain"
	emailusecase "ladinglens-backend/internal/email/usecase"
	"ladinglens-backend/internal/extraction"
	processingdomain "ladinglens-backend/internal/processing/domain"
	processingrepo "ladinglens-backend/internal/processing/repository"
	"ladinglens-backend/pkg/sse"

	"github.com/google/uuid"
)

// MailSource supplies raw threads and attachment bytes. The concrete
// Gmail client lives in pkg/gmail; tests inject their own.
type MailSource interface {
	FetchRecentThreads(ctx context.Context, limit int) ([]emaildomain.Thread, error)
	FetchAttachment(ctx context.Context, messageID string, attachment emaildomain.Attachment) ([]byte, error)
}

// PageConverter turns attachment bytes into normalized per-page text.
// Treated as a pure function at this boundary; conversion failures skip
// the attachment only.
type PageConverter interface {
	Convert(ctx context.Context, filename string, data []byte) ([]documentdomain.PageText, error)
}

// Options tune one batch run.
type Options struct {
	// SkipDedupe forces reprocessing of already-committed keys by
	// suffixing each dedupe key with a random fragment. Diagnostic use.
	SkipDedupe bool
}

// Config holds the processor's batch tuning.
type Config struct {
	// FetchLimit caps how many recent threads one batch pulls.
	FetchLimit int
	// JobRetention is how many finished jobs to keep before eviction.
	JobRetention int
}

// Processor is the job orchestrator: it runs one ingestion batch as a
// cancellable unit of work, emits a live event sequence, and owns all
// mutation of the job registry. Nothing below it may terminate a batch;
// every per-item failure becomes a counter and an error event.
type Processor struct {
	mail       MailSource
	converter  PageConverter
	engine     *extraction.Engine
	classifier *emailusecase.Classifier
	docRepo    documentrepo.DocumentRepository
	incidents  documentrepo.IncidentRepository
	jobs       processingrepo.JobRepository
	sseManager *sse.Manager

	fetchLimit   int
	jobRetention int

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewProcessor wires the orchestrator from its collaborators.
func NewProcessor(
	mail MailSource,
	converter PageConverter,
	engine *extraction.Engine,
	classifier *emailusecase.Classifier,
	docRepo documentrepo.DocumentRepository,
	incidents documentrepo.IncidentRepository,
	jobs processingrepo.JobRepository,
	sseManager *sse.Manager,
	cfg Config,
) *Processor {
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 10
	}
	if cfg.JobRetention <= 0 {
		cfg.JobRetention = 50
	}
	return &Processor{
		mail:         mail,
		converter:    converter,
		engine:       engine,
		classifier:   classifier,
		docRepo:      docRepo,
		incidents:    incidents,
		jobs:         jobs,
		sseManager:   sseManager,
		fetchLimit:   cfg.FetchLimit,
		jobRetention: cfg.JobRetention,
		cancels:      make(map[string]context.CancelFunc),
	}
}

// Trigger creates a job, starts the batch in the background, and returns
// immediately with the job and a subscription to its event feed. The
// returned cancel func releases the subscription; it does not stop the
// batch (use Cancel for that). The feed channel closes after the terminal
// event.
func (p *Processor) Trigger(opts Options) (*processingdomain.Job, <-chan interface{}, func(), error) {
	job := &processingdomain.Job{
		ID:        uuid.New().String(),
		State:     processingdomain.JobPending,
		StartedAt: time.Now(),
	}
	if err := p.jobs.Create(job); err != nil {
		return nil, nil, nil, fmt.Errorf("create job record: %w", err)
	}

	// Subscribe before the run goroutine starts so no event can be lost.
	events, unsubscribe := p.sseManager.Subscribe(job.ID)

	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.cancels[job.ID] = cancel
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			delete(p.cancels, job.ID)
			p.mu.Unlock()
			cancel()
		}()
		p.run(ctx, job, opts)
	}()

	return job, events, unsubscribe, nil
}

// Cancel requests that a running job stop pulling new work. Segments
// already past the dedup conditional-write point finish normally so no
// partially-committed result is left behind.
func (p *Processor) Cancel(jobID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	cancel, ok := p.cancels[jobID]
	if ok {
		cancel()
	}
	return ok
}

// GetJob exposes the registry for poll-by-id status queries.
func (p *Processor) GetJob(jobID string) (*processingdomain.Job, error) {
	return p.jobs.GetByID(jobID)
}

// batchState carries the per-run accumulators shared across segment
// goroutines.
type batchState struct {
	mu      sync.Mutex
	summary processingdomain.ProcessingSummary
}

func (b *batchState) add(mutate func(*processingdomain.ProcessingSummary)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	mutate(&b.summary)
}

func (b *batchState) snapshot() processingdomain.ProcessingSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.summary
}

func (p *Processor) run(ctx context.Context, job *processingdomain.Job, opts Options) {
	log.Printf("[Processor] starting job %s (skip_dedupe=%v)", job.ID, opts.SkipDedupe)

	job.State = processingdomain.JobRunning
	if err := p.jobs.Update(job); err != nil {
		log.Printf("[Processor] failed to mark job %s running: %v", job.ID, err)
	}

	state := &batchState{}

	threads, err := p.mail.FetchRecentThreads(ctx, p.fetchLimit)
	if err != nil {
		// Setup failure: the transport collaborator is unavailable before
		// any thread was processed. Batch-fatal, no further events.
		log.Printf("[Processor] job %s setup failure: %v", job.ID, err)
		p.finishJob(job, state, processingdomain.JobFailed, fmt.Sprintf("failed to fetch emails: %v", err))
		p.sseManager.Close(job.ID)
		return
	}

	p.publishStatus(job.ID, fmt.Sprintf("Fetched %d threads from Gmail", len(threads)))

	for _, thread := range threads {
		if ctx.Err() != nil {
			p.publishStatus(job.ID, "Cancellation requested, stopping after in-flight segments")
			break
		}
		p.processThread(ctx, job.ID, thread, state, opts)

		// Keep the poll view live between threads.
		job.Summary = state.snapshot()
		if err := p.jobs.Update(job); err != nil {
			log.Printf("[Processor] failed to update job %s summary: %v", job.ID, err)
		}
	}

	p.finishJob(job, state, processingdomain.JobCompleted, "")

	summary := state.snapshot()
	p.sseManager.Publish(job.ID, processingdomain.Event{
		Type:    processingdomain.EventComplete,
		Summary: &summary,
	})
	p.sseManager.Close(job.ID)

	if err := p.jobs.Prune(p.jobRetention); err != nil {
		log.Printf("[Processor] job pruning failed: %v", err)
	}

	log.Printf("[Processor] job %s done: %d emails, %d docs, %d duplicates, %d errors",
		job.ID, summary.EmailsProcessed, summary.DocsCreated, summary.SkippedDuplicates, summary.Errors)
}

func (p *Processor) finishJob(job *processingdomain.Job, state *batchState, terminal processingdomain.JobState, errMsg string) {
	now := time.Now()
	job.State = terminal
	job.CompletedAt = &now
	job.Summary = state.snapshot()
	job.Error = errMsg
	if err := p.jobs.Update(job); err != nil {
		log.Printf("[Processor] failed to finalize job %s: %v", job.ID, err)
	}
}

func (p *Processor) processThread(ctx context.Context, jobID string, thread emaildomain.Thread, state *batchState, opts Options) {
	state.add(func(s *processingdomain.ProcessingSummary) { s.EmailsProcessed++ })

	msg, err := emailusecase.ResolveLatest(thread)
	if err != nil {
		p.recordError(jobID, state, fmt.Sprintf("thread %s: %v", thread.ID, err), "", "")
		return
	}

	body := emailusecase.CleanBody(msg.Body)
	status := p.classifier.Classify(body)

	subject := msg.Subject
	if runes := []rune(subject); len(runes) > 50 {
		subject = string(runes[:50])
	}

	if status == emaildomain.StatusUnknown {
		p.publishStatus(jobID, fmt.Sprintf("Skipping email %q - not a pre-alert or draft", subject))
		return
	}

	p.publishStatus(jobID, fmt.Sprintf("Processing email as %s: %s", status, subject))

	for _, attachment := range msg.Attachments {
		if !strings.HasSuffix(strings.ToLower(attachment.Filename), ".pdf") {
			continue
		}
		state.add(func(s *processingdomain.ProcessingSummary) { s.AttachmentsProcessed++ })
		p.processAttachment(ctx, jobID, msg, attachment, status, state, opts)
	}
}

func (p *Processor) processAttachment(
	ctx context.Context,
	jobID string,
	msg emaildomain.Message,
	attachment emaildomain.Attachment,
	status emaildomain.EmailStatus,
	state *batchState,
	opts Options,
) {
	data := attachment.Data
	if len(data) == 0 {
		var err error
		data, err = p.mail.FetchAttachment(ctx, msg.ID, attachment)
		if err != nil {
			p.recordError(jobID, state, fmt.Sprintf("failed to fetch attachment %s: %v", attachment.Filename, err), msg.ID, attachment.Filename)
			return
		}
	}

	pages, err := p.converter.Convert(ctx, attachment.Filename, data)
	if err != nil {
		p.recordError(jobID, state, fmt.Sprintf("PDF conversion failed for %s: %v", attachment.Filename, err), msg.ID, attachment.Filename)
		return
	}

	segments := extraction.SegmentPages(pages)

	// Segments are independent: deterministic extraction is pure and the
	// engine bounds its own fallback concurrency, so fan out and let slow
	// generative calls overlap.
	var wg sync.WaitGroup
	for _, segment := range segments {
		wg.Add(1)
		go func(seg documentdomain.Segment) {
			defer wg.Done()
			p.processSegment(ctx, jobID, msg, attachment, seg, status, state, opts)
		}(segment)
	}
	wg.Wait()
}

func (p *Processor) processSegment(
	ctx context.Context,
	jobID string,
	msg emaildomain.Message,
	attachment emaildomain.Attachment,
	segment documentdomain.Segment,
	status emaildomain.EmailStatus,
	state *batchState,
	opts Options,
) {
	key := documentdomain.DedupeKey(msg.ID, attachment.Filename, segment.StartPage)
	if opts.SkipDedupe {
		key = fmt.Sprintf("%s_%s", key, uuid.New().String()[:8])
	} else {
		dedupeStatus, err := p.docRepo.CheckKey(key)
		if err != nil {
			p.recordError(jobID, state, fmt.Sprintf("dedupe check failed for %s: %v", attachment.Filename, err), msg.ID, attachment.Filename)
			return
		}
		switch dedupeStatus {
		case documentdomain.DedupeExists:
			state.add(func(s *processingdomain.ProcessingSummary) { s.SkippedDuplicates++ })
			return
		case documentdomain.DedupePermanentlyFailed:
			p.publishStatus(jobID, fmt.Sprintf("Skipping pages %d-%d of %s: previously failed permanently",
				segment.StartPage, segment.EndPage, attachment.Filename))
			return
		}
	}

	extracted, err := p.engine.Extract(ctx, segment, status)
	if err != nil {
		failErr := p.docRepo.MarkFailed(&documentdomain.FailedExtraction{
			DedupeKey:          key,
			Reason:             err.Error(),
			SourceEmailID:      msg.ID,
			AttachmentFilename: attachment.Filename,
		})
		if failErr != nil {
			log.Printf("[Processor] failed to record permanent failure for %s: %v", key, failErr)
		}
		p.recordError(jobID, state, fmt.Sprintf("extraction failed on pages %d-%d of %s: %v",
			segment.StartPage, segment.EndPage, attachment.Filename, err), msg.ID, attachment.Filename)
		return
	}

	result := &documentdomain.ExtractionResult{
		DocumentExtraction: *extracted,
		SourceEmailID:      msg.ID,
		SourceSubject:      msg.Subject,
		SourceFrom:         msg.From,
		SourceReceivedAt:   msg.ReceivedAt,
		AttachmentFilename: attachment.Filename,
		PageRange:          []int{segment.StartPage, segment.EndPage},
		DedupeKey:          key,
		CreatedAt:          time.Now(),
	}

	created, err := p.docRepo.CreateIfAbsent(result)
	if err != nil {
		p.recordError(jobID, state, fmt.Sprintf("failed to store document %s: %v", key, err), msg.ID, attachment.Filename)
		return
	}
	if !created {
		// A concurrent batch won the conditional write.
		state.add(func(s *processingdomain.ProcessingSummary) { s.SkippedDuplicates++ })
		return
	}

	state.add(func(s *processingdomain.ProcessingSummary) { s.DocsCreated++ })
	p.sseManager.Publish(jobID, processingdomain.Event{
		Type:     processingdomain.EventDocument,
		Document: result,
	})
}

func (p *Processor) recordError(jobID string, state *batchState, message, emailID, attachment string) {
	state.add(func(s *processingdomain.ProcessingSummary) { s.Errors++ })

	if err := p.incidents.Create(&documentdomain.Incident{
		JobID:              jobID,
		Message:            message,
		SourceEmailID:      emailID,
		AttachmentFilename: attachment,
	}); err != nil {
		log.Printf("[Processor] failed to persist incident: %v", err)
	}

	p.sseManager.Publish(jobID, processingdomain.Event{
		Type:    processingdomain.EventError,
		Message: message,
	})
}

func (p *Processor) publishStatus(jobID, message string) {
	p.sseManager.Publish(jobID, processingdomain.Event{
		Type:    processingdomain.EventStatus,
		Message: message,
	})
}
