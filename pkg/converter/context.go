package converter

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/git-moss/ProjectConverter-sub000/pkg/timing"
)

// Context carries the state of one conversion run: ID allocation, the
// tempo map, media resolution, logging and cooperative cancellation.
// Every run gets a fresh Context; nothing survives between files, which
// keeps a Converter reusable across calls.
type Context struct {
	ctx  context.Context
	log  *log.Logger
	opts Options

	// Times couples the tempo timeline with the declared time bases.
	// Set once the project's tempo information has been read.
	Times *timing.TimeMap

	// Source and Sink resolve media references for the side being read
	// and the side being written.
	Source MediaSource
	Sink   MediaSink

	idSeq int
}

func newRunContext(ctx context.Context, opts Options, logger *log.Logger) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Context{
		ctx:   ctx,
		log:   logger,
		opts:  opts,
		Times: timing.NewTimeMap(timing.Constant(120)),
	}
}

// NextID returns a fresh element ID, "id0", "id1", ...
func (c *Context) NextID() string {
	id := fmt.Sprintf("id%d", c.idSeq)
	c.idSeq++
	return id
}

// Cancelled polls the external cancellation signal. Called between
// top-level units of work (tracks, devices, media files), never inside
// them.
func (c *Context) Cancelled() error {
	select {
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return nil
	}
}

// Logf records a conversion note, used where a broken device or clip is
// skipped rather than failing the run.
func (c *Context) Logf(format string, args ...any) {
	c.log.Printf(format, args...)
}
