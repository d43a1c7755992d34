package live

import (
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gradebench/internal/metrics"
	"gradebench/internal/runner"
)

// Controller runs the live UI and implements runner.RunObserver.
type Controller struct {
	events    chan Event
	program   *tea.Program
	done      chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

// Start launches a live UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 256)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithInput(nil))
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go func() {
		_, _ = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close signals the UI to stop.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		close(c.events)
	})
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// OnRunStart forwards run start events to the UI.
func (c *Controller) OnRunStart(runID string, model string, techniques []string) {
	c.send(Event{Kind: EventRunStart, RunID: runID, Model: model, Techniques: techniques})
}

// OnTechniqueStart forwards technique start events to the UI.
func (c *Controller) OnTechniqueStart(technique string, total int) {
	c.send(Event{Kind: EventTechniqueStart, Technique: technique, Total: total})
}

// OnTrialDone forwards finished trials to the UI.
func (c *Controller) OnTrialDone(event runner.TrialEvent) {
	c.send(Event{Kind: EventTrial, Technique: event.Technique, Trial: event})
}

// OnTechniqueEnd forwards technique completion events to the UI.
func (c *Controller) OnTechniqueEnd(technique string, overall metrics.Metrics) {
	c.send(Event{Kind: EventTechniqueEnd, Technique: technique, Overall: overall})
}

// OnRunEnd forwards run completion events to the UI and closes it.
func (c *Controller) OnRunEnd(result runner.Result) {
	c.sendBlocking(Event{Kind: EventRunEnd, RunID: result.RunID})
	c.Close()
}

// send enqueues an event without blocking the caller. Trial events may be
// dropped under backpressure; lifecycle events are always delivered.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	event.At = c.now()
	if event.Kind != EventTrial {
		c.sendBlocking(event)
		return
	}
	select {
	case c.events <- event:
	default:
	}
}

func (c *Controller) sendBlocking(event Event) {
	if event.At.IsZero() {
		event.At = c.now()
	}
	select {
	case c.events <- event:
	case <-c.done:
	}
}
