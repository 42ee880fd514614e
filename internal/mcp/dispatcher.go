package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrorMarker prefixes the text of every error envelope.
const ErrorMarker = "❌"

// InvocationRequest is one inbound call to a capability.
type InvocationRequest struct {
	ID   json.RawMessage
	Kind Kind
	Name string
	Args map[string]any
}

// Envelope is the uniform response to an invocation. Content is never empty.
type Envelope struct {
	ID          json.RawMessage
	Content     []ContentBlock
	Annotations *Annotations
	IsError     bool
	Cause       Cause

	// Set for execution failures.
	Class string
}

// Text joins the text of all blocks; convenient for error envelopes.
func (e *Envelope) Text() string {
	var s string
	for i, b := range e.Content {
		if i > 0 {
			s += "\n"
		}
		s += b.Text
	}
	return s
}

// Dispatcher resolves, validates and executes invocations. Dispatch is safe
// to call from many goroutines once the registry is sealed.
type Dispatcher struct {
	reg *Registry
	log logrus.FieldLogger
	now func() time.Time
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger used for per-invocation entries.
func WithLogger(l logrus.FieldLogger) DispatcherOption {
	return func(d *Dispatcher) { d.log = l }
}

// NewDispatcher seals reg and returns a dispatcher over it.
func NewDispatcher(reg *Registry, opts ...DispatcherOption) *Dispatcher {
	reg.Seal()
	d := &Dispatcher{reg: reg, log: logrus.StandardLogger(), now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the sealed registry.
func (d *Dispatcher) Registry() *Registry { return d.reg }

// Dispatch runs one invocation to completion. Handler faults, including
// panics, are reported in the envelope and never escape.
func (d *Dispatcher) Dispatch(ctx context.Context, req InvocationRequest) *Envelope {
	start := d.now()
	log := d.log.WithFields(logrus.Fields{
		"kind":       req.Kind,
		"name":       req.Name,
		"request":    string(req.ID),
		"invocation": uuid.NewString(),
	})

	desc, err := d.reg.Resolve(req.Kind, req.Name)
	if err != nil {
		log.WithError(err).Warn("mcp call rejected")
		return errorEnvelope(req.ID, CauseUnknownCapability, "", err.Error())
	}

	args, err := Validate(desc.Schema, req.Args)
	if err != nil {
		log.WithError(err).Warn("mcp call rejected")
		return errorEnvelope(req.ID, CauseInvalidArguments, "", err.Error())
	}

	res, err := invoke(ctx, desc.Handler, args)
	if err == nil {
		var (
			blocks []ContentBlock
			ann    *Annotations
		)
		blocks, ann, err = Encode(res)
		if err == nil {
			log.WithField("elapsed", d.now().Sub(start)).Info("mcp call")
			return &Envelope{ID: req.ID, Content: blocks, Annotations: ann}
		}
		err = &ExecutionError{Class: ClassEncoding, Message: err.Error(), Err: err}
	}

	ee := Classify(err)
	log.WithFields(logrus.Fields{
		"cause":   CauseExecutionFailed,
		"class":   ee.Class,
		"elapsed": d.now().Sub(start),
	}).WithError(err).Error("mcp call failed")
	return errorEnvelope(req.ID, CauseExecutionFailed, ee.Class, ee.Message)
}

func invoke(ctx context.Context, h HandlerFunc, args Args) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &ExecutionError{Class: ClassPanic, Message: fmt.Sprint(r)}
		}
	}()
	return h(ctx, args)
}

func errorEnvelope(id json.RawMessage, cause Cause, class, msg string) *Envelope {
	return &Envelope{
		ID:      id,
		Content: []ContentBlock{TextBlock(fmt.Sprintf("%s %s: %s", ErrorMarker, cause, msg))},
		IsError: true,
		Cause:   cause,
		Class:   class,
	}
}
