// Package dispatch issues register/unregister requests and turns every result
// into user-facing feedback plus a re-sync decision.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"activities-cli/internal/client"
	"activities-cli/internal/model"
)

// Service is the part of the Remote Activity Service the dispatcher needs.
type Service interface {
	Signup(ctx context.Context, activity, participant string) (string, error)
	Unregister(ctx context.Context, activity, participant string) (string, error)
}

type Op string

const (
	OpRegister   Op = "register"
	OpUnregister Op = "unregister"
)

const (
	RegisterTTL   = 5 * time.Second
	UnregisterTTL = 4 * time.Second
)

const (
	MsgMissingInput        = "Please choose an activity and enter an email."
	MsgRegisterFallback    = "An error occurred"
	MsgRegisterTransport   = "Failed to sign up. Please try again."
	MsgUnregisterFallback  = "Failed to unregister participant"
	MsgUnregisterTransport = "Failed to unregister participant. Please try again."
)

// Outcome is the interpreted result of one mutation attempt.
type Outcome struct {
	Op          Op
	Activity    string
	Participant string
	Feedback    model.Feedback
	// Resync is set only when the server accepted the mutation.
	Resync bool
	// ClearForm is set after a successful registration.
	ClearForm bool
	// Err is the underlying failure, nil on success.
	Err error
}

func (o Outcome) OK() bool { return o.Err == nil }

type Dispatcher struct {
	svc    Service
	logger *slog.Logger
	// ttl, when non-zero, replaces the per-operation feedback delays.
	ttl time.Duration
}

type Option func(*Dispatcher)

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithFeedbackTTL unifies the auto-hide delay of every outcome.
func WithFeedbackTTL(ttl time.Duration) Option {
	return func(d *Dispatcher) { d.ttl = ttl }
}

func New(svc Service, opts ...Option) *Dispatcher {
	d := &Dispatcher{svc: svc, logger: slog.Default()}
	for _, o := range opts {
		o(d)
	}
	return d
}

var ErrMissingInput = errors.New("activity and participant are required")

// Register signs participant up for activity.
func (d *Dispatcher) Register(ctx context.Context, activity, participant string) Outcome {
	out := Outcome{Op: OpRegister, Activity: activity, Participant: participant}
	if strings.TrimSpace(activity) == "" || strings.TrimSpace(participant) == "" {
		out.Err = ErrMissingInput
		out.Feedback = d.feedback(OpRegister, model.FeedbackError, MsgMissingInput)
		return out
	}

	msg, err := d.svc.Signup(ctx, activity, participant)
	if err != nil {
		out.Err = err
		out.Feedback = d.feedback(OpRegister, model.FeedbackError, failureText(err, MsgRegisterFallback, MsgRegisterTransport))
		d.logger.Info("register failed", slog.String("activity", activity), slog.Any("error", err))
		return out
	}
	out.Feedback = d.feedback(OpRegister, model.FeedbackSuccess, msg)
	out.Resync = true
	out.ClearForm = true
	return out
}

// Unregister removes participant from activity. The caller must already have
// obtained confirmation (render.Action.Prompt); a declined confirmation never gets here.
func (d *Dispatcher) Unregister(ctx context.Context, activity, participant string) Outcome {
	out := Outcome{Op: OpUnregister, Activity: activity, Participant: participant}
	if strings.TrimSpace(activity) == "" || strings.TrimSpace(participant) == "" {
		out.Err = ErrMissingInput
		out.Feedback = d.feedback(OpUnregister, model.FeedbackError, MsgMissingInput)
		return out
	}

	msg, err := d.svc.Unregister(ctx, activity, participant)
	if err != nil {
		out.Err = err
		out.Feedback = d.feedback(OpUnregister, model.FeedbackError, failureText(err, MsgUnregisterFallback, MsgUnregisterTransport))
		d.logger.Info("unregister failed", slog.String("activity", activity), slog.Any("error", err))
		return out
	}
	out.Feedback = d.feedback(OpUnregister, model.FeedbackSuccess, msg)
	out.Resync = true
	return out
}

func (d *Dispatcher) feedback(op Op, kind model.FeedbackKind, text string) model.Feedback {
	return model.Feedback{Text: text, Kind: kind, TTL: d.TTL(op)}
}

// TTL is the auto-hide delay for outcomes of op.
func (d *Dispatcher) TTL(op Op) time.Duration {
	if d.ttl > 0 {
		return d.ttl
	}
	if op == OpUnregister {
		return UnregisterTTL
	}
	return RegisterTTL
}

// failureText maps the client error taxonomy to message text: transport
// failures get the generic text, everything else the server detail or fallback.
func failureText(err error, fallback, transport string) string {
	if client.IsTransport(err) {
		return transport
	}
	if d := client.Detail(err); strings.TrimSpace(d) != "" {
		return d
	}
	return fallback
}
