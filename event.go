// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"go.uber.org/zap"
)

// Reserved command names for event emission. Which of the two is
// called depends solely on whether the emission has a target.
const (
	CommandEmit   = "emit"
	CommandEmitTo = "emit_to"
)

// EventTarget selects which listeners receive an emitted event. The
// discriminant/label encoding is a wire contract with the host and
// must not be renumbered: 0 is reserved for untargeted broadcast, 1-6
// identify the variants below.
type EventTarget struct {
	kind  int
	label string
}

// TargetAny addresses all listeners regardless of where they live.
func TargetAny() EventTarget { return EventTarget{kind: 1} }

// TargetLabel addresses any listener registered under the label.
func TargetLabel(label string) EventTarget { return EventTarget{kind: 2, label: label} }

// TargetApp addresses the application-level listeners.
func TargetApp() EventTarget { return EventTarget{kind: 3} }

// TargetWindow addresses the window with the given label.
func TargetWindow(label string) EventTarget { return EventTarget{kind: 4, label: label} }

// TargetWebview addresses the webview with the given label.
func TargetWebview(label string) EventTarget { return EventTarget{kind: 5, label: label} }

// TargetWebviewWindow addresses the webview window with the given label.
func TargetWebviewWindow(label string) EventTarget { return EventTarget{kind: 6, label: label} }

// Kind returns the fixed wire discriminant of the target. The zero
// EventTarget reports 0, meaning no target.
func (t EventTarget) Kind() int { return t.kind }

// Label returns the target label and whether the variant carries one.
func (t EventTarget) Label() (string, bool) {
	switch t.kind {
	case 2, 4, 5, 6:
		return t.label, true
	default:
		return "", false
	}
}

// emitArgs is the wire shape of the reserved event commands: the
// target discriminant and label (targeted emission only), the event
// name, and the encoded payload.
type emitArgs struct {
	Kind    int             `json:"kind,omitempty"`
	Label   string          `json:"label,omitempty"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Emit configures a single event emission. Like Invoke it has value
// semantics with a shared one-shot gate: Await fires exactly one call
// against one of the two reserved event commands.
//
//	err := client.Emit("file-selected", "/tmp/a").
//		To(bridge.TargetWindow("main")).
//		Await(ctx)
type Emit struct {
	c       *Client
	event   Value
	payload Value
	target  EventTarget
	err     *Error
	fired   *atomic.Bool
}

// Emit starts an event emission. The payload always goes through the
// generic structure-encoding path; there is no raw-bytes shortcut for
// events. An encoding failure is carried in the returned emission and
// surfaces when it is awaited.
func (c *Client) Emit(event string, payload any) Emit {
	em := Emit{
		c:     c,
		event: StringValue(event),
		fired: new(atomic.Bool),
	}
	enc, err := c.codec.Encode(payload)
	if err != nil {
		em.err = argsError(err)
		return em
	}
	em.payload = encodedValue(enc)
	return em
}

// To addresses the emission at a specific target, switching the call
// from the "emit" command to "emit_to".
func (em Emit) To(t EventTarget) Emit {
	em.target = t
	return em
}

// Await issues the emission and blocks until the host acknowledges it.
// Emission is fire-and-forget once awaited; listener dispatch is the
// host's responsibility.
func (em Emit) Await(ctx context.Context) error {
	if !em.fired.CompareAndSwap(false, true) {
		return ErrConsumed
	}
	if em.err != nil {
		em.err.stringify = em.c.t.Stringify
		return em.err
	}

	cmd := CommandEmit
	args := emitArgs{
		Event:   em.event.Text(),
		Payload: json.RawMessage(em.payload.bin),
	}
	if em.target.kind != 0 {
		cmd = CommandEmitTo
		args.Kind = em.target.kind
		args.Label, _ = em.target.Label()
	}

	enc, err := json.Marshal(args)
	if err != nil {
		return em.c.wrapErr(argsError(err))
	}

	em.c.log.Debug("emit",
		zap.String("cmd", cmd),
		zap.String("event", em.event.Text()),
		zap.Int("target", em.target.kind),
	)

	if _, err := em.c.t.Invoke(ctx, cmd, encodedValue(enc), NoOptions()); err != nil {
		return em.c.wrapErr(err)
	}
	return nil
}
