package application_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"telegram-identity-bot/internal/application"
	"telegram-identity-bot/internal/domain"
	"telegram-identity-bot/internal/domain/model"
	"telegram-identity-bot/internal/usecase"
)

func registerNoops(d *application.Dispatcher) {
	noop := func(ctx context.Context, msg *model.InboundMessage) (usecase.Outcome, error) {
		return usecase.Outcome{}, nil
	}
	for _, s := range model.AllStates() {
		d.Register(s, noop)
	}
}

func TestDispatcher_ValidateRoutes(t *testing.T) {
	rec := &recorder{}
	d := application.NewDispatcher(newMemDialogueRepo(rec), &memMessenger{rec: rec}, newTestLogger())

	if err := d.ValidateRoutes(); err == nil {
		t.Fatal("expected an error with no handlers registered")
	}

	registerNoops(d)
	if err := d.ValidateRoutes(); err != nil {
		t.Fatalf("expected complete routes to validate, got %v", err)
	}
}

func TestDispatcher_ValidateRoutesReportsMissingHandler(t *testing.T) {
	rec := &recorder{}
	d := application.NewDispatcher(newMemDialogueRepo(rec), &memMessenger{rec: rec}, newTestLogger())
	noop := func(ctx context.Context, msg *model.InboundMessage) (usecase.Outcome, error) {
		return usecase.Outcome{}, nil
	}
	for _, s := range model.AllStates() {
		if s == model.StateIdentifiedUser {
			continue
		}
		d.Register(s, noop)
	}

	err := d.ValidateRoutes()
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for the routing gap, got %v", err)
	}
}

func TestDispatcher_UnknownStoredStateRoutesAsStart(t *testing.T) {
	rec := &recorder{}
	dialogues := newMemDialogueRepo(rec)
	// A snapshot from an older schema spelled states differently.
	dialogues.states[7] = model.DialogueState("Start")
	d := application.NewDispatcher(dialogues, &memMessenger{rec: rec}, newTestLogger())
	registerNoops(d)

	startHits := 0
	d.Register(model.StateStart, func(ctx context.Context, msg *model.InboundMessage) (usecase.Outcome, error) {
		startHits++
		return usecase.Outcome{}, nil
	})

	if err := d.Dispatch(context.Background(), &model.InboundMessage{ChatID: 7, Text: "hi"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if startHits != 1 {
		t.Fatal("an unroutable stored state must fall back to the start handler")
	}
}

func TestDispatcher_AbsentRecordRoutesAsStart(t *testing.T) {
	rec := &recorder{}
	dialogues := newMemDialogueRepo(rec)
	d := application.NewDispatcher(dialogues, &memMessenger{rec: rec}, newTestLogger())
	registerNoops(d)

	var handled model.DialogueState
	d.Register(model.StateStart, func(ctx context.Context, msg *model.InboundMessage) (usecase.Outcome, error) {
		handled = model.StateStart
		return usecase.Outcome{}, nil
	})

	if err := d.Dispatch(context.Background(), &model.InboundMessage{ChatID: 7}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if handled != model.StateStart {
		t.Fatal("message with no stored record must route to the start handler")
	}
}

func TestDispatcher_PersistsBeforeSending(t *testing.T) {
	rec := &recorder{}
	dialogues := newMemDialogueRepo(rec)
	d := application.NewDispatcher(dialogues, &memMessenger{rec: rec}, newTestLogger())
	registerNoops(d)

	next := model.StateRequestLogin
	d.Register(model.StateStart, func(ctx context.Context, msg *model.InboundMessage) (usecase.Outcome, error) {
		return usecase.Outcome{Next: &next, Replies: []string{"first", "second"}}, nil
	})

	if err := d.Dispatch(context.Background(), &model.InboundMessage{ChatID: 7, Text: "hi"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	want := []string{"update:request_login", "send:first", "send:second"}
	if got := rec.all(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDispatcher_StayPersistsNothing(t *testing.T) {
	rec := &recorder{}
	dialogues := newMemDialogueRepo(rec)
	d := application.NewDispatcher(dialogues, &memMessenger{rec: rec}, newTestLogger())
	registerNoops(d)

	d.Register(model.StateStart, func(ctx context.Context, msg *model.InboundMessage) (usecase.Outcome, error) {
		return usecase.Outcome{Replies: []string{"again?"}}, nil
	})

	if err := d.Dispatch(context.Background(), &model.InboundMessage{ChatID: 7}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	want := []string{"send:again?"}
	if got := rec.all(); !reflect.DeepEqual(got, want) {
		t.Fatalf("a stay outcome must not write state, got %v", got)
	}
}

func TestDispatcher_ResetRemovesAndRestarts(t *testing.T) {
	rec := &recorder{}
	dialogues := newMemDialogueRepo(rec)
	dialogues.states[7] = model.StateIdentifiedUser
	d := application.NewDispatcher(dialogues, &memMessenger{rec: rec}, newTestLogger())
	registerNoops(d)

	d.Register(model.StateIdentifiedUser, func(ctx context.Context, msg *model.InboundMessage) (usecase.Outcome, error) {
		return usecase.Outcome{Reset: true, Replies: []string{"reset done"}}, nil
	})
	startHits := 0
	d.Register(model.StateStart, func(ctx context.Context, msg *model.InboundMessage) (usecase.Outcome, error) {
		startHits++
		return usecase.Outcome{}, nil
	})

	ctx := context.Background()
	if err := d.Dispatch(ctx, &model.InboundMessage{ChatID: 7, Text: "/reset"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if _, ok := dialogues.states[7]; ok {
		t.Fatal("reset must remove the stored record")
	}

	// The very next message for the same chat is handled as Start.
	if err := d.Dispatch(ctx, &model.InboundMessage{ChatID: 7, Text: "hello"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if startHits != 1 {
		t.Fatalf("expected the start handler after a reset, hits=%d", startHits)
	}
}

func TestDispatcher_HandlerErrorSkipsWritesAndSends(t *testing.T) {
	rec := &recorder{}
	dialogues := newMemDialogueRepo(rec)
	d := application.NewDispatcher(dialogues, &memMessenger{rec: rec}, newTestLogger())
	registerNoops(d)

	boom := errors.New("database is down")
	next := model.StateRequestLogin
	d.Register(model.StateStart, func(ctx context.Context, msg *model.InboundMessage) (usecase.Outcome, error) {
		return usecase.Outcome{Next: &next, Replies: []string{"never sent"}}, boom
	})

	err := d.Dispatch(context.Background(), &model.InboundMessage{ChatID: 7, Text: "hi"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the handler error to propagate, got %v", err)
	}
	if got := rec.all(); len(got) != 0 {
		t.Fatalf("a failed handler must produce no side effects, got %v", got)
	}
}

func TestDispatcher_PersistFailureSuppressesReplies(t *testing.T) {
	rec := &recorder{}
	dialogues := newMemDialogueRepo(rec)
	dialogues.updateErr = errors.New("pool exhausted")
	d := application.NewDispatcher(dialogues, &memMessenger{rec: rec}, newTestLogger())
	registerNoops(d)

	next := model.StateRequestLogin
	d.Register(model.StateStart, func(ctx context.Context, msg *model.InboundMessage) (usecase.Outcome, error) {
		return usecase.Outcome{Next: &next, Replies: []string{"never sent"}}, nil
	})

	err := d.Dispatch(context.Background(), &model.InboundMessage{ChatID: 7, Text: "hi"})
	if !errors.Is(err, dialogues.updateErr) {
		t.Fatalf("expected the persist error to propagate, got %v", err)
	}
	if got := rec.all(); len(got) != 0 {
		t.Fatalf("no reply may go out when the state write failed, got %v", got)
	}
}

func TestDispatcher_LoadErrorPropagates(t *testing.T) {
	rec := &recorder{}
	dialogues := newMemDialogueRepo(rec)
	dialogues.getErr = errors.New("connection refused")
	d := application.NewDispatcher(dialogues, &memMessenger{rec: rec}, newTestLogger())
	registerNoops(d)

	err := d.Dispatch(context.Background(), &model.InboundMessage{ChatID: 7})
	if !errors.Is(err, dialogues.getErr) {
		t.Fatalf("expected the load error to propagate, got %v", err)
	}
}
