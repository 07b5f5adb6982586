package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/matheus3301/jobboard/internal/apperr"
)

func fixedFlash(t0 time.Time) (*FlashModel, *time.Time) {
	now := t0
	f := NewFlashModel()
	f.now = func() time.Time { return now }
	return f, &now
}

func TestFlashErrorNotHiddenByInfo(t *testing.T) {
	f, now := fixedFlash(time.Unix(1000, 0))

	f.Err(errors.New("upload failed"))
	f.Info("Message sent")
	if m := f.GetMessage(); m == nil || m.Text != "upload failed" {
		t.Fatalf("GetMessage() = %+v, want the error", m)
	}

	*now = now.Add(11 * time.Second)
	if m := f.GetMessage(); m != nil {
		t.Fatalf("expired message still showing: %+v", m)
	}
	f.Info("Message sent")
	if m := f.GetMessage(); m == nil || m.Level != FlashInfo {
		t.Fatalf("GetMessage() = %+v, want info", m)
	}
}

func TestFlashErrShowsCodedMessage(t *testing.T) {
	f, _ := fixedFlash(time.Unix(1000, 0))
	f.Err(apperr.PermissionDenied("You are not a participant"))
	if m := f.GetMessage(); m == nil || m.Text != "You are not a participant" {
		t.Errorf("GetMessage() = %+v", m)
	}
}

func TestFlashDismissAndWatch(t *testing.T) {
	f, _ := fixedFlash(time.Unix(1000, 0))
	f.Warn("Open a conversation first")
	select {
	case <-f.Watch():
	default:
		t.Fatal("no change signal after Warn")
	}
	f.Dismiss()
	if f.GetMessage() != nil {
		t.Error("message survives Dismiss")
	}
	select {
	case <-f.Watch():
	default:
		t.Fatal("no change signal after Dismiss")
	}
}
