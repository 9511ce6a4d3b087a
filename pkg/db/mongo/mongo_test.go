package mongo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithTimeout_AppliesTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if remaining := time.Until(deadline); remaining > 50*time.Millisecond {
		t.Errorf("deadline too far away: %s", remaining)
	}
}

func TestWithTimeout_KeepsSoonerParentDeadline(t *testing.T) {
	parent, cancelParent := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancelParent()
	parentDeadline, _ := parent.Deadline()

	ctx, cancel := WithTimeout(parent, time.Minute)
	defer cancel()

	deadline, _ := ctx.Deadline()
	if !deadline.Equal(parentDeadline) {
		t.Errorf("deadline = %v, want parent deadline %v", deadline, parentDeadline)
	}
}

func TestObjectIDFromHex(t *testing.T) {
	if _, err := ObjectIDFromHex("507f1f77bcf86cd799439011"); err != nil {
		t.Errorf("valid hex rejected: %v", err)
	}
	if _, err := ObjectIDFromHex("nope"); !errors.Is(err, ErrInvalidObjectID) {
		t.Errorf("expected ErrInvalidObjectID, got %v", err)
	}
}

func TestNow_MillisecondPrecision(t *testing.T) {
	now := Now()
	if now.Nanosecond()%int(time.Millisecond) != 0 {
		t.Errorf("expected millisecond truncation, got %v", now)
	}
	if now.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", now.Location())
	}
}
