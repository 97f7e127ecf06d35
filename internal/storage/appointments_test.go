package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestIsConditionalCancel(t *testing.T) {
	cancelled := &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}
	if !isConditionalCancel(fmt.Errorf("operation TransactWriteItems: %w", cancelled)) {
		t.Fatal("expected a conditional cancellation to be detected")
	}

	throttled := &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("TransactionConflict")},
		},
	}
	if isConditionalCancel(throttled) {
		t.Fatal("a non-conditional cancellation is not a slot conflict")
	}

	if isConditionalCancel(errors.New("network down")) {
		t.Fatal("arbitrary errors are not slot conflicts")
	}
}

func TestSlotLockKey(t *testing.T) {
	if got := slotLockKey("2026-03-05", "10:00"); got != "SLOT#2026-03-05#10:00" {
		t.Fatalf("unexpected lock key %q", got)
	}
}
