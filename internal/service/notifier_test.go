package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatch_IndependentFailureBoundaries(t *testing.T) {
	mail := &MockMailClient{FailFor: map[string]int{"dana@example.test": -1}}
	notifier := NewNotifier(mail, adminAddress, 0, testLogger())

	outcome := notifier.Dispatch(context.Background(), sampleRecord(), []byte("<html></html>"))

	assert.False(t, outcome.CustomerSent)
	assert.True(t, outcome.AdminSent, "admin send must not be blocked by the customer failure")
	assert.Equal(t, "customer notification failed", outcome.failureSummary())
}

func TestDispatch_RetriesTransientFailure(t *testing.T) {
	// fails twice, then succeeds within the retry budget
	mail := &MockMailClient{FailFor: map[string]int{"dana@example.test": 2}}
	notifier := NewNotifier(mail, adminAddress, 3, testLogger())

	outcome := notifier.Dispatch(context.Background(), sampleRecord(), nil)

	assert.True(t, outcome.CustomerSent)
	assert.True(t, outcome.AdminSent)
	assert.Equal(t, 1, mail.SentTo("dana@example.test"))
}

func TestDispatch_BothFail(t *testing.T) {
	mail := &MockMailClient{FailFor: map[string]int{
		"dana@example.test": -1,
		adminAddress:        -1,
	}}
	notifier := NewNotifier(mail, adminAddress, 0, testLogger())

	outcome := notifier.Dispatch(context.Background(), sampleRecord(), nil)

	assert.False(t, outcome.CustomerSent)
	assert.False(t, outcome.AdminSent)
	assert.Equal(t, "customer and admin notifications failed", outcome.failureSummary())
}
