package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"

	"github.com/allisson/apikeys/internal/apikey/usecase/mocks"
)

func TestSweeperWorker_RunOnce(t *testing.T) {
	t.Run("Success_GracePeriodBeforeExpired", func(t *testing.T) {
		sweeper := &mocks.MockSweeperUseCase{}
		var order []string
		sweeper.On("SweepGracePeriod", mock.Anything).
			Run(func(mock.Arguments) { order = append(order, "grace") }).
			Return(1, nil).Once()
		sweeper.On("SweepExpired", mock.Anything).
			Run(func(mock.Arguments) { order = append(order, "expired") }).
			Return(2, nil).Once()

		NewSweeperWorker(time.Minute, sweeper, discardLogger()).RunOnce(context.Background())

		assert.Equal(t, []string{"grace", "expired"}, order)
		sweeper.AssertExpectations(t)
	})

	t.Run("Success_FailureInFirstPassStillRunsSecond", func(t *testing.T) {
		sweeper := &mocks.MockSweeperUseCase{}
		sweeper.On("SweepGracePeriod", mock.Anything).Return(0, errors.New("db down")).Once()
		sweeper.On("SweepExpired", mock.Anything).Return(0, nil).Once()

		NewSweeperWorker(time.Minute, sweeper, discardLogger()).RunOnce(context.Background())

		sweeper.AssertExpectations(t)
	})
}

func TestSweeperWorker_Start(t *testing.T) {
	defer goleak.VerifyNone(t)

	sweeper := &mocks.MockSweeperUseCase{}
	var runs atomic.Int32
	sweeper.On("SweepGracePeriod", mock.Anything).Return(0, nil)
	sweeper.On("SweepExpired", mock.Anything).
		Run(func(mock.Arguments) { runs.Add(1) }).
		Return(0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	worker := NewSweeperWorker(10*time.Millisecond, sweeper, discardLogger())
	go func() {
		done <- worker.Start(ctx)
	}()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}
