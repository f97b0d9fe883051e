package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SP-DOCS/internal/models"
)

func newTestAllocator() (*RunningNumberAllocator, *fakeCounterStore, *fakeAuditStore) {
	counters := newFakeCounterStore()
	audits := &fakeAuditStore{}
	alloc := NewRunningNumberAllocator(counters, NewAuditService(audits, testLogger()))
	return alloc, counters, audits
}

func TestAllocateSequentialGapless(t *testing.T) {
	alloc, _, _ := newTestAllocator()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		number, err := alloc.Allocate(ctx, "org-1", 2567, "PURCHASE", "user-1", RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("PURCHASE-2567-%04d", i), number)
	}
}

func TestAllocateKeyIsolation(t *testing.T) {
	alloc, _, _ := newTestAllocator()
	ctx := context.Background()

	n1, err := alloc.Allocate(ctx, "org-1", 2567, "PURCHASE", "user-1", RequestMeta{})
	require.NoError(t, err)
	n2, err := alloc.Allocate(ctx, "org-2", 2567, "PURCHASE", "user-1", RequestMeta{})
	require.NoError(t, err)
	n3, err := alloc.Allocate(ctx, "org-1", 2568, "PURCHASE", "user-1", RequestMeta{})
	require.NoError(t, err)
	n4, err := alloc.Allocate(ctx, "org-1", 2567, "HIRE", "user-1", RequestMeta{})
	require.NoError(t, err)

	// Every distinct key starts its own sequence at 1.
	assert.Equal(t, "PURCHASE-2567-0001", n1)
	assert.Equal(t, "PURCHASE-2567-0001", n2)
	assert.Equal(t, "PURCHASE-2568-0001", n3)
	assert.Equal(t, "HIRE-2567-0001", n4)
}

func TestAllocateConcurrentDistinct(t *testing.T) {
	alloc, _, _ := newTestAllocator()
	ctx := context.Background()

	const workers = 50
	numbers := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			numbers[i], errs[i] = alloc.Allocate(ctx, "org-1", 2567, "PURCHASE", "user-1", RequestMeta{})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	sort.Strings(numbers)
	for i := 0; i < workers; i++ {
		assert.Equal(t, fmt.Sprintf("PURCHASE-2567-%04d", i+1), numbers[i])
	}
}

func TestAllocateAuditTrail(t *testing.T) {
	alloc, _, audits := newTestAllocator()
	ctx := context.Background()

	_, err := alloc.Allocate(ctx, "org-1", 2567, "PURCHASE", "user-1", RequestMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	_, err = alloc.Allocate(ctx, "org-1", 2567, "PURCHASE", "user-1", RequestMeta{})
	require.NoError(t, err)

	created := audits.byAction(models.ActionCreate)
	require.Len(t, created, 1)
	assert.Equal(t, EntityRunningNumber, created[0].EntityType)
	assert.Equal(t, "org-1/2567/PURCHASE", created[0].EntityID)
	assert.Empty(t, created[0].Before)
	assert.Contains(t, created[0].After, `"sequence":1`)
	assert.Equal(t, "10.0.0.1", created[0].IPAddress)

	updated := audits.byAction(models.ActionUpdate)
	require.Len(t, updated, 1)
	assert.Contains(t, updated[0].Before, `"sequence":1`)
	assert.Contains(t, updated[0].After, `"sequence":2`)
}

func TestAllocateStoreFailure(t *testing.T) {
	alloc, counters, audits := newTestAllocator()
	counters.failWith = errors.New("connection reset")

	_, err := alloc.Allocate(context.Background(), "org-1", 2567, "PURCHASE", "user-1", RequestMeta{})
	require.Error(t, err)
	assert.Empty(t, audits.entries)
}

func TestFormatRunningNumber(t *testing.T) {
	// Padding is a floor, not a cap.
	assert.Equal(t, "PURCHASE-2567-0042", FormatRunningNumber("PURCHASE", 2567, 42))
	assert.Equal(t, "HIRE-2567-0001", FormatRunningNumber("HIRE", 2567, 1))
	assert.Equal(t, "LUNCH-2568-12345", FormatRunningNumber("LUNCH", 2568, 12345))
}
