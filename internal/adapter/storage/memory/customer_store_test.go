package memory

import (
	"context"
	"sync"
	"testing"

	"jots/internal/core/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerStore_Create(t *testing.T) {
	store := NewCustomerStore()

	c, err := store.Create(context.Background(), "Ada Lovelace", "ada@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, "Ada Lovelace", c.Name)
	assert.Equal(t, "ada@example.com", c.Email)
	assert.Equal(t, int64(0), c.Balance)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestCustomerStore_Create_TrimsFields(t *testing.T) {
	store := NewCustomerStore()

	c, err := store.Create(context.Background(), "  Ada  ", " ada@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "Ada", c.Name)
	assert.Equal(t, "ada@example.com", c.Email)
}

func TestCustomerStore_Create_RejectsInvalidPayload(t *testing.T) {
	store := NewCustomerStore()

	tests := []struct {
		name  string
		cName string
		email string
	}{
		{"empty name", "", "ada@example.com"},
		{"whitespace name", "   ", "ada@example.com"},
		{"empty email", "Ada", ""},
		{"email without at sign", "Ada", "ada.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(context.Background(), tt.cName, tt.email)
			assert.Error(t, err)
		})
	}

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list, "rejected creations must not be stored")
}

func TestCustomerStore_Get_NotFound(t *testing.T) {
	store := NewCustomerStore()

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ports.ErrCustomerNotFound)
}

func TestCustomerStore_Get_ReturnsCopy(t *testing.T) {
	store := NewCustomerStore()
	c, err := store.Create(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)

	got, err := store.Get(context.Background(), c.ID)
	require.NoError(t, err)
	got.Balance = 999999

	again, err := store.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.Balance, "mutating a returned customer must not affect the store")
}

func TestCustomerStore_List_InsertionOrder(t *testing.T) {
	store := NewCustomerStore()
	ctx := context.Background()

	a, _ := store.Create(ctx, "Ada", "ada@example.com")
	b, _ := store.Create(ctx, "Grace", "grace@example.com")
	c, _ := store.Create(ctx, "Alan", "alan@example.com")

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
	assert.Equal(t, c.ID, list[2].ID)
}

func TestCustomerStore_MutateBalance(t *testing.T) {
	store := NewCustomerStore()
	ctx := context.Background()
	c, _ := store.Create(ctx, "Ada", "ada@example.com")

	newBal, err := store.MutateBalance(ctx, c.ID, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), newBal)

	newBal, err = store.MutateBalance(ctx, c.ID, -2000)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), newBal)
}

func TestCustomerStore_MutateBalance_RejectsNegativeResult(t *testing.T) {
	store := NewCustomerStore()
	ctx := context.Background()
	c, _ := store.Create(ctx, "Ada", "ada@example.com")

	_, err := store.MutateBalance(ctx, c.ID, 3000)
	require.NoError(t, err)

	_, err = store.MutateBalance(ctx, c.ID, -5000)
	assert.ErrorIs(t, err, ports.ErrWouldGoNegative)

	got, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), got.Balance, "rejected mutation must leave balance unchanged")
}

func TestCustomerStore_MutateBalance_NotFound(t *testing.T) {
	store := NewCustomerStore()

	_, err := store.MutateBalance(context.Background(), uuid.New(), 100)
	assert.ErrorIs(t, err, ports.ErrCustomerNotFound)
}

func TestCustomerStore_MutateBalance_ConcurrentDebits(t *testing.T) {
	store := NewCustomerStore()
	ctx := context.Background()
	c, _ := store.Create(ctx, "Ada", "ada@example.com")
	_, err := store.MutateBalance(ctx, c.ID, 1000)
	require.NoError(t, err)

	// 100 concurrent debits of 100 against a balance of 1000: exactly 10
	// may succeed, and the balance never goes negative.
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.MutateBalance(ctx, c.ID, -100); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	got, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Balance)
}
