package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunArtifactStoreContract runs a suite of tests to verify that an ArtifactStore
// implementation adheres to the defined interface contract.
func RunArtifactStoreContract(t *testing.T, store ArtifactStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405") + ".json"

	t.Run("Put and Get", func(t *testing.T) {
		data := []byte(`[{"dialog_node": "welcome"}]`)

		err := store.Put(ctx, name, data)
		require.NoError(t, err, "Put should not return error")

		loaded, err := store.Get(ctx, name)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, data, loaded)
	})

	t.Run("Put replaces", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, name, []byte("[]")))
		require.NoError(t, store.Put(ctx, name, []byte(`[{"dialog_node": "x"}]`)))

		loaded, err := store.Get(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, `[{"dialog_node": "x"}]`, string(loaded))
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "missing-"+name)
		assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	})

	t.Run("List", func(t *testing.T) {
		n1 := "list-1-" + name
		n2 := "list-2-" + name
		require.NoError(t, store.Put(ctx, n1, []byte("[]")))
		require.NoError(t, store.Put(ctx, n2, []byte("[]")))

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, n1)
		assert.Contains(t, names, n2)
	})
}
