package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbirkedal/cvlens/internal/types"
)

func storedCV() *types.CV {
	return &types.CV{
		ID: "cv-1",
		Sections: []types.CVSection{
			{ID: "sec_001", Type: types.SectionJob, Title: "Engineer"},
		},
		Observations: []types.Observation{
			{ID: "obs-1", SectionID: "sec_001", Status: types.StatusPending},
		},
	}
}

func TestStore_PutAndGet(t *testing.T) {
	store := NewStore()
	store.Put(storedCV())

	cv, err := store.Get("cv-1")
	require.NoError(t, err)
	assert.Equal(t, "cv-1", cv.ID)
}

func TestStore_GetUnknownCV(t *testing.T) {
	store := NewStore()

	_, err := store.Get("missing")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "cv", notFound.Kind)
}

func TestStore_GetSection(t *testing.T) {
	store := NewStore()
	store.Put(storedCV())

	sec, err := store.GetSection("cv-1", "sec_001")
	require.NoError(t, err)
	assert.Equal(t, "Engineer", sec.Title)

	_, err = store.GetSection("cv-1", "sec_099")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "section", notFound.Kind)
}

func TestStore_UpdateObservationStatus(t *testing.T) {
	store := NewStore()
	store.Put(storedCV())

	obs, err := store.UpdateObservationStatus("cv-1", "obs-1", types.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, types.StatusAccepted, obs.Status)

	// The change is visible on later reads.
	cv, err := store.Get("cv-1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusAccepted, cv.FindObservation("obs-1").Status)
}

func TestStore_TerminalStatusNeverReverts(t *testing.T) {
	store := NewStore()
	store.Put(storedCV())

	_, err := store.UpdateObservationStatus("cv-1", "obs-1", types.StatusDeclined)
	require.NoError(t, err)

	_, err = store.UpdateObservationStatus("cv-1", "obs-1", types.StatusPending)
	var transition *TransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, types.StatusDeclined, transition.From)
}

func TestStore_UpdateUnknownObservation(t *testing.T) {
	store := NewStore()
	store.Put(storedCV())

	_, err := store.UpdateObservationStatus("cv-1", "obs-99", types.StatusAccepted)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "observation", notFound.Kind)
}

func TestStore_SetRewrittenContent(t *testing.T) {
	store := NewStore()
	store.Put(storedCV())

	require.NoError(t, store.SetRewrittenContent("cv-1", "obs-1", "Improved billing throughput by 30%."))

	cv, err := store.Get("cv-1")
	require.NoError(t, err)
	assert.Equal(t, "Improved billing throughput by 30%.", cv.FindObservation("obs-1").RewrittenContent)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.Put(&types.CV{ID: fmt.Sprintf("cv-%d", n)})
			_, _ = store.Get(fmt.Sprintf("cv-%d", n))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		_, err := store.Get(fmt.Sprintf("cv-%d", i))
		assert.NoError(t, err)
	}
}
