package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/newsscrape/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a test history store
func createTestStore(t *testing.T) *Store {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := NewStore(dbPath)
	require.NoError(t, err, "should create history store")
	t.Cleanup(func() { store.Close() })
	return store
}

// Test helper: build a run with one good and one failed site
func createTestRun(startedAt time.Time) *scraper.RunResult {
	return &scraper.RunResult{
		RunID:      uuid.New(),
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(3 * time.Second),
		Sites: []scraper.SiteResult{
			{
				Site:         scraper.SiteDawn,
				URL:          "https://www.dawn.com/",
				Status:       scraper.StatusOK,
				Links:        120,
				Articles:     40,
				LinksPath:    "scraped_data/dawn.com__links.csv",
				ArticlesPath: "scraped_data/dawn.com__articles.csv",
			},
			{
				Site:   scraper.SiteBBC,
				URL:    "https://www.bbc.com/",
				Status: scraper.StatusFetchFailed,
				Error:  "fetch https://www.bbc.com/: unexpected status code: 503 Service Unavailable",
			},
		},
	}
}

// TestNewStore_CreatesDatabase verifies database creation
func TestNewStore_CreatesDatabase(t *testing.T) {
	store := createTestStore(t)

	runs, err := store.ListRuns(0)
	require.NoError(t, err, "should be able to query database")
	assert.Empty(t, runs, "new database should have no runs")
}

// TestSaveRun_GetRun verifies a run and its site results round trip
func TestSaveRun_GetRun(t *testing.T) {
	store := createTestStore(t)
	run := createTestRun(time.Date(2026, 10, 18, 9, 30, 0, 123456789, time.UTC))

	require.NoError(t, store.SaveRun(run))

	got, err := store.GetRun(run.RunID)
	require.NoError(t, err)

	assert.Equal(t, run.RunID, got.RunID)
	assert.True(t, run.StartedAt.Equal(got.StartedAt), "started_at should round trip")
	assert.True(t, run.FinishedAt.Equal(got.FinishedAt), "finished_at should round trip")
	assert.Equal(t, run.Sites, got.Sites)
	assert.Equal(t, 1, got.Failed())
}

// TestSaveRun_NoSites verifies a run without sites is stored
func TestSaveRun_NoSites(t *testing.T) {
	store := createTestStore(t)
	run := &scraper.RunResult{RunID: uuid.New(), StartedAt: time.Now(), FinishedAt: time.Now()}

	require.NoError(t, store.SaveRun(run))

	got, err := store.GetRun(run.RunID)
	require.NoError(t, err)
	assert.Empty(t, got.Sites)
}

// TestSaveRun_Duplicate verifies the same run cannot be stored twice
func TestSaveRun_Duplicate(t *testing.T) {
	store := createTestStore(t)
	run := createTestRun(time.Now())

	require.NoError(t, store.SaveRun(run))
	assert.Error(t, store.SaveRun(run))

	// The failed insert must not leave extra site rows behind
	got, err := store.GetRun(run.RunID)
	require.NoError(t, err)
	assert.Len(t, got.Sites, 2)
}

// TestGetRun_NotFound verifies missing runs return ErrRunNotFound
func TestGetRun_NotFound(t *testing.T) {
	store := createTestStore(t)

	_, err := store.GetRun(uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

// TestListRuns_OrderAndLimit verifies newest runs come first
func TestListRuns_OrderAndLimit(t *testing.T) {
	store := createTestStore(t)
	base := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

	oldest := createTestRun(base)
	middle := createTestRun(base.Add(90 * time.Millisecond))
	newest := createTestRun(base.Add(time.Hour))
	for _, run := range []*scraper.RunResult{middle, oldest, newest} {
		require.NoError(t, store.SaveRun(run))
	}

	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, newest.RunID, runs[0].RunID)
	assert.Equal(t, middle.RunID, runs[1].RunID)
	assert.Equal(t, oldest.RunID, runs[2].RunID)
	assert.Len(t, runs[0].Sites, 2, "site results should be loaded")

	limited, err := store.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, newest.RunID, limited[0].RunID)
}

// TestNewStore_ExistingDatabase verifies reopening keeps stored runs
func TestNewStore_ExistingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store1, err := NewStore(dbPath)
	require.NoError(t, err)
	run := createTestRun(time.Now())
	require.NoError(t, store1.SaveRun(run))
	store1.Close()

	store2, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	_, err = store2.GetRun(run.RunID)
	assert.NoError(t, err)
}

// TestSiteResults_ForeignKeys verifies site results belong to a stored run
// and go away with it
func TestSiteResults_ForeignKeys(t *testing.T) {
	store := createTestStore(t)
	run := createTestRun(time.Now())
	require.NoError(t, store.SaveRun(run))

	_, err := store.db.Exec(
		"INSERT INTO site_results (run_id, position, site, url, status) VALUES (?, 0, 'dawn', 'u', 'ok')",
		uuid.New().String(),
	)
	assert.Error(t, err, "orphan site result should be rejected")

	_, err = store.db.Exec("DELETE FROM runs WHERE run_id = ?", run.RunID.String())
	require.NoError(t, err)

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM site_results").Scan(&count))
	assert.Zero(t, count, "site results should be deleted with their run")
}

// TestOpenReadOnly_Missing verifies a missing database is an error and is
// not created
func TestOpenReadOnly_Missing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	_, err := OpenReadOnly(dbPath)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, dbPath)
}

// TestOpenReadOnly_ReadsRuns verifies stored runs can be listed but not
// changed
func TestOpenReadOnly_ReadsRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	writer, err := NewStore(dbPath)
	require.NoError(t, err)
	run := createTestRun(time.Now())
	require.NoError(t, writer.SaveRun(run))
	require.NoError(t, writer.Close())

	reader, err := OpenReadOnly(dbPath)
	require.NoError(t, err)
	defer reader.Close()

	runs, err := reader.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.RunID, runs[0].RunID)
	assert.Equal(t, run.Sites, runs[0].Sites)

	assert.Error(t, reader.SaveRun(createTestRun(time.Now())), "read-only store should refuse writes")
}
