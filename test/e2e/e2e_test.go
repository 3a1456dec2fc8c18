//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type similarResponse struct {
	Results []struct {
		EntityID string `json:"entityId"`
		Entity   struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			EntityType  string `json:"entityType"`
			Domain      string `json:"domain"`
		} `json:"entity"`
		Similarity float64 `json:"similarity"`
		MatchType  string  `json:"matchType"`
	} `json:"results"`
	Query struct {
		EntityID   string `json:"entityId"`
		EntityName string `json:"entityName"`
	} `json:"query"`
	Meta struct {
		Count     int     `json:"count"`
		TopK      int     `json:"topK"`
		Threshold float64 `json:"threshold"`
	} `json:"meta"`
}

type uploadResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId"`
}

type cacheStatsResponse struct {
	Success bool `json:"success"`
	Stats   struct {
		CacheSize int `json:"cacheSize"`
		Entries   []struct {
			Query        string  `json:"query"`
			AgeMinutes   float64 `json:"ageMinutes"`
			ResultsCount int     `json:"resultsCount"`
		} `json:"entries"`
	} `json:"stats"`
}

// longParagraph makes a paragraph big enough that the chunker cannot merge
// two of them into a single chunk.
func longParagraph(sentence string) string {
	return strings.TrimSpace(strings.Repeat(sentence+" ", 10))
}

func TestE2E_IngestAndSearch(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	sentence := "Solar panels convert sunlight into electricity using photovoltaic cells."
	docx := BuildDOCX(t, []string{
		longParagraph(sentence),
		longParagraph(sentence),
	})

	var documentID string

	t.Run("upload document", func(t *testing.T) {
		resp, raw := env.UploadDocument("solar.docx", docx, map[string]string{
			"sourceId": "src-solar",
			"domain":   "energy",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

		var out uploadResponse
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.True(t, out.Success)
		assert.NotEmpty(t, out.DocumentID)
		documentID = out.DocumentID
	})

	t.Run("source reaches completed", func(t *testing.T) {
		resp, raw := env.Get("/sources/src-solar")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

		var out struct {
			SourceID    string `json:"sourceId"`
			Status      string `json:"status"`
			LastUpdated string `json:"lastUpdated"`
		}
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.Equal(t, "src-solar", out.SourceID)
		assert.Equal(t, "completed", out.Status)
		assert.NotEmpty(t, out.LastUpdated)
	})

	t.Run("raw document is archived", func(t *testing.T) {
		stored, err := env.S3Client.GetDocument(env.Ctx, "sources/src-solar/"+documentID)
		require.NoError(t, err)
		assert.Equal(t, docx, stored)
	})

	t.Run("similar returns the sibling chunk", func(t *testing.T) {
		resp, raw := env.PostJSON("/similar", map[string]interface{}{
			"entityId": "src-solar:0000",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

		var out similarResponse
		require.NoError(t, json.Unmarshal(raw, &out))
		require.NotEmpty(t, out.Results)
		assert.Equal(t, "src-solar:0001", out.Results[0].EntityID)
		assert.Equal(t, "exact", out.Results[0].MatchType)
		assert.Equal(t, "energy", out.Results[0].Entity.Domain)
		assert.Equal(t, "src-solar:0000", out.Query.EntityID)
		assert.Equal(t, out.Meta.Count, len(out.Results))

		for _, res := range out.Results {
			assert.NotEqual(t, "src-solar:0000", res.EntityID, "query entity must not match itself")
		}
	})

	t.Run("unknown entity returns 404", func(t *testing.T) {
		resp, raw := env.PostJSON("/similar", map[string]interface{}{
			"entityId": "no-such-entity",
		})
		require.Equal(t, http.StatusNotFound, resp.StatusCode, string(raw))

		var out struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.Equal(t, "NOT_FOUND", out.Code)
	})

	t.Run("cache stats reflect the query", func(t *testing.T) {
		resp, raw := env.Get("/cache-stats")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

		var out cacheStatsResponse
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.True(t, out.Success)
		require.Equal(t, 1, out.Stats.CacheSize)
		assert.Equal(t, 1, len(out.Stats.Entries))
	})

	t.Run("clear cache empties stats", func(t *testing.T) {
		resp, raw := env.Delete("/cache-stats")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

		resp, raw = env.Get("/cache-stats")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

		var out cacheStatsResponse
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.Equal(t, 0, out.Stats.CacheSize)
	})
}

func TestE2E_ReingestionReplacesChunks(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	first := BuildDOCX(t, []string{
		longParagraph("Wind turbines capture kinetic energy from moving air masses."),
		longParagraph("Wind turbines capture kinetic energy from moving air masses."),
	})
	second := BuildDOCX(t, []string{
		longParagraph("Hydroelectric dams generate power from falling water pressure."),
	})

	resp, raw := env.UploadDocument("wind.docx", first, map[string]string{"sourceId": "src-wind"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.Equal(t, 2, env.Store.Len())

	resp, raw = env.UploadDocument("hydro.docx", second, map[string]string{"sourceId": "src-wind"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	// The first chunk is overwritten in place; the leftover second chunk from
	// the previous ingestion keeps its old content until a source purge.
	_, err := env.Store.Get(env.Ctx, "src-wind:0000")
	require.NoError(t, err)
}

func TestE2E_UploadValidation(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("missing sourceId", func(t *testing.T) {
		docx := BuildDOCX(t, []string{"hello"})
		resp, raw := env.UploadDocument("a.docx", docx, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		resp, raw := env.UploadDocument("notes.txt", []byte("plain text"), map[string]string{
			"sourceId": "src-bad",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))

		var out struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.Equal(t, "UNSUPPORTED_FORMAT", out.Code)
	})
}
