package depot

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/gogrow/chemspace"
	"github.com/rmera/gogrow/gnina"
	"github.com/rmera/gogrow/props"
)

func TestCandidateParams(t *testing.T) {
	c := &chemspace.Candidate{
		ID:         "abc123",
		RGroup:     "methyl",
		Linker:     "ether",
		Conformers: 4,
		Props:      &props.Properties{MolWeight: 46.04, TPSA: 9.23, HBondAcceptors: 1},
		Scores: []*gnina.Score{
			{Pose: 1, Affinity: -4.9, CNNAffinity: 5.8},
			{Pose: 2, Affinity: -5.3, CNNAffinity: 6.4},
		},
	}
	p := candidateParams("run-1", c)
	assert.Equal(t, "run-1", p["run"])
	assert.Equal(t, "abc123", p["id"])
	assert.Equal(t, "ether", p["linker"])
	assert.Equal(t, 4, p["conformers"])
	assert.InDelta(t, 46.04, p["mol_weight"].(float64), 1e-10)
	assert.InDelta(t, 6.4, p["cnn_affinity"].(float64), 1e-10, "the best pose's score")
	assert.InDelta(t, -5.3, p["affinity"].(float64), 1e-10)
}

func TestCandidateParamsBare(t *testing.T) {
	//a tombstone with no properties or scores still covers every SET key
	c := &chemspace.Candidate{ID: "dead", RGroup: "nitro", Missing: true, Note: "refused"}
	p := candidateParams("run-1", c)
	for _, key := range []string{"mol_weight", "tpsa", "hbond_donors",
		"hbond_acceptors", "log_p", "lipinski_pass", "affinity", "cnn_affinity"} {
		v, ok := p[key]
		require.True(t, ok, "missing key %s", key)
		assert.Nil(t, v)
	}
	assert.Equal(t, true, p["missing"])
}

//exercises the store against a live database. Set NEO4J_URI (and NEO4J_USER/
//NEO4J_PASSWORD if needed) to run it.
func TestStoreRoundTrip(t *testing.T) {
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set, skipping the live round-trip")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	st, err := NewStore(ctx, uri, os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"), "")
	require.NoError(t, err)
	defer st.Close(ctx)

	run := uuid.NewString()
	id := "test-" + uuid.NewString()
	rep := &chemspace.Report{
		RunID:    run,
		Receptor: "rec.pdb",
		RGroups:  []string{"methyl"},
		Candidates: []*chemspace.Candidate{
			{
				ID: id, Run: run, RGroup: "methyl", Conformers: 2,
				Props:  &props.Properties{MolWeight: 30.05},
				Scores: []*gnina.Score{{Pose: 1, Affinity: -6.0, CNNAffinity: 99.9}},
			},
			{ID: "test-" + uuid.NewString(), Run: run, RGroup: "nitro",
				Missing: true, Note: "every conformer clashes with the receptor"},
		},
	}
	require.NoError(t, st.SaveRun(ctx, rep))
	//saving twice must not duplicate, MERGE keys on the IDs
	require.NoError(t, st.SaveRun(ctx, rep))

	hits, err := st.TopCandidates(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, id, hits[0].ID, "99.9 should beat anything already stored")
	assert.Equal(t, "methyl", hits[0].RGroup)
	assert.InDelta(t, 99.9, hits[0].CNNAffinity, 1e-10)
	assert.EqualValues(t, 1, hits[0].Runs)
	for _, h := range hits {
		assert.NotEqual(t, rep.Candidates[1].ID, h.ID, "tombstones never score")
	}
}
