//Package depot keeps pipeline results in a neo4j graph, so the candidates
//of many growing campaigns accumulate in one place and the best scorers can
//be queried across runs. Candidates are merged by their graph hash: the
//same product grown in two runs becomes one node with two PRODUCED edges.
package depot

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/rmera/gogrow/chemspace"
)

//Store is a connection to the result graph.
type Store struct {
	driver neo4j.DriverWithContext
	db     string
}

//NewStore connects to the database and checks that it answers. An empty
//database name means the server default, "neo4j".
func NewStore(ctx context.Context, uri, user, password, database string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("depot: couldn't create the driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("depot: %s doesn't answer: %w", uri, err)
	}
	if database == "" {
		database = "neo4j"
	}
	return &Store{driver: driver, db: database}, nil
}

//Close releases the connection.
func (S *Store) Close(ctx context.Context) error {
	return S.driver.Close(ctx)
}

func (S *Store) run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, S.driver, query, params,
		neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(S.db))
	if err != nil {
		return nil, fmt.Errorf("depot: query failed: %w", err)
	}
	return result, nil
}

const mergeRunCypher = `
MERGE (r:Run {id: $id})
SET r.receptor = $receptor, r.when = $when`

const mergeCandidateCypher = `
MERGE (c:Candidate {id: $id})
SET c.r_group = $r_group, c.linker = $linker, c.conformers = $conformers,
    c.missing = $missing, c.note = $note, c.mol_weight = $mol_weight,
    c.tpsa = $tpsa, c.hbond_donors = $hbond_donors,
    c.hbond_acceptors = $hbond_acceptors, c.log_p = $log_p,
    c.lipinski_pass = $lipinski_pass, c.affinity = $affinity,
    c.cnn_affinity = $cnn_affinity
WITH c
MATCH (r:Run {id: $run})
MERGE (r)-[:PRODUCED]->(c)
WITH c
MERGE (g:Fragment {name: $r_group, kind: 'rgroup'})
MERGE (c)-[:GREW_FROM]->(g)`

const mergeLinkerCypher = `
MATCH (c:Candidate {id: $id})
MERGE (g:Fragment {name: $linker, kind: 'linker'})
MERGE (c)-[:GREW_FROM]->(g)`

//every SET key must exist in the map, absent values go in as null
func candidateParams(run string, c *chemspace.Candidate) map[string]any {
	p := map[string]any{
		"run":             run,
		"id":              c.ID,
		"r_group":         c.RGroup,
		"linker":          c.Linker,
		"conformers":      c.Conformers,
		"missing":         c.Missing,
		"note":            c.Note,
		"mol_weight":      nil,
		"tpsa":            nil,
		"hbond_donors":    nil,
		"hbond_acceptors": nil,
		"log_p":           nil,
		"lipinski_pass":   nil,
		"affinity":        nil,
		"cnn_affinity":    nil,
	}
	if c.Props != nil {
		p["mol_weight"] = c.Props.MolWeight
		p["tpsa"] = c.Props.TPSA
		p["hbond_donors"] = c.Props.HBondDonors
		p["hbond_acceptors"] = c.Props.HBondAcceptors
	}
	if c.LogP != nil {
		p["log_p"] = *c.LogP
	}
	if c.Lipinski != nil {
		p["lipinski_pass"] = c.Lipinski.Pass
	}
	if best := c.BestScore(); best != nil {
		p["affinity"] = best.Affinity
		p["cnn_affinity"] = best.CNNAffinity
	}
	return p
}

//SaveRun stores a report: the run node, every candidate (tombstones
//included, flagged), and the edges to the fragments that made each one.
func (S *Store) SaveRun(ctx context.Context, rep *chemspace.Report) error {
	if rep == nil || rep.RunID == "" {
		return fmt.Errorf("depot: nil report or empty run ID")
	}
	_, err := S.run(ctx, mergeRunCypher, map[string]any{
		"id":       rep.RunID,
		"receptor": rep.Receptor,
		"when":     time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	for _, c := range rep.Candidates {
		if _, err := S.run(ctx, mergeCandidateCypher, candidateParams(rep.RunID, c)); err != nil {
			return fmt.Errorf("depot: saving candidate %s: %w", c.ID, err)
		}
		if c.Linker != "" {
			params := map[string]any{"id": c.ID, "linker": c.Linker}
			if _, err := S.run(ctx, mergeLinkerCypher, params); err != nil {
				return fmt.Errorf("depot: saving candidate %s: %w", c.ID, err)
			}
		}
	}
	return nil
}

//Hit is one row of a cross-run query.
type Hit struct {
	ID          string
	RGroup      string
	Linker      string
	CNNAffinity float64
	Runs        int64 //how many runs produced it
}

const topCypher = `
MATCH (c:Candidate)
WHERE c.cnn_affinity IS NOT NULL AND NOT coalesce(c.missing, false)
OPTIONAL MATCH (r:Run)-[:PRODUCED]->(c)
RETURN c.id AS id, c.r_group AS r_group, coalesce(c.linker, '') AS linker,
       c.cnn_affinity AS cnn_affinity, count(r) AS runs
ORDER BY c.cnn_affinity DESC
LIMIT $n`

//TopCandidates returns the n best-scoring candidates ever stored, best
//first, with how many runs produced each.
func (S *Store) TopCandidates(ctx context.Context, n int) ([]Hit, error) {
	if n <= 0 {
		n = 10
	}
	result, err := S.run(ctx, topCypher, map[string]any{"n": int64(n)})
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, 0, len(result.Records))
	for _, rec := range result.Records {
		h := Hit{
			ID:          recString(rec, "id"),
			RGroup:      recString(rec, "r_group"),
			Linker:      recString(rec, "linker"),
			CNNAffinity: recFloat(rec, "cnn_affinity"),
			Runs:        recInt(rec, "runs"),
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func recString(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func recFloat(rec *neo4j.Record, key string) float64 {
	v, ok := rec.Get(key)
	if !ok {
		return 0
	}
	f, _ := v.(float64)
	return f
}

func recInt(rec *neo4j.Record, key string) int64 {
	v, ok := rec.Get(key)
	if !ok {
		return 0
	}
	i, _ := v.(int64)
	return i
}
