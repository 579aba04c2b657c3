//Package al ranks candidates with a trained gradient-boosting classifier so
//the most promising corner of a chemical space gets built and scored first.
//Models are trained elsewhere on the descriptor vector of Features and
//loaded from boo's JSON serialization. Two acquisition policies are offered:
//plain greedy, and Boltzmann sampling, which trades some immediate gain for
//exploration.
package al

import (
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"

	"github.com/mroth/weightedrand"
	"github.com/rmera/boo"

	grow "github.com/rmera/gogrow"
	"github.com/rmera/gogrow/props"
)

//Keys names the components of a feature vector, in order.
var Keys = []string{"mol_weight", "heavy_atoms", "h_bond_donors", "h_bond_acceptors", "rotatable_bonds", "rings", "tpsa"}

//Features turns a descriptor set into the fixed-order vector the models
//are trained on.
func Features(P *props.Properties) []float64 {
	return []float64{P.MolWeight, float64(P.HeavyAtoms), float64(P.HBondDonors),
		float64(P.HBondAcceptors), float64(P.RotatableBonds), float64(P.Rings), P.TPSA}
}

//Featurize computes the feature vector for a molecule.
func Featurize(mol *grow.Molecule) ([]float64, error) {
	P, err := props.Calc(mol)
	if err != nil {
		return nil, err
	}
	return Features(P), nil
}

//LoadModel reads a boo multi-class model from its JSON serialization.
func LoadModel(name string) (*boo.MultiClass, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("al: can't open the model file: %w", err)
	}
	defer f.Close()
	m, err := boo.UnJSONMultiClass(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("al: can't parse the model in %s: %w", name, err)
	}
	return m, nil
}

//A Ranker assigns a gain to feature vectors: the probability, under the
//model, that the candidate falls in the class of interest.
type Ranker struct {
	Predict func([]float64) []float64 //class probabilities for one feature vector
	Class   int                       //the class whose probability is the gain
}

//NewRanker wraps a trained model. class is the index of the class whose
//predicted probability will be used as the gain (normally the highest
//activity bin the model was trained with).
func NewRanker(m *boo.MultiClass, class int) *Ranker {
	return &Ranker{
		Predict: func(v []float64) []float64 { return m.PredictSingle(v) },
		Class:   class,
	}
}

//Ranked is one candidate's position in a ranking. Index refers to the
//feature matrix given to Rank.
type Ranked struct {
	Index int
	Gain  float64
}

//Rank scores every feature vector and returns the candidates sorted by
//decreasing gain. Ties keep the original order.
func (R *Ranker) Rank(feats [][]float64) ([]*Ranked, error) {
	if R.Predict == nil {
		return nil, fmt.Errorf("al: the ranker has no model")
	}
	ranked := make([]*Ranked, 0, len(feats))
	for i, v := range feats {
		probs := R.Predict(v)
		if R.Class < 0 || R.Class >= len(probs) {
			return nil, fmt.Errorf("al: the model predicts %d classes, none of them %d", len(probs), R.Class)
		}
		ranked = append(ranked, &Ranked{Index: i, Gain: probs[R.Class]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Gain > ranked[j].Gain })
	return ranked, nil
}

//Greedy returns the indexes of the k best-ranked candidates.
func Greedy(ranked []*Ranked, k int) []int {
	if k > len(ranked) {
		k = len(ranked)
	}
	sel := make([]int, 0, k)
	for _, v := range ranked[:k] {
		sel = append(sel, v.Index)
	}
	return sel
}

//Boltzmann draws k distinct candidates with probabilities proportional to
//exp(gain/T). Low temperatures approach Greedy, high ones approach uniform
//sampling. A nil src uses the global random source.
func Boltzmann(ranked []*Ranked, k int, temperature float64, src *rand.Rand) ([]int, error) {
	if temperature <= 0 {
		return nil, fmt.Errorf("al: the temperature must be positive, got %4.2f", temperature)
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	gmax := math.Inf(-1)
	for _, v := range ranked {
		if v.Gain > gmax {
			gmax = v.Gain
		}
	}
	left := append([]*Ranked{}, ranked...)
	sel := make([]int, 0, k)
	for len(sel) < k {
		choices := make([]weightedrand.Choice, len(left))
		for i, v := range left {
			//shifting by the maximum keeps the exponentials sane, the +1
			//keeps every weight above zero after truncation
			w := uint(math.Round(1e6*math.Exp((v.Gain-gmax)/temperature))) + 1
			choices[i] = weightedrand.NewChoice(i, w)
		}
		chooser, err := weightedrand.NewChooser(choices...)
		if err != nil {
			return nil, fmt.Errorf("al: can't build the sampler: %w", err)
		}
		var picked int
		if src != nil {
			picked = chooser.PickSource(src).(int)
		} else {
			picked = chooser.Pick().(int)
		}
		sel = append(sel, left[picked].Index)
		left = append(left[:picked], left[picked+1:]...)
	}
	return sel, nil
}
