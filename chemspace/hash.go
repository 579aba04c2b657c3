package chemspace

import (
	"bytes"
	"encoding/hex"
	"fmt"

	grow "github.com/rmera/gogrow"
	"lukechampine.com/blake3"
)

//GraphHash returns a hex blake3 digest of the bond graph of mol: element
//symbols, formal charges and attachment labels in atom order, plus every
//bond with its order. The geometry stays out of the digest, so all the
//conformers of a product share one ID, and identical products built in
//different runs collide on purpose.
func GraphHash(mol *grow.Molecule) string {
	mol.FillIndexes()
	var buf bytes.Buffer
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		fmt.Fprintf(&buf, "%s;%d;%g|", at.Symbol, at.Wildcard, at.Charge)
	}
	for i := 0; i < mol.Len(); i++ {
		for _, b := range mol.Atom(i).Bonds {
			lo, hi := b.At1.Index(), b.At2.Index()
			if lo > hi {
				lo, hi = hi, lo
			}
			if lo != i {
				continue //each bond is written once, from its lowest atom
			}
			fmt.Fprintf(&buf, "%d-%d:%g|", lo, hi, b.Order)
		}
	}
	sum := blake3.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
