// Package fraglib ships a small catalog of substituents and linkers ready
// to attach to a scaffold. The molecules are hardcoded as V2000 blocks with
// their attachment points marked as R-group atoms, the way most chemical
// sketchers export them.
package fraglib

import (
	"fmt"
	"sort"

	grow "github.com/rmera/gogrow"
)

type entry struct {
	name     string
	category string
	molblock string
}

// the blocks are hardcoded, so a parse failure is a bug and we just panic.
func (e *entry) fragment() *grow.Fragment {
	mols, _, err := grow.SDFStringRead(e.molblock)
	if err != nil {
		panic("fraglib: " + e.name + ": " + err.Error())
	}
	f, err := grow.NewFragment(mols[0], e.name)
	if err != nil {
		panic("fraglib: " + e.name + ": " + err.Error())
	}
	return f
}

func find(list []entry, name string) *entry {
	for i := range list {
		if list[i].name == name {
			return &list[i]
		}
	}
	return nil
}

// RGroup returns a fresh copy of the named substituent. Every call parses
// the catalog block again, so callers can modify the result freely.
func RGroup(name string) (*grow.Fragment, error) {
	e := find(rgroups, name)
	if e == nil {
		return nil, fmt.Errorf("fraglib: no R-group %q in the catalog", name)
	}
	return e.fragment(), nil
}

// Linker returns a fresh copy of the named linker.
func Linker(name string) (*grow.Fragment, error) {
	e := find(linkers, name)
	if e == nil {
		return nil, fmt.Errorf("fraglib: no linker %q in the catalog", name)
	}
	return e.fragment(), nil
}

func collect(list []entry, category string) []*grow.Fragment {
	ret := make([]*grow.Fragment, 0, len(list))
	for i := range list {
		if category == "" || list[i].category == category {
			ret = append(ret, list[i].fragment())
		}
	}
	return ret
}

// RGroups returns fresh copies of every substituent in the given category,
// in catalog order. An empty category means the whole catalog.
func RGroups(category string) []*grow.Fragment {
	return collect(rgroups, category)
}

// Linkers returns fresh copies of every linker in the given category, in
// catalog order. An empty category means the whole catalog.
func Linkers(category string) []*grow.Fragment {
	return collect(linkers, category)
}

func names(list []entry) []string {
	ret := make([]string, len(list))
	for i := range list {
		ret[i] = list[i].name
	}
	return ret
}

// RGroupNames returns the names of all the substituents in the catalog.
func RGroupNames() []string {
	return names(rgroups)
}

// LinkerNames returns the names of all the linkers in the catalog.
func LinkerNames() []string {
	return names(linkers)
}

// Categories returns the categories present in the catalog, sorted.
func Categories() []string {
	seen := make(map[string]bool)
	for _, e := range rgroups {
		seen[e.category] = true
	}
	for _, e := range linkers {
		seen[e.category] = true
	}
	ret := make([]string, 0, len(seen))
	for c := range seen {
		ret = append(ret, c)
	}
	sort.Strings(ret)
	return ret
}

var rgroups = []entry{
	{"methyl", "alkyl", methylBlock},
	{"ethyl", "alkyl", ethylBlock},
	{"phenyl", "aryl", phenylBlock},
	{"hydroxyl", "polar", hydroxylBlock},
	{"methoxy", "ether", methoxyBlock},
	{"amino", "amine", aminoBlock},
	{"dimethylamino", "amine", dimethylaminoBlock},
	{"cyano", "polar", cyanoBlock},
	{"trifluoromethyl", "halogen", trifluoromethylBlock},
	{"fluoro", "halogen", fluoroBlock},
	{"chloro", "halogen", chloroBlock},
	{"bromo", "halogen", bromoBlock},
	{"nitro", "polar", nitroBlock},
	{"carboxamide", "polar", carboxamideBlock},
}

var linkers = []entry{
	{"methylene", "alkyl", methyleneBlock},
	{"ethylene", "alkyl", ethyleneBlock},
	{"ether", "ether", etherBlock},
	{"amine", "amine", amineBlock},
	{"amide", "amide", amideBlock},
}

const methylBlock = `methyl
  gogrow          3D

  5  4  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
   -0.3633    1.0277    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
   -0.3633   -0.5138    0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
   -0.3633   -0.5138   -0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
    1.5000    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  1  3  1  0
  1  4  1  0
  1  5  1  0
M  RGP  1   5   1
M  END
$$$$
`

const ethylBlock = `ethyl
  gogrow          3D

  8  7  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.5260    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
   -0.3633    0.5138    0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
   -0.3633    0.5138   -0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
    1.8893   -1.0277    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
    1.8893    0.5138    0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
    1.8893    0.5138   -0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
   -0.5087   -1.4106    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  1  3  1  0
  1  4  1  0
  2  5  1  0
  2  6  1  0
  2  7  1  0
  1  8  1  0
M  RGP  1   8   1
M  END
$$$$
`

const phenylBlock = `phenyl
  gogrow          3D

 12 12  0  0  0  0  0  0  0  0999 V2000
    1.3960    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    0.6980    1.2090    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
   -0.6980    1.2090    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
   -1.3960    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
   -0.6980   -1.2090    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    0.6980   -1.2090    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    2.8960    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
    1.2430    2.1530    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
   -1.2430    2.1530    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
   -2.4860    0.0000    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
   -1.2430   -2.1530    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
    1.2430   -2.1530    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  4  0
  2  3  4  0
  3  4  4  0
  4  5  4  0
  5  6  4  0
  6  1  4  0
  1  7  1  0
  2  8  1  0
  3  9  1  0
  4 10  1  0
  5 11  1  0
  6 12  1  0
M  RGP  1   7   1
M  END
$$$$
`

const hydroxylBlock = `hydroxyl
  gogrow          3D

  3  2  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
    0.3200    0.9200    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
   -1.4100    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  1  3  1  0
M  RGP  1   3   1
M  END
$$$$
`

const methoxyBlock = `methoxy
  gogrow          3D

  6  5  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
    1.4100    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.7733   -1.0277    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
    1.7733    0.5138    0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
    1.7733    0.5138   -0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
   -0.4700    1.3300    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  2  3  1  0
  2  4  1  0
  2  5  1  0
  1  6  1  0
M  RGP  1   6   1
M  END
$$$$
`

const aminoBlock = `amino
  gogrow          3D

  4  3  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 N   0  0  0  0  0  0  0  0  0  0  0  0
    0.3300    0.9400    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
    0.3300   -0.4700    0.8200 H   0  0  0  0  0  0  0  0  0  0  0  0
   -1.4700    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  1  3  1  0
  1  4  1  0
M  RGP  1   4   1
M  END
$$$$
`

const dimethylaminoBlock = `dimethylamino
  gogrow          3D

 10  9  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 N   0  0  0  0  0  0  0  0  0  0  0  0
    1.4500    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
   -0.4800    1.3700    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.8133   -1.0277    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
    1.8133    0.5138    0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
    1.8133    0.5138   -0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
   -1.5700    1.3900    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
   -0.1100    1.9000    0.8800 H   0  0  0  0  0  0  0  0  0  0  0  0
   -0.1100    1.9000   -0.8800 H   0  0  0  0  0  0  0  0  0  0  0  0
   -0.5600   -0.7900   -1.1500 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  1  3  1  0
  2  4  1  0
  2  5  1  0
  2  6  1  0
  3  7  1  0
  3  8  1  0
  3  9  1  0
  1 10  1  0
M  RGP  1  10   1
M  END
$$$$
`

const cyanoBlock = `cyano
  gogrow          3D

  3  2  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.1600    0.0000    0.0000 N   0  0  0  0  0  0  0  0  0  0  0  0
   -1.4300    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  3  0
  1  3  1  0
M  RGP  1   3   1
M  END
$$$$
`

const trifluoromethylBlock = `trifluoromethyl
  gogrow          3D

  5  4  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    0.4400    1.2600    0.0000 F   0  0  0  0  0  0  0  0  0  0  0  0
    0.4400   -0.6300    1.0900 F   0  0  0  0  0  0  0  0  0  0  0  0
    0.4400   -0.6300   -1.0900 F   0  0  0  0  0  0  0  0  0  0  0  0
   -1.5000    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  1  3  1  0
  1  4  1  0
  1  5  1  0
M  RGP  1   5   1
M  END
$$$$
`

const fluoroBlock = `fluoro
  gogrow          3D

  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 F   0  0  0  0  0  0  0  0  0  0  0  0
    1.3500    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
M  RGP  1   2   1
M  END
$$$$
`

const chloroBlock = `chloro
  gogrow          3D

  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 Cl  0  0  0  0  0  0  0  0  0  0  0  0
    1.7700    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
M  RGP  1   2   1
M  END
$$$$
`

const bromoBlock = `bromo
  gogrow          3D

  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 Br  0  0  0  0  0  0  0  0  0  0  0  0
    1.9400    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
M  RGP  1   2   1
M  END
$$$$
`

const nitroBlock = `nitro
  gogrow          3D

  4  3  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 N   0  0  0  0  0  0  0  0  0  0  0  0
    0.6100    1.0600    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
    0.6100   -1.0600    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
   -1.4000    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  2  0
  1  3  1  0
  1  4  1  0
M  CHG  2   1   1   3  -1
M  RGP  1   4   1
M  END
$$$$
`

const carboxamideBlock = `carboxamide
  gogrow          3D

  6  5  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    0.6100    1.0600    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
    0.6900   -1.1500    0.0000 N   0  0  0  0  0  0  0  0  0  0  0  0
    0.2500   -2.0500    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
    1.7000   -1.1800    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
   -1.5000    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  2  0
  1  3  1  0
  3  4  1  0
  3  5  1  0
  1  6  1  0
M  RGP  1   6   1
M  END
$$$$
`

const methyleneBlock = `methylene
  gogrow          3D

  5  4  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
   -0.3633    0.5138    0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
   -0.3633    0.5138   -0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
    1.5000    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
   -0.5087   -1.4106    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  1  3  1  0
  1  4  1  0
  1  5  1  0
M  RGP  2   4   1   5   2
M  END
$$$$
`

const ethyleneBlock = `ethylene
  gogrow          3D

  8  7  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.5260    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
   -0.3633    0.5138    0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
   -0.3633    0.5138   -0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
    1.8893   -0.5138    0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
    1.8893   -0.5138   -0.8900 H   0  0  0  0  0  0  0  0  0  0  0  0
   -0.5087   -1.4106    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
    2.0347    1.4106    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  1  3  1  0
  1  4  1  0
  2  5  1  0
  2  6  1  0
  1  7  1  0
  2  8  1  0
M  RGP  2   7   1   8   2
M  END
$$$$
`

const etherBlock = `ether
  gogrow          3D

  3  2  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
   -1.4100    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
    0.4700    1.3300    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  1  3  1  0
M  RGP  2   2   1   3   2
M  END
$$$$
`

const amineBlock = `amine
  gogrow          3D

  4  3  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 N   0  0  0  0  0  0  0  0  0  0  0  0
    0.3300    0.9400    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
   -1.4700    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
    0.4900   -0.7000   -1.2100 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  1  3  1  0
  1  4  1  0
M  RGP  2   3   1   4   2
M  END
$$$$
`

const amideBlock = `amide
  gogrow          3D

  6  5  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    0.6100    1.0600    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
    0.6900   -1.1500    0.0000 N   0  0  0  0  0  0  0  0  0  0  0  0
    0.2500   -2.0500    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0
   -1.5000    0.0000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
    2.0900   -1.2000    0.0000 R#  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  2  0
  1  3  1  0
  3  4  1  0
  1  5  1  0
  3  6  1  0
M  RGP  2   5   1   6   2
M  END
$$$$
`
