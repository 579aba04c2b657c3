package ctf

import (
	"fmt"
	"math"
	"testing"

	grow "github.com/rmera/gogrow"
	v3 "github.com/rmera/gogrow/v3"
)

func testEnsemble(Te *testing.T) *grow.Molecule {
	ats := []*grow.Atom{{Symbol: "C", ID: 1}, {Symbol: "O", ID: 2}, {Symbol: "H", ID: 3}}
	top := grow.NewTopology(0, 1, ats)
	frames := make([]*v3.Matrix, 0, 2)
	for fr := 0; fr < 2; fr++ {
		c := v3.Zeros(3)
		for i := 0; i < 3; i++ {
			c.Set(i, 0, 1.23456+float64(fr))
			c.Set(i, 1, -0.5*float64(i))
			c.Set(i, 2, 0.125)
		}
		frames = append(frames, c)
	}
	mol, err := grow.NewMolecule(frames, top, nil)
	if err != nil {
		Te.Fatal(err)
	}
	return mol
}

func TestArchiveRoundTrip(Te *testing.T) {
	fmt.Println("CTF round-trip test!")
	name := Te.TempDir() + "/conf.ctf"
	mol := testEnsemble(Te)
	energies := []float64{-1.5, 2.25}
	if err := WriteAll(name, mol, "abc123", energies); err != nil {
		Te.Fatal(err)
	}
	frames, header, err := ReadAll(name)
	if err != nil {
		Te.Fatal(err)
	}
	if len(frames) != 2 {
		Te.Fatalf("read %d frames, want 2", len(frames))
	}
	if header["id"] != "abc123" {
		Te.Errorf("the molecule id got lost: %v", header)
	}
	back, err := Energies(header)
	if err != nil {
		Te.Fatal(err)
	}
	if len(back) != 2 || back[0] != -1.5 || back[1] != 2.25 {
		Te.Errorf("energies don't survive the round trip: %v", back)
	}
	//at the default precision, coordinates survive to the mA
	if math.Abs(frames[0].At(0, 0)-1.235) > 1e-9 {
		Te.Errorf("bad rounding: %f", frames[0].At(0, 0))
	}
	for fr, c := range frames {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				if math.Abs(c.At(i, j)-mol.Coords[fr].At(i, j)) > 5.1e-4 {
					Te.Errorf("frame %d atom %d coordinate %d off by more than the precision", fr, i, j)
				}
			}
		}
	}
}

func TestFrameByFrame(Te *testing.T) {
	fmt.Println("CTF frame-by-frame test!")
	name := Te.TempDir() + "/conf.ctf"
	W, err := NewWriter(name, 2, map[string]string{"prec": "2"})
	if err != nil {
		Te.Fatal(err)
	}
	for fr := 0; fr < 3; fr++ {
		c := v3.Zeros(2)
		c.Set(0, 0, float64(fr))
		c.Set(1, 2, 10.55)
		if err := W.WNext(c); err != nil {
			Te.Error(err)
		}
	}
	if err := W.WNext(v3.Zeros(5)); err == nil {
		Te.Error("a frame with the wrong number of atoms should be rejected")
	}
	W.Close()
	if err := W.WNext(v3.Zeros(2)); err == nil {
		Te.Error("writing to a closed archive should fail")
	}

	R, header, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	if header["prec"] != "2" || R.Len() != 2 {
		Te.Errorf("header or atom number mangled: %v, %d", header, R.Len())
	}
	c := v3.Zeros(R.Len())
	read := 0
	for {
		var err error
		if read == 1 {
			err = R.Next(nil) //skip, but still check, the middle frame
		} else {
			err = R.Next(c)
		}
		if err != nil {
			if LastFrame(err) {
				break
			}
			Te.Fatal(err)
		}
		read++
	}
	if read != 3 {
		Te.Errorf("read %d frames, want 3", read)
	}
	if c.At(0, 0) != 2.0 || c.At(1, 2) != 10.55 {
		Te.Errorf("the last frame came back wrong: %v %v", c.At(0, 0), c.At(1, 2))
	}
}

func TestMangledEnergies(Te *testing.T) {
	_, err := Energies(map[string]string{"energies": "1.0,potato"})
	if err == nil {
		Te.Error("a mangled energy list should be an error")
	}
	e, err := Energies(map[string]string{})
	if e != nil || err != nil {
		Te.Error("no energies in the header should just mean nil")
	}
}
