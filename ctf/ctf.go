package ctf

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	grow "github.com/rmera/gogrow"
	v3 "github.com/rmera/gogrow/v3"
)

const defaultPrec = 3

//Writer writes the conformers of one molecule to a ctf archive.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	natoms    int
	filename  string
	writeable bool
	prec      int
}

//NewWriter creates an archive with the given header and opens it for
//writing frames of natoms atoms. The header map may be nil. If it carries
//no "prec" key, the default precision is used, and recorded in the file.
func NewWriter(name string, natoms int, header map[string]string) (*Writer, error) {
	W := new(Writer)
	var err error
	W.f, err = os.Create(name)
	if err != nil {
		return nil, err
	}
	W.h, err = zstd.NewWriter(W.f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, Error{"can't build the compressor: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	W.natoms = natoms
	W.filename = name
	W.writeable = true
	W.prec = defaultPrec
	if p, ok := header["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			W.prec = prec
		} else {
			log.Printf("Invalid precision for archive %s. Will use the default", W.filename)
		}
	}
	for k, v := range header {
		if k == "prec" {
			continue
		}
		W.h.Write([]byte(fmt.Sprintf("%s=%v\n", k, v)))
	}
	W.h.Write([]byte(fmt.Sprintf("prec=%d\n", W.prec)))
	W.h.Write([]byte(fmt.Sprintf("** %d\n", W.natoms)))
	return W, nil
}

//WNext writes coord as the next frame of the archive.
func (W *Writer) WNext(coord *v3.Matrix) error {
	if !W.writeable {
		return Error{TrajUnIniWrite, W.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, W.filename, []string{"WNext"}, true}
	}
	v := coord.NVecs()
	if v != W.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, W.natoms), W.filename, []string{"WNext"}, true}
	}
	var floats [3]float64
	for i := 0; i < v; i++ {
		floats[0] = coord.At(i, 0)
		floats[1] = coord.At(i, 1)
		floats[2] = coord.At(i, 2)
		W.h.Write([]byte(coordsEncode(floats, W.prec)))
	}
	W.h.Write([]byte("*\n"))
	return nil
}

//Close flushes and closes the archive. The Writer can not be used after
//this call.
func (W *Writer) Close() {
	if W == nil {
		return
	}
	if W.writeable {
		W.h.Close()
		W.f.Close()
	}
	W.writeable = false
}

//Len returns the number of atoms per frame.
func (W *Writer) Len() int {
	return W.natoms
}

//Reader reads frames back from a ctf archive.
type Reader struct {
	f            *os.File
	zst          io.ReadCloser
	h            *bufio.Reader
	intermediate *bufio.Reader
	natoms       int
	filename     string
	prec         int
	readable     bool
}

//*zstd.Decoder has a Close that doesn't return an error, so it misses
//io.ReadCloser by that much.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (s zstdql) Close() error {
	s.closeql()
	return nil
}

//New opens a ctf archive for reading and returns the handle and the header
//map, which holds at least the precision.
func New(name string) (*Reader, map[string]string, error) {
	R := new(Reader)
	R.natoms = -1 //just so we know if things don't work
	R.filename = name
	var err error
	R.f, err = os.Open(R.filename)
	if err != nil {
		return nil, nil, err
	}
	R.intermediate = bufio.NewReader(R.f)
	dec, err := zstd.NewReader(R.intermediate)
	if err != nil {
		return nil, nil, Error{"can't build the decompressor: " + err.Error(), R.filename, []string{"New"}, true}
	}
	R.zst = zstdql{dec.Close, dec}
	R.h = bufio.NewReader(R.zst)
	m := make(map[string]string)
	for {
		str, err := R.h.ReadString('\n')
		if err != nil {
			return nil, nil, Error{"can't read the header: " + err.Error(), R.filename, []string{"New"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				return nil, nil, Error{fmt.Sprintf("can't read the atom number from %q", str), R.filename, []string{"New"}, true}
			}
			R.natoms, err = strconv.Atoi(nat[1])
			if err != nil {
				return nil, nil, Error{fmt.Sprintf("can't read the atom number from %q: %s", nat[1], err.Error()), R.filename, []string{"New"}, true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return nil, nil, Error{fmt.Sprintf("malformed header line %q", str), R.filename, []string{"New"}, true}
		}
		m[kv[0]] = kv[1]
	}
	R.readable = true
	R.prec = defaultPrec
	if p, ok := m["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			R.prec = prec
		} else {
			log.Printf("Invalid precision for archive %s. Will assume the default", R.filename)
		}
	}
	return R, m, nil
}

//Readable returns true if it is possible to call Next on the handle.
func (R *Reader) Readable() bool {
	return R.readable
}

//Next puts the coordinates of the next frame in c. A nil c skips the frame,
//still checking it for correctness. When the archive runs out, the returned
//error satisfies LastFrame.
func (R *Reader) Next(c *v3.Matrix) error {
	var temp [3]float64
	for i := 0; i < R.natoms; i++ {
		b, err := R.h.ReadBytes('\n')
		if err != nil {
			//an EOF is only normal when reading the first atom
			if err.Error() == "EOF" && i == 0 {
				R.Close()
				return newlastFrameError(R.filename, "Next")
			}
			return Error{"can't read frame: " + err.Error(), R.filename, []string{"Next"}, true}
		}
		if err := coordsDecode(string(b[:len(b)-1]), &temp, R.prec); err != nil {
			return Error{err.Error(), R.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue
		}
		for j, v := range temp {
			c.Set(i, j, v)
		}
	}
	s, err := R.h.ReadString('\n')
	if err != nil {
		return Error{"can't read the frame termination mark: " + err.Error(), R.filename, []string{"Next"}, true}
	}
	if s[0] != '*' {
		return Error{"wrong number of atoms in frame", R.filename, []string{"Next"}, true}
	}
	return nil
}

//Close closes the handle, marking it unreadable.
func (R *Reader) Close() {
	if !R.readable {
		return
	}
	R.zst.Close()
	R.f.Close()
	R.readable = false
}

//Len returns the number of atoms per frame.
func (R *Reader) Len() int {
	return R.natoms
}

func coordsEncode(f [3]float64, prec int) string {
	p := math.Pow(10.0, float64(prec))
	var temp [3]int
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * p))
	}
	return fmt.Sprintf("%d %d %d\n", temp[0], temp[1], temp[2])
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := math.Pow(10.0, float64(prec))
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("ill-formated coordinates line: %q", str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("can't parse coordinate %d (%s): %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

//WriteAll archives every frame of mol under the given molecule id, with the
//conformer energies, if any, stored in the header.
func WriteAll(name string, mol *grow.Molecule, id string, energies []float64) error {
	if mol == nil || mol.LenFrames() == 0 {
		return Error{NilCoordinates, name, []string{"WriteAll"}, true}
	}
	header := make(map[string]string)
	if id != "" {
		header["id"] = id
	}
	PutEnergies(header, energies)
	W, err := NewWriter(name, mol.Len(), header)
	if err != nil {
		return err
	}
	defer W.Close()
	for i := 0; i < mol.LenFrames(); i++ {
		if err := W.WNext(mol.Coords[i]); err != nil {
			return errDecorate(err, "WriteAll")
		}
	}
	return nil
}

//ReadAll returns every frame of an archive, plus its header.
func ReadAll(name string) ([]*v3.Matrix, map[string]string, error) {
	R, header, err := New(name)
	if err != nil {
		return nil, nil, err
	}
	frames := make([]*v3.Matrix, 0, 10)
	for {
		c := v3.Zeros(R.Len())
		err := R.Next(c)
		if err != nil {
			if LastFrame(err) {
				break
			}
			return nil, nil, errDecorate(err, "ReadAll")
		}
		frames = append(frames, c)
	}
	return frames, header, nil
}

//PutEnergies stores conformer energies (kcal/mol) in an archive header.
func PutEnergies(header map[string]string, energies []float64) {
	if len(energies) == 0 {
		return
	}
	s := make([]string, len(energies))
	for i, v := range energies {
		s[i] = strconv.FormatFloat(v, 'f', 4, 64)
	}
	header["energies"] = strings.Join(s, ",")
}

//Energies recovers the conformer energies from an archive header. Both
//returns are nil if the header doesn't carry energies.
func Energies(header map[string]string) ([]float64, error) {
	s, ok := header["energies"]
	if !ok {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	energies := make([]float64, len(fields))
	var err error
	for i, v := range fields {
		energies[i], err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("ctf: mangled energy %q in the header: %w", v, err)
		}
	}
	return energies, nil
}

//Errors

//errDecorate asserts that the error implements grow.Error and decorates it
//with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2, ok := err.(grow.Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for ctf archive errors.
type Error struct {
	message  string
	filename string //the file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("ctf file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error
func (E Error) Decorate(deco string) []string {
	//E.deco is a slice, so the append works even without a pointer receiver.
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file to which the failing archive was associated
func (err Error) FileName() string { return err.filename }

//Format returns the format associated to the error (always "ctf")
func (err Error) Format() string { return "ctf" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniWrite = "Archive not initialized for writing"
	NilCoordinates = "Given nil coordinates"
)

//lastFrameError signals the normal end of an archive.
type lastFrameError struct {
	deco     []string
	fileName string
}

func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "ctf" }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}

//LastFrame returns true if err just signals the normal end of an archive.
func LastFrame(err error) bool {
	_, ok := err.(*lastFrameError)
	return ok
}
