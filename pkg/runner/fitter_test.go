package runner

import(
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/goimfit/pkg/imfit"
)

const sersicResult = `# Best-fit parameters
#   Reduced Chi^2 = 1.02
X0		50.0000 # +/- 0.1
Y0		60.0000 # +/- 0.2
FUNCTION Sersic
PA   10.0 # +/- 1.0
ell  0.3  # +/- 0.01
n    1.0  # fixed
I_e  0.2  # +/- 0.01
r_e  15.0 # +/- 0.5
`

// fakeImfit pretends to be imfit: it checks the config file is there,
// and writes a canned result to wherever --save-params points.
type fakeImfit struct {
	result  string
	err     error
	argv    []string
	config  string
}

func (fi *fakeImfit)Execute(ctx context.Context, argv []string) error {
	fi.argv = argv
	for i, arg := range argv {
		switch arg {
		case "-c":
			b, err := os.ReadFile(argv[i+1])
			if err != nil {
				return err
			}
			fi.config = string(b)
		case "--save-params":
			if fi.err == nil {
				if err := os.WriteFile(argv[i+1], []byte(fi.result), 0644); err != nil {
					return err
				}
			}
		}
	}
	return fi.err
}

func (fi *fakeImfit)argAfter(flag string) string {
	for i, arg := range fi.argv {
		if arg == flag && i+1 < len(fi.argv) {
			return fi.argv[i+1]
		}
	}
	return ""
}

type fakeMasker struct{}

func (fakeMasker)Mask(ctx context.Context, image string) (string, error) {
	return image + ".mask", nil
}

func newTestFitter(t *testing.T, fi *fakeImfit) *Fitter {
	c := NewConfig()
	c.OutDir = t.TempDir()
	require.NoError(t, c.Finalize())
	f := NewFitter(c)
	f.Executor = fi
	return f
}

func sersicModel(t *testing.T) *imfit.Model {
	m, err := imfit.SersicModel(map[string]imfit.Spec{"n": imfit.Fixed(1)}, imfit.Position{X: 50, Y: 60}, imfit.DefaultObjectDelta)
	require.NoError(t, err)
	return m
}

func TestFitModel(t *testing.T) {
	fi := &fakeImfit{result: sersicResult}
	f := newTestFitter(t, fi)
	m := sersicModel(t)

	mr, err := f.FitModel(context.Background(), Inputs{Image: "img.fits"}, m)
	require.NoError(t, err)
	require.NotNil(t, mr.ReducedChiSq)
	assert.Equal(t, 1.02, *mr.ReducedChiSq)

	cr, err := mr.Get(0)
	require.NoError(t, err)
	re, _ := cr.Get("r_e")
	assert.Equal(t, 15.0, re)

	expected, err := imfit.ModelConfig(m)
	require.NoError(t, err)
	assert.Equal(t, expected, fi.config)
	assert.Equal(t, "imfit", fi.argv[0])

	// Cleaned up afterwards
	for _, fn := range []string{fi.argAfter("-c"), fi.argAfter("--save-params")} {
		assert.Equal(t, f.Config.OutDir, filepath.Dir(fn))
		_, err := os.Stat(fn)
		assert.True(t, os.IsNotExist(err), fn)
	}
}

func TestFitModelSaveFiles(t *testing.T) {
	fi := &fakeImfit{result: sersicResult}
	f := newTestFitter(t, fi)
	f.Config.SaveFiles = true
	f.Masker = fakeMasker{}

	_, err := f.FitModel(context.Background(), Inputs{Image: "img.fits"}, sersicModel(t))
	require.NoError(t, err)
	assert.Equal(t, "img.fits.mask", fi.argAfter("--mask"))

	for _, fn := range []string{fi.argAfter("-c"), fi.argAfter("--save-params")} {
		_, err := os.Stat(fn)
		assert.NoError(t, err, fn)
	}
}

func TestFitUniqueFiles(t *testing.T) {
	fi := &fakeImfit{result: sersicResult}
	f := newTestFitter(t, fi)

	_, err := f.FitModel(context.Background(), Inputs{Image: "img.fits"}, sersicModel(t))
	require.NoError(t, err)
	first := fi.argAfter("-c")

	_, err = f.FitModel(context.Background(), Inputs{Image: "img.fits", Mask: "given.fits"}, sersicModel(t))
	require.NoError(t, err)
	assert.NotEqual(t, first, fi.argAfter("-c"))
	assert.Equal(t, "given.fits", fi.argAfter("--mask"))
}

func TestFitTree(t *testing.T) {
	fi := &fakeImfit{result: sersicResult}
	f := newTestFitter(t, fi)

	tree := imfit.NewConfigTree()
	obj, err := tree.AddObject(imfit.Position{X: 50, Y: 60}, imfit.DefaultObjectDelta)
	require.NoError(t, err)
	require.NoError(t, tree.AddComponent(obj, "Sersic", nil))

	rt, err := f.FitTree(context.Background(), Inputs{Image: "img.fits"}, tree)
	require.NoError(t, err)
	assert.Equal(t, 1, rt.NumObjects())

	expected, err := imfit.TreeConfig(tree)
	require.NoError(t, err)
	assert.Equal(t, expected, fi.config)
}

func TestFitErrors(t *testing.T) {
	fi := &fakeImfit{err: fmt.Errorf("segfault")}
	f := newTestFitter(t, fi)
	_, err := f.FitModel(context.Background(), Inputs{Image: "img.fits"}, sersicModel(t))
	assert.Error(t, err)
	_, statErr := os.Stat(fi.argAfter("-c"))
	assert.True(t, os.IsNotExist(statErr))

	_, err = f.FitModel(context.Background(), Inputs{}, sersicModel(t))
	assert.Error(t, err)

	fi = &fakeImfit{result: "# no statistic here\n"}
	f = newTestFitter(t, fi)
	_, err = f.FitModel(context.Background(), Inputs{Image: "img.fits"}, sersicModel(t))
	assert.True(t, errors.Is(err, imfit.ErrMalformedResult))

	// An unwritable config is caught before imfit runs
	fi = &fakeImfit{result: sersicResult}
	f = newTestFitter(t, fi)
	f.Config.OutDir = filepath.Join(f.Config.OutDir, "missing")
	_, err = f.FitModel(context.Background(), Inputs{Image: "img.fits"}, sersicModel(t))
	assert.Error(t, err)
	assert.Nil(t, fi.argv)
}

func TestFitMcmc(t *testing.T) {
	fi := &fakeImfit{}
	f := newTestFitter(t, fi)
	f.Config.Mcmc = true

	_, err := f.FitModel(context.Background(), Inputs{Image: "img.fits"}, sersicModel(t))
	assert.True(t, errors.Is(err, ErrNoBestFit))
	assert.Equal(t, "imfit-mcmc", fi.argv[0])
	assert.Equal(t, "", fi.argAfter("--save-params"))
}

func TestExecRunner(t *testing.T) {
	er := ExecRunner{}
	assert.Error(t, er.Execute(context.Background(), nil))
	assert.Error(t, er.Execute(context.Background(), []string{"/no/such/imfit-binary", "img.fits"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, er.Execute(ctx, []string{"/no/such/imfit-binary"}))
}

func TestExecRunnerLogsFailureOutput(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no sh")
	}

	saved, savedLevel := log.Logger, zerolog.GlobalLevel()
	defer func() { log.Logger = saved; zerolog.SetGlobalLevel(savedLevel) }()

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// The output (42) doesn't appear in the logged command line
	er := ExecRunner{}
	require.NoError(t, er.Execute(context.Background(), []string{sh, "-c", "echo $((6*7))"}))
	assert.NotContains(t, buf.String(), `"message":"42"`)

	err = er.Execute(context.Background(), []string{sh, "-c", "echo $((6*7)); exit 3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "42")
	assert.Contains(t, buf.String(), `{"level":"warn","bin":"`+sh+`","message":"42"}`)
}

func TestMaskFile(t *testing.T) {
	mask, err := MaskFile("m.fits").Mask(context.Background(), "img.fits")
	require.NoError(t, err)
	assert.Equal(t, "m.fits", mask)
}
