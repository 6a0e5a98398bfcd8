package runner

import(
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/abworrall/goimfit/pkg/imfit"
)

// ErrNoBestFit is returned for MCMC runs, which don't save params.
var ErrNoBestFit = errors.New("imfit-mcmc run: no best-fit params")

// A Fitter writes the config file, runs imfit on it, and reads back the
// best-fit results. Each run gets its own uniquely named files in
// OutDir, so several Fitters can share a directory.
type Fitter struct {
	Config    Config
	Executor  Executor
	Masker    Masker     // if set, and Inputs.Mask is empty, builds the mask
}

func NewFitter(c Config) *Fitter {
	return &Fitter{Config: c, Executor: ExecRunner{Verbosity: c.Verbosity}}
}

// A Run names the files a single invocation used.
type Run struct {
	ID          string
	ConfigFile  string
	ResultFile  string
	Argv        []string
}

func (f *Fitter)newRun() Run {
	id := uuid.New().String()
	return Run{
		ID:         id,
		ConfigFile: filepath.Join(f.Config.OutDir, id + "-" + f.Config.ConfigFilename),
		ResultFile: filepath.Join(f.Config.OutDir, id + "-" + f.Config.ResultFilename),
	}
}

// FitModel fits the components of a model to the image.
func (f *Fitter)FitModel(ctx context.Context, in Inputs, m *imfit.Model) (*imfit.ModelResults, error) {
	var mr *imfit.ModelResults
	write := func(w io.Writer) error { return imfit.WriteModel(w, m) }
	parse := func(r io.Reader) error {
		var err error
		mr, err = imfit.ParseModelResults(r, m)
		return err
	}
	if err := f.run(ctx, in, write, parse); err != nil {
		return nil, err
	}
	return mr, nil
}

// FitTree fits several objects, each with its own components.
func (f *Fitter)FitTree(ctx context.Context, in Inputs, t *imfit.ConfigTree) (*imfit.ResultTree, error) {
	var rt *imfit.ResultTree
	write := func(w io.Writer) error { return imfit.WriteConfigTree(w, t) }
	parse := func(r io.Reader) error {
		var err error
		rt, err = imfit.ParseTree(r)
		return err
	}
	if err := f.run(ctx, in, write, parse); err != nil {
		return nil, err
	}
	return rt, nil
}

func (f *Fitter)run(ctx context.Context, in Inputs, write func(io.Writer) error, parse func(io.Reader) error) error {
	if in.Image == "" {
		return errors.New("fit: no image")
	}
	if f.Executor == nil {
		f.Executor = ExecRunner{Verbosity: f.Config.Verbosity}
	}

	if in.Mask == "" && f.Masker != nil {
		mask, err := f.Masker.Mask(ctx, in.Image)
		if err != nil {
			return errors.Wrapf(err, "mask for %s", in.Image)
		}
		in.Mask = mask
	}

	run := f.newRun()
	run.Argv = f.Config.CommandLine(in, run.ConfigFile, run.ResultFile)
	if !f.Config.SaveFiles {
		defer f.cleanup(run)
	}

	if err := imfit.WriteConfigFile(run.ConfigFile, write); err != nil {
		return err
	}
	if f.Config.Verbosity > 0 {
		log.Info().Str("run", run.ID).Str("config", run.ConfigFile).Msg("wrote config")
	}

	if err := f.Executor.Execute(ctx, run.Argv); err != nil {
		return errors.Wrapf(err, "run %s", run.ID)
	}
	if f.Config.Mcmc {
		return ErrNoBestFit
	}

	r, err := os.Open(run.ResultFile)
	if err != nil {
		return errors.Wrapf(err, "run %s: results", run.ID)
	}
	defer r.Close()
	if err := parse(r); err != nil {
		return errors.Wrapf(err, "run %s: %s", run.ID, run.ResultFile)
	}

	if f.Config.SaveFiles {
		log.Info().Str("config", run.ConfigFile).Str("results", run.ResultFile).Msg("kept files")
	}
	return nil
}

func (f *Fitter)cleanup(run Run) {
	for _, fn := range []string{run.ConfigFile, run.ResultFile} {
		if err := os.Remove(fn); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", fn).Msg("cleanup")
		}
	}
}
