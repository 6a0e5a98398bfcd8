package main

import(
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/abworrall/goimfit/pkg/emath"
	"github.com/abworrall/goimfit/pkg/fitsimg"
	"github.com/abworrall/goimfit/pkg/imfit"
	"github.com/abworrall/goimfit/pkg/render"
	"github.com/abworrall/goimfit/pkg/runner"
)

var(
	fConfigFile   string
	fVerbosity    int
	fOutput       string
	fSingle       string
	fMask         string
	fNoise        string
	fPSF          string
	fSaveFiles    bool
	fSaveModel    bool
	fSaveResidual bool
	fMcmc         bool
	fShape        string
	fImage        string
	fHDR          string
	fFITS         string
	fScale        int
	fTonemapper   string
)

func main() {
	setupLogging(os.Stderr)
	loadEnv()

	if err := rootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("goimfit")
	}
}

func setupLogging(w io.Writer) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
}

// loadEnv reads .env (or the named files), if there are any.
func loadEnv(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("loading .env")
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "goimfit",
		Short:         "write imfit configs, run imfit, and read back its results",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if fVerbosity > 1 {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVar(&fConfigFile, "config", "", "run config (yaml)")
	root.PersistentFlags().IntVarP(&fVerbosity, "verbosity", "v", 0, "how verbose to get")

	configCmd := &cobra.Command{
		Use:   "config MODEL.yaml",
		Short: "turn a model (or multi-object tree) description into imfit config text",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfig,
	}
	configCmd.Flags().StringVarP(&fOutput, "output", "o", "", "write here, instead of stdout")
	configCmd.Flags().StringVar(&fImage, "image", "", "FITS image, for objects placed at its center")

	parseCmd := &cobra.Command{
		Use:   "parse RESULT.txt",
		Short: "read an imfit best-fit params file, and dump it as yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	parseCmd.Flags().StringVar(&fSingle, "single", "", "the results are for one component of this function")

	fitCmd := &cobra.Command{
		Use:   "fit IMAGE.fits MODEL.yaml",
		Short: "fit a model (or multi-object tree) to an image",
		Args:  cobra.ExactArgs(2),
		RunE:  runFit,
	}
	fitCmd.Flags().StringVar(&fMask, "mask", "", "mask image; 0 for good pixels")
	fitCmd.Flags().StringVar(&fNoise, "noise", "", "variance image")
	fitCmd.Flags().StringVar(&fPSF, "psf", "", "PSF image")
	fitCmd.Flags().BoolVar(&fSaveFiles, "savefiles", false, "keep the config and result files")
	fitCmd.Flags().BoolVar(&fSaveModel, "savemodel", false, "have imfit save the model image")
	fitCmd.Flags().BoolVar(&fSaveResidual, "saveresidual", false, "have imfit save the residual image")
	fitCmd.Flags().BoolVar(&fMcmc, "mcmc", false, "run imfit-mcmc instead")

	renderCmd := &cobra.Command{
		Use:   "render RESULT.txt",
		Short: "render the model described by a result file",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	renderCmd.Flags().StringVar(&fShape, "shape", "", "image shape, NYxNX (or take it from --image)")
	renderCmd.Flags().StringVar(&fImage, "image", "", "FITS image the model was fitted to; also renders the residual")
	renderCmd.Flags().StringVarP(&fOutput, "output", "o", "model.png", "PNG output")
	renderCmd.Flags().StringVar(&fHDR, "hdr", "", "also write the model as a Radiance HDR")
	renderCmd.Flags().StringVar(&fFITS, "fits", "", "also write the model as a FITS image")
	renderCmd.Flags().IntVar(&fScale, "scale", 1, "blow the PNG up by this factor")
	renderCmd.Flags().StringVar(&fTonemapper, "tonemapper", "", "tone map the model PNG: "+render.ListTonemappers())

	root.AddCommand(configCmd, parseCmd, fitCmd, renderCmd)
	return root
}

// loadConfig reads the config file (if any), and then overrides it with
// the env and command line args.
func loadConfig() (runner.Config, error) {
	c := runner.NewConfig()
	if fConfigFile != "" {
		var err error
		if c, err = runner.LoadConfig(fConfigFile); err != nil {
			return c, err
		}
	}

	if fVerbosity > c.Verbosity {
		c.Verbosity = fVerbosity
	}
	c.SaveFiles = c.SaveFiles || fSaveFiles
	c.SaveModel = c.SaveModel || fSaveModel
	c.SaveResidual = c.SaveResidual || fSaveResidual
	c.Mcmc = c.Mcmc || fMcmc

	if err := c.Finalize(); err != nil {
		return c, err
	}
	if c.Verbosity > 0 {
		log.Info().Msgf("Final configuration:-\n\n%s", c.AsYaml())
	}
	return c, nil
}

func loadDescription(filename string, c runner.Config) (imfit.Description, error) {
	d, err := imfit.LoadDescription(filename)
	if err != nil {
		return d, err
	}
	if d.CenterDelta == nil {
		d.CenterDelta = &c.CenterDelta
	}
	return d, nil
}

func imageShape(image string) (*imfit.Shape, error) {
	if image == "" {
		return nil, nil
	}
	s, err := fitsimg.Shape(image)
	return &s, err
}

func runConfig(cmd *cobra.Command, args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	d, err := loadDescription(args[0], c)
	if err != nil {
		return err
	}

	var text string
	if d.IsTree() {
		shape, err := imageShape(fImage)
		if err != nil {
			return err
		}
		t, err := d.Tree(shape)
		if err != nil {
			return err
		}
		if text, err = imfit.TreeConfig(t); err != nil {
			return err
		}
	} else {
		m, err := d.Model()
		if err != nil {
			return err
		}
		if text, err = imfit.ModelConfig(m); err != nil {
			return err
		}
	}

	if fOutput == "" {
		fmt.Print(text)
		return nil
	}
	return os.WriteFile(fOutput, []byte(text), 0644)
}

func runParse(cmd *cobra.Command, args []string) error {
	if fSingle != "" {
		sr, err := imfit.ParseSingleFile(args[0], fSingle)
		if err != nil {
			return err
		}
		rt := imfit.ResultTree{ReducedChiSq: sr.ReducedChiSq}
		x0, _ := sr.Get("X0")
		y0, _ := sr.Get("Y0")
		x0err, hasX0Err := sr.Err("X0")
		y0err, hasY0Err := sr.Err("Y0")
		obj := rt.AddObject(x0, optional(x0err, hasX0Err), y0, optional(y0err, hasY0Err))
		rt.Objects[obj].Components = append(rt.Objects[obj].Components, sr.ComponentResult)
		return dumpYaml(&rt)
	}

	rt, err := imfit.ParseTreeFile(args[0])
	if err != nil {
		return err
	}
	return dumpYaml(rt)
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func dumpYaml(rt *imfit.ResultTree) error {
	str, err := rt.AsYaml()
	if err != nil {
		return err
	}
	fmt.Print(str)
	return nil
}

func runFit(cmd *cobra.Command, args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	d, err := loadDescription(args[1], c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fitter := runner.NewFitter(c)
	in := runner.Inputs{Image: args[0], Mask: fMask, Noise: fNoise, PSF: fPSF}

	if d.IsTree() {
		shape, err := imageShape(args[0])
		if err != nil {
			return err
		}
		t, err := d.Tree(shape)
		if err != nil {
			return err
		}
		rt, err := fitter.FitTree(ctx, in, t)
		if err != nil {
			return fitErr(err)
		}
		return dumpYaml(rt)
	}

	m, err := d.Model()
	if err != nil {
		return err
	}
	mr, err := fitter.FitModel(ctx, in, m)
	if err != nil {
		return fitErr(err)
	}
	if mr.ReducedChiSq != nil {
		log.Info().Float64("reduced_chisq", *mr.ReducedChiSq).Msg("fit done")
	}
	fmt.Print(mr)
	return nil
}

func fitErr(err error) error {
	if errors.Is(err, runner.ErrNoBestFit) {
		log.Info().Msg("imfit-mcmc finished; see its output files for the chains")
		return nil
	}
	return err
}

func parseShape(s string) (imfit.Shape, error) {
	shape := imfit.Shape{}
	if _, err := fmt.Sscanf(s, "%dx%d", &shape.NY, &shape.NX); err != nil {
		return shape, fmt.Errorf("shape '%s': want NYxNX", s)
	}
	return shape, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	rt, err := imfit.ParseTreeFile(args[0])
	if err != nil {
		return err
	}

	var shape imfit.Shape
	switch {
	case fShape != "":
		if shape, err = parseShape(fShape); err != nil {
			return err
		}
	case fImage != "":
		if shape, err = fitsimg.Shape(fImage); err != nil {
			return err
		}
	default:
		return fmt.Errorf("render: need --shape or --image")
	}

	model, err := rt.Array(shape)
	if err != nil {
		return err
	}
	log.Info().Str("stats", model.Stats().String()).Msg("model")

	if fHDR != "" {
		if err := render.WriteHDR(render.NewGridImage(&model), fHDR); err != nil {
			return err
		}
	}
	if fFITS != "" {
		if err := fitsimg.WriteGrid(&model, fFITS); err != nil {
			return err
		}
	}

	if fImage == "" {
		return writeModel(&model, args[0])
	}

	data, err := fitsimg.LoadGrid(fImage)
	if err != nil {
		return err
	}
	return writeResidual(&data, &model)
}

func writeModel(model *emath.FloatGrid, title string) error {
	switch {
	case fTonemapper != "":
		img, err := render.Tonemap(render.NewGridImage(model), fTonemapper)
		if err != nil {
			return err
		}
		return render.WritePNG(render.Scale(img, fScale), fOutput)
	case fScale > 1:
		return render.WritePNG(render.Scale(render.Grayscale(model, 0, 0), fScale), fOutput)
	default:
		return model.ToImg(title, fOutput)
	}
}

func writeResidual(data, model *emath.FloatGrid) error {
	res, err := render.NewResidual(data, model)
	if err != nil {
		return err
	}
	log.Info().Msg(res.String())
	return render.WritePNG(render.Scale(res.Panel(data, model), fScale), fOutput)
}
