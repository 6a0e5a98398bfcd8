package runner

import(
	"fmt"
	"path/filepath"
	"strings"
)

// Inputs are the files imfit reads. Everything but Image is optional.
// The image may carry a FITS extension, e.g. "img.fits[1]".
type Inputs struct {
	Image  string
	Mask   string   // 0 for good pixels, >0 for bad
	Noise  string   // a variance map
	PSF    string
}

// CommandLine is the argv for one run of imfit (or imfit-mcmc). The
// best-fit params go to resultFile, unless it's an MCMC run.
func (c Config)CommandLine(in Inputs, configFile, resultFile string) []string {
	argv := []string{c.Binary(), in.Image, "-c", configFile}

	if in.Mask != "" {
		argv = append(argv, "--mask", in.Mask)
	}
	if in.Noise != "" {
		argv = append(argv, "--noise", in.Noise, "--errors-are-variances")
	}
	if in.PSF != "" {
		argv = append(argv, "--psf", in.PSF)
	}
	if c.PoissonMLR {
		argv = append(argv, "--poisson-mlr")
	}
	if c.Quiet {
		argv = append(argv, "--quiet")
	}
	if c.CashStat {
		argv = append(argv, "--cashstat")
	}
	if c.Bootstrap > 0 {
		argv = append(argv, "--bootstrap", fmt.Sprintf("%d", c.Bootstrap))
		if c.BootstrapFilename != "" {
			argv = append(argv, "--save-bootstrap", c.BootstrapFilename)
		}
	}

	argv = append(argv, strings.Fields(c.Options)...)
	if c.MaxThreads > 0 {
		argv = append(argv, "--max-threads", fmt.Sprintf("%d", c.MaxThreads))
	}

	if c.SaveModel {
		argv = append(argv, "--save-model", ModelFilename(in.Image))
	}
	if c.SaveResidual {
		argv = append(argv, "--save-residual", ResidualFilename(in.Image))
	}
	if !c.Mcmc {
		argv = append(argv, "--save-params", resultFile)
	}
	return argv
}

// ModelFilename is where imfit is told to save the best-fit model
// image: "dir/img.fits[1]" becomes "dir/img_model.fits".
func ModelFilename(image string) string    { return siblingFilename(image, "_model.fits") }
func ResidualFilename(image string) string { return siblingFilename(image, "_res.fits") }

func siblingFilename(image, suffix string) string {
	if strings.HasSuffix(image, "]") {
		if i := strings.LastIndex(image, "["); i >= 0 {
			image = image[:i]
		}
	}
	return strings.TrimSuffix(image, filepath.Ext(image)) + suffix
}
