package runner

import(
	"fmt"
	"io/ioutil"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"

	"github.com/abworrall/goimfit/pkg/imfit"
)

// Config controls how imfit gets run. It can be loaded from YAML, and
// then overridden by env vars and command line args.
type Config struct {
	Verbosity          int

	ImfitBinary        string    // path to imfit
	McmcBinary         string    // path to imfit-mcmc
	Mcmc               bool      // run imfit-mcmc; there are no best-fit params to read back

	OutDir             string    // config and result files go here
	ConfigFilename     string
	ResultFilename     string
	SaveFiles          bool      // keep the config and result files after the run

	SaveModel          bool      // ask imfit for <image>_model.fits
	SaveResidual       bool      // ask imfit for <image>_res.fits

	PoissonMLR         bool
	CashStat           bool
	Quiet              bool
	MaxThreads         int
	Bootstrap          int       // iterations of bootstrap resampling, 0 for none
	BootstrapFilename  string
	Options            string    // anything else imfit takes, e.g. "--seed 341"

	CenterDelta        float64   // the ± window, in pixels, for model centers
}

func NewConfig() Config {
	return Config{
		ImfitBinary:    "imfit",
		McmcBinary:     "imfit-mcmc",
		OutDir:         ".",
		ConfigFilename: "config.txt",
		ResultFilename: "best-fit.txt",
		CenterDelta:    imfit.DefaultCenterDelta,
	}
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

func LoadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %v", filename, err)
	}
	c, err := newConfigFromYaml(contents)
	if err != nil {
		return Config{}, fmt.Errorf("config parse %s: %v", filename, err)
	}
	return c, nil
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatal().Err(err).Msg("can't marshal config yaml")
	}
	return string(b)
}

// Finalize applies env var overrides, and checks the config makes sense.
func (c *Config)Finalize() error {
	if v := os.Getenv("IMFIT_BIN"); v != "" {
		c.ImfitBinary = v
	}
	if v := os.Getenv("IMFIT_MCMC_BIN"); v != "" {
		c.McmcBinary = v
	}

	if c.OutDir == "" {
		c.OutDir = "."
	}
	if c.ConfigFilename == "" || c.ResultFilename == "" {
		return fmt.Errorf("config: need both ConfigFilename and ResultFilename")
	}
	if c.ConfigFilename == c.ResultFilename {
		return fmt.Errorf("config: ConfigFilename and ResultFilename are both '%s'", c.ConfigFilename)
	}
	if c.Bootstrap < 0 || c.MaxThreads < 0 {
		return fmt.Errorf("config: Bootstrap (%d) and MaxThreads (%d) can't be negative", c.Bootstrap, c.MaxThreads)
	}
	if c.BootstrapFilename != "" && c.Bootstrap == 0 {
		log.Warn().Str("file", c.BootstrapFilename).Msg("BootstrapFilename set, but Bootstrap is 0; ignoring")
	}
	if c.CenterDelta < 0 {
		return fmt.Errorf("config: CenterDelta %g can't be negative", c.CenterDelta)
	}
	return nil
}

// Binary is the program a run will invoke.
func (c Config)Binary() string {
	if c.Mcmc {
		return c.McmcBinary
	}
	return c.ImfitBinary
}
