package imfit

import(
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// WriteModel writes a model as imfit config text. Each component that
// has a center starts a new block (blank line, X0, Y0); components
// without one are appended to the block before them.
func WriteModel(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	for _, c := range m.components {
		if c.HasCenter() {
			fmt.Fprintln(bw)
		}
		for _, line := range c.ConfigLines() {
			fmt.Fprintln(bw, line)
		}
	}
	return bw.Flush()
}

// WriteConfigTree writes each object's X0/Y0, then the blocks for each
// of its components, with a blank line between objects.
func WriteConfigTree(w io.Writer, t *ConfigTree) error {
	bw := bufio.NewWriter(w)
	for i, oc := range t.objects {
		if len(oc.Components) == 0 {
			return errors.Wrapf(ErrNoSuchComponent, "object #%d has no components", oc.Index)
		}
		if i > 0 {
			fmt.Fprintln(bw)
		}
		fmt.Fprintln(bw, oc.X0.ConfigLine())
		fmt.Fprintln(bw, oc.Y0.ConfigLine())
		for _, c := range oc.Components {
			cc := *c
			cc.ClearCenter()
			for _, line := range cc.ConfigLines() {
				fmt.Fprintln(bw, line)
			}
		}
	}
	return bw.Flush()
}

// ModelConfig and TreeConfig return the config text as a string.
func ModelConfig(m *Model) (string, error) {
	sb := strings.Builder{}
	err := WriteModel(&sb, m)
	return sb.String(), err
}

func TreeConfig(t *ConfigTree) (string, error) {
	sb := strings.Builder{}
	err := WriteConfigTree(&sb, t)
	return sb.String(), err
}

// WriteConfigFile creates filename and hands it to writeFunc. The file
// is always closed; if anything fails, the partial file is removed.
func WriteConfigFile(filename string, writeFunc func(io.Writer) error) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close '%s': %v", filename, cerr)
		}
		if err != nil {
			os.Remove(filename)
		}
	}()

	if err := writeFunc(f); err != nil {
		return errors.Wrapf(err, "write '%s'", filename)
	}
	return nil
}

func WriteModelFile(filename string, m *Model) error {
	return WriteConfigFile(filename, func(w io.Writer) error { return WriteModel(w, m) })
}

func WriteConfigTreeFile(filename string, t *ConfigTree) error {
	return WriteConfigFile(filename, func(w io.Writer) error { return WriteConfigTree(w, t) })
}
