package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const exampleHeader = `# spectap configuration.
# Every key can be overridden with SPECTAP_<KEY>, e.g. SPECTAP_ANALYSER_SIZE=2048.
`

// WriteExample writes cfg as an annotated YAML document.
func WriteExample(w io.Writer, cfg Config) error {
	if _, err := io.WriteString(w, exampleHeader); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return enc.Close()
}

// WriteExampleFile writes the default configuration to path. Existing files
// are only replaced when force is set.
func WriteExampleFile(path string, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}

	if err := WriteExample(f, Default()); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
